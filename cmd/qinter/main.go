// Command qinter is the explanation-pack CLI: it explains errors through the
// local engine and manages packs against a registry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"qinter/internal/client"
	"qinter/internal/config"
	"qinter/internal/explain"
	"qinter/internal/manager"
	"qinter/internal/pack"
)

const version = "0.2.0"

var (
	verbose  bool
	logger   *zap.Logger
	settings config.Settings
)

var rootCmd = &cobra.Command{
	Use:     "qinter",
	Short:   "qinter - plain-language explanations for runtime errors",
	Version: version,
	Long: `qinter turns raw runtime errors into ranked, human-readable
explanations driven by declarative explanation packs.

Packs are YAML rule bundles: a matcher scores their rules against an
incoming error using regex captures and context heuristics, and a renderer
substitutes the captured values into explanation templates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		settings, err = config.Load()
		if err != nil {
			logger.Warn("falling back to default settings", zap.Error(err))
		}
		if settings.Debug {
			cfg.Level.SetLevel(zapcore.DebugLevel)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newEngine wires the explanation engine against the embedded core packs and
// the configured user pack directory.
func newEngine() *explain.Engine {
	loader := pack.NewLoader(logger)
	source := pack.NewSource(loader, settings.PacksDir)
	return explain.NewEngine(source, logger)
}

// newManager wires the pack manager against the configured registry.
func newManager() *manager.Manager {
	c := client.New(settings.RegistryURL, version, logger)
	return manager.New(c, pack.NewLoader(logger), settings.PacksDir, logger)
}

func newClient() *client.Client {
	return client.New(settings.RegistryURL, version, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
