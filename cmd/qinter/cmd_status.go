package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"qinter/internal/config"
	"qinter/internal/display"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the engine's loaded packs, rules and covered categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newEngine()
		engine.Initialize()
		fmt.Fprint(cmd.OutOrStdout(), display.Statistics(engine.Statistics()))
		return nil
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the local qinter installation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		configPath, err := config.Path()
		fmt.Fprint(out, display.Check("config file", err == nil, configPath))

		_, derr := os.Stat(settings.PacksDir)
		fmt.Fprint(out, display.Check("pack directory", derr == nil || os.IsNotExist(derr), settings.PacksDir))

		engine := newEngine()
		engine.Initialize()
		stats := engine.Statistics()
		fmt.Fprint(out, display.Check("core packs", stats.Rules > 0,
			fmt.Sprintf("%d rules across %d packs", stats.Rules, stats.Packs)))
		fmt.Fprint(out, display.Check("pack validation", len(stats.ValidationErrors) == 0,
			fmt.Sprintf("%d error(s)", len(stats.ValidationErrors))))

		reachable := registryReachable(settings.RegistryURL)
		fmt.Fprint(out, display.Check("registry", reachable, settings.RegistryURL))
		return nil
	},
}

func registryReachable(url string) bool {
	c := &http.Client{Timeout: 3 * time.Second}
	resp, err := c.Get(url + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func init() {
	rootCmd.AddCommand(statusCmd, doctorCmd)
}
