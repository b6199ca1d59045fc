package main

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qinter/internal/display"
	"qinter/internal/explain"
	"qinter/internal/watch"
)

// streamEvent is one captured error on stdin, as emitted by interceptor
// glue in the erroring process.
type streamEvent struct {
	Category  string            `json:"category"`
	Message   string            `json:"message"`
	Variables map[string]string `json:"variables"`
	Modules   []string          `json:"modules"`
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Explain errors read as JSON lines from stdin",
	Long: `Reads one JSON object per line ({"category", "message",
"variables", "modules"}) and writes the rendered explanation for each.
Intended as the integration point for error-capture glue in other
processes. With auto_reload enabled in the config, pack files changed on
disk are picked up without restarting.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := newEngine()
		engine.Initialize()

		if settings.AutoReload {
			w, err := watch.New(settings.PacksDir, engine.ReloadPacks, logger)
			if err != nil {
				logger.Warn("pack watching disabled", zap.Error(err))
			} else {
				defer w.Close()
			}
		}

		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var ev streamEvent
			if err := json.Unmarshal(line, &ev); err != nil {
				logger.Warn("skipping malformed event", zap.Error(err))
				continue
			}
			ctx := explain.ErrorContext{Variables: ev.Variables, Modules: ev.Modules}
			expl, ok := engine.Explain(ev.Category, ev.Message, ctx)
			if !ok {
				fmt.Fprintln(out, display.NoExplanation(ev.Category))
				continue
			}
			fmt.Fprint(out, display.Explanation(expl, settings.Display))
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(streamCmd)
}
