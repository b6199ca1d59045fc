package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"qinter/internal/display"
	"qinter/internal/explain"
)

var (
	explainVars    []string
	explainModules []string
)

var explainCmd = &cobra.Command{
	Use:   "explain <category> <message>",
	Short: "Explain one error given its category and message",
	Long: `Runs a single error through the explanation engine. Context
variables from the erroring scope can be supplied with repeated --var
flags, imported modules with --module.

Example:
  qinter explain NameError "name 'respnse' is not defined" --var response=dict`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, message := args[0], args[1]

		ctx := explain.ErrorContext{
			Variables: make(map[string]string, len(explainVars)),
			Modules:   explainModules,
		}
		for _, kv := range explainVars {
			name, typ, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("--var expects name=type, got %q", kv)
			}
			ctx.Variables[name] = typ
		}

		engine := newEngine()
		expl, ok := engine.Explain(category, message, ctx)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), display.NoExplanation(category))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), display.Explanation(expl, settings.Display))
		return nil
	},
}

func init() {
	explainCmd.Flags().StringArrayVar(&explainVars, "var", nil,
		"context variable as name=type (repeatable)")
	explainCmd.Flags().StringArrayVar(&explainModules, "module", nil,
		"imported module visible in the erroring scope (repeatable)")
	rootCmd.AddCommand(explainCmd)
}
