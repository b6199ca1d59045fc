package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"qinter/internal/client"
	"qinter/internal/display"
)

var listDetailed bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed explanation packs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		packs, err := newManager().Installed()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), display.InstalledPacks(packs, listDetailed))
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the registry for explanation packs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := newClient().Search(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("search registry: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), display.SearchResults(args[0], results))
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <pack>",
	Short: "Show registry details for one pack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newClient().Info(cmd.Context(), args[0])
		if errors.Is(err, client.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "pack %q is not in the registry\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("query registry: %w", err)
		}
		out := display.PackInfo(info)
		if newManager().IsInstalled(args[0]) {
			v, verr := newManager().InstalledVersion(args[0])
			if verr == nil {
				out += fmt.Sprintf("  installed: %s\n", v)
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listDetailed, "detailed", false, "show authors, rule counts and targets")
	rootCmd.AddCommand(listCmd, searchCmd, infoCmd)
}
