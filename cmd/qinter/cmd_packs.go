package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"qinter/internal/manager"
)

var (
	installVersion string
	installForce   bool
)

var installCmd = &cobra.Command{
	Use:   "install <pack>...",
	Short: "Install explanation packs from the registry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		var failed int
		for _, name := range args {
			err := m.Install(cmd.Context(), name, installVersion, installForce)
			switch {
			case errors.Is(err, manager.ErrAlreadyInstalled):
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already installed (use --force to reinstall)\n", name)
			case err != nil:
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "install %s: %v\n", name, err)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", name)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d pack(s) failed to install", failed)
		}
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <pack>...",
	Short: "Remove installed explanation packs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()
		var failed int
		for _, name := range args {
			if err := m.Uninstall(name); err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "uninstall %s: %v\n", name, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uninstalled %s\n", name)
		}
		if failed > 0 {
			return fmt.Errorf("%d pack(s) failed to uninstall", failed)
		}
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [pack]...",
	Short: "Update installed packs to the registry's latest versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := newManager()

		if len(args) == 0 {
			results, err := m.UpdateAll(cmd.Context())
			if err != nil {
				return err
			}
			for name, uerr := range results {
				if uerr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "update %s: %v\n", name, uerr)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked %d pack(s)\n", len(results))
			return nil
		}

		for _, name := range args {
			updated, err := m.Update(cmd.Context(), name)
			switch {
			case err != nil:
				fmt.Fprintf(cmd.ErrOrStderr(), "update %s: %v\n", name, err)
			case updated:
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", name)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date\n", name)
			}
		}
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&installVersion, "pack-version", "latest", "version to install")
	installCmd.Flags().BoolVar(&installForce, "force", false, "reinstall even if already installed")
	rootCmd.AddCommand(installCmd, uninstallCmd, updateCmd)
}
