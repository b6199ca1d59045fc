package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"qinter/internal/config"
)

var configSet []string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change qinter settings",
	Long: `Without flags, prints the active settings. With --set key=value,
updates the config file. Settable keys: registry_url, packs_dir,
auto_reload, debug, max_suggestions, max_examples, show_pack_info.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(configSet) == 0 {
			path, _ := config.Path()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config file:     %s\n", path)
			fmt.Fprintf(out, "registry_url:    %s\n", settings.RegistryURL)
			fmt.Fprintf(out, "packs_dir:       %s\n", settings.PacksDir)
			fmt.Fprintf(out, "auto_reload:     %v\n", settings.AutoReload)
			fmt.Fprintf(out, "debug:           %v\n", settings.Debug)
			fmt.Fprintf(out, "max_suggestions: %d\n", settings.Display.MaxSuggestions)
			fmt.Fprintf(out, "max_examples:    %d\n", settings.Display.MaxExamples)
			fmt.Fprintf(out, "show_pack_info:  %v\n", settings.Display.ShowPackInfo)
			return nil
		}

		for _, kv := range configSet {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("--set expects key=value, got %q", kv)
			}
			if err := applySetting(&settings, key, value); err != nil {
				return err
			}
		}
		if err := config.Save(settings); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "settings saved")
		return nil
	},
}

func applySetting(s *config.Settings, key, value string) error {
	switch key {
	case "registry_url":
		s.RegistryURL = value
	case "packs_dir":
		s.PacksDir = value
	case "auto_reload":
		return parseBoolInto(&s.AutoReload, key, value)
	case "debug":
		return parseBoolInto(&s.Debug, key, value)
	case "show_pack_info":
		return parseBoolInto(&s.Display.ShowPackInfo, key, value)
	case "max_suggestions":
		return parseIntInto(&s.Display.MaxSuggestions, key, value)
	case "max_examples":
		return parseIntInto(&s.Display.MaxExamples, key, value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func parseBoolInto(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("setting %s expects a boolean, got %q", key, value)
	}
	*dst = b
	return nil
}

func parseIntInto(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fmt.Errorf("setting %s expects a non-negative integer, got %q", key, value)
	}
	*dst = n
	return nil
}

func init() {
	configCmd.Flags().StringArrayVar(&configSet, "set", nil, "update a setting as key=value (repeatable)")
	rootCmd.AddCommand(configCmd)
}
