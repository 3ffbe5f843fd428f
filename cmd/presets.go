package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"replaycut/domain/video"
	"replaycut/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for preset commands
var DefaultOutput OutputWriter = os.Stdout

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage segment length presets",
	Long: `List, add and remove the segment lengths offered as presets.

Presets are kept in ascending order; "save --preset 1" uses the shortest.
Every preset must be between buffer.min_seconds and buffer.max_seconds.

Examples:
  replaycut presets list
  replaycut presets add 2m
  replaycut presets remove 00:15:00`,
}

func init() {
	rootCmd.AddCommand(presetsCmd)

	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsAddCmd)
	presetsCmd.AddCommand(presetsRemoveCmd)
}

// --- LIST command ---

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunPresetsListWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

// RunPresetsListWithDependencies runs the list command with injected dependencies
func RunPresetsListWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	mgr := config.NewPresetManager(cfg, configPath)

	values, err := mgr.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSECONDS\tLENGTH")
	for i, v := range values {
		fmt.Fprintf(w, "%d\t%d\t%s\n", i+1, v, video.FormatDuration(v))
	}
	return w.Flush()
}

// --- ADD command ---

var presetsAddCmd = &cobra.Command{
	Use:   "add <duration>",
	Short: "Add a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunPresetsAddWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

// RunPresetsAddWithDependencies runs the add command with injected dependencies
func RunPresetsAddWithDependencies(cfg *config.Config, configPath, duration string, out OutputWriter) error {
	seconds, err := video.ParseDuration(duration)
	if err != nil {
		return err
	}

	if err := config.NewPresetManager(cfg, configPath).Add(seconds); err != nil {
		return err
	}

	fmt.Fprintf(out, "Added preset %s\n", video.FormatDuration(seconds))
	return nil
}

// --- REMOVE command ---

var presetsRemoveCmd = &cobra.Command{
	Use:   "remove <duration>",
	Short: "Remove a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		return RunPresetsRemoveWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

// RunPresetsRemoveWithDependencies runs the remove command with injected dependencies
func RunPresetsRemoveWithDependencies(cfg *config.Config, configPath, duration string, out OutputWriter) error {
	seconds, err := video.ParseDuration(duration)
	if err != nil {
		return err
	}

	if err := config.NewPresetManager(cfg, configPath).Remove(seconds); err != nil {
		return err
	}

	fmt.Fprintf(out, "Removed preset %s\n", video.FormatDuration(seconds))
	return nil
}
