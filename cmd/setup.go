package cmd

import (
	"fmt"
	"os"
	"slices"

	"replaycut/domain/video"
	"replaycut/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Password(message string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Password(message string) (string, error) {
	result := ""
	if err := survey.AskOne(&survey.Password{Message: message}, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through the obs-websocket connection, trim
behaviour and optional Google Drive publishing.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm(configPath+" already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to replaycut setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptOBS(prompter, cfg); err != nil {
		return err
	}

	if err := promptTrim(prompter, cfg); err != nil {
		return err
	}

	if err := promptDrive(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptOBS(prompter Prompter, cfg *config.Config) error {
	address, err := prompter.Input("obs-websocket address?", cfg.OBS.Address)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if address != "" {
		cfg.OBS.Address = address
	}

	password, err := prompter.Password("obs-websocket password? (empty if authentication is off)")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.OBS.Password = password

	return nil
}

func promptTrim(prompter Prompter, cfg *config.Config) error {
	suffix, err := prompter.Input("Suffix for trimmed files?", cfg.Trim.Suffix)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if suffix != "" {
		cfg.Trim.Suffix = suffix
	}

	keep, err := prompter.Confirm("Keep the untrimmed replay after trimming?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Trim.KeepOriginal = keep

	ffmpegPath, err := prompter.Input("Path to ffmpeg (used for non-MP4 recordings)?", cfg.Trim.FFmpegPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffmpegPath != "" {
		cfg.Trim.FFmpegPath = ffmpegPath
	}

	for {
		add, err := prompter.Confirm("Add a segment length preset?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !add {
			break
		}

		value, err := prompter.Input("  Length (e.g. 45, 2m, 00:10:00):", "")
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		seconds, err := video.ParseDuration(value)
		if err != nil {
			return err
		}
		if !slices.Contains(cfg.Presets, seconds) {
			cfg.Presets = append(cfg.Presets, seconds)
		}
	}

	return nil
}

func promptDrive(prompter Prompter, cfg *config.Config) error {
	enabled, err := prompter.Confirm("Upload saved clips to Google Drive?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !enabled {
		return nil
	}
	cfg.Drive.Enabled = true

	credentials, err := prompter.Input("Path to Google credentials file?", "credentials.json")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Drive.CredentialsFile = credentials

	oauth, err := prompter.Confirm("Sign in with a personal Google account (OAuth) instead of a service account?", true)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if oauth {
		cfg.Drive.TokenFile = "config/token.json"
	}

	folder, err := prompter.Input("Google Drive folder ID? (empty for My Drive)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Drive.FolderID = folder

	share, err := prompter.Confirm("Share uploaded clips with anyone who has the link?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Drive.SharePublicly = share

	return nil
}
