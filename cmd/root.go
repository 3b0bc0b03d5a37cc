package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/tfbv-cli/internal/archive"
	"github.com/HaiFongPan/tfbv-cli/internal/config"
	"github.com/HaiFongPan/tfbv-cli/internal/form"
	"github.com/HaiFongPan/tfbv-cli/internal/tui"
	"github.com/HaiFongPan/tfbv-cli/internal/utils"
	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

var (
	cfgFile      string
	verbose      bool
	quiet        bool
	globalConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tfbv",
	Short: "Send spreadsheets to the TFB validation services",
	Long: `TFBV is a terminal client for the TFB validation services. Pick a
validation type, attach the .xlsx workbooks it needs and send them; the
report that comes back is saved to your download directory and previewed.

Example usage:
  tfbv                                  # Interactive form
  tfbv validate --tool tpavalidation --test-file test.xlsx --db-file db.xlsx
  tfbv tools                            # List validation types and endpoints`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !globalConfig.UI.InteractiveMode {
			return cmd.Help()
		}
		return runInteractiveForm()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", fmt.Sprintf("config file (default is %s)", config.GetDefaultConfigPath()))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	// Values from a local .env file behave like exported TFBV_ variables
	_ = godotenv.Load()

	var err error
	globalConfig, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogging()

	if globalConfig.General.ConfigPath != "" {
		logrus.Debugf("Using config file %s", globalConfig.General.ConfigPath)
	}
	return nil
}

// setupLogging configures the global logger based on config and flags
func setupLogging() {
	level := globalConfig.Log.Level
	if verbose {
		level = "debug"
	} else if quiet {
		level = "error"
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("Invalid log level %s, using info", level)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)

	// Redirect all logs to file to prevent UI interference
	logDir := filepath.Join(os.TempDir(), "tfbv")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		logrus.Warnf("Failed to create log directory %s: %v", logDir, err)
	} else {
		logFile := filepath.Join(logDir, "app.log")
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			logrus.Warnf("Failed to open log file %s: %v", logFile, err)
		} else {
			logrus.SetOutput(file)
		}
	}

	if globalConfig.Log.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: quiet,
			FullTimestamp:    verbose,
		})
	}
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return globalConfig
}

// runnerOptions adjusts where and how a runner stores reports
type runnerOptions struct {
	downloadDir string
	overwrite   bool
	archive     bool
}

// newRunner wires the validation client, the report saver and the optional
// archive into a form.Runner
func newRunner(cfg *config.Config, opts runnerOptions) (*form.Runner, error) {
	runner := &form.Runner{
		Uploader: validator.NewClient(cfg),
		Saver:    utils.NewFileSaver(opts.downloadDir, opts.overwrite),
		Decode:   utils.DecodeAsText,
	}

	if opts.archive {
		archiver, err := archive.New(&cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("failed to create report archive: %w", err)
		}
		runner.Archiver = archiver
		runner.LinkExpiry = cfg.Archive.LinkExpiry
	}

	return runner, nil
}

// runInteractiveForm runs the validation form
func runInteractiveForm() error {
	cfg := globalConfig

	runner, err := newRunner(cfg, runnerOptions{
		downloadDir: cfg.Download.Dir,
		overwrite:   cfg.Download.Overwrite,
		archive:     cfg.Archive.Enabled,
	})
	if err != nil {
		return err
	}

	userData, err := config.LoadUserData()
	if err != nil {
		logrus.Warnf("Failed to load user data: %v", err)
	}

	model := tui.NewFormModel(cfg, runner, userData)

	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Set program reference in model for direct messaging
	model.SetProgram(program)

	_, err = program.Run()
	return err
}
