package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/tfbv-cli/internal/config"
	"github.com/HaiFongPan/tfbv-cli/internal/form"
	"github.com/HaiFongPan/tfbv-cli/internal/utils"
	"github.com/HaiFongPan/tfbv-cli/internal/validator"
)

var (
	validateTool              string
	validateTestFile          string
	validateDBFile            string
	validateCoveredEntityFile string
	validateOutputDir         string
	validateOverwrite         bool
	validateNoPreview         bool
	validateNoProgress        bool
	validateArchive           bool
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Send workbooks to a validation service without the interactive form",
	Long: `Send the workbooks for one validation type, save the returned report and
print it.

Examples:
  tfbv validate --tool tpavalidation --test-file test.xlsx --db-file db.xlsx
  tfbv validate --tool npivalidation --test-file t.xlsx --db-file d.xlsx \
                --covered-entity-file ce.xlsx --output-dir ./reports
  tfbv validate --tool ndcandselfadminvalidation -t t.xlsx -d d.xlsx --no-preview
  tfbv validate --tool tpavalidation -t t.xlsx -d d.xlsx --archive`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateTool, "tool", "", "validation type (see 'tfbv tools')")
	validateCmd.Flags().StringVarP(&validateTestFile, "test-file", "t", "", "test workbook (.xlsx)")
	validateCmd.Flags().StringVarP(&validateDBFile, "db-file", "d", "", "DB workbook (.xlsx)")
	validateCmd.Flags().StringVarP(&validateCoveredEntityFile, "covered-entity-file", "e", "", "covered entity workbook (.xlsx), NPI only")
	validateCmd.Flags().StringVarP(&validateOutputDir, "output-dir", "o", "", "directory the report is saved to (overrides config)")
	validateCmd.Flags().BoolVar(&validateOverwrite, "overwrite", false, "overwrite an existing report instead of numbering")
	validateCmd.Flags().BoolVar(&validateNoPreview, "no-preview", false, "do not print the report")
	validateCmd.Flags().BoolVar(&validateNoProgress, "no-progress", false, "disable progress bar")
	validateCmd.Flags().BoolVar(&validateArchive, "archive", false, "archive the report to the configured bucket")

	validateCmd.MarkFlagRequired("tool")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	tool, err := validator.ParseTool(validateTool)
	if err != nil {
		return err
	}

	controller := form.New()
	if err := controller.SelectTool(tool); err != nil {
		return err
	}

	attachments := map[validator.Slot]string{
		validator.SlotTest:          validateTestFile,
		validator.SlotDB:            validateDBFile,
		validator.SlotCoveredEntity: validateCoveredEntityFile,
	}
	for _, slot := range validator.AllSlots {
		path := attachments[slot]
		if path == "" {
			continue
		}
		if err := controller.AttachFile(slot, path); err != nil {
			return fmt.Errorf("%s: %w", slot.Label(), err)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%s: %w", slot.Label(), err)
		}
		if summary, err := utils.InspectWorkbook(path); err == nil && !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s)\n", slot.Label(), path, summary)
		}
	}

	if !controller.CanSubmit() {
		return fmt.Errorf("%s requires %s", tool.Label(), missingSlots(controller))
	}

	opts := runnerOptions{
		downloadDir: cfg.Download.Dir,
		overwrite:   cfg.Download.Overwrite,
		archive:     cfg.Archive.Enabled,
	}
	if validateOutputDir != "" {
		opts.downloadDir = validateOutputDir
	}
	if cmd.Flags().Changed("overwrite") {
		opts.overwrite = validateOverwrite
	}
	if validateArchive {
		cfg.Archive.Enabled = true
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("--archive needs a complete [archive] section: %w", err)
		}
		opts.archive = true
	}

	runner, err := newRunner(cfg, opts)
	if err != nil {
		return err
	}

	var printer *utils.ProgressPrinter
	if !validateNoProgress && !quiet {
		printer = utils.NewProgressPrinter(cmd.ErrOrStderr(), "Uploading "+tool.Label())
		runner.Progress = printer.Update
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.General.DefaultTimeout)*time.Second)
	defer cancel()

	logrus.Infof("Validating with %s", tool)
	outcome, _ := controller.Submit(ctx, runner)
	if printer != nil {
		printer.Finish()
	}

	return reportOutcome(cmd.OutOrStdout(), outcome, !validateNoPreview)
}

// missingSlots names the required slots that hold no file
func missingSlots(controller *form.Controller) string {
	var missing []string
	for _, slot := range controller.Tool().RequiredSlots() {
		if controller.File(slot) == "" {
			missing = append(missing, "--"+flagForSlot(slot))
		}
	}
	return strings.Join(missing, ", ")
}

func flagForSlot(slot validator.Slot) string {
	switch slot {
	case validator.SlotTest:
		return "test-file"
	case validator.SlotDB:
		return "db-file"
	default:
		return "covered-entity-file"
	}
}

// reportOutcome prints the result of an attempt and returns the upload error
func reportOutcome(out io.Writer, outcome *form.Outcome, preview bool) error {
	if !outcome.Succeeded() {
		return outcome.Result.AsError()
	}

	result := outcome.Result
	fmt.Fprintf(out, "%s (%s, %s)\n", result.Message(), result.Filename, utils.FormatBytes(int64(len(result.Data))))

	if outcome.SaveErr != nil {
		fmt.Fprintf(out, "Warning: could not save report: %v\n", outcome.SaveErr)
	} else {
		fmt.Fprintf(out, "Saved to %s\n", outcome.SavedPath)
	}

	if outcome.ArchiveErr != nil {
		fmt.Fprintf(out, "Warning: could not archive report: %v\n", outcome.ArchiveErr)
	} else if outcome.ArchiveKey != "" {
		fmt.Fprintf(out, "Archived as %s\n", outcome.ArchiveKey)
		if outcome.ArchiveURL != "" {
			fmt.Fprintf(out, "Link: %s\n", outcome.ArchiveURL)
		}
	}

	if !preview {
		return nil
	}

	if outcome.PreviewErr != nil {
		if errors.Is(outcome.PreviewErr, utils.ErrNotText) {
			fmt.Fprintln(out, "Report is not text, open the saved file to view it")
			return nil
		}
		fmt.Fprintf(out, "Warning: could not preview report: %v\n", outcome.PreviewErr)
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, outcome.Preview)
	return nil
}
