package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/server"
	"github.com/GriffinCanCode/formclip/internal/shared/types"
)

var fillCmd = &cobra.Command{
	Use:   "fill [page.html|-]",
	Short: "Fill a page from a snapshot",
	Long:  "Fill the form fields of a page from a snapshot file, or from the current clipboard when CLIPBOARD_DIR is set. The filled page goes to --out (stdout by default) and the outcome to --outcome (stderr by default).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFill,
}

// ErrFillIncomplete is returned when some mapped fields could not be set.
var ErrFillIncomplete = errors.New("some fields were not filled")

var (
	fillURL      string
	fillRender   bool
	fillSnapshot string
	fillOut      string
	fillOutcome  string
	fillPlan     bool
)

func init() {
	fillCmd.Flags().StringVar(&fillURL, "url", "", "Fetch the page from a URL")
	fillCmd.Flags().BoolVar(&fillRender, "render", false, "Render the URL in headless Chrome first")
	fillCmd.Flags().StringVarP(&fillSnapshot, "snapshot", "s", "", "Snapshot file written by copy")
	fillCmd.Flags().StringVarP(&fillOut, "out", "o", "", "Write the filled page here instead of stdout")
	fillCmd.Flags().StringVar(&fillOutcome, "outcome", "", "Write the outcome JSON here instead of stderr")
	fillCmd.Flags().BoolVar(&fillPlan, "plan", false, "Print the field mappings without filling")

	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	var snap *types.ClipboardSnapshot
	if fillSnapshot != "" {
		if snap, err = readSnapshot(fillSnapshot); err != nil {
			return err
		}
	}

	src := pageSource{url: fillURL, render: fillRender}
	if len(args) == 1 {
		src.path = args[0]
	}
	ctx := cmd.Context()
	doc, err := src.load(ctx, cfg, cmd.InOrStdin())
	if err != nil {
		return err
	}

	engine, err := server.NewEngine(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer engine.Close()

	if fillPlan {
		mappings, err := engine.Clipboard.Plan(ctx, doc, snap)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), fillOut, mappings)
	}

	outcome, err := engine.Clipboard.Paste(ctx, doc, snap)
	if err != nil {
		return err
	}
	filled, err := doc.HTML()
	if err != nil {
		return err
	}
	if err := writeOut(cmd.OutOrStdout(), fillOut, []byte(filled)); err != nil {
		return err
	}
	if err := writeJSON(cmd.ErrOrStderr(), fillOutcome, outcome); err != nil {
		return err
	}
	if !outcome.Success {
		return fmt.Errorf("%w: %d of %d", ErrFillIncomplete, outcome.FilledFields, outcome.TotalFields)
	}
	return nil
}
