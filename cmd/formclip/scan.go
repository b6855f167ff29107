package main

import (
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/formclip/internal/providers/scraper"
)

var scanCmd = &cobra.Command{
	Use:   "scan [page.html|-]",
	Short: "List the form fields of a page",
	Long:  "Scan a page for form fields. Extract mode lists filled fields grouped into entities; target mode lists every control that can receive a value.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

var (
	scanURL    string
	scanRender bool
	scanMode   string
	scanOut    string
)

func init() {
	scanCmd.Flags().StringVar(&scanURL, "url", "", "Fetch the page from a URL")
	scanCmd.Flags().BoolVar(&scanRender, "render", false, "Render the URL in headless Chrome first")
	scanCmd.Flags().StringVar(&scanMode, "mode", "extract", "extract or target")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "Write JSON here instead of stdout")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	mode, err := scraper.ParseMode(scanMode)
	if err != nil {
		return err
	}
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	src := pageSource{url: scanURL, render: scanRender}
	if len(args) == 1 {
		src.path = args[0]
	}
	doc, err := src.load(cmd.Context(), cfg, cmd.InOrStdin())
	if err != nil {
		return err
	}

	scr := scraper.NewProvider(nil, logger.Component("scanner"))
	fields, err := scr.Scanner().Scan(doc, mode)
	if err != nil {
		return err
	}

	out := map[string]interface{}{
		"mode":   mode.String(),
		"count":  len(fields),
		"fields": fields,
	}
	if mode == scraper.ModeExtract {
		out["entities"] = scr.Grouper().Group(fields)
	}
	return writeJSON(cmd.OutOrStdout(), scanOut, out)
}
