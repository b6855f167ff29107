package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/server"
)

var copyCmd = &cobra.Command{
	Use:   "copy [page.html|-]",
	Short: "Capture a page's form data as a snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCopy,
}

var (
	copyURL    string
	copyRender bool
	copyOut    string
	copySave   string
)

func init() {
	copyCmd.Flags().StringVar(&copyURL, "url", "", "Fetch the page from a URL")
	copyCmd.Flags().BoolVar(&copyRender, "render", false, "Render the URL in headless Chrome first")
	copyCmd.Flags().StringVarP(&copyOut, "out", "o", "", "Write the snapshot here instead of stdout")
	copyCmd.Flags().StringVar(&copySave, "save", "", "Also keep the snapshot as a record under this identifier")

	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	src := pageSource{url: copyURL, render: copyRender}
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

	snap, err := engine.Clipboard.Copy(ctx, doc, copyURL)
	if err != nil {
		return err
	}
	if copySave != "" {
		rec, err := engine.Clipboard.Save(ctx, copySave, snap)
		if err != nil {
			return err
		}
		logger.Info("Saved record", zap.String("identifier", rec.Identifier), zap.String("id", rec.ID))
	}
	return writeJSON(cmd.OutOrStdout(), copyOut, snap)
}
