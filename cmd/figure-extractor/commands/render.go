package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/imaging"
	"github.com/ironsheep/figure-extractor/internal/server"
)

var (
	renderPage    int
	renderOut     string
	renderDPI     float64
	renderOverlay string
)

var renderCmd = &cobra.Command{
	Use:   "render <pdf>",
	Short: "Render one page to PNG, optionally with selections drawn on it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().IntVarP(&renderPage, "page", "p", 0, "zero-based page index")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "output PNG path (required)")
	renderCmd.Flags().Float64Var(&renderDPI, "dpi", 0, "render resolution (default display_dpi from config)")
	renderCmd.Flags().StringVar(&renderOverlay, "overlay", "", "event script whose regions are drawn on the page")
	renderCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	dpi := cfg.Render.DisplayDPI
	if renderDPI > 0 {
		dpi = renderDPI
	}

	cache := document.NewCache(doc)
	page, err := cache.RenderPage(renderPage, dpi)
	if err != nil {
		return err
	}

	out := page.Image
	if renderOverlay != "" {
		sess, err := startSession(cache, dpi)
		if err != nil {
			return err
		}
		if err := replayScript(sess, cache, dpi, renderOverlay); err != nil {
			return err
		}
		out = server.RenderPreview(page, sess.Snapshot())
	}

	if err := imaging.SavePNG(out, renderOut); err != nil {
		return err
	}
	log.Info().Int("page", renderPage+1).Float64("dpi", dpi).Str("file", renderOut).Msg("page rendered")
	fmt.Fprintln(cmd.OutOrStdout(), renderOut)
	return nil
}
