package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/figure-extractor/internal/document"
	"github.com/ironsheep/figure-extractor/internal/export"
)

var (
	exportDPI        float64
	exportGrayscale  bool
	exportNoProgress bool
)

var exportCmd = &cobra.Command{
	Use:   "export <pdf> <events.yaml> <output-dir>",
	Short: "Replay a selection script and export the resulting figures",
	Long: `Replay a YAML list of session events headlessly and export every committed
region. Coordinates in the script are pixels of pages rendered at the display
resolution.

Example script:

  - {event: drag, x: 100, y: 100, x2: 400, y2: 400}
  - {event: commit, as: figure}
  - {event: set_mode, mode: detailed}
  - {event: next_page}
  - {event: drag, x: 50, y: 50, x2: 900, y2: 700}
  - {event: commit, as: full}`,
	Args: cobra.ExactArgs(3),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Float64Var(&exportDPI, "dpi", 0, "export resolution (default from config)")
	exportCmd.Flags().BoolVar(&exportGrayscale, "grayscale", false, "export grayscale images")
	exportCmd.Flags().BoolVar(&exportNoProgress, "no-progress", false, "do not draw a progress bar on stderr")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	cache := document.NewCache(doc)
	sess, err := startSession(cache, cfg.Render.DisplayDPI)
	if err != nil {
		return err
	}
	if err := replayScript(sess, cache, cfg.Render.DisplayDPI, args[1]); err != nil {
		return err
	}

	regions, err := sess.BeginExport()
	if err != nil {
		return err
	}

	exp := &export.Exporter{
		Renderer:     doc,
		DPI:          cfg.Export.DPI,
		ManifestName: cfg.Export.ManifestName,
		Grayscale:    cfg.Export.Grayscale || exportGrayscale,
		Scale:        cfg.Export.Scale,
		Logger:       log,
	}
	if cmd.Flags().Changed("dpi") {
		exp.DPI = exportDPI
	}
	if !exportNoProgress && len(regions) > 0 {
		bar := newProgressBar(len(regions), "exporting")
		exp.Progress = func(done, total int) {
			_ = bar.Set(done)
		}
	}

	res, err := exp.Export(ctx, regions, args[2])
	sess.EndExport(err == nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range res.Manifest.Figures {
		success(out, "%s\tpage %d\t[%g %g %g %g]", e.Filename, e.Page, e.BBox[0], e.BBox[1], e.BBox[2], e.BBox[3])
	}
	for _, s := range res.Skipped {
		warning(out, "skipped %s: %s", s.Region.Label(), s.Reason)
	}
	info(out, "manifest: %s", res.ManifestPath)
	return nil
}
