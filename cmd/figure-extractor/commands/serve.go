package commands

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/figure-extractor/internal/export"
	"github.com/ironsheep/figure-extractor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve <pdf> <output-dir>",
	Short: "Run the annotation session as an MCP server over stdio",
	Long: `Open a PDF and serve one figure extraction session over stdin/stdout using
JSON-RPC 2.0 (MCP tools). Logs go to stderr.`,
	Args: cobra.ExactArgs(2),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	srv, err := server.New(server.Options{
		Renderer:   doc,
		OutputDir:  args[1],
		DisplayDPI: cfg.Render.DisplayDPI,
		Export: export.Exporter{
			DPI:          cfg.Export.DPI,
			ManifestName: cfg.Export.ManifestName,
			Grayscale:    cfg.Export.Grayscale,
			Scale:        cfg.Export.Scale,
		},
		Detection: blockOptions(),
		Logger:    log,
		Version:   version,
	})
	if err != nil {
		return err
	}

	return srv.Run()
}
