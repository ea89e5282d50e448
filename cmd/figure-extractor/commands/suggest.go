package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ironsheep/figure-extractor/internal/detection"
)

var (
	suggestPage        int
	suggestMax         int
	suggestExcludeText bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <pdf>",
	Short: "Print candidate figure regions found on a page as JSON",
	Long: `Detect separated blocks of content on a page rendered at the display
resolution and print their pixel bounds. The bounds can be used directly as
drag coordinates in an export script.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestPage, "page", "p", 0, "zero-based page index")
	suggestCmd.Flags().IntVar(&suggestMax, "max", 0, "maximum number of regions (0 = all)")
	suggestCmd.Flags().BoolVar(&suggestExcludeText, "exclude-text", false, "drop blocks that look like running text")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	doc, err := openDocument(args[0])
	if err != nil {
		return err
	}
	defer doc.Close()

	page, err := doc.RenderPage(suggestPage, cfg.Render.DisplayDPI)
	if err != nil {
		return err
	}

	opts := blockOptions()
	opts.MaxBlocks = suggestMax
	if suggestExcludeText {
		opts.ExcludeText = true
	}
	found, err := detection.DetectBlocks(page.Image, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"page":    suggestPage,
		"surface": page.Size(),
		"blocks":  found.Blocks,
		"count":   found.Count,
	})
}
