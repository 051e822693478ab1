package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/Permanence/internal/capture"
	"github.com/TobiSchelling/Permanence/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import notes from text, feeds or web pages",
}

var importPasteCmd = &cobra.Command{
	Use:   "paste [file|glob...]",
	Short: "Import U- prefixed lines from stdin or files",
	Long: `Import u-notes. Every line starting with "U-" becomes a note; the title
and content are guessed from the first separator and tags are inferred
from keywords. Arguments may be doublestar globs such as "notes/**/*.txt".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := importer.ReadInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		return runImport(cmd.Context(), importer.ParsePaste(text))
	},
}

var importManualCmd = &cobra.Command{
	Use:   "manual [file|glob...]",
	Short: `Import "Title | Content | tag1,tag2" lines from stdin or files`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := importer.ReadInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		return runImport(cmd.Context(), importer.ParseManual(text))
	},
}

var importFeedCmd = &cobra.Command{
	Use:   "feed [url...]",
	Short: "Import feed items as notes (default: configured feeds)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var feeds []capture.Feed
		for _, u := range args {
			feeds = append(feeds, capture.Feed{URL: u})
		}
		if len(feeds) == 0 {
			for _, f := range cfg.Capture.Feeds {
				feeds = append(feeds, capture.Feed{URL: f.URL, Name: f.Name})
			}
		}
		if len(feeds) == 0 {
			return fmt.Errorf("no feeds given and none configured")
		}

		fi := capture.NewFeedImporter(cfg.Capture.MaxItems, cfg.FetchTimeout())
		return runImport(cmd.Context(), fi.FetchAll(cmd.Context(), feeds))
	},
}

var clipTitle string

var importClipCmd = &cobra.Command{
	Use:   "clip [url]",
	Short: "Save the readable text of a web page as a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := capture.NewClipper(cfg.FetchTimeout()).Clip(cmd.Context(), args[0], clipTitle)
		if err != nil {
			return err
		}
		return runImport(cmd.Context(), []importer.Draft{draft})
	},
}

func init() {
	importClipCmd.Flags().StringVar(&clipTitle, "title", "", "Note title (default: from page text)")

	importCmd.AddCommand(importPasteCmd)
	importCmd.AddCommand(importManualCmd)
	importCmd.AddCommand(importFeedCmd)
	importCmd.AddCommand(importClipCmd)
}

func runImport(ctx context.Context, drafts []importer.Draft) error {
	if len(drafts) == 0 {
		fmt.Println("Nothing to import.")
		return nil
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	im := importer.New(db, func(p importer.Progress) {
		status := "ok"
		if p.Err != nil {
			status = "failed"
		}
		fmt.Printf("  [%d/%d] %-6s %s\n", p.Index, p.Total, status, truncate(p.Title, 60))
	})
	result, err := im.Import(ctx, drafts)
	if err != nil {
		return err
	}

	fmt.Printf("\nImported %d note(s)", result.Imported)
	if result.Failed > 0 {
		fmt.Printf(", %d failed", result.Failed)
	}
	fmt.Println()
	return nil
}
