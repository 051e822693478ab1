package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/Permanence/internal/database"
	"github.com/TobiSchelling/Permanence/internal/drawing"
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List, add and remove notes",
}

var (
	listTag     string
	listByScore bool
)

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		notes, err := db.GetAllNotes()
		if err != nil {
			return err
		}
		if listTag != "" {
			notes = database.FilterByTag(notes, listTag)
		}
		if listByScore {
			notes = database.SortByQuality(notes)
		}

		if len(notes) == 0 {
			fmt.Println("No notes. Add one with: permanence notes add")
			return nil
		}
		for i := range notes {
			printNoteLine(&notes[i])
		}
		return nil
	},
}

func printNoteLine(n *database.Note) {
	marker := " "
	if n.HasDrawing() {
		marker = "✎"
	}
	fmt.Printf("  %s %s %-40s %5.2f  %s\n", shortNoteID(n.ID), marker, truncate(n.DisplayTitle(), 40),
		n.QualityScore, strings.Join(n.Tags, ","))
}

var notesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := findNote(db, args[0])
		if err != nil {
			return err
		}

		fmt.Println(n.DisplayTitle())
		fmt.Println(strings.Repeat("=", len([]rune(n.DisplayTitle()))))
		fmt.Printf("ID:       %s\n", n.ID)
		fmt.Printf("Tags:     %s\n", strings.Join(n.Tags, ", "))
		fmt.Printf("Score:    %.2f\n", n.QualityScore)
		fmt.Printf("Created:  %s\n", humanize.Time(n.CreatedAt))
		fmt.Printf("Modified: %s\n", humanize.Time(n.LastModified))
		if n.GroupID != nil {
			fmt.Printf("Group:    %s\n", *n.GroupID)
		}
		if strokes := n.Drawing(); strokes != nil {
			points := 0
			for _, s := range strokes {
				points += len(s.Points)
			}
			fmt.Printf("Drawing:  %d stroke(s), %d point(s)\n", len(strokes), points)
		} else if n.IsDrawingNote() {
			fmt.Println("Drawing:  unreadable")
		}
		if text := n.TextContent(); text != "" {
			fmt.Printf("\n%s\n", text)
		}
		return nil
	},
}

var addTags []string

var notesAddCmd = &cobra.Command{
	Use:   "add [title] [content]",
	Short: "Add a note",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		content := ""
		if len(args) > 1 {
			content = args[1]
		}
		n := database.NewNote(args[0], content, cleanTags(addTags))
		if err := db.InsertNote(n); err != nil {
			return err
		}
		fmt.Printf("Added note %s: %s\n", shortNoteID(n.ID), n.Title)
		return nil
	},
}

var (
	drawFile    string
	drawCaption string
)

var notesDrawCmd = &cobra.Command{
	Use:   "draw [title]",
	Short: "Add a drawing note from a JSON stroke list",
	Long: `Add a drawing note. Strokes are read as JSON from --file or stdin:

  [{"points":[{"x":10,"y":10},{"x":50,"y":80}],"color":"blue","lineWidth":3}]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if drawFile != "" && drawFile != "-" {
			f, err := os.Open(drawFile)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		var strokes []drawing.Stroke
		if err := json.NewDecoder(in).Decode(&strokes); err != nil {
			return fmt.Errorf("reading strokes: %w", err)
		}
		if len(strokes) == 0 {
			return fmt.Errorf("no strokes given")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := database.NewDrawingNote(args[0], drawCaption, cleanTags(addTags), strokes)
		if err != nil {
			return err
		}
		if err := db.InsertNote(n); err != nil {
			return err
		}
		fmt.Printf("Added drawing %s: %s (%d strokes)\n", shortNoteID(n.ID), n.Title, len(strokes))
		return nil
	},
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete notes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var ids []database.NoteID
		for _, arg := range args {
			n, err := findNote(db, arg)
			if err != nil {
				return err
			}
			ids = append(ids, n.ID)
		}
		deleted, err := db.DeleteNotes(ids...)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d note(s)\n", deleted)
		return nil
	},
}

var purgeTag string

var notesPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every note carrying a tag (default: u-notes)",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		deleted, err := db.DeleteNotesWithTag(purgeTag)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d note(s) tagged %q\n", deleted, purgeTag)
		return nil
	},
}

var notesScoreCmd = &cobra.Command{
	Use:   "score [id] [score]",
	Short: "Set a note's quality score",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid score: %s", args[1])
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := findNote(db, args[0])
		if err != nil {
			return err
		}
		if err := db.SetQualityScore(n.ID, score); err != nil {
			return err
		}
		fmt.Printf("Score of %s set to %.2f\n", n.DisplayTitle(), score)
		return nil
	},
}

func init() {
	notesListCmd.Flags().StringVarP(&listTag, "tag", "t", "", "Only notes with this tag")
	notesListCmd.Flags().BoolVarP(&listByScore, "sort", "s", false, "Sort by quality score, highest first")
	notesAddCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "Tag to add (repeatable)")
	notesDrawCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "Extra tag to add (repeatable)")
	notesDrawCmd.Flags().StringVarP(&drawFile, "file", "f", "", "JSON stroke file (default stdin)")
	notesDrawCmd.Flags().StringVar(&drawCaption, "caption", "", "Text stored with the drawing")
	notesPurgeCmd.Flags().StringVarP(&purgeTag, "tag", "t", database.TagUNotes, "Tag to purge")

	notesCmd.AddCommand(notesListCmd)
	notesCmd.AddCommand(notesShowCmd)
	notesCmd.AddCommand(notesAddCmd)
	notesCmd.AddCommand(notesDrawCmd)
	notesCmd.AddCommand(notesDeleteCmd)
	notesCmd.AddCommand(notesPurgeCmd)
	notesCmd.AddCommand(notesScoreCmd)
}

// findNote looks a note up by full id or unique id prefix.
func findNote(db *database.DB, arg string) (*database.Note, error) {
	n, err := db.GetNote(database.NoteID(arg))
	if err != nil || n != nil {
		return n, err
	}

	notes, err := db.GetAllNotes()
	if err != nil {
		return nil, err
	}
	var match *database.Note
	for i := range notes {
		if strings.HasPrefix(string(notes[i].ID), arg) {
			if match != nil {
				return nil, fmt.Errorf("note id %q is ambiguous", arg)
			}
			match = &notes[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("note %s not found", arg)
	}
	return match, nil
}

func shortNoteID(id database.NoteID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
