package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/Permanence/internal/database"
	"github.com/TobiSchelling/Permanence/internal/export"
	"github.com/TobiSchelling/Permanence/internal/session"
)

// --- session command ---

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Run pairwise comparison sessions",
}

var sessionType string

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a comparison session",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		s, err := session.NewTracker(db).Start(sessionType)
		if err != nil {
			return err
		}
		fmt.Printf("Started %s session [%d]\n", s.SessionType, s.ID)
		return nil
	},
}

var sessionCompareCmd = &cobra.Command{
	Use:   "compare [session-id] [note-a] [note-b] [chosen]",
	Short: "Record which of two notes is better",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args[0])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var notes [3]*database.Note
		for i, arg := range args[1:] {
			if notes[i], err = findNote(db, arg); err != nil {
				return err
			}
		}

		c, err := session.NewTracker(db).Record(id, notes[0].ID, notes[1].ID, notes[2].ID)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded comparison [%d]: %s preferred\n", c.ID, notes[2].DisplayTitle())
		return nil
	},
}

var sessionCompleteCmd = &cobra.Command{
	Use:   "complete [session-id]",
	Short: "Complete a comparison session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSessionID(args[0])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		s, err := session.NewTracker(db).Complete(id)
		if err != nil {
			return err
		}
		fmt.Printf("Completed session [%d] after %d comparison(s)\n", s.ID, s.ComparisonsCount)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sessions, err := db.GetAllSessions()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions. Start one with: permanence session start")
			return nil
		}
		for _, s := range sessions {
			state := "open"
			if s.IsComplete {
				state = "complete"
			}
			fmt.Printf("  [%d] %-10s %-8s %3d comparisons  started %s\n",
				s.ID, s.SessionType, state, s.ComparisonsCount, humanize.Time(s.StartDate))
		}
		return nil
	},
}

func init() {
	sessionStartCmd.Flags().StringVarP(&sessionType, "type", "t", database.DefaultSessionType, "Session type")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionCompareCmd)
	sessionCmd.AddCommand(sessionCompleteCmd)
	sessionCmd.AddCommand(sessionListCmd)
}

func parseSessionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid session ID: %s", arg)
	}
	return id, nil
}

// --- export command ---

var (
	exportDir string
	exportTag string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write notes as Markdown files with YAML front matter",
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
		if exportTag != "" {
			notes = database.FilterByTag(notes, exportTag)
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.GetExportDir()
		}
		res, err := export.Notes(dir, notes)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d note(s) to %s\n", len(res.Files), res.Dir)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", "", "Target directory (overrides config)")
	exportCmd.Flags().StringVarP(&exportTag, "tag", "t", "", "Only notes with this tag")
}
