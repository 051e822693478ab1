package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/Permanence/internal/database"
	"github.com/TobiSchelling/Permanence/internal/refs"
)

// --- groups command ---

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage note groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		groups, err := db.GetAllGroups()
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No groups. Create one with: permanence groups create")
			return nil
		}

		r := refs.NewResolver(db)
		for _, g := range groups {
			front := "(no front card)"
			if n, err := r.FrontCard(&g); err != nil {
				return err
			} else if n != nil {
				front = n.DisplayTitle()
			}
			state := "forming"
			if g.IsPermanent {
				state = "permanent"
			}
			fmt.Printf("  %s %-9s %-40s %d supporting, %s\n", g.ShortID(), state, truncate(front, 40),
				len(g.SupportingCardIDs), humanize.Time(g.CreatedAt))
		}
		return nil
	},
}

var (
	groupPermanent  bool
	groupConfidence float64
)

var groupsCreateCmd = &cobra.Command{
	Use:   "create [front-note-id] [supporting-note-id...]",
	Short: "Create a group from a front card and supporting cards",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if groupConfidence < 0 || groupConfidence > 1 {
			return fmt.Errorf("confidence must be between 0 and 1")
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var members []*database.Note
		for _, arg := range args {
			n, err := findNote(db, arg)
			if err != nil {
				return err
			}
			members = append(members, n)
		}

		var supporting []database.NoteID
		for _, n := range members[1:] {
			supporting = append(supporting, n.ID)
		}
		g := database.NewGroup(&members[0].ID, supporting)
		g.IsPermanent = groupPermanent
		g.PermanenceConfidence = groupConfidence
		if groupPermanent {
			now := g.CreatedAt
			g.PermanenceDate = &now
		}
		if err := db.InsertGroup(g); err != nil {
			return err
		}
		for _, n := range members {
			if err := db.AssignNoteToGroup(n.ID, &g.ID); err != nil {
				return err
			}
		}
		fmt.Printf("Created group %s with %d note(s)\n", g.ShortID(), len(members))
		return nil
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete [group-id]",
	Short: "Delete a group (its notes are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		g, err := findGroup(db, args[0])
		if err != nil {
			return err
		}
		if _, err := db.DeleteGroups(g.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted group %s\n", g.ShortID())
		return nil
	},
}

var groupsAssignCmd = &cobra.Command{
	Use:   "assign [note-id] [group-id]",
	Short: "Add a note to a group as a supporting card",
	Args:  cobra.ExactArgs(2),
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
		g, err := findGroup(db, args[1])
		if err != nil {
			return err
		}

		isFront := g.FrontCardID != nil && *g.FrontCardID == n.ID
		if !isFront && !slices.Contains(g.SupportingCardIDs, n.ID) {
			g.SupportingCardIDs = append(g.SupportingCardIDs, n.ID)
			if err := db.UpdateGroup(g); err != nil {
				return err
			}
		}
		if err := db.AssignNoteToGroup(n.ID, &g.ID); err != nil {
			return err
		}
		fmt.Printf("Assigned %s to group %s\n", n.DisplayTitle(), g.ShortID())
		return nil
	},
}

func init() {
	groupsCreateCmd.Flags().BoolVar(&groupPermanent, "permanent", false, "Mark the group permanent")
	groupsCreateCmd.Flags().Float64Var(&groupConfidence, "confidence", 0, "Permanence confidence (0..1)")

	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsCreateCmd)
	groupsCmd.AddCommand(groupsDeleteCmd)
	groupsCmd.AddCommand(groupsAssignCmd)
}

func findGroup(db *database.DB, arg string) (*database.Group, error) {
	g, err := db.GetGroup(database.GroupID(arg))
	if err != nil || g != nil {
		return g, err
	}

	groups, err := db.GetAllGroups()
	if err != nil {
		return nil, err
	}
	var match *database.Group
	for i := range groups {
		if strings.HasPrefix(string(groups[i].ID), arg) {
			if match != nil {
				return nil, fmt.Errorf("group id %q is ambiguous", arg)
			}
			match = &groups[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("group %s not found", arg)
	}
	return match, nil
}

// --- topics command ---

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Manage topics",
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		topics, err := db.GetAllTopics()
		if err != nil {
			return err
		}
		if len(topics) == 0 {
			fmt.Println("No topics. Create one with: permanence topics create")
			return nil
		}
		for _, t := range topics {
			icon := " "
			if t.IsActive {
				icon = "*"
			}
			fmt.Printf("  %s %s %s (%d groups)\n", shortTopicID(t.ID), icon, t.Name, len(t.GroupIDs))
			if t.Description != "" {
				fmt.Printf("        %s\n", truncate(t.Description, 60))
			}
		}
		return nil
	},
}

var topicsCreateCmd = &cobra.Command{
	Use:   "create [name] [description]",
	Short: "Create a topic",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		t := database.NewTopic(args[0], description)
		if err := db.InsertTopic(t); err != nil {
			return err
		}
		fmt.Printf("Created topic %s: %s\n", shortTopicID(t.ID), t.Name)
		return nil
	},
}

var topicsDeleteCmd = &cobra.Command{
	Use:   "delete [topic-id]",
	Short: "Delete a topic (its groups are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		t, err := findTopic(db, args[0])
		if err != nil {
			return err
		}
		if _, err := db.DeleteTopics(t.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted topic %s\n", t.Name)
		return nil
	},
}

var topicsAddGroupCmd = &cobra.Command{
	Use:   "add-group [topic-id] [group-id]",
	Short: "Add a group to a topic",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		t, err := findTopic(db, args[0])
		if err != nil {
			return err
		}
		g, err := findGroup(db, args[1])
		if err != nil {
			return err
		}

		if !slices.Contains(t.GroupIDs, g.ID) {
			t.GroupIDs = append(t.GroupIDs, g.ID)
			if err := db.UpdateTopic(t); err != nil {
				return err
			}
		}
		g.TopicID = &t.ID
		if err := db.UpdateGroup(g); err != nil {
			return err
		}
		fmt.Printf("Added group %s to topic %s\n", g.ShortID(), t.Name)
		return nil
	},
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)
	topicsCmd.AddCommand(topicsCreateCmd)
	topicsCmd.AddCommand(topicsDeleteCmd)
	topicsCmd.AddCommand(topicsAddGroupCmd)
}

func findTopic(db *database.DB, arg string) (*database.Topic, error) {
	t, err := db.GetTopic(database.TopicID(arg))
	if err != nil || t != nil {
		return t, err
	}

	topics, err := db.GetAllTopics()
	if err != nil {
		return nil, err
	}
	var match *database.Topic
	for i := range topics {
		if strings.HasPrefix(string(topics[i].ID), arg) || strings.EqualFold(topics[i].Name, arg) {
			if match != nil {
				return nil, fmt.Errorf("topic %q is ambiguous", arg)
			}
			match = &topics[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("topic %s not found", arg)
	}
	return match, nil
}

func shortTopicID(id database.TopicID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}
