package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/Permanence/internal/config"
	"github.com/TobiSchelling/Permanence/internal/database"
	"github.com/TobiSchelling/Permanence/internal/refs"
	"github.com/TobiSchelling/Permanence/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "permanence",
	Short:   "Capture notes and grow them into permanent knowledge",
	Long:    "Permanence stores notes, imports them in bulk, and organizes them into groups and topics through pairwise comparison sessions.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			setLogFlags("")
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		setLogFlags(cfg.Logging.Level)
		return nil
	},
}

func setLogFlags(level string) {
	if verbose || strings.EqualFold(level, "DEBUG") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(clearCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("permanence", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/permanence/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, the data directory, and the export directory.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
		schema, err := db.SchemaVersion()
		if err != nil {
			return err
		}

		fmt.Printf("Database: %s (schema v%d)\n\n", db.Path(), schema)
		fmt.Println("Notes:")
		fmt.Printf("  Total: %s\n", humanize.Comma(int64(stats.Notes)))
		fmt.Printf("  Ranked: %d (%.0f%%)\n", stats.RankedNotes, stats.RankedFraction()*100)
		fmt.Printf("  U-notes: %d\n", stats.UNotes)
		fmt.Printf("  Drawings: %d\n", stats.DrawingNotes)
		fmt.Printf("  In groups: %d\n", stats.GroupedNotes)
		fmt.Println("\nOrganization:")
		fmt.Printf("  Groups: %d (%d permanent)\n", stats.Groups, stats.Permanent)
		fmt.Printf("  Topics: %d (%d active)\n", stats.Topics, stats.ActiveTopics)
		fmt.Println("\nComparisons:")
		fmt.Printf("  Total: %d\n", stats.Comparisons)
		fmt.Printf("  Sessions: %d (%d open)\n", stats.Sessions, stats.OpenSessions)
		return nil
	},
}

// --- check command ---

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report references to notes, groups or topics that no longer exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		dangling, err := refs.Check(cmd.Context(), db)
		if err != nil {
			return err
		}
		if len(dangling) == 0 {
			fmt.Println("All references resolve.")
			return nil
		}

		fmt.Printf("%d dangling reference(s):\n", len(dangling))
		for _, d := range dangling {
			fmt.Printf("  %s\n", d)
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on (overrides config)")
}

// --- clear command ---

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all notes, groups, topics, comparisons and sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if !clearYes {
			ok, err := confirm(cmd.InOrStdin(), fmt.Sprintf("Delete ALL data in %s? [y/N]: ", db.Path()))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("aborted")
			}
		}

		if err := db.ClearAll(); err != nil {
			return fmt.Errorf("clearing data: %w", err)
		}
		fmt.Println("All data deleted.")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
}

func confirm(in io.Reader, prompt string) (bool, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(cfg.DatabasePath())
}
