// Package main provides the citeline CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/citeline/internal/config"
	"github.com/matsen/citeline/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	logLevel    string
	logFormat   string
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citeline",
	Short: "Citation graph, timeline and publication counts for a PubMed corpus",
	Long: `citeline serves read-only views over a PubMed-derived article corpus:

  - a citation graph pruned to articles present in the corpus
  - a publication timeline with resolved dates and DOI links
  - yearly publication counts, optionally restricted by full-text search

Data is stored in git-versionable JSONL with ephemeral SQLite for queries.
All commands output JSON by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return setupLogging() },
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.Version = Version
}

// setupLogging configures the standard logrus logger from the global flags.
// Logs go to stderr so stdout stays machine-readable.
func setupLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	switch logFormat {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid --log-format: %s (valid: text, json)", logFormat)
	}
	return nil
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	cwd, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	repoRoot, err := config.ResolveRepository(cwd)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	db, err := openCorpus(repoRoot)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// openCorpus opens the query database, building it from JSONL when the
// cache has not been populated yet.
func openCorpus(repoRoot string) (*storage.DB, error) {
	dbPath := config.DBPath(repoRoot)
	_, statErr := os.Stat(dbPath)
	fresh := os.IsNotExist(statErr)

	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := storage.OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	if fresh {
		logrus.WithField("path", dbPath).Info("building query database")
		if _, err := rebuildDatabase(db, repoRoot); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// rebuildDatabase reloads articles and citations from JSONL.
func rebuildDatabase(db *storage.DB, repoRoot string) (RebuildResult, error) {
	articles, err := db.RebuildFromJSONL(config.ArticlesPath(repoRoot))
	if err != nil {
		return RebuildResult{}, fmt.Errorf("rebuilding articles: %w", err)
	}
	citations, err := db.RebuildCitationsFromJSONL(config.CitationsPath(repoRoot))
	if err != nil {
		return RebuildResult{}, fmt.Errorf("rebuilding citations: %w", err)
	}
	return RebuildResult{Status: "rebuilt", Articles: articles, Citations: citations}, nil
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}
