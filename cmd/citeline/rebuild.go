package main

import (
	"fmt"
	"os"

	"github.com/matsen/citeline/internal/config"
	"github.com/matsen/citeline/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from source data",
	Long: `Rebuild the SQLite query database from the JSONL source files.

Use this after pulling changes from git or if the database becomes corrupted.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status    string `json:"status"`
	Articles  int    `json:"articles"`
	Citations int    `json:"citations"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	result, err := rebuildRepository(repoRoot)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d articles and %d citation edges\n", result.Articles, result.Citations)
	} else {
		outputJSON(result)
	}
	return nil
}

// rebuildRepository opens the query database without the fresh-cache build
// of openCorpus and rebuilds it from JSONL exactly once.
func rebuildRepository(repoRoot string) (RebuildResult, error) {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		return RebuildResult{}, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		return RebuildResult{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return rebuildDatabase(db, repoRoot)
}
