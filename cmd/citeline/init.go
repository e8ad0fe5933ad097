package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/citeline/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Initialize a new citeline repository",
	Long: `Initialize a new citeline repository in the given directory
(default: current directory).

Creates:
  .citeline/
  ├── articles.jsonl   # Empty file
  ├── citations.jsonl  # Empty file
  ├── config.json      # Default config
  └── cache/           # Query database (gitignored)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(config.ExpandPath(root))
	if err != nil {
		exitWithError(ExitError, "resolving path: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a citeline repository")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating %s directory: %v", config.CiteDir, err)
	}

	for _, path := range []string{config.ArticlesPath(root), config.CitationsPath(root)} {
		f, err := os.Create(path)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", filepath.Base(path), err)
		}
		f.Close()
	}

	if err := os.WriteFile(filepath.Join(config.CitePath(root), ".gitignore"), []byte(config.CacheDir+"/\n"), 0644); err != nil {
		exitWithError(ExitError, "creating .gitignore: %v", err)
	}

	if err := config.Default().Save(root); err != nil {
		exitWithError(ExitError, "creating config.json: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized citeline repository in %s\n", root)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: root})
	}
	return nil
}
