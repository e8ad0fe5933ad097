package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/matsen/citeline/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show corpus record counts and file sizes",
	RunE:  runInfo,
}

// FileInfo describes one repository file.
type FileInfo struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// InfoResult is the response for the info command.
type InfoResult struct {
	Root      string     `json:"root"`
	Articles  int        `json:"articles"`
	Citations int        `json:"citations"`
	Files     []FileInfo `json:"files"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	articles, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting articles: %v", err)
	}
	citations, err := db.CountCitations()
	if err != nil {
		exitWithError(ExitError, "counting citations: %v", err)
	}

	result := InfoResult{
		Root:      repoRoot,
		Articles:  articles,
		Citations: citations,
		Files:     []FileInfo{},
	}
	for _, path := range []string{
		config.ArticlesPath(repoRoot),
		config.CitationsPath(repoRoot),
		config.DBPath(repoRoot),
	} {
		var size int64
		if st, err := os.Stat(path); err == nil {
			size = st.Size()
		}
		result.Files = append(result.Files, FileInfo{Path: path, Size: size})
	}

	if humanOutput {
		fmt.Printf("Repository: %s\n\n", result.Root)
		fmt.Printf("Articles:  %s\n", humanize.Comma(int64(result.Articles)))
		fmt.Printf("Citations: %s\n\n", humanize.Comma(int64(result.Citations)))
		fmt.Println("Files:")
		for _, f := range result.Files {
			fmt.Printf("  %-60s %s\n", f.Path, humanize.Bytes(uint64(f.Size)))
		}
		return nil
	}

	outputJSON(result)
	return nil
}
