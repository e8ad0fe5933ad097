package main

import (
	"fmt"

	"github.com/matsen/citeline/internal/config"
	"github.com/matsen/citeline/internal/edge"
	"github.com/matsen/citeline/internal/importer"
	"github.com/matsen/citeline/internal/reference"
	"github.com/matsen/citeline/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	importFormat     string
	importDryRun     bool
	importMaxRetries int
)

func init() {
	importArticlesCmd.Flags().StringVar(&importFormat, "format", string(importer.FormatAuto), "Input format (auto, flat, medline)")
	importCmd.PersistentFlags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	importCmd.PersistentFlags().IntVar(&importMaxRetries, "max-retries", importer.DefaultMaxRetries, "Retries for URL downloads")
	importCmd.AddCommand(importArticlesCmd)
	importCmd.AddCommand(importCitationsCmd)
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import articles or citation edges into the corpus",
	Long: `Import articles or citation edges from a JSONL file or http(s) URL.

Sources ending in .gz or .zst are decompressed. Records are merged into the
corpus by PMID (existing records are replaced) and the query database is
rebuilt.

Usage:
  citeline import articles pubmed.jsonl.gz
  citeline import articles --format medline https://example.org/articles.jsonl
  citeline import citations citations.jsonl --dry-run`,
}

var importArticlesCmd = &cobra.Command{
	Use:   "articles <file-or-url>",
	Short: "Import articles",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportArticles,
}

var importCitationsCmd = &cobra.Command{
	Use:   "citations <file-or-url>",
	Short: "Import citation edges ({\"PMID\", \"citedby\"} records)",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportCitations,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	New     int      `json:"new"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Total   int      `json:"total"`
	DryRun  bool     `json:"dry_run,omitempty"`
	Errors  []string `json:"errors"`
}

func runImportArticles(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	format, err := importer.ParseFormat(importFormat)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	incoming, parseErrors := readArticleSource(args[0], format)
	if len(parseErrors) > 0 && len(incoming) == 0 {
		exitWithError(ExitDataError, "failed to parse any articles: %v", parseErrors[0])
	}

	articlesPath := config.ArticlesPath(repoRoot)
	existing, err := storage.ReadAllArticles(articlesPath)
	if err != nil {
		exitWithError(ExitDataError, "reading existing articles: %v", err)
	}

	merged, merge := storage.MergeArticles(existing, incoming)
	result := ImportResult{
		New:     merge.Added,
		Updated: merge.Updated,
		Skipped: len(parseErrors),
		Total:   len(merged),
		DryRun:  importDryRun,
		Errors:  errorsToStrings(parseErrors),
	}

	if !importDryRun {
		if err := storage.WriteAllArticles(articlesPath, merged); err != nil {
			exitWithError(ExitError, "writing articles: %v", err)
		}
		mustRebuildAfterImport(repoRoot)
	}

	reportImport("articles", result)
	return nil
}

func runImportCitations(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	incoming := readCitationSource(args[0])

	citationsPath := config.CitationsPath(repoRoot)
	existing, err := storage.ReadAllCitations(citationsPath)
	if err != nil {
		exitWithError(ExitDataError, "reading existing citations: %v", err)
	}

	merged, merge := storage.MergeCitations(existing, incoming)
	result := ImportResult{
		New:     merge.Added,
		Updated: merge.Updated,
		Total:   len(merged),
		DryRun:  importDryRun,
		Errors:  []string{},
	}

	if !importDryRun {
		if err := storage.WriteAllCitations(citationsPath, merged); err != nil {
			exitWithError(ExitError, "writing citations: %v", err)
		}
		mustRebuildAfterImport(repoRoot)
	}

	reportImport("citation edges", result)
	return nil
}

// readArticleSource opens and parses an article dump. Per-record errors are
// returned; an unreadable source exits.
func readArticleSource(location string, format importer.Format) ([]reference.Article, []error) {
	rc, err := importer.Open(location, importer.NewHTTPClient(importMaxRetries, importer.DefaultTimeout))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer rc.Close()

	articles, errs := importer.ParseArticles(rc, format)
	logrus.WithFields(logrus.Fields{
		"source":   location,
		"format":   format,
		"articles": len(articles),
		"errors":   len(errs),
	}).Debug("parsed article source")
	return articles, errs
}

// readCitationSource opens and parses citation edges. Edges are validated
// fail-fast, so any malformed record exits.
func readCitationSource(location string) []edge.Citation {
	rc, err := importer.Open(location, importer.NewHTTPClient(importMaxRetries, importer.DefaultTimeout))
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer rc.Close()

	edges, err := storage.ReadCitations(rc)
	if err != nil {
		exitWithError(ExitDataError, "reading citations: %v", err)
	}
	return edges
}

func mustRebuildAfterImport(repoRoot string) {
	if _, err := rebuildRepository(repoRoot); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
}

func reportImport(kind string, result ImportResult) {
	if !humanOutput {
		outputJSON(result)
		return
	}

	verb := "Imported"
	if result.DryRun {
		verb = "Would import"
	}
	fmt.Printf("%s %s: %d new, %d updated, %d skipped (%d total)\n",
		verb, kind, result.New, result.Updated, result.Skipped, result.Total)
	for _, e := range result.Errors {
		fmt.Printf("  [WARN] %s\n", e)
	}
}
