package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/matsen/citeline/internal/config"
	"github.com/matsen/citeline/internal/edge"
	"github.com/matsen/citeline/internal/reference"
	"github.com/matsen/citeline/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify repository integrity",
	Long: `Verify repository integrity without modifying anything.

Reports citation edges whose source or citing article is missing from the
corpus (these are pruned from the citation graph), duplicate citation
records, and a query database that is out of date with the JSONL files.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status    string       `json:"status"`
	Articles  int          `json:"articles"`
	Citations int          `json:"citations"`
	Valid     PruneCount   `json:"valid"`
	Issues    []CheckIssue `json:"issues"`
}

// PruneCount counts what survives pruning to corpus articles.
type PruneCount struct {
	Citations int `json:"citations"` // Records whose source article exists
	Links     int `json:"links"`     // Cited-by ids that resolve
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type     string `json:"type"`
	PMID     string `json:"pmid,omitempty"`
	CitingID string `json:"citing_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	articles, err := storage.ReadAllArticles(config.ArticlesPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading articles: %v", err)
	}
	edges, err := storage.ReadAllCitations(config.CitationsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading citations: %v", err)
	}

	issues, valid := checkCorpus(articles, edges)

	if _, err := os.Stat(config.DBPath(repoRoot)); err == nil {
		db := mustOpenDatabase(repoRoot)
		stored, err := db.AllPMIDs(context.Background())
		db.Close()
		if err != nil {
			exitWithError(ExitError, "reading database: %v", err)
		}
		if reason := staleReason(articles, stored); reason != "" {
			issues = append(issues, CheckIssue{Type: "stale_database", Reason: reason})
		}
	}

	status := "ok"
	if len(issues) > 0 {
		status = "issues"
	}

	if humanOutput {
		if len(issues) == 0 {
			fmt.Printf("Repository check: OK\n\n%d articles, %d citation records checked\n", len(articles), len(edges))
			fmt.Printf("%d citation records and %d links survive pruning\n", valid.Citations, valid.Links)
			return nil
		}
		fmt.Printf("Repository check: %d issues found\n\n", len(issues))
		for _, issue := range issues {
			switch issue.Type {
			case "orphaned_edge":
				if issue.CitingID != "" {
					fmt.Printf("  [WARN] Orphaned edge: %s cited by %s (%s)\n", issue.PMID, issue.CitingID, issue.Reason)
				} else {
					fmt.Printf("  [WARN] Orphaned edge: %s (%s)\n", issue.PMID, issue.Reason)
				}
			case "duplicate_citation":
				fmt.Printf("  [WARN] Duplicate citation record: %s (%s)\n", issue.PMID, issue.Reason)
			case "stale_database":
				fmt.Printf("  [WARN] Query database out of date: %s (run 'citeline rebuild')\n", issue.Reason)
			}
		}
		fmt.Printf("\n%d articles, %d citation records checked\n", len(articles), len(edges))
		fmt.Printf("%d citation records and %d links survive pruning\n", valid.Citations, valid.Links)
		return nil
	}

	outputJSON(CheckResult{
		Status:    status,
		Articles:  len(articles),
		Citations: len(edges),
		Valid:     valid,
		Issues:    issues,
	})
	return nil
}

// checkCorpus reports orphaned and duplicate citation edges and counts the
// edges left after pruning. The issue list is never nil.
func checkCorpus(articles []reference.Article, edges []edge.Citation) ([]CheckIssue, PruneCount) {
	validIDs := make(map[string]bool, len(articles))
	for _, a := range articles {
		validIDs[a.PMID] = true
	}

	issues := []CheckIssue{}
	orphaned, valid := edge.DetectOrphanedEdges(edges, validIDs)
	count := PruneCount{Citations: len(valid)}
	for _, c := range valid {
		count.Links += len(c.CitedBy)
	}
	for _, o := range orphaned {
		issues = append(issues, CheckIssue{
			Type:     "orphaned_edge",
			PMID:     o.PMID,
			CitingID: o.CitingID,
			Reason:   o.Reason,
		})
	}

	duplicates := edge.FindDuplicateEdges(edges)
	pmids := make([]string, 0, len(duplicates))
	for pmid := range duplicates {
		pmids = append(pmids, pmid)
	}
	sort.Strings(pmids)
	for _, pmid := range pmids {
		issues = append(issues, CheckIssue{
			Type:   "duplicate_citation",
			PMID:   pmid,
			Reason: fmt.Sprintf("count=%d", duplicates[pmid]),
		})
	}
	return issues, count
}

// staleReason compares the JSONL articles with the ids in the database and
// describes the first difference found, or returns "".
func staleReason(articles []reference.Article, stored map[string]bool) string {
	if len(articles) != len(stored) {
		return fmt.Sprintf("%d articles in JSONL, %d in database", len(articles), len(stored))
	}
	for _, a := range articles {
		if !stored[a.PMID] {
			return fmt.Sprintf("article %s missing from database", a.PMID)
		}
	}
	return ""
}
