package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/matsen/citeline/internal/normalize"
	"github.com/matsen/citeline/internal/server"
	"github.com/matsen/citeline/internal/views"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	viewSearch        string
	timelineAbstracts bool
)

func init() {
	timelineCmd.Flags().StringVar(&viewSearch, "search", "", "Full-text search over titles and abstracts")
	timelineCmd.Flags().BoolVar(&timelineAbstracts, "abstracts", false, "Include abstracts in --human output")
	timeseriesCmd.Flags().StringVar(&viewSearch, "search", "", "Full-text search over titles and abstracts")
	rootCmd.AddCommand(citationsCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(timeseriesCmd)
}

var citationsCmd = &cobra.Command{
	Use:   "citations",
	Short: "Print the citation graph",
	Long: `Print the citation graph: for every cited article in the corpus, its title,
publication year, DOI link and the corpus articles citing it. Edges whose
source article is missing are dropped, as are citing ids not in the corpus.`,
	Args: cobra.NoArgs,
	RunE: runCitations,
}

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the publication timeline",
	Long: `Print the publication timeline document served at /api/publications.
Articles without a publication year are omitted.`,
	Args: cobra.NoArgs,
	RunE: runTimeline,
}

var timeseriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Print yearly publication counts",
	Long: `Print yearly publication counts keyed by year-end timestamps, e.g.
{"2016-12-31T00:00:00.000Z": 42}. Years without publications are omitted.`,
	Args: cobra.NoArgs,
	RunE: runTimeSeries,
}

// withService opens the corpus, runs fn with a views service and closes the
// database again.
func withService(fn func(svc *views.Service, repoRoot string) error) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()
	return fn(views.NewService(db, logrus.StandardLogger()), repoRoot)
}

// exitOnViewError maps a view failure to an exit code.
func exitOnViewError(err error) {
	var malformed *normalize.MalformedDateError
	if errors.As(err, &malformed) {
		exitWithError(ExitDataError, "%v", err)
	}
	exitWithError(ExitError, "%v", err)
}

func runCitations(cmd *cobra.Command, args []string) error {
	return withService(func(svc *views.Service, _ string) error {
		graph, err := svc.Citations(context.Background())
		if err != nil {
			exitOnViewError(err)
		}

		if !humanOutput {
			outputJSON(graph)
			return nil
		}

		pmids := make([]string, 0, len(graph))
		for pmid := range graph {
			pmids = append(pmids, pmid)
		}
		sort.Strings(pmids)
		for _, pmid := range pmids {
			rec := graph[pmid]
			year := "----"
			if rec.Year != nil {
				year = fmt.Sprint(*rec.Year)
			}
			fmt.Printf("%s (%s) %s\n", pmid, year, truncateString(rec.Title, TitleMaxLen))
			fmt.Printf("    cited by %d", len(rec.CitedBy))
			if rec.Link != nil {
				fmt.Printf("  %s", *rec.Link)
			}
			fmt.Println()
		}
		return nil
	})
}

func runTimeline(cmd *cobra.Command, args []string) error {
	return withService(func(svc *views.Service, repoRoot string) error {
		cfg := mustLoadConfig(repoRoot)
		timeline, err := svc.Timeline(context.Background(), viewSearch)
		if err != nil {
			exitOnViewError(err)
		}

		if !humanOutput {
			outputJSON(server.RenderTimeline(cfg.TimelineHeadline, timeline))
			return nil
		}

		fmt.Printf("%s (%d articles)\n\n", cfg.TimelineHeadline, len(timeline))
		for _, a := range timeline {
			fmt.Printf("%04d-%02d-%02d  %s  %s\n", a.Date.Year, a.Date.Month, a.Date.Day, a.PMID, truncateString(a.Title, TitleMaxLen))
			if a.Link != nil {
				fmt.Printf("            %s\n", *a.Link)
			}
			if timelineAbstracts && strings.TrimSpace(a.AbstractText) != "" {
				fmt.Printf("            %s\n", wrapText(a.AbstractText, TextWrapWidth, "            "))
			}
		}
		return nil
	})
}

func runTimeSeries(cmd *cobra.Command, args []string) error {
	return withService(func(svc *views.Service, _ string) error {
		series, err := svc.TimeSeries(context.Background(), viewSearch)
		if err != nil {
			exitOnViewError(err)
		}

		if !humanOutput {
			outputJSON(series)
			return nil
		}

		for _, b := range series {
			fmt.Printf("%d  %6d\n", b.Year, b.Count)
		}
		fmt.Printf("total %d\n", series.Total())
		return nil
	})
}
