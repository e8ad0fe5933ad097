package views

import (
	"fmt"

	"github.com/matsen/citeline/internal/edge"
	"github.com/matsen/citeline/internal/normalize"
	"github.com/matsen/citeline/internal/reference"
)

// CitationRecord is a source article enriched with the corpus articles citing it.
type CitationRecord struct {
	Title   string   `json:"title"`
	CitedBy []string `json:"citedby"` // Only ids present in the corpus, first occurrence order
	Year    *int     `json:"year"`
	Link    *string  `json:"link"`
}

// CitationGraph maps source PMIDs to their citation records.
type CitationGraph map[string]CitationRecord

// Lookup resolves a PMID to a corpus article. It returns nil, nil when the
// article is not in the corpus.
type Lookup func(pmid string) (*reference.Article, error)

// PruneStats counts what BuildCitationGraph dropped.
type PruneStats struct {
	Edges          int // Edges considered
	MissingSources int // Edges skipped because the source article is absent
	DanglingRefs   int // Cited-by ids dropped because the citing article is absent
}

// BuildCitationGraph builds the citation view. Edges whose source article is
// missing are skipped and cited-by ids that do not resolve are dropped, so every
// remaining edge connects two corpus articles. Lookup errors abort the build.
func BuildCitationGraph(edges []edge.Citation, lookup Lookup) (CitationGraph, error) {
	graph, _, err := buildCitationGraph(edges, lookup)
	return graph, err
}

func buildCitationGraph(edges []edge.Citation, lookup Lookup) (CitationGraph, PruneStats, error) {
	graph := make(CitationGraph, len(edges))
	stats := PruneStats{Edges: len(edges)}

	for _, e := range edges {
		source, err := lookup(e.PMID)
		if err != nil {
			return nil, stats, fmt.Errorf("looking up source %s: %w", e.PMID, err)
		}
		if source == nil {
			stats.MissingSources++
			continue
		}

		citedBy := make([]string, 0, len(e.CitedBy))
		seen := make(map[string]bool, len(e.CitedBy))
		for _, id := range e.CitedBy {
			if seen[id] {
				continue
			}
			citing, err := lookup(id)
			if err != nil {
				return nil, stats, fmt.Errorf("looking up citing article %s: %w", id, err)
			}
			if citing == nil {
				stats.DanglingRefs++
				continue
			}
			seen[id] = true
			citedBy = append(citedBy, id)
		}

		record := CitationRecord{
			Title:   source.Title,
			CitedBy: citedBy,
		}
		if source.PubDate.HasYear() {
			year, err := normalize.ParseYear(source.PubDate.Year.String())
			if err != nil {
				return nil, stats, fmt.Errorf("article %s: %w", e.PMID, err)
			}
			record.Year = &year
		}
		if link, ok := normalize.ResolveLink(source.IdentifierList); ok {
			record.Link = &link
		}
		graph[e.PMID] = record
	}

	return graph, stats, nil
}

// LookupFromArticles returns a Lookup over an in-memory article set.
func LookupFromArticles(articles []reference.Article) Lookup {
	byID := make(map[string]*reference.Article, len(articles))
	for i := range articles {
		byID[articles[i].PMID] = &articles[i]
	}
	return func(pmid string) (*reference.Article, error) {
		return byID[pmid], nil
	}
}
