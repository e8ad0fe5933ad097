// Package edge defines the core domain types for citation edges.
package edge

import "errors"

// Citation records that a set of articles cite a given source article.
type Citation struct {
	PMID    string   `json:"PMID"`    // Source (cited) article
	CitedBy []string `json:"citedby"` // Articles claiming to cite it
}

// Validation errors.
var (
	ErrEmptyPMID    = errors.New("PMID is required")
	ErrEmptyCitedBy = errors.New("cited-by id cannot be empty")
)

// Validate checks the structural validity of a citation edge.
// Dangling ids are not a validation error; they are pruned when views are built.
func (c *Citation) Validate() error {
	if c.PMID == "" {
		return ErrEmptyPMID
	}
	for _, id := range c.CitedBy {
		if id == "" {
			return ErrEmptyCitedBy
		}
	}
	return nil
}

// Orphan reasons.
const (
	ReasonMissingSource = "missing_source"
	ReasonMissingCiting = "missing_citing"
)

// OrphanedEdgeInfo describes a citation reference with a missing endpoint.
type OrphanedEdgeInfo struct {
	PMID     string `json:"pmid"`
	CitingID string `json:"citing_id,omitempty"` // Empty when the whole edge is orphaned
	Reason   string `json:"reason"`
}

// DetectOrphanedEdges finds citation references that point at articles not in
// the valid ID set. An edge whose source is missing is reported once as a whole.
// Returns orphaned references and the edges pruned to valid endpoints.
func DetectOrphanedEdges(edges []Citation, validIDs map[string]bool) (orphaned []OrphanedEdgeInfo, valid []Citation) {
	for _, c := range edges {
		if !validIDs[c.PMID] {
			orphaned = append(orphaned, OrphanedEdgeInfo{
				PMID:   c.PMID,
				Reason: ReasonMissingSource,
			})
			continue
		}

		pruned := Citation{PMID: c.PMID, CitedBy: []string{}}
		for _, id := range c.CitedBy {
			if !validIDs[id] {
				orphaned = append(orphaned, OrphanedEdgeInfo{
					PMID:     c.PMID,
					CitingID: id,
					Reason:   ReasonMissingCiting,
				})
				continue
			}
			pruned.CitedBy = append(pruned.CitedBy, id)
		}
		valid = append(valid, pruned)
	}
	return orphaned, valid
}

// FindDuplicateEdges finds source PMIDs that appear on more than one edge.
// Returns a map of PMID to count for ids that appear more than once.
func FindDuplicateEdges(edges []Citation) map[string]int {
	counts := make(map[string]int)
	for _, c := range edges {
		counts[c.PMID]++
	}

	// Filter to only duplicates
	duplicates := make(map[string]int)
	for pmid, count := range counts {
		if count > 1 {
			duplicates[pmid] = count
		}
	}
	return duplicates
}
