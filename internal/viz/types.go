// Package viz renders the citation graph for interactive viewing.
package viz

// Node types.
const (
	NodeTypeCited  = "cited"  // Source article with at least one corpus citation record
	NodeTypeCiting = "citing" // Article that only appears as a citer
)

// GraphData contains all data needed to render the visualization.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node represents an article in the graph.
type Node struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`

	// Tooltip fields, known only for cited articles
	Title string `json:"title,omitempty"`
	Year  int    `json:"year,omitempty"`
	Link  string `json:"link,omitempty"`

	// Number of corpus articles citing this one
	CitedByCount int `json:"citedByCount"`
}

// Edge points from a citing article to the article it cites.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
