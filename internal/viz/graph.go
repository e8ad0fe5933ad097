package viz

import (
	"sort"

	"github.com/matsen/citeline/internal/views"
)

// BuildGraph converts a citation view into nodes and edges. The view is
// already pruned, so every edge connects two corpus articles. Nodes and edges
// are sorted by id for stable output.
func BuildGraph(graph views.CitationGraph) *GraphData {
	nodes := make(map[string]*Node, len(graph))
	var edges []Edge

	for pmid, rec := range graph {
		n := nodeFor(nodes, pmid)
		n.Type = NodeTypeCited
		n.Title = rec.Title
		if rec.Year != nil {
			n.Year = *rec.Year
		}
		if rec.Link != nil {
			n.Link = *rec.Link
		}
		n.CitedByCount = len(rec.CitedBy)

		for _, citing := range rec.CitedBy {
			nodeFor(nodes, citing)
			edges = append(edges, Edge{Source: citing, Target: pmid})
		}
	}

	out := &GraphData{
		Nodes: make([]Node, 0, len(nodes)),
		Edges: edges,
	}
	for _, n := range nodes {
		out.Nodes = append(out.Nodes, *n)
	}
	sort.Slice(out.Nodes, func(i, j int) bool { return out.Nodes[i].ID < out.Nodes[j].ID })
	sort.Slice(out.Edges, func(i, j int) bool {
		if out.Edges[i].Target != out.Edges[j].Target {
			return out.Edges[i].Target < out.Edges[j].Target
		}
		return out.Edges[i].Source < out.Edges[j].Source
	})
	return out
}

// nodeFor returns the node for id, creating a citing-only node if needed.
func nodeFor(nodes map[string]*Node, id string) *Node {
	if n, ok := nodes[id]; ok {
		return n
	}
	n := &Node{ID: id, Type: NodeTypeCiting, Label: id}
	nodes[id] = n
	return n
}
