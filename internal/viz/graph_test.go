package viz

import (
	"strings"
	"testing"

	"github.com/matsen/citeline/internal/views"
)

func intPtr(i int) *int { return &i }
func strPtr(s string) *string { return &s }

func testGraph() views.CitationGraph {
	return views.CitationGraph{
		"1": {Title: "Zika virus outbreak", CitedBy: []string{"3", "2"}, Year: intPtr(2015), Link: strPtr("https://doi.org/10.1000/zika")},
		"2": {Title: "Microcephaly cases", CitedBy: []string{"3"}},
		"4": {Title: "Uncited", CitedBy: []string{}},
	}
}

func TestBuildGraph(t *testing.T) {
	g := BuildGraph(testGraph())

	wantIDs := []string{"1", "2", "3", "4"}
	if len(g.Nodes) != len(wantIDs) {
		t.Fatalf("got %d nodes, want %d", len(g.Nodes), len(wantIDs))
	}
	for i, id := range wantIDs {
		if g.Nodes[i].ID != id {
			t.Errorf("Nodes[%d].ID = %q, want %q", i, g.Nodes[i].ID, id)
		}
	}

	first := g.Nodes[0]
	if first.Type != NodeTypeCited || first.Year != 2015 || first.Link == "" || first.CitedByCount != 2 {
		t.Errorf("node 1 = %+v", first)
	}
	if g.Nodes[2].Type != NodeTypeCiting || g.Nodes[2].Title != "" {
		t.Errorf("node 3 = %+v, want citing-only node", g.Nodes[2])
	}
	if g.Nodes[3].Type != NodeTypeCited || g.Nodes[3].CitedByCount != 0 {
		t.Errorf("node 4 = %+v", g.Nodes[3])
	}

	wantEdges := []Edge{{"2", "1"}, {"3", "1"}, {"3", "2"}}
	if len(g.Edges) != len(wantEdges) {
		t.Fatalf("got %d edges, want %d", len(g.Edges), len(wantEdges))
	}
	for i, e := range wantEdges {
		if g.Edges[i] != e {
			t.Errorf("Edges[%d] = %+v, want %+v", i, g.Edges[i], e)
		}
	}
}

func TestBuildGraph_Empty(t *testing.T) {
	g := BuildGraph(views.CitationGraph{})
	if !g.IsEmpty() || len(g.Edges) != 0 {
		t.Errorf("BuildGraph(empty) = %+v", g)
	}
}

func TestElements(t *testing.T) {
	elements := BuildGraph(testGraph()).Elements()
	if len(elements.Nodes) != 4 || len(elements.Edges) != 3 {
		t.Fatalf("Elements() = %d nodes, %d edges", len(elements.Nodes), len(elements.Edges))
	}
	if got := elements.Edges[1].Data; got.ID != "3->1" || got.Source != "3" || got.Target != "1" {
		t.Errorf("Edges[1] = %+v", got)
	}
	if elements.Nodes[0].Data.CitedByCount != 2 {
		t.Errorf("Nodes[0] = %+v", elements.Nodes[0].Data)
	}
}

func TestGenerateHTML(t *testing.T) {
	tests := []struct {
		name    string
		graph   *GraphData
		layout  string
		want    string
		wantErr bool
	}{
		{"force layout", BuildGraph(testGraph()), "force", `"cose"`, false},
		{"circle layout", BuildGraph(testGraph()), "circle", `"circle"`, false},
		{"empty graph", BuildGraph(views.CitationGraph{}), "", "No citations", false},
		{"bad layout", BuildGraph(testGraph()), "spiral", "", true},
		{"nil graph", nil, "force", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Layout = tt.layout
			html, err := GenerateHTML(tt.graph, opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("GenerateHTML() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(html, tt.want) {
				t.Errorf("GenerateHTML() output missing %q", tt.want)
			}
		})
	}
}

func TestGenerateHTML_EscapesTitles(t *testing.T) {
	graph := views.CitationGraph{
		"1": {Title: "</script><script>alert(1)</script>", CitedBy: []string{}},
	}
	html, err := GenerateHTML(BuildGraph(graph), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>alert(1)") {
		t.Error("article title was not escaped")
	}
}
