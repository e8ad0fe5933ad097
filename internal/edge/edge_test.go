package edge

import (
	"reflect"
	"testing"
)

func TestCitation_Validate(t *testing.T) {
	tests := []struct {
		name    string
		edge    Citation
		wantErr error
	}{
		{
			name:    "valid edge",
			edge:    Citation{PMID: "1", CitedBy: []string{"2", "3"}},
			wantErr: nil,
		},
		{
			name:    "no citing articles",
			edge:    Citation{PMID: "1"},
			wantErr: nil,
		},
		{
			name:    "empty pmid",
			edge:    Citation{PMID: "", CitedBy: []string{"2"}},
			wantErr: ErrEmptyPMID,
		},
		{
			name:    "empty cited-by id",
			edge:    Citation{PMID: "1", CitedBy: []string{"2", ""}},
			wantErr: ErrEmptyCitedBy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.edge.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetectOrphanedEdges(t *testing.T) {
	validIDs := map[string]bool{"1": true, "2": true, "3": true}

	edges := []Citation{
		{PMID: "1", CitedBy: []string{"2", "9"}},
		{PMID: "8", CitedBy: []string{"1"}},
		{PMID: "3", CitedBy: []string{"1", "2"}},
	}

	orphaned, valid := DetectOrphanedEdges(edges, validIDs)

	wantOrphaned := []OrphanedEdgeInfo{
		{PMID: "1", CitingID: "9", Reason: ReasonMissingCiting},
		{PMID: "8", Reason: ReasonMissingSource},
	}
	if !reflect.DeepEqual(orphaned, wantOrphaned) {
		t.Errorf("orphaned = %+v, want %+v", orphaned, wantOrphaned)
	}

	wantValid := []Citation{
		{PMID: "1", CitedBy: []string{"2"}},
		{PMID: "3", CitedBy: []string{"1", "2"}},
	}
	if !reflect.DeepEqual(valid, wantValid) {
		t.Errorf("valid = %+v, want %+v", valid, wantValid)
	}
}

func TestDetectOrphanedEdges_DoesNotMutateInput(t *testing.T) {
	edges := []Citation{{PMID: "1", CitedBy: []string{"9", "2"}}}
	DetectOrphanedEdges(edges, map[string]bool{"1": true, "2": true})

	if !reflect.DeepEqual(edges[0].CitedBy, []string{"9", "2"}) {
		t.Errorf("input edge was modified: %v", edges[0].CitedBy)
	}
}

func TestFindDuplicateEdges(t *testing.T) {
	edges := []Citation{
		{PMID: "1"},
		{PMID: "2"},
		{PMID: "1"},
		{PMID: "1"},
	}

	dups := FindDuplicateEdges(edges)
	if len(dups) != 1 {
		t.Fatalf("got %d duplicates, want 1", len(dups))
	}
	if dups["1"] != 3 {
		t.Errorf("dups[1] = %d, want 3", dups["1"])
	}
}
