package importer

import (
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"auto", FormatAuto, false},
		{"flat", FormatFlat, false},
		{"medline", FormatMedline, false},
		{"bibtex", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseArticles_Auto(t *testing.T) {
	input := strings.Join([]string{
		`{"PMID": "1", "ArticleTitle": "Flat record", "PubDate": {"Year": "2015"}}`,
		``,
		`{"MedlineCitation": {"PMID": "2", "Article": {"ArticleTitle": "Nested record"}}}`,
	}, "\n")

	articles, errs := ParseArticles(strings.NewReader(input), FormatAuto)
	if len(errs) != 0 {
		t.Fatalf("ParseArticles() errors = %v", errs)
	}
	if len(articles) != 2 {
		t.Fatalf("ParseArticles() returned %d articles, want 2", len(articles))
	}
	if articles[0].PMID != "1" || articles[0].PubDate.Year != "2015" {
		t.Errorf("articles[0] = %+v", articles[0])
	}
	if articles[1].PMID != "2" || articles[1].Title != "Nested record" {
		t.Errorf("articles[1] = %+v", articles[1])
	}
}

func TestParseArticles_CollectsErrors(t *testing.T) {
	input := strings.Join([]string{
		`{"PMID": "1", "ArticleTitle": "Good"}`,
		`not json`,
		`{"ArticleTitle": "No id"}`,
		`{"PMID": "4", "ArticleTitle": "Also good"}`,
	}, "\n")

	articles, errs := ParseArticles(strings.NewReader(input), FormatFlat)
	if len(articles) != 2 {
		t.Errorf("got %d articles, want 2", len(articles))
	}
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if !strings.HasPrefix(errs[0].Error(), "line 2:") {
		t.Errorf("errs[0] = %v, want line 2 prefix", errs[0])
	}
	if !strings.HasPrefix(errs[1].Error(), "line 3:") {
		t.Errorf("errs[1] = %v, want line 3 prefix", errs[1])
	}
}

func TestParseArticles_ForcedMedline(t *testing.T) {
	input := `{"PMID": "1", "ArticleTitle": "Flat record"}`
	articles, errs := ParseArticles(strings.NewReader(input), FormatMedline)
	if len(articles) != 0 {
		t.Errorf("got %d articles, want 0", len(articles))
	}
	if len(errs) != 1 {
		t.Errorf("got %d errors, want 1", len(errs))
	}
}
