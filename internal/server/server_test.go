package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matsen/citeline/internal/reference"
	"github.com/matsen/citeline/internal/views"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
)

type fakeViews struct {
	graph    views.CitationGraph
	timeline []views.NormalizedArticle
	series   views.Series
	err      error
	searches []string
	panics   bool
}

func (f *fakeViews) Citations(ctx context.Context) (views.CitationGraph, error) {
	if f.panics {
		panic("boom")
	}
	return f.graph, f.err
}

func (f *fakeViews) Timeline(ctx context.Context, search string) ([]views.NormalizedArticle, error) {
	f.searches = append(f.searches, search)
	return f.timeline, f.err
}

func (f *fakeViews) TimeSeries(ctx context.Context, search string) (views.Series, error) {
	f.searches = append(f.searches, search)
	return f.series, f.err
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() Config {
	return Config{
		RateLimit:        1000,
		RateBurst:        1000,
		TimelineHeadline: "Zika Virus",
		DefaultVirus:     "zika",
	}
}

func newTestServer(t *testing.T, v Views, cfg Config) *httptest.Server {
	t.Helper()
	s, err := New(v, cfg, quietLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }

func TestCitationsEndpoint(t *testing.T) {
	v := &fakeViews{graph: views.CitationGraph{
		"1": {Title: "Source", CitedBy: []string{"2"}, Year: intPtr(2015), Link: strPtr("https://doi.org/10.1/x")},
		"2": {Title: "No year", CitedBy: []string{}},
	}}
	ts := newTestServer(t, v, testConfig())

	resp, body := get(t, ts.URL+CitationsPath)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got["1"]["title"] != "Source" || got["1"]["link"] != "https://doi.org/10.1/x" {
		t.Errorf("record 1 = %v", got["1"])
	}
	if got["2"]["year"] != nil || got["2"]["link"] != nil {
		t.Errorf("record 2 = %v, want null year and link", got["2"])
	}
	if cited, ok := got["2"]["citedby"].([]any); !ok || len(cited) != 0 {
		t.Errorf("record 2 citedby = %v, want empty list", got["2"]["citedby"])
	}
}

func TestGraphEndpoint(t *testing.T) {
	v := &fakeViews{graph: views.CitationGraph{
		"1": {Title: "Source", CitedBy: []string{"2"}, Year: intPtr(2015)},
		"2": {Title: "Citer", CitedBy: []string{}},
	}}
	ts := newTestServer(t, v, testConfig())

	resp, body := get(t, ts.URL+GraphPath)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	var got struct {
		Nodes []struct {
			Data struct {
				ID           string `json:"id"`
				CitedByCount int    `json:"citedByCount"`
			} `json:"data"`
		} `json:"nodes"`
		Edges []struct {
			Data struct {
				Source string `json:"source"`
				Target string `json:"target"`
			} `json:"data"`
		} `json:"edges"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(got.Nodes) != 2 || got.Nodes[0].Data.ID != "1" || got.Nodes[0].Data.CitedByCount != 1 {
		t.Errorf("nodes = %+v", got.Nodes)
	}
	if len(got.Edges) != 1 || got.Edges[0].Data.Source != "2" || got.Edges[0].Data.Target != "1" {
		t.Errorf("edges = %+v", got.Edges)
	}
}

func TestTimeSeriesEndpoint(t *testing.T) {
	v := &fakeViews{series: views.Series{{Year: 2015, Count: 2}, {Year: 2016, Count: 5}}}
	ts := newTestServer(t, v, testConfig())

	resp, body := get(t, ts.URL+TimeSeriesPath+"?search=microcephaly&disease=zika")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	want := `{"2015-12-31T00:00:00.000Z":2,"2016-12-31T00:00:00.000Z":5}`
	if body != want {
		t.Errorf("body = %s, want %s", body, want)
	}
	if len(v.searches) != 1 || v.searches[0] != "microcephaly" {
		t.Errorf("searches = %v", v.searches)
	}
}

func TestPublicationsEndpoint(t *testing.T) {
	v := &fakeViews{timeline: []views.NormalizedArticle{
		{PMID: "1", Title: "First", Date: reference.CanonicalDate{Year: 2016, Month: 3, Day: 24}, AbstractText: "Abstract.", Link: strPtr("https://doi.org/10.1/x")},
		{PMID: "2", Title: "Second", Date: reference.CanonicalDate{Year: 2015, Month: 1, Day: 1}, AbstractText: " "},
	}}
	ts := newTestServer(t, v, testConfig())

	resp, body := get(t, ts.URL+PublicationsPath)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var doc TimelineDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if doc.Title.Text.Headline != "Zika Virus" {
		t.Errorf("headline = %q", doc.Title.Text.Headline)
	}
	if len(doc.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(doc.Events))
	}
	first := doc.Events[0]
	if first.UniqueID != "1" || first.StartDate.Month != 3 || first.Text.Text != "Abstract." {
		t.Errorf("events[0] = %+v", first)
	}
	if doc.Events[1].UniqueID != "2" || doc.Events[1].Link != nil {
		t.Errorf("events[1] = %+v", doc.Events[1])
	}
	if len(v.searches) != 1 || v.searches[0] != "" {
		t.Errorf("searches = %q, want one empty search", v.searches)
	}
}

func TestViewErrors(t *testing.T) {
	v := &fakeViews{err: errors.New("document store unavailable")}
	ts := newTestServer(t, v, testConfig())

	for _, path := range []string{CitationsPath, TimeSeriesPath, PublicationsPath, GraphPath} {
		t.Run(path, func(t *testing.T) {
			resp, body := get(t, ts.URL+path)
			if resp.StatusCode != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", resp.StatusCode)
			}
			var e errorResponse
			if err := json.Unmarshal([]byte(body), &e); err != nil {
				t.Fatalf("decoding body %q: %v", body, err)
			}
			if !strings.Contains(e.Error, "unavailable") {
				t.Errorf("error = %q", e.Error)
			}
		})
	}
}

func TestPanicRecovery(t *testing.T) {
	ts := newTestServer(t, &fakeViews{panics: true}, testConfig())

	resp, _ := get(t, ts.URL+CitationsPath)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestIndexPage(t *testing.T) {
	ts := newTestServer(t, &fakeViews{}, testConfig())

	tests := []struct {
		path  string
		virus string
	}{
		{"/", "zika"},
		{"/mayaro", "mayaro"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
				t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
			}
			if !strings.Contains(body, `data-virus="`+tt.virus+`"`) {
				t.Errorf("body does not name virus %q", tt.virus)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeViews{}, testConfig())
	resp, body := get(t, ts.URL+HealthPath)
	if resp.StatusCode != http.StatusOK || body != `{"status":"ok"}` {
		t.Errorf("GET /healthz = %d %s", resp.StatusCode, body)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 2
	ts := newTestServer(t, &fakeViews{}, cfg)

	var codes []int
	for i := 0; i < 3; i++ {
		resp, _ := get(t, ts.URL+HealthPath)
		codes = append(codes, resp.StatusCode)
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, &fakeViews{}, testConfig())
	resp, err := http.Post(ts.URL+CitationsPath, "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}
