package importer

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
)

const sampleLine = `{"PMID": "1", "ArticleTitle": "Sample"}` + "\n"

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func zstdBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func readAll(t *testing.T, location string) string {
	t.Helper()
	rc, err := Open(location, NewHTTPClient(1, 5*time.Second))
	if err != nil {
		t.Fatalf("Open(%q) error = %v", location, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading %q: %v", location, err)
	}
	return string(b)
}

func TestOpen_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"plain.jsonl":      []byte(sampleLine),
		"packed.jsonl.gz":  gzipBytes(t, sampleLine),
		"packed.jsonl.zst": zstdBytes(t, sampleLine),
	}

	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, content, 0644); err != nil {
				t.Fatal(err)
			}
			if got := readAll(t, path); got != sampleLine {
				t.Errorf("Open(%s) content = %q, want %q", name, got, sampleLine)
			}
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.jsonl"), nil); err == nil {
		t.Error("Open() expected error for missing file")
	}
}

func TestOpen_URL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dump.jsonl":
			io.WriteString(w, sampleLine)
		case "/dump.jsonl.gz":
			w.Write(gzipBytes(t, sampleLine))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	if got := readAll(t, ts.URL+"/dump.jsonl"); got != sampleLine {
		t.Errorf("plain URL content = %q", got)
	}
	if got := readAll(t, ts.URL+"/dump.jsonl.gz?token=x"); got != sampleLine {
		t.Errorf("gzip URL content = %q", got)
	}

	if _, err := Open(ts.URL+"/missing.jsonl", NewHTTPClient(1, 5*time.Second)); err == nil {
		t.Error("Open() expected error for 404")
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.org/a.jsonl", true},
		{"http://localhost/a.jsonl", true},
		{"/tmp/a.jsonl", false},
		{"ftp://example.org/a", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
