// Package storage is the corpus document store: JSONL files are the source of
// truth and SQLite is an ephemeral query layer rebuilt from them.
package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/matsen/citeline/internal/reference"
	"github.com/segmentio/encoding/json"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines.
// It matches the importer so any imported record can be read back.
const MaxJSONLLineCapacity = 16 * 1024 * 1024

// ReadAllArticles reads all articles from a JSONL file.
func ReadAllArticles(path string) ([]reference.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Empty file returns empty slice
		}
		return nil, fmt.Errorf("opening articles file: %w", err)
	}
	defer f.Close()

	articles, err := ReadArticles(f)
	if err != nil {
		return nil, fmt.Errorf("reading articles file: %w", err)
	}
	return articles, nil
}

// ReadArticles decodes JSONL articles from r. Articles without a PMID are rejected.
func ReadArticles(r io.Reader) ([]reference.Article, error) {
	var articles []reference.Article
	err := scanLines(r, func(lineNum int, line []byte) error {
		var a reference.Article
		if err := json.Unmarshal(line, &a); err != nil {
			return fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if a.PMID == "" {
			return fmt.Errorf("line %d: %w", lineNum, ErrMissingPMID)
		}
		articles = append(articles, a)
		return nil
	})
	return articles, err
}

// scanLines calls fn for every non-empty line of r.
func scanLines(r io.Reader, fn func(lineNum int, line []byte) error) error {
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	scanner.Buffer(make([]byte, 64*1024), MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}
		if err := fn(lineNum, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// WriteAllArticles writes all articles to a JSONL file, replacing existing content.
func WriteAllArticles(path string, articles []reference.Article) error {
	return writeJSONL(path, len(articles), func(i int) any { return articles[i] })
}

// writeJSONL writes n values produced by item to path, one per line.
func writeJSONL(path string, n int, item func(i int) any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		data, err := json.Marshal(item(i))
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// MergeResult summarizes a merge of incoming records into existing ones.
type MergeResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}

// MergeArticles upserts incoming articles into existing by PMID. Updated
// articles keep their position; new ones are appended in input order. When
// incoming contains the same PMID twice the later record wins.
func MergeArticles(existing, incoming []reference.Article) ([]reference.Article, MergeResult) {
	merged := append([]reference.Article(nil), existing...)
	index := make(map[string]int, len(merged))
	for i, a := range merged {
		index[a.PMID] = i
	}

	var result MergeResult
	for _, a := range incoming {
		if i, ok := index[a.PMID]; ok {
			merged[i] = a
			result.Updated++
			continue
		}
		index[a.PMID] = len(merged)
		merged = append(merged, a)
		result.Added++
	}
	return merged, result
}
