package storage

import (
	"fmt"
	"io"
	"os"

	"github.com/matsen/citeline/internal/edge"
	"github.com/segmentio/encoding/json"
)

// ReadAllCitations reads all citation edges from a JSONL file.
// Returns an error if any edge fails structural validation (fail-fast).
func ReadAllCitations(path string) ([]edge.Citation, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Empty file returns empty slice
		}
		return nil, fmt.Errorf("opening citations file: %w", err)
	}
	defer f.Close()

	edges, err := ReadCitations(f)
	if err != nil {
		return nil, fmt.Errorf("reading citations file: %w", err)
	}
	return edges, nil
}

// ReadCitations decodes JSONL citation edges from r.
func ReadCitations(r io.Reader) ([]edge.Citation, error) {
	var edges []edge.Citation
	err := scanLines(r, func(lineNum int, line []byte) error {
		var c edge.Citation
		if err := json.Unmarshal(line, &c); err != nil {
			return fmt.Errorf("parsing line %d: %w", lineNum, err)
		}

		// Fail fast: validate edge structure before adding to collection
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid citation at line %d: %w", lineNum, err)
		}

		edges = append(edges, c)
		return nil
	})
	return edges, err
}

// WriteAllCitations writes all citation edges to a JSONL file, replacing existing content.
func WriteAllCitations(path string, edges []edge.Citation) error {
	return writeJSONL(path, len(edges), func(i int) any { return edges[i] })
}

// MergeCitations upserts incoming edges into existing by source PMID, with the
// same ordering rules as MergeArticles.
func MergeCitations(existing, incoming []edge.Citation) ([]edge.Citation, MergeResult) {
	merged := append([]edge.Citation(nil), existing...)
	index := make(map[string]int, len(merged))
	for i, c := range merged {
		index[c.PMID] = i
	}

	var result MergeResult
	for _, c := range incoming {
		if i, ok := index[c.PMID]; ok {
			merged[i] = c
			result.Updated++
			continue
		}
		index[c.PMID] = len(merged)
		merged = append(merged, c)
		result.Added++
	}
	return merged, result
}
