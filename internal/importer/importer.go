package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/matsen/citeline/internal/reference"
	"github.com/segmentio/encoding/json"
)

// Format names an article dump layout.
type Format string

// Supported formats.
const (
	FormatAuto    Format = "auto"    // Detect per line
	FormatFlat    Format = "flat"    // Corpus JSONL layout
	FormatMedline Format = "medline" // Nested Entrez layout
)

// ValidFormats lists the accepted format names.
var ValidFormats = []Format{FormatAuto, FormatFlat, FormatMedline}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range ValidFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format: %s (valid: %v)", s, ValidFormats)
}

// maxLineCapacity bounds a single JSONL record.
const maxLineCapacity = 16 * 1024 * 1024

// ParseArticles reads JSONL articles from r. Lines that fail to convert are
// reported in the returned errors and skipped; a read error stops parsing.
func ParseArticles(r io.Reader, format Format) ([]reference.Article, []error) {
	var articles []reference.Article
	var errs []error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		a, err := parseLine(line, format)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		articles = append(articles, a)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, fmt.Errorf("reading input: %w", err))
	}

	return articles, errs
}

func parseLine(line []byte, format Format) (reference.Article, error) {
	if format == FormatAuto {
		format = detectFormat(line)
	}

	switch format {
	case FormatMedline:
		return ParseMedline(line)
	case FormatFlat:
		var a reference.Article
		if err := json.Unmarshal(line, &a); err != nil {
			return reference.Article{}, fmt.Errorf("parsing article: %w", err)
		}
		if a.PMID == "" {
			return reference.Article{}, fmt.Errorf("missing required field 'PMID'")
		}
		return a, nil
	default:
		return reference.Article{}, fmt.Errorf("unsupported format: %s", format)
	}
}

// detectFormat reports FormatMedline for documents with a MedlineCitation key.
func detectFormat(line []byte) Format {
	var probe struct {
		MedlineCitation json.RawMessage `json:"MedlineCitation"`
	}
	if err := json.Unmarshal(line, &probe); err == nil && len(probe.MedlineCitation) > 0 {
		return FormatMedline
	}
	return FormatFlat
}
