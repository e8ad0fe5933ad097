package storage

import (
	"context"
	"fmt"

	"github.com/matsen/citeline/internal/edge"
	"github.com/segmentio/encoding/json"
)

// RebuildCitationsFromJSONL clears the citations table and rebuilds it from a JSONL file.
func (d *DB) RebuildCitationsFromJSONL(jsonlPath string) (int, error) {
	// Read all edges from JSONL
	edges, err := ReadAllCitations(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading citations JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Clear existing data
	if _, err := tx.Exec("DELETE FROM citations"); err != nil {
		return 0, fmt.Errorf("clearing citations table: %w", err)
	}

	// Prepare insert statement
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO citations (pmid, cited_by_json)
		VALUES (?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing citations insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range edges {
		citedBy := c.CitedBy
		if citedBy == nil {
			citedBy = []string{}
		}
		data, err := json.Marshal(citedBy)
		if err != nil {
			return 0, fmt.Errorf("encoding citation %s: %w", c.PMID, err)
		}
		if _, err := stmt.Exec(c.PMID, string(data)); err != nil {
			return 0, fmt.Errorf("inserting citation %s: %w", c.PMID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing citations: %w", err)
	}
	return len(edges), nil
}

// FindCitationEdges returns all stored citation edges in insertion order.
func (d *DB) FindCitationEdges(ctx context.Context) ([]edge.Citation, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT pmid, cited_by_json FROM citations ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying citations: %w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var edges []edge.Citation
	for rows.Next() {
		var c edge.Citation
		var citedBy string
		if err := rows.Scan(&c.PMID, &citedBy); err != nil {
			return nil, fmt.Errorf("scanning citation: %w: %w", ErrUnavailable, err)
		}
		if err := json.Unmarshal([]byte(citedBy), &c.CitedBy); err != nil {
			return nil, fmt.Errorf("parsing cited-by list for %s: %w", c.PMID, err)
		}
		edges = append(edges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading citations: %w: %w", ErrUnavailable, err)
	}
	return edges, nil
}

// CountCitations returns the number of stored citation edges.
func (d *DB) CountCitations() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM citations").Scan(&count)
	return count, err
}
