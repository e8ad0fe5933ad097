package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/citeline/internal/reference"
	"github.com/segmentio/encoding/json"
	_ "modernc.org/sqlite"
)

// Storage errors.
var (
	// ErrUnavailable wraps failures of the underlying database.
	ErrUnavailable = errors.New("document store unavailable")
	ErrMissingPMID = errors.New("article has no PMID")
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set pragmas for better performance
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	// Create schema if needed
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Articles; doc_json holds the complete record
		CREATE TABLE IF NOT EXISTS articles (
			pmid TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			pub_year TEXT,
			pub_month TEXT,
			pub_day TEXT,
			doc_json TEXT NOT NULL
		);

		-- Full-text search over title and abstract, stemmed
		CREATE VIRTUAL TABLE IF NOT EXISTS articles_fts USING fts5(
			pmid UNINDEXED,
			title,
			abstract,
			tokenize = 'porter unicode61'
		);

		-- Citation edges keyed by the cited article
		CREATE TABLE IF NOT EXISTS citations (
			pmid TEXT PRIMARY KEY,
			cited_by_json TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the articles tables and rebuilds them from a JSONL file.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	// Read all articles from JSONL
	articles, err := ReadAllArticles(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Clear existing data
	if _, err := tx.Exec("DELETE FROM articles"); err != nil {
		return 0, fmt.Errorf("clearing articles table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM articles_fts"); err != nil {
		return 0, fmt.Errorf("clearing articles_fts table: %w", err)
	}

	// Prepare statements
	articleStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO articles (pmid, title, pub_year, pub_month, pub_day, doc_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing articles insert: %w", err)
	}
	defer articleStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO articles_fts (pmid, title, abstract)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, a := range articles {
		doc, err := json.Marshal(a)
		if err != nil {
			return 0, fmt.Errorf("encoding article %s: %w", a.PMID, err)
		}

		_, err = articleStmt.Exec(
			a.PMID, a.Title,
			nullableStringValue(a.PubDate.Year.String()),
			nullableStringValue(a.PubDate.Month.String()),
			nullableStringValue(a.PubDate.Day.String()),
			string(doc),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting article %s: %w", a.PMID, err)
		}

		_, err = ftsStmt.Exec(a.PMID, a.Title, strings.Join(a.AbstractText, "\n"))
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", a.PMID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing articles: %w", err)
	}
	return len(articles), nil
}

// FindArticles returns the articles selected by filter in insertion order.
// ProjectionDateTitle fills only PMID, title and publication date.
func (d *DB) FindArticles(ctx context.Context, filter reference.Filter, projection reference.Projection) ([]reference.Article, error) {
	fields := "doc_json"
	if projection == reference.ProjectionDateTitle {
		fields = "pmid, title, pub_year, pub_month, pub_day"
	}

	query := `SELECT ` + fields + ` FROM articles`
	var args []interface{}
	if !filter.MatchAll() {
		ftsQuery := prepareSearchQuery(filter.Search)
		if ftsQuery == "" {
			return nil, nil
		}
		query += ` WHERE pmid IN (SELECT pmid FROM articles_fts WHERE articles_fts MATCH ?)`
		args = append(args, ftsQuery)
	}
	query += ` ORDER BY rowid`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var articles []reference.Article
	for rows.Next() {
		var a *reference.Article
		if projection == reference.ProjectionDateTitle {
			a, err = scanDateTitle(rows)
		} else {
			a, err = scanDocument(rows)
		}
		if err != nil {
			return nil, err
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading articles: %w: %w", ErrUnavailable, err)
	}
	return articles, nil
}

// FindArticle retrieves an article by PMID. Returns nil, nil if it is not stored.
func (d *DB) FindArticle(ctx context.Context, pmid string) (*reference.Article, error) {
	row := d.db.QueryRowContext(ctx, `SELECT doc_json FROM articles WHERE pmid = ?`, pmid)
	a, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// Count returns the total number of articles.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&count)
	return count, err
}

// AllPMIDs returns the set of stored article ids.
func (d *DB) AllPMIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT pmid FROM articles")
	if err != nil {
		return nil, fmt.Errorf("listing pmids: %w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(s scanner) (*reference.Article, error) {
	var doc string
	if err := s.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning article: %w: %w", ErrUnavailable, err)
	}

	var a reference.Article
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		return nil, fmt.Errorf("parsing stored article: %w", err)
	}
	return &a, nil
}

func scanDateTitle(s scanner) (*reference.Article, error) {
	var a reference.Article
	var year, month, day sql.NullString
	if err := s.Scan(&a.PMID, &a.Title, &year, &month, &day); err != nil {
		return nil, fmt.Errorf("scanning article: %w: %w", ErrUnavailable, err)
	}
	a.PubDate = reference.PartialDate{
		Year:  reference.FlexibleString(year.String),
		Month: reference.FlexibleString(month.String),
		Day:   reference.FlexibleString(day.String),
	}
	return &a, nil
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareSearchQuery turns a user search string into an FTS5 query. Terms
// match if any of them occurs; a double-quoted string is searched as a phrase
// and a leading '-' excludes articles matching the term or phrase. A query
// with only excluded terms matches nothing and yields "".
func prepareSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	var terms, excluded []string
	for len(query) > 0 {
		query = strings.TrimLeft(query, " \t\n")
		if query == "" {
			break
		}
		negate := query[0] == '-'
		if negate {
			query = query[1:]
			if query == "" {
				break
			}
		}
		var term string
		if query[0] == '"' {
			end := strings.IndexByte(query[1:], '"')
			if end < 0 {
				term, query = query[1:], ""
			} else {
				term, query = query[1:end+1], query[end+2:]
			}
		} else {
			end := strings.IndexAny(query, " \t\n")
			if end < 0 {
				term, query = query, ""
			} else {
				term, query = query[:end], query[end:]
			}
		}
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		// Escape internal quotes and wrap in quotes so FTS5 operators are literal
		quoted := `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
		if negate {
			excluded = append(excluded, quoted)
		} else {
			terms = append(terms, quoted)
		}
	}

	if len(terms) == 0 {
		return ""
	}
	match := strings.Join(terms, " OR ")
	if len(excluded) == 0 {
		return match
	}
	// NOT binds tighter than OR in FTS5
	return "(" + match + ") NOT " + strings.Join(excluded, " NOT ")
}
