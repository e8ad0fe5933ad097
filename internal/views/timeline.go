package views

import (
	"errors"
	"fmt"

	"github.com/matsen/citeline/internal/normalize"
	"github.com/matsen/citeline/internal/reference"
)

// NormalizedArticle is an article with every field resolved for rendering.
type NormalizedArticle struct {
	PMID           string                  `json:"pmid"`
	Title          string                  `json:"title"`
	PubDate        reference.PartialDate   `json:"pub_date"`
	Date           reference.CanonicalDate `json:"date"`
	AbstractText   string                  `json:"abstract"`
	IdentifierList []string                `json:"identifiers,omitempty"`
	Link           *string                 `json:"link"`
}

// NormalizeArticle resolves date, abstract and link for one article. Articles
// without a year return normalize.ErrMissingYear. The input is not modified.
func NormalizeArticle(a reference.Article) (NormalizedArticle, error) {
	date, err := normalize.ResolveDate(a.PubDate)
	if err != nil {
		return NormalizedArticle{}, err
	}

	c := a.Clone()
	out := NormalizedArticle{
		PMID:           c.PMID,
		Title:          c.Title,
		PubDate:        c.PubDate,
		Date:           date,
		AbstractText:   normalize.NormalizeAbstract(c.AbstractText),
		IdentifierList: c.IdentifierList,
	}
	if link, ok := normalize.ResolveLink(c.IdentifierList); ok {
		out.Link = &link
	}
	return out, nil
}

// BuildTimeline normalizes articles in input order, dropping those without a
// publication year. A malformed date fails the whole timeline.
func BuildTimeline(articles []reference.Article) ([]NormalizedArticle, error) {
	out, _, err := buildTimeline(articles)
	return out, err
}

func buildTimeline(articles []reference.Article) ([]NormalizedArticle, int, error) {
	out := make([]NormalizedArticle, 0, len(articles))
	skipped := 0
	for _, a := range articles {
		n, err := NormalizeArticle(a)
		if errors.Is(err, normalize.ErrMissingYear) {
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("article %s: %w", a.PMID, err)
		}
		out = append(out, n)
	}
	return out, skipped, nil
}
