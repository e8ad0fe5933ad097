// Package reference defines the core domain types for corpus articles.
package reference

// Article is a PubMed article as stored in the corpus.
type Article struct {
	// Identity
	PMID string `json:"PMID"`

	// Metadata
	Title        string       `json:"ArticleTitle"`
	PubDate      PartialDate  `json:"PubDate"`
	AbstractText AbstractText `json:"AbstractText,omitempty"`

	// Heterogeneous identifiers (PMID, DOI, PII, PMC, ...), unordered.
	IdentifierList []string `json:"ArticleIdList,omitempty"`
}

// Clone returns a deep copy of the article.
func (a Article) Clone() Article {
	out := a
	if a.AbstractText != nil {
		out.AbstractText = append(AbstractText(nil), a.AbstractText...)
	}
	if a.IdentifierList != nil {
		out.IdentifierList = append([]string(nil), a.IdentifierList...)
	}
	return out
}

// PartialDate is a publication date as found in the source records. Fields
// hold the raw stored values; an empty field is absent.
type PartialDate struct {
	Year  FlexibleString `json:"Year,omitempty"`
	Month FlexibleString `json:"Month,omitempty"` // Three-letter abbreviation, e.g. "Mar"
	Day   FlexibleString `json:"Day,omitempty"`
}

// HasYear reports whether the date carries a year.
func (d PartialDate) HasYear() bool {
	return d.Year != ""
}

// CanonicalDate is a fully resolved publication date. Values are not checked
// against the calendar.
type CanonicalDate struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12
	Day   int `json:"day"`
}

// Filter selects articles from the corpus. A zero Filter matches everything.
type Filter struct {
	Search string // Full-text query over title and abstract
}

// MatchAll reports whether the filter selects the whole corpus.
func (f Filter) MatchAll() bool {
	return f.Search == ""
}

// Projection restricts the fields returned by a corpus query.
type Projection int

const (
	// ProjectionFull returns complete articles.
	ProjectionFull Projection = iota
	// ProjectionDateTitle returns only PMID, title and publication date.
	ProjectionDateTitle
)
