// Package importer converts external article dumps into corpus articles.
package importer

import (
	"fmt"

	"github.com/matsen/citeline/internal/reference"
	"github.com/segmentio/encoding/json"
)

// MedlineDocument is a PubMed record in the nested Entrez layout, as exported
// from MongoDB collections populated with Biopython. Unknown fields are ignored.
type MedlineDocument struct {
	MedlineCitation struct {
		PMID    reference.FlexibleString `json:"PMID"`
		Article struct {
			ArticleTitle string `json:"ArticleTitle"`
			Journal      struct {
				JournalIssue struct {
					PubDate reference.PartialDate `json:"PubDate"`
				} `json:"JournalIssue"`
			} `json:"Journal"`
			Abstract medlineAbstract `json:"Abstract"`
		} `json:"Article"`
	} `json:"MedlineCitation"`
	PubmedData struct {
		ArticleIdList []reference.FlexibleString `json:"ArticleIdList"`
	} `json:"PubmedData"`
}

// medlineAbstract accepts both the abstract object and the empty string some
// exports store in its place.
type medlineAbstract struct {
	AbstractText reference.AbstractText `json:"AbstractText"`
}

func (m *medlineAbstract) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		*m = medlineAbstract{}
		return nil
	}
	type plain medlineAbstract
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("parsing Abstract: %w", err)
	}
	*m = medlineAbstract(p)
	return nil
}

// ParseMedline decodes one Medline document and converts it to an Article.
func ParseMedline(data []byte) (reference.Article, error) {
	var doc MedlineDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return reference.Article{}, fmt.Errorf("parsing Medline document: %w", err)
	}
	return medlineToArticle(doc)
}

// medlineToArticle converts a Medline document to our Article type.
func medlineToArticle(doc MedlineDocument) (reference.Article, error) {
	citation := doc.MedlineCitation
	if citation.PMID == "" {
		return reference.Article{}, fmt.Errorf("missing required field 'MedlineCitation.PMID'")
	}

	var ids []string
	for _, id := range doc.PubmedData.ArticleIdList {
		if id != "" {
			ids = append(ids, id.String())
		}
	}

	return reference.Article{
		PMID:           citation.PMID.String(),
		Title:          citation.Article.ArticleTitle,
		PubDate:        citation.Article.Journal.JournalIssue.PubDate,
		AbstractText:   citation.Article.Abstract.AbstractText,
		IdentifierList: ids,
	}, nil
}
