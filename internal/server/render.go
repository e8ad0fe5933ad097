package server

import (
	"net/http"

	"github.com/matsen/citeline/internal/reference"
	"github.com/matsen/citeline/internal/views"
	"github.com/segmentio/encoding/json"
)

// TimelineDocument is the publications timeline in TimelineJS layout.
type TimelineDocument struct {
	Title  TimelineSlide   `json:"title"`
	Events []TimelineEvent `json:"events"`
}

// TimelineSlide is the title slide.
type TimelineSlide struct {
	Text TimelineText `json:"text"`
}

// TimelineText is the text block of a slide or event.
type TimelineText struct {
	Headline string `json:"headline"`
	Text     string `json:"text,omitempty"`
}

// TimelineEvent is one article on the timeline.
type TimelineEvent struct {
	UniqueID  string                  `json:"unique_id"`
	StartDate reference.CanonicalDate `json:"start_date"`
	Text      TimelineText            `json:"text"`
	Link      *string                 `json:"link"`
}

// RenderTimeline builds the timeline document for normalized articles,
// preserving their order.
func RenderTimeline(headline string, articles []views.NormalizedArticle) TimelineDocument {
	doc := TimelineDocument{
		Title:  TimelineSlide{Text: TimelineText{Headline: headline}},
		Events: make([]TimelineEvent, 0, len(articles)),
	}
	for _, a := range articles {
		doc.Events = append(doc.Events, TimelineEvent{
			UniqueID:  a.PMID,
			StartDate: a.Date,
			Text:      TimelineText{Headline: a.Title, Text: a.AbstractText},
			Link:      a.Link,
		})
	}
	return doc
}

// errorResponse is the body of every failed API request.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v fully before writing, so an encoding failure never
// leaves a partial body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encoding response: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	data, _ := json.Marshal(errorResponse{Error: msg})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
