// Package views builds the derived corpus views: the pruned citation graph,
// the publication timeline and the yearly publication counts.
//
// Builders are pure functions over fetched records. Service fetches those
// records from an injected Store for each call and keeps no state between
// calls, so it is safe for concurrent use.
package views

import (
	"context"
	"fmt"

	"github.com/matsen/citeline/internal/edge"
	"github.com/matsen/citeline/internal/reference"
	"github.com/sirupsen/logrus"
)

// Store is the document store the views read from.
type Store interface {
	FindArticles(ctx context.Context, filter reference.Filter, projection reference.Projection) ([]reference.Article, error)
	FindArticle(ctx context.Context, pmid string) (*reference.Article, error)
	FindCitationEdges(ctx context.Context) ([]edge.Citation, error)
}

// Service computes views over a Store.
type Service struct {
	store  Store
	logger logrus.FieldLogger
}

// NewService returns a Service reading from store. A nil logger uses the
// logrus standard logger.
func NewService(store Store, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{store: store, logger: logger}
}

// Citations builds the citation graph over all stored citation edges.
func (s *Service) Citations(ctx context.Context) (CitationGraph, error) {
	edges, err := s.store.FindCitationEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding citation edges: %w", err)
	}

	lookup := func(pmid string) (*reference.Article, error) {
		return s.store.FindArticle(ctx, pmid)
	}
	graph, stats, err := buildCitationGraph(edges, lookup)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"edges":           stats.Edges,
		"records":         len(graph),
		"missing_sources": stats.MissingSources,
		"dangling_refs":   stats.DanglingRefs,
	}).Debug("built citation graph")
	return graph, nil
}

// Timeline returns the normalized articles matching search, in store order.
// An empty search selects the whole corpus.
func (s *Service) Timeline(ctx context.Context, search string) ([]NormalizedArticle, error) {
	articles, err := s.store.FindArticles(ctx, reference.Filter{Search: search}, reference.ProjectionFull)
	if err != nil {
		return nil, fmt.Errorf("finding articles: %w", err)
	}

	timeline, skipped, err := buildTimeline(articles)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"search":   search,
		"articles": len(articles),
		"events":   len(timeline),
		"no_year":  skipped,
	}).Debug("built timeline")
	return timeline, nil
}

// TimeSeries returns yearly publication counts for articles matching search.
func (s *Service) TimeSeries(ctx context.Context, search string) (Series, error) {
	articles, err := s.store.FindArticles(ctx, reference.Filter{Search: search}, reference.ProjectionDateTitle)
	if err != nil {
		return nil, fmt.Errorf("finding articles: %w", err)
	}

	series, skipped, err := buildTimeSeries(articles)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"search":   search,
		"articles": len(articles),
		"buckets":  len(series),
		"no_year":  skipped,
	}).Debug("built time series")
	return series, nil
}
