package source

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"recipebox"
)

// Instrumented wraps a Source with a span per call and search metrics.
type Instrumented struct {
	next   Source
	tracer trace.Tracer

	searches metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
	hits     metric.Int64Histogram
}

func NewInstrumented(next Source, tracer trace.Tracer, meter metric.Meter) *Instrumented {
	s := &Instrumented{next: next, tracer: tracer}
	s.searches, _ = meter.Int64Counter("source_searches_total",
		metric.WithDescription("Total number of recipe searches"))
	s.failures, _ = meter.Int64Counter("source_search_failures_total",
		metric.WithDescription("Total number of recipe searches that failed"))
	s.duration, _ = meter.Float64Histogram("source_search_duration_seconds",
		metric.WithDescription("Time taken by recipe searches in seconds"))
	s.hits, _ = meter.Int64Histogram("source_search_hits",
		metric.WithDescription("Number of hits returned per recipe search"))
	return s
}

func (s *Instrumented) Search(ctx context.Context, query string, filters map[string]string) (recipebox.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "Source.Search", trace.WithAttributes(
		attribute.String("search.query", query),
		attribute.Int("search.filters", len(filters)),
	))
	defer span.End()

	return s.observe(ctx, span, "search", func(ctx context.Context) (recipebox.SearchResult, error) {
		return s.next.Search(ctx, query, filters)
	})
}

func (s *Instrumented) Trending(ctx context.Context) (recipebox.SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "Source.Trending")
	defer span.End()

	return s.observe(ctx, span, "trending", func(ctx context.Context) (recipebox.SearchResult, error) {
		return Trending(ctx, s.next)
	})
}

func (s *Instrumented) FetchByID(ctx context.Context, id string) (recipebox.Recipe, error) {
	ctx, span := s.tracer.Start(ctx, "Source.FetchByID", trace.WithAttributes(
		attribute.String("recipe.id", id),
	))
	defer span.End()

	recipe, err := FetchByID(ctx, s.next, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return recipe, err
	}
	span.SetStatus(codes.Ok, "")
	return recipe, nil
}

func (s *Instrumented) observe(ctx context.Context, span trace.Span, op string, fn func(context.Context) (recipebox.SearchResult, error)) (recipebox.SearchResult, error) {
	opAttr := metric.WithAttributes(attribute.String("op", op))
	s.searches.Add(ctx, 1, opAttr)

	start := time.Now()
	result, err := fn(ctx)
	s.duration.Record(ctx, time.Since(start).Seconds(), opAttr)

	if err != nil {
		s.failures.Add(ctx, 1, opAttr)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	s.hits.Record(ctx, int64(len(result.Hits)), opAttr)
	span.SetAttributes(attribute.Int("search.hits", len(result.Hits)))
	span.SetStatus(codes.Ok, "")
	return result, nil
}
