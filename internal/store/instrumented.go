package store

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OperationObserver receives the outcome of every store call.
type OperationObserver interface {
	ObserveStoreOperation(collection, operation, result string, duration time.Duration)
}

type instrumentedStore struct {
	next     DocumentStore
	observer OperationObserver
	tracer   trace.Tracer
}

// Instrument decorates a store with tracing spans and operation metrics.
// A nil observer records spans only.
func Instrument(next DocumentStore, observer OperationObserver) DocumentStore {
	return &instrumentedStore{
		next:     next,
		observer: observer,
		tracer:   otel.Tracer("github.com/noah-isme/planner-go-api/internal/store"),
	}
}

// Ping forwards to the wrapped store when it supports pinging.
func (s *instrumentedStore) Ping(ctx context.Context) error {
	if pinger, ok := s.next.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func (s *instrumentedStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	var documents []Document
	err := s.observe(ctx, collection, "query", "", func(ctx context.Context) error {
		var err error
		documents, err = s.next.Query(ctx, collection, filters...)
		return err
	})
	return documents, err
}

func (s *instrumentedStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var document Document
	err := s.observe(ctx, collection, "get", id, func(ctx context.Context) error {
		var err error
		document, err = s.next.Get(ctx, collection, id)
		return err
	})
	return document, err
}

func (s *instrumentedStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	return s.observe(ctx, collection, "set", id, func(ctx context.Context) error {
		return s.next.Set(ctx, collection, id, data)
	})
}

func (s *instrumentedStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return s.observe(ctx, collection, "update", id, func(ctx context.Context) error {
		return s.next.Update(ctx, collection, id, fields)
	})
}

func (s *instrumentedStore) Delete(ctx context.Context, collection, id string) error {
	return s.observe(ctx, collection, "delete", id, func(ctx context.Context) error {
		return s.next.Delete(ctx, collection, id)
	})
}

func (s *instrumentedStore) observe(ctx context.Context, collection, operation, id string, call func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "store."+operation)
	span.SetAttributes(attribute.String("store.collection", collection))
	if id != "" {
		span.SetAttributes(attribute.String("store.document_id", id))
	}
	defer span.End()

	start := time.Now()
	err := call(ctx)
	duration := time.Since(start)

	result := "ok"
	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, operation+"_failed")
	}

	if s.observer != nil {
		s.observer.ObserveStoreOperation(collection, operation, result, duration)
	}

	return err
}
