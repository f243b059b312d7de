package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentalcare/booking-api/pkg/errors"
	"github.com/dentalcare/booking-api/pkg/metrics"
)

type instrumentedStore struct {
	next    DocumentStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Instrument wraps a store with operation metrics and logs every backend
// failure with its collection and id.
func Instrument(next DocumentStore, m *metrics.Metrics, logger zerolog.Logger) DocumentStore {
	return &instrumentedStore{next: next, metrics: m, logger: logger}
}

func (s *instrumentedStore) observe(op, collection, id string, start time.Time, err error) {
	s.metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())

	status := "ok"
	switch {
	case err == nil:
	case errors.IsNotFound(err):
		status = "not_found"
	case errors.IsStore(err):
		status = "error"
		s.logger.Error().Err(err).
			Str("operation", op).
			Str("collection", collection).
			Str("id", id).
			Msg("document store call failed")
	default:
		status = "rejected"
	}
	s.metrics.StoreOperations.WithLabelValues(op, collection, status).Inc()
}

func (s *instrumentedStore) Create(ctx context.Context, collection, id string, fields Fields) (*Document, error) {
	start := time.Now()
	doc, err := s.next.Create(ctx, collection, id, fields)
	if doc != nil {
		id = doc.ID
	}
	s.observe("create", collection, id, start, err)
	return doc, err
}

func (s *instrumentedStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	start := time.Now()
	doc, err := s.next.Get(ctx, collection, id)
	s.observe("get", collection, id, start, err)
	return doc, err
}

func (s *instrumentedStore) List(ctx context.Context, collection string, q ListQuery) (*ListResult, error) {
	start := time.Now()
	res, err := s.next.List(ctx, collection, q)
	s.observe("list", collection, "", start, err)
	return res, err
}

func (s *instrumentedStore) Update(ctx context.Context, collection, id string, fields Fields) (*Document, error) {
	start := time.Now()
	doc, err := s.next.Update(ctx, collection, id, fields)
	s.observe("update", collection, id, start, err)
	return doc, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
