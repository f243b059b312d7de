package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentalcare/booking-api/internal/model"
)

// Collection names used by the services.
const (
	CollectionPatients     = "patients"
	CollectionAppointments = "appointments"
)

// Fields is the JSON object body of a document, without id or timestamps.
type Fields map[string]interface{}

// Document is an opaque record in a named collection. The store owns ID,
// CreatedAt and UpdatedAt.
type Document struct {
	Collection string
	ID         string
	Data       Fields
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ListQuery selects a page of a collection, newest first. Limit 0 means all.
type ListQuery struct {
	Limit  int
	Offset int
}

type ListResult struct {
	Documents []*Document
	Total     int
}

type (
	// DocumentStore is the persistence collaborator. Errors are *errors.AppError
	// with code NotFound when a document is absent and Store for everything the
	// backend itself failed on.
	DocumentStore interface {
		// Create stores fields under id, generating one when id is empty.
		Create(ctx context.Context, collection, id string, fields Fields) (*Document, error)
		Get(ctx context.Context, collection, id string) (*Document, error)
		List(ctx context.Context, collection string, q ListQuery) (*ListResult, error)
		// Update merges fields into the top level of the stored document.
		Update(ctx context.Context, collection, id string, fields Fields) (*Document, error)
		Ping(ctx context.Context) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		// MarkFailed records the error and bumps the retry count. Events that
		// reach maxRetries stop being returned as pending.
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, maxRetries int) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
