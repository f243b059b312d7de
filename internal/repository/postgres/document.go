package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/dentalcare/booking-api/internal/repository"
	"github.com/dentalcare/booking-api/pkg/errors"
)

const uniqueViolation = "23505"

type documentRow struct {
	Collection string         `db:"collection"`
	ID         string         `db:"id"`
	Data       types.JSONText `db:"data"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r documentRow) toDocument() (*repository.Document, error) {
	fields := repository.Fields{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &fields); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", r.Collection, r.ID, err)
		}
	}
	return &repository.Document{
		Collection: r.Collection,
		ID:         r.ID,
		Data:       fields,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}, nil
}

type documentStore struct {
	BaseRepository
}

// NewDocumentStore stores every collection in the documents table as JSONB.
func NewDocumentStore(base BaseRepository) repository.DocumentStore {
	return &documentStore{base}
}

func (s *documentStore) Create(ctx context.Context, collection, id string, fields repository.Fields) (*repository.Document, error) {
	if id == "" {
		id = uuid.NewString()
	}
	data, err := marshalFields(fields)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING collection, id, data, created_at, updated_at
	`
	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, collection, id, data); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, errors.NewConflict(fmt.Sprintf("document %s/%s already exists", collection, id))
		}
		return nil, errors.NewStore("create", err)
	}
	return row.toDocument()
}

func (s *documentStore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	query := `
		SELECT collection, id, data, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, collection, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFound(collection+"/"+id, err)
		}
		return nil, errors.NewStore("get", err)
	}
	return row.toDocument()
}

func (s *documentStore) List(ctx context.Context, collection string, q repository.ListQuery) (*repository.ListResult, error) {
	var limit sql.NullInt64
	if q.Limit > 0 {
		limit = sql.NullInt64{Int64: int64(q.Limit), Valid: true}
	}

	var (
		rows  []documentRow
		total int
	)
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, `SELECT COUNT(*) FROM documents WHERE collection = $1`, collection); err != nil {
			return err
		}
		query := `
			SELECT collection, id, data, created_at, updated_at
			FROM documents
			WHERE collection = $1
			ORDER BY created_at DESC, seq DESC
			LIMIT $2 OFFSET $3
		`
		return tx.SelectContext(ctx, &rows, query, collection, limit, q.Offset)
	})
	if err != nil {
		return nil, errors.NewStore("list", err)
	}

	docs := make([]*repository.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.toDocument()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return &repository.ListResult{Documents: docs, Total: total}, nil
}

func (s *documentStore) Update(ctx context.Context, collection, id string, fields repository.Fields) (*repository.Document, error) {
	data, err := marshalFields(fields)
	if err != nil {
		return nil, err
	}

	// jsonb || replaces top level keys and keeps the rest.
	query := `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2
		RETURNING collection, id, data, created_at, updated_at
	`
	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, collection, id, data); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFound(collection+"/"+id, err)
		}
		return nil, errors.NewStore("update", err)
	}
	return row.toDocument()
}

func marshalFields(fields repository.Fields) (types.JSONText, error) {
	if fields == nil {
		fields = repository.Fields{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.NewBadRequest("document fields are not valid JSON", err)
	}
	return types.JSONText(raw), nil
}
