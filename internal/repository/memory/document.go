package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dentalcare/booking-api/internal/repository"
	"github.com/dentalcare/booking-api/pkg/errors"
)

type entry struct {
	doc *repository.Document
	seq uint64
}

// DocumentStore keeps documents in process memory. It is used by tests and by
// the memory store driver for local development.
type DocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*entry
	seq         uint64
	now         func() time.Time
}

type Option func(*DocumentStore)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentStore) {
		s.now = now
	}
}

func NewDocumentStore(opts ...Option) *DocumentStore {
	s := &DocumentStore{
		collections: make(map[string]map[string]*entry),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DocumentStore) Create(ctx context.Context, collection, id string, fields repository.Fields) (*repository.Document, error) {
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]*entry)
		s.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		return nil, errors.NewConflict("document " + collection + "/" + id + " already exists")
	}

	now := s.now().UTC()
	s.seq++
	e := &entry{
		doc: &repository.Document{
			Collection: collection,
			ID:         id,
			Data:       fields.Clone(),
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		seq: s.seq,
	}
	docs[id] = e
	return copyDoc(e.doc), nil
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*repository.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.collections[collection][id]
	if !ok {
		return nil, errors.NewNotFound(collection+"/"+id, nil)
	}
	return copyDoc(e.doc), nil
}

func (s *DocumentStore) List(ctx context.Context, collection string, q repository.ListQuery) (*repository.ListResult, error) {
	// Update swaps entry docs under the write lock, so the snapshot is taken
	// while the read lock is held.
	s.mu.RLock()
	entries := make([]entry, 0, len(s.collections[collection]))
	for _, e := range s.collections[collection] {
		entries = append(entries, entry{doc: e.doc, seq: e.seq})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.doc.CreatedAt.Equal(b.doc.CreatedAt) {
			return a.doc.CreatedAt.After(b.doc.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := len(entries)
	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}

	docs := make([]*repository.Document, 0, end-start)
	for _, e := range entries[start:end] {
		docs = append(docs, copyDoc(e.doc))
	}
	return &repository.ListResult{Documents: docs, Total: total}, nil
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, fields repository.Fields) (*repository.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.collections[collection][id]
	if !ok {
		return nil, errors.NewNotFound(collection+"/"+id, nil)
	}

	data := e.doc.Data.Clone()
	for k, v := range fields {
		data[k] = v
	}
	e.doc = &repository.Document{
		Collection: collection,
		ID:         id,
		Data:       data,
		CreatedAt:  e.doc.CreatedAt,
		UpdatedAt:  s.now().UTC(),
	}
	return copyDoc(e.doc), nil
}

func (s *DocumentStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func copyDoc(d *repository.Document) *repository.Document {
	out := *d
	out.Data = d.Data.Clone()
	return &out
}
