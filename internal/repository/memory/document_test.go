package memory

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalcare/booking-api/internal/model"
	"github.com/dentalcare/booking-api/internal/repository"
	"github.com/dentalcare/booking-api/pkg/errors"
)

func steppingClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(step)
		return t
	}
}

func TestDocumentStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()

	doc, err := s.Create(ctx, repository.CollectionPatients, "", repository.Fields{"name": "Jane"})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.False(t, doc.CreatedAt.IsZero())

	got, err := s.Get(ctx, repository.CollectionPatients, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Data["name"])

	_, err = s.Create(ctx, repository.CollectionPatients, doc.ID, repository.Fields{})
	assert.True(t, errors.IsCode(err, errors.ErrConflict))

	_, err = s.Get(ctx, repository.CollectionPatients, "missing")
	assert.True(t, errors.IsNotFound(err))

	_, err = s.Get(ctx, repository.CollectionAppointments, doc.ID)
	assert.True(t, errors.IsNotFound(err))
}

func TestDocumentStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	fields := repository.Fields{"name": "Jane"}

	doc, err := s.Create(ctx, "c", "1", fields)
	require.NoError(t, err)
	fields["name"] = "changed"
	doc.Data["name"] = "changed too"

	got, err := s.Get(ctx, "c", "1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Data["name"])
}

func TestDocumentStoreUpdateMergesTopLevel(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	s := NewDocumentStore(WithClock(steppingClock(start, time.Minute)))

	_, err := s.Create(ctx, "c", "1", repository.Fields{"a": 1, "b": "keep"})
	require.NoError(t, err)

	doc, err := s.Update(ctx, "c", "1", repository.Fields{"a": 2, "c": true})
	require.NoError(t, err)
	assert.Equal(t, repository.Fields{"a": 2, "b": "keep", "c": true}, doc.Data)
	assert.Equal(t, start, doc.CreatedAt)
	assert.Equal(t, start.Add(time.Minute), doc.UpdatedAt)

	_, err = s.Update(ctx, "c", "nope", repository.Fields{"a": 3})
	assert.True(t, errors.IsNotFound(err))
}

func TestDocumentStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore(WithClock(steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)))

	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := s.Create(ctx, "c", id, repository.Fields{})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, "other", "x", repository.Fields{})
	require.NoError(t, err)

	res, err := s.List(ctx, "c", repository.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(res.Documents))

	page, err := s.List(ctx, "c", repository.ListQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, []string{"c", "b"}, ids(page.Documents))

	past, err := s.List(ctx, "c", repository.ListQuery{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past.Documents)

	negative, err := s.List(ctx, "c", repository.ListQuery{Limit: 2, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, ids(negative.Documents))

	empty, err := s.List(ctx, "none", repository.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
}

func TestDocumentStoreListDuringUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()

	for _, id := range []string{"a", "b"} {
		_, err := s.Create(ctx, repository.CollectionAppointments, id, repository.Fields{"status": "pending"})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			status := "scheduled"
			if i%2 == 0 {
				status = "cancelled"
			}
			_, err := s.Update(ctx, repository.CollectionAppointments, "a", repository.Fields{"status": status})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			res, err := s.List(ctx, repository.CollectionAppointments, repository.ListQuery{})
			assert.NoError(t, err)
			assert.Len(t, res.Documents, 2)
		}
	}()
	wg.Wait()

	doc, err := s.Get(ctx, repository.CollectionAppointments, "a")
	require.NoError(t, err)
	assert.Equal(t, "scheduled", doc.Data["status"])
}

func TestDocumentStoreListSameTimestampUsesInsertOrder(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewDocumentStore(WithClock(func() time.Time { return fixed }))

	for _, id := range []string{"first", "second"} {
		_, err := s.Create(ctx, "c", id, repository.Fields{})
		require.NoError(t, err)
	}
	res, err := s.List(ctx, "c", repository.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, ids(res.Documents))
}

func TestCodecRoundTripsAppointment(t *testing.T) {
	ctx := context.Background()
	s := NewDocumentStore()
	schedule := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	fields, err := repository.Encode(&model.Appointment{
		Base:             model.Base{ID: "ignored"},
		PatientID:        "p1",
		PrimaryPhysician: "John Green",
		Schedule:         schedule,
		Status:           model.AppointmentStatusPending,
		Reason:           "Checkup",
	})
	require.NoError(t, err)
	assert.NotContains(t, fields, "id")

	doc, err := s.Create(ctx, repository.CollectionAppointments, "", fields)
	require.NoError(t, err)

	var out model.Appointment
	require.NoError(t, repository.Decode(doc, &out))
	assert.Equal(t, doc.ID, out.ID)
	assert.Equal(t, "p1", out.PatientID)
	assert.True(t, schedule.Equal(out.Schedule))
	assert.Equal(t, model.AppointmentStatusPending, out.Status)
	assert.True(t, doc.CreatedAt.Equal(out.CreatedAt))
}

func TestOutboxRepository(t *testing.T) {
	ctx := context.Background()
	r := NewOutboxRepository()

	evt := &model.OutboxEvent{EventType: model.EventAppointmentScheduled, Payload: json.RawMessage(`{}`)}
	require.NoError(t, r.Create(ctx, evt))

	pending, err := r.GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, r.MarkFailed(ctx, evt.ID, "boom", 2))
	pending, _ = r.GetPendingEvents(ctx, 10)
	assert.Len(t, pending, 1)

	require.NoError(t, r.MarkFailed(ctx, evt.ID, "boom", 2))
	pending, _ = r.GetPendingEvents(ctx, 10)
	assert.Empty(t, pending)
	assert.Equal(t, model.OutboxStatusFailed, r.Events()[0].Status)

	other := &model.OutboxEvent{EventType: model.EventAppointmentCancelled, Payload: json.RawMessage(`{}`)}
	require.NoError(t, r.Create(ctx, other))
	require.NoError(t, r.MarkProcessed(ctx, other.ID))

	n, err := r.DeleteProcessedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, r.Events(), 1)
}

func ids(docs []*repository.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}
