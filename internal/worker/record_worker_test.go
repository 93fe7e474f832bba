package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunkmate/bunkmate-backend/internal/metrics"
	"github.com/bunkmate/bunkmate-backend/internal/model"
)

type memSource struct {
	mu    sync.Mutex
	items []string
}

func (s *memSource) push(t *testing.T, rec model.AttendanceRecord) {
	t.Helper()
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	s.mu.Lock()
	s.items = append(s.items, string(raw))
	s.mu.Unlock()
}

func (s *memSource) Pop(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return "", redis.Nil
	}
	item := s.items[0]
	s.items = s.items[1:]
	return item, nil
}

func (s *memSource) Next(ctx context.Context, timeout time.Duration) (string, error) {
	item, err := s.Pop(ctx)
	if errors.Is(err, redis.Nil) {
		select {
		case <-ctx.Done():
		case <-time.After(timeout):
		}
	}
	return item, err
}

func (s *memSource) Requeue(_ context.Context, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, payload)
	return nil
}

func (s *memSource) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type memWriter struct {
	mu       sync.Mutex
	records  []model.AttendanceRecord
	failures int
}

func (w *memWriter) Insert(_ context.Context, rec *model.AttendanceRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("db unavailable")
	}
	w.records = append(w.records, *rec)
	return nil
}

func (w *memWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}

func newTestWorker(src *memSource, dst *memWriter) (*RecordWorker, *metrics.Metrics) {
	m := metrics.New(nil)
	w := NewRecordWorker(src, dst, m, zerolog.Nop())
	w.pollTimeout = 10 * time.Millisecond
	w.retryDelay = 10 * time.Millisecond
	return w, m
}

func TestRecordWorker_PersistsAndRetries(t *testing.T) {
	src := &memSource{}
	dst := &memWriter{failures: 1}
	w, m := newTestWorker(src, dst)

	rec := model.AttendanceRecord{ID: uuid.New(), SubjectID: uuid.New(), UserID: uuid.New(), Attended: true, RecordedAt: time.Now().UTC()}
	src.push(t, rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return dst.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, rec.ID, dst.records[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsPersisted))
}

func TestRecordWorker_DropsMalformedPayload(t *testing.T) {
	src := &memSource{items: []string{"{not json"}}
	dst := &memWriter{}
	w, _ := newTestWorker(src, dst)

	w.processNext(context.Background())
	assert.Zero(t, src.len())
	assert.Zero(t, dst.count())
}

func TestRecordWorker_DrainOnShutdown(t *testing.T) {
	src := &memSource{}
	dst := &memWriter{}
	w, _ := newTestWorker(src, dst)

	for i := 0; i < 3; i++ {
		src.push(t, model.AttendanceRecord{ID: uuid.New(), SubjectID: uuid.New(), UserID: uuid.New()})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)

	assert.Equal(t, 3, dst.count())
	assert.Zero(t, src.len())
}

func TestRecordWorker_DrainStopsOnFailure(t *testing.T) {
	src := &memSource{}
	dst := &memWriter{failures: 1}
	w, _ := newTestWorker(src, dst)

	src.push(t, model.AttendanceRecord{ID: uuid.New()})
	w.drain(context.Background())

	assert.Zero(t, dst.count())
	assert.Equal(t, 1, src.len(), "failed record goes back to the queue")
}
