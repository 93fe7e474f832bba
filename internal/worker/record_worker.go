package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bunkmate/bunkmate-backend/internal/metrics"
	"github.com/bunkmate/bunkmate-backend/internal/model"
	"github.com/bunkmate/bunkmate-backend/internal/queue"
)

// RecordSource is the queue the worker consumes.
type RecordSource interface {
	Next(ctx context.Context, timeout time.Duration) (string, error)
	Pop(ctx context.Context) (string, error)
	Requeue(ctx context.Context, payload string) error
}

// RecordWriter persists one attendance record.
type RecordWriter interface {
	Insert(ctx context.Context, rec *model.AttendanceRecord) error
}

// RecordWorker consumes persist_attendance_records_queue and inserts records into PostgreSQL.
type RecordWorker struct {
	source  RecordSource
	writer  RecordWriter
	metrics *metrics.Metrics
	log     zerolog.Logger

	pollTimeout time.Duration
	retryDelay  time.Duration
}

// NewRecordWorker creates a new RecordWorker. m may be nil.
func NewRecordWorker(source RecordSource, writer RecordWriter, m *metrics.Metrics, log zerolog.Logger) *RecordWorker {
	return &RecordWorker{
		source:      source,
		writer:      writer,
		metrics:     m,
		log:         log.With().Str("component", "record_worker").Logger(),
		pollTimeout: time.Second,
		retryDelay:  5 * time.Second,
	}
}

// Start begins the worker loop. Call in a goroutine.
func (w *RecordWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *RecordWorker) processNext(ctx context.Context) {
	payload, err := w.source.Next(ctx, w.pollTimeout)
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			w.sleep(ctx, w.pollTimeout)
		}
		return
	}

	rec, err := queue.Decode(payload)
	if err != nil {
		w.log.Error().Err(err).Msg("Dropping malformed record")
		return
	}

	if err := w.persist(ctx, &rec); err != nil {
		w.log.Error().Err(err).
			Str("record_id", rec.ID.String()).
			Str("subject_id", rec.SubjectID.String()).
			Msg("Persist error, retrying later")
		// Push back to queue for retry.
		if err := w.source.Requeue(context.Background(), payload); err != nil {
			w.log.Error().Err(err).Msg("Requeue failed, record lost")
		}
		w.sleep(ctx, w.retryDelay)
	}
}

func (w *RecordWorker) persist(ctx context.Context, rec *model.AttendanceRecord) error {
	if err := w.writer.Insert(ctx, rec); err != nil {
		if w.metrics != nil {
			w.metrics.RecordFailures.Inc()
		}
		return err
	}
	if w.metrics != nil {
		w.metrics.RecordsPersisted.Inc()
	}
	return nil
}

// drain processes all remaining items in the queue before shutdown.
func (w *RecordWorker) drain(ctx context.Context) {
	drained := 0
	for {
		payload, err := w.source.Pop(ctx)
		if err != nil {
			break
		}

		rec, err := queue.Decode(payload)
		if err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persist(ctx, &rec); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			_ = w.source.Requeue(ctx, payload)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}

func (w *RecordWorker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
