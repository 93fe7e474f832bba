package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bunkmate/bunkmate-backend/internal/config"
	"github.com/bunkmate/bunkmate-backend/internal/model"
)

// RecordQueue is a Redis list of attendance records waiting to be persisted.
// Producers RPUSH, the record worker BLPOPs.
type RecordQueue struct {
	rdb *redis.Client
	key string
}

// NewRecordQueue builds a queue on the configured list key.
func NewRecordQueue(rdb *redis.Client) *RecordQueue {
	return &RecordQueue{rdb: rdb, key: config.WorkerKey.PersistAttendanceRecordsQueue}
}

// Enqueue appends a record.
func (q *RecordQueue) Enqueue(ctx context.Context, rec model.AttendanceRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return q.Requeue(ctx, string(payload))
}

// Requeue appends an already-encoded payload, used when persisting fails.
func (q *RecordQueue) Requeue(ctx context.Context, payload string) error {
	return q.rdb.RPush(ctx, q.key, payload).Err()
}

// Next blocks up to timeout for the next payload. It returns redis.Nil on timeout.
func (q *RecordQueue) Next(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		return "", err
	}
	if len(res) < 2 {
		return "", redis.Nil
	}
	return res[1], nil
}

// Pop removes the next payload without blocking. It returns redis.Nil when empty.
func (q *RecordQueue) Pop(ctx context.Context) (string, error) {
	return q.rdb.LPop(ctx, q.key).Result()
}

// Len reports the queue depth.
func (q *RecordQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

// Decode parses a queued payload.
func Decode(payload string) (model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return rec, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}
