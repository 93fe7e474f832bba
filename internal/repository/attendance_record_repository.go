package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bunkmate/bunkmate-backend/internal/model"
)

// AttendanceRecordRepository stores the per-action attendance history.
type AttendanceRecordRepository struct {
	pool *pgxpool.Pool
}

func NewAttendanceRecordRepository(pool *pgxpool.Pool) *AttendanceRecordRepository {
	return &AttendanceRecordRepository{pool: pool}
}

// Insert stores a record. A record whose id already exists is ignored, so a
// re-queued payload is persisted at most once. A record for a subject that
// has since been deleted is dropped as well.
func (r *AttendanceRecordRepository) Insert(ctx context.Context, rec *model.AttendanceRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attendance_records (id, subject_id, user_id, attended, recorded_at)
		 SELECT $1::uuid, $2::uuid, $3::uuid, $4::boolean, $5::timestamptz
		 WHERE EXISTS (SELECT 1 FROM subjects WHERE id = $2::uuid)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.SubjectID, rec.UserID, rec.Attended, rec.RecordedAt,
	)
	return err
}

// ListBySubject returns a subject's history, newest first.
func (r *AttendanceRecordRepository) ListBySubject(ctx context.Context, userID, subjectID uuid.UUID) ([]model.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject_id, user_id, attended, recorded_at
		 FROM attendance_records
		 WHERE subject_id = $1 AND user_id = $2
		 ORDER BY recorded_at DESC`, subjectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.AttendanceRecord{}
	for rows.Next() {
		var rec model.AttendanceRecord
		if err := rows.Scan(&rec.ID, &rec.SubjectID, &rec.UserID, &rec.Attended, &rec.RecordedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
