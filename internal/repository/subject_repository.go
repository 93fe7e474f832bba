package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bunkmate/bunkmate-backend/internal/model"
)

// SubjectRepository handles subject data access. Every query is scoped to the owning user.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

const subjectColumns = `id, user_id, name, classes_attended, total_classes, minimum_attendance, created_at, updated_at`

func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subjects (user_id, name, classes_attended, total_classes, minimum_attendance)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		s.UserID, s.Name, s.Attended, s.Total, s.MinimumAttendance,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// ListByUser returns a user's subjects. newestFirst orders by creation time descending.
func (r *SubjectRepository) ListByUser(ctx context.Context, userID uuid.UUID, newestFirst bool) ([]model.Subject, error) {
	order := "created_at ASC"
	if newestFirst {
		order = "created_at DESC"
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+subjectColumns+` FROM subjects WHERE user_id = $1 ORDER BY `+order, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subjects := []model.Subject{}
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, *s)
	}
	return subjects, rows.Err()
}

func (r *SubjectRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Subject, error) {
	s, err := scanSubject(r.pool.QueryRow(ctx,
		`SELECT `+subjectColumns+` FROM subjects WHERE id = $1 AND user_id = $2`, id, userID))
	return s, mapNoRows(err)
}

// Increment adds one held class, and one attended class when attended is true,
// in a single statement so concurrent taps never lose an update.
func (r *SubjectRepository) Increment(ctx context.Context, userID, id uuid.UUID, attended bool) (*model.Subject, error) {
	delta := 0
	if attended {
		delta = 1
	}
	s, err := scanSubject(r.pool.QueryRow(ctx,
		`UPDATE subjects
		 SET classes_attended = classes_attended + $3, total_classes = total_classes + 1, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+subjectColumns, id, userID, delta))
	return s, mapNoRows(err)
}

// UpdateCounts overwrites attended and total.
func (r *SubjectRepository) UpdateCounts(ctx context.Context, userID, id uuid.UUID, attended, total int) (*model.Subject, error) {
	s, err := scanSubject(r.pool.QueryRow(ctx,
		`UPDATE subjects
		 SET classes_attended = $3, total_classes = $4, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+subjectColumns, id, userID, attended, total))
	return s, mapNoRows(err)
}

func (r *SubjectRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubject(row pgx.Row) (*model.Subject, error) {
	s := &model.Subject{}
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Attended, &s.Total, &s.MinimumAttendance, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}
