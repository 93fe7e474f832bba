package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bunkmate/bunkmate-backend/internal/model"
)

// FriendRepository handles friend links.
type FriendRepository struct {
	pool *pgxpool.Pool
}

func NewFriendRepository(pool *pgxpool.Pool) *FriendRepository {
	return &FriendRepository{pool: pool}
}

const friendSelect = `SELECT f.id, f.user_id, f.friend_id, f.friend_name, u.friend_code, f.added_at
	FROM friends f JOIN users u ON u.id = f.friend_id`

func (r *FriendRepository) Create(ctx context.Context, f *model.Friend) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO friends (user_id, friend_id, friend_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, added_at`,
		f.UserID, f.FriendID, f.FriendName,
	).Scan(&f.ID, &f.AddedAt)
	if uniqueConstraint(err) != "" {
		return ErrDuplicateFriend
	}
	return err
}

func (r *FriendRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Friend, error) {
	rows, err := r.pool.Query(ctx, friendSelect+` WHERE f.user_id = $1 ORDER BY f.added_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := []model.Friend{}
	for rows.Next() {
		f, err := scanFriend(rows)
		if err != nil {
			return nil, err
		}
		friends = append(friends, *f)
	}
	return friends, rows.Err()
}

func (r *FriendRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Friend, error) {
	f, err := scanFriend(r.pool.QueryRow(ctx, friendSelect+` WHERE f.id = $1 AND f.user_id = $2`, id, userID))
	return f, mapNoRows(err)
}

// Exists reports whether userID already links to friendID.
func (r *FriendRepository) Exists(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM friends WHERE user_id = $1 AND friend_id = $2)`,
		userID, friendID).Scan(&exists)
	return exists, err
}

func (r *FriendRepository) UpdateName(ctx context.Context, userID, id uuid.UUID, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE friends SET friend_name = $3 WHERE id = $1 AND user_id = $2`, id, userID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FriendRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM friends WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanFriend(row pgx.Row) (*model.Friend, error) {
	f := &model.Friend{}
	if err := row.Scan(&f.ID, &f.UserID, &f.FriendID, &f.FriendName, &f.FriendCode, &f.AddedAt); err != nil {
		return nil, err
	}
	return f, nil
}
