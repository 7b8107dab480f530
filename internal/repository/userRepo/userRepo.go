package userRepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storage-service/internal/model/user"
)

type UserRepo struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, id uint32) (*user.User, error) {
	var u user.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, space_taken, subscription_space, privileged
		 FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.SpaceTaken, &u.SubscriptionSpace, &u.Privileged)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Exists(ctx context.Context, id uint32) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// SearchByUsernamePrefix backs the sharing dialog's directory search.
func (r *UserRepo) SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*user.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, username, space_taken, subscription_space, privileged
		 FROM users WHERE username LIKE $1 || '%'
		 ORDER BY username LIMIT $2`, prefix, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.SpaceTaken, &u.SubscriptionSpace, &u.Privileged); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// SumFileSizes recomputes the user's consumed space from the file rows.
// It exists for offline reconciliation audits only; request handling
// always reads the space_taken counter.
func (r *UserRepo) SumFileSizes(ctx context.Context, ownerID uint32) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(f.size), 0)
		 FROM files f
		 JOIN folders d ON d.id = f.folder_id
		 WHERE d.owner_id = $1`, ownerID).Scan(&sum)
	return sum, err
}
