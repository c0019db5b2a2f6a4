package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/digital-event-scheduler/server/internal/domain/users"
)

var _ users.Store = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO users (id, email, full_name, user_type)
VALUES ($1, $2, $3, $4)
`, params.ID, params.Email, params.FullName, params.UserType)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return users.ErrAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	var user users.User
	err := r.pool.QueryRow(ctx, `
SELECT id, email, full_name, user_type, total_posts, approved, created_at
  FROM users
 WHERE email = $1
`, email).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.UserType,
		&user.TotalPosts,
		&user.Approved,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]users.PublicUser, error) {
	rows, err := r.pool.Query(ctx, `
SELECT email, full_name, user_type
  FROM users
 ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	listed := []users.PublicUser{}
	for rows.Next() {
		var user users.PublicUser
		if err := rows.Scan(&user.Email, &user.FullName, &user.UserType); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		listed = append(listed, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return listed, nil
}

func (r *UserRepository) UpdateType(ctx context.Context, email string, userType string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET user_type = $2 WHERE email = $1
`, email, userType)
	if err != nil {
		return fmt.Errorf("update user type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AddTotalPosts(ctx context.Context, email string, delta int) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET total_posts = total_posts + $2 WHERE email = $1
`, email, delta)
	if err != nil {
		return fmt.Errorf("add total posts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AddApproved(ctx context.Context, email string, delta int) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET approved = approved + $2 WHERE email = $1
`, email, delta)
	if err != nil {
		return fmt.Errorf("add approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

// RecountCounters rewrites the cached per-user counters from the events
// table. The request path maintains them best-effort, so they can drift;
// the reconcile command calls this to close the gap.
func (r *UserRepository) RecountCounters(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE users u
   SET total_posts = counts.total,
       approved    = counts.approved
  FROM (
    SELECT u2.email,
           COUNT(e.ulid)                                        AS total,
           COUNT(e.ulid) FILTER (WHERE e.status = 'approved')   AS approved
      FROM users u2
      LEFT JOIN events e ON e.author = u2.email
     GROUP BY u2.email
  ) counts
 WHERE counts.email = u.email
   AND (u.total_posts <> counts.total OR u.approved <> counts.approved)
`)
	if err != nil {
		return 0, fmt.Errorf("recount counters: %w", err)
	}
	return tag.RowsAffected(), nil
}
