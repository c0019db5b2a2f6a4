package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/digital-event-scheduler/server/internal/domain/events"
)

var _ events.Store = (*EventRepository)(nil)

const eventColumns = `ulid, title, description, photo, category, location, participant, date, author, status, created_at, updated_at`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	err := row.Scan(
		&event.ULID,
		&event.Title,
		&event.Description,
		&event.Photo,
		&event.Category,
		&event.Location,
		&event.Participant,
		&event.Date,
		&event.Author,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func collectEvents(rows pgx.Rows) ([]events.Event, error) {
	defer rows.Close()

	listed := []events.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		listed = append(listed, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return listed, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, `
INSERT INTO events (ulid, title, description, photo, category, location, participant, date, author, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending')
RETURNING `+eventColumns+`
`,
		params.ULID,
		params.Title,
		params.Description,
		params.Photo,
		params.Category,
		params.Location,
		params.Participant,
		params.Date,
		params.Author,
	))
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetByULID(ctx context.Context, ulid string) (*events.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, `
SELECT `+eventColumns+` FROM events WHERE ulid = $1
`, ulid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) GetAuthor(ctx context.Context, ulid string) (string, error) {
	var author string
	err := r.pool.QueryRow(ctx, `
SELECT author FROM events WHERE ulid = $1
`, ulid).Scan(&author)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", events.ErrNotFound
		}
		return "", fmt.Errorf("get event author: %w", err)
	}
	return author, nil
}

func (r *EventRepository) Update(ctx context.Context, ulid string, params events.UpdateParams) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE events
   SET title       = $2,
       description = $3,
       photo       = $4,
       category    = $5,
       location    = $6,
       participant = $7,
       date        = $8,
       updated_at  = now()
 WHERE ulid = $1
`,
		ulid,
		params.Title,
		params.Description,
		params.Photo,
		params.Category,
		params.Location,
		params.Participant,
		params.Date,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) SetStatus(ctx context.Context, ulid string, status string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE events SET status = $2, updated_at = now() WHERE ulid = $1
`, ulid, status)
	if err != nil {
		return fmt.Errorf("set event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, ulid string) error {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM events WHERE ulid = $1
`, ulid)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) ListByAuthor(ctx context.Context, author string) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE author = $1
 ORDER BY updated_at DESC
`, author)
	if err != nil {
		return nil, fmt.Errorf("list events by author: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) ListAll(ctx context.Context) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list all events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) SearchApproved(ctx context.Context, filters events.SearchFilters) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE status = 'approved'
   AND title ~* $1
   AND ($2 = '' OR category = $2)
 ORDER BY date DESC
`, filters.SearchKey, filters.Category)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) Upcoming(ctx context.Context, now time.Time, limit int) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE status = 'approved'
   AND date > $1
 ORDER BY date DESC
 LIMIT $2
`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("upcoming events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepository) CountByAuthor(ctx context.Context, author string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM events WHERE author = $1
`, author).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events by author: %w", err)
	}
	return count, nil
}

func (r *EventRepository) CountByAuthorAndStatus(ctx context.Context, author string, status string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM events WHERE author = $1 AND status = $2
`, author, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events by author and status: %w", err)
	}
	return count, nil
}

func (r *EventRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM events WHERE status = $1
`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events by status: %w", err)
	}
	return count, nil
}

func (r *EventRepository) CountApprovedAfter(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM events WHERE status = 'approved' AND date > $1
`, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count approved future events: %w", err)
	}
	return count, nil
}
