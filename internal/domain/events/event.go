package events

import (
	"context"
	"errors"
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// DefaultPhoto is substituted when a submission omits the photo URL.
const DefaultPhoto = "https://i.ibb.co.com/FLWX4bfj/Event-Default-Logo.png"

// UpcomingLimit caps the public up-coming-events listing.
const UpcomingLimit = 6

var (
	ErrNotFound = errors.New("event not found")
)

// Event is the persisted event record. Status only ever moves from pending
// to approved; there is no rejected state and no way back.
type Event struct {
	ULID        string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Photo       string    `json:"photo"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Participant string    `json:"participant"`
	Date        time.Time `json:"date"`
	Author      string    `json:"author"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateParams struct {
	ULID        string
	Title       string
	Description string
	Photo       string
	Category    string
	Location    string
	Participant string
	Date        time.Time
	Author      string
}

type UpdateParams struct {
	Title       string
	Description string
	Photo       string
	Category    string
	Location    string
	Participant string
	Date        time.Time
}

// SearchFilters narrows the public listing. SearchKey is matched against the
// title as a case-insensitive regular expression; Category must equal the
// event's category when set.
type SearchFilters struct {
	SearchKey string
	Category  string
}

// Stats mirrors the public count-events payload. CompletedEvents counts
// approved events with a future date; the name is historical and kept as-is.
type Stats struct {
	TotalEvents     int64 `json:"totalEvents"`
	CompletedEvents int64 `json:"completedEvents"`
}

// AuthorCounts is the live-counted my-event-count payload.
type AuthorCounts struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
}

type Store interface {
	Create(ctx context.Context, params CreateParams) (*Event, error)
	GetByULID(ctx context.Context, ulid string) (*Event, error)
	GetAuthor(ctx context.Context, ulid string) (string, error)
	Update(ctx context.Context, ulid string, params UpdateParams) error
	SetStatus(ctx context.Context, ulid string, status string) error
	Delete(ctx context.Context, ulid string) error
	ListByAuthor(ctx context.Context, author string) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
	SearchApproved(ctx context.Context, filters SearchFilters) ([]Event, error)
	Upcoming(ctx context.Context, now time.Time, limit int) ([]Event, error)
	CountByAuthor(ctx context.Context, author string) (int64, error)
	CountByAuthorAndStatus(ctx context.Context, author string, status string) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountApprovedAfter(ctx context.Context, now time.Time) (int64, error)
}

// CounterStore is the slice of the identity store the lifecycle manager
// needs for maintaining the cached per-author counters.
type CounterStore interface {
	AddTotalPosts(ctx context.Context, email string, delta int) error
	AddApproved(ctx context.Context, email string, delta int) error
}
