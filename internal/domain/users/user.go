package users

import (
	"context"
	"errors"
	"time"
)

const (
	// TypeGeneral is the default userType for newly registered users.
	TypeGeneral = "general"
	// TypeAdmin is the only elevated role; it unlocks moderation endpoints.
	TypeAdmin = "admin"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
	ErrInvalidInput  = errors.New("invalid user input")
)

// User is the persisted identity record. TotalPosts and Approved are cached
// counters maintained by the event lifecycle manager; the event store's live
// counts remain the source of truth and may drift ahead of them.
type User struct {
	ID         string    `json:"-"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	UserType   string    `json:"userType"`
	TotalPosts int       `json:"totalPosts"`
	Approved   int       `json:"approved"`
	CreatedAt  time.Time `json:"-"`
}

// PublicUser is the projection exposed to admin listings.
type PublicUser struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	UserType string `json:"userType"`
}

type CreateParams struct {
	ID       string
	Email    string
	FullName string
	UserType string
}

type Store interface {
	Create(ctx context.Context, params CreateParams) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]PublicUser, error)
	UpdateType(ctx context.Context, email string, userType string) error
	AddTotalPosts(ctx context.Context, email string, delta int) error
	AddApproved(ctx context.Context, email string, delta int) error
	RecountCounters(ctx context.Context) (int64, error)
}
