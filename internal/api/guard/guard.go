// Package guard implements the ordered request gates that front every
// protected endpoint: token validity, identity match, resource ownership and
// role checks. Each endpoint declares its own gate subset; the chain folds
// over the list and the first deny short-circuits the request with a generic
// 403 so clients cannot tell which check failed.
package guard

import (
	"context"
	"errors"

	"github.com/digital-event-scheduler/server/internal/auth"
	"github.com/digital-event-scheduler/server/internal/domain/users"
)

// ErrDenied is the uniform deny outcome. Gates may wrap it with detail for
// the logs; the client response never carries the reason.
var ErrDenied = errors.New("forbidden access")

// Request carries everything the gates may inspect: the session cookie
// token, the email and event ID probed from the JSON payload, and the
// trusted identity once the token gate has bound it.
type Request struct {
	Token    string
	Email    string
	EventID  string
	Identity string
}

type Gate interface {
	Name() string
	Authorize(ctx context.Context, req *Request) error
}

// AuthorLookup is the read-only slice of the event store the ownership gate
// needs.
type AuthorLookup interface {
	GetAuthor(ctx context.Context, eventULID string) (string, error)
}

// RoleLookup is the read-only slice of the identity store used by the
// ownership and role gates.
type RoleLookup interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

// TokenGate verifies the session token and binds the verified email to the
// request as the trusted identity. Everything downstream trusts only this
// value, never the payload email.
type TokenGate struct {
	Tokens *auth.TokenService
}

func (g TokenGate) Name() string { return "token" }

func (g TokenGate) Authorize(_ context.Context, req *Request) error {
	if g.Tokens == nil {
		return ErrDenied
	}
	email, err := g.Tokens.Verify(req.Token)
	if err != nil {
		return ErrDenied
	}
	req.Identity = email
	return nil
}

// IdentityGate rejects requests whose payload email differs from the trusted
// identity. A valid session for user A cannot act on behalf of user B by
// forging the body.
type IdentityGate struct{}

func (g IdentityGate) Name() string { return "identity" }

func (g IdentityGate) Authorize(_ context.Context, req *Request) error {
	if req.Identity == "" || req.Email != req.Identity {
		return ErrDenied
	}
	return nil
}

// OwnershipGate allows the event's author through, then falls back to the
// admin role. Lookup failures deny rather than surface as errors.
type OwnershipGate struct {
	Events AuthorLookup
	Users  RoleLookup
}

func (g OwnershipGate) Name() string { return "ownership" }

func (g OwnershipGate) Authorize(ctx context.Context, req *Request) error {
	if g.Events == nil || g.Users == nil || req.Identity == "" {
		return ErrDenied
	}

	author, err := g.Events.GetAuthor(ctx, req.EventID)
	if err != nil {
		return ErrDenied
	}
	if author == req.Identity {
		return nil
	}

	user, err := g.Users.GetByEmail(ctx, req.Identity)
	if err != nil || user.UserType != users.TypeAdmin {
		return ErrDenied
	}
	return nil
}

// RoleGate admits admins only. Lookup failures deny.
type RoleGate struct {
	Users RoleLookup
}

func (g RoleGate) Name() string { return "role" }

func (g RoleGate) Authorize(ctx context.Context, req *Request) error {
	if g.Users == nil || req.Identity == "" {
		return ErrDenied
	}
	user, err := g.Users.GetByEmail(ctx, req.Identity)
	if err != nil || user.UserType != users.TypeAdmin {
		return ErrDenied
	}
	return nil
}
