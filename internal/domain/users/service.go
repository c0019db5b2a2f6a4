package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

type RegisterParams struct {
	Email    string
	FullName string
}

// Register creates the user record on first registration. Registering an
// already known email is reported as ErrAlreadyExists so the handler can
// acknowledge it in-band rather than fail the request.
func (s *Service) Register(ctx context.Context, params RegisterParams) error {
	email := strings.TrimSpace(params.Email)
	fullName := strings.TrimSpace(params.FullName)
	if email == "" || fullName == "" {
		return ErrInvalidInput
	}

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return ErrAlreadyExists
	}

	if err := s.store.Create(ctx, CreateParams{
		ID:       uuid.NewString(),
		Email:    email,
		FullName: fullName,
		UserType: TypeGeneral,
	}); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("email", email).Msg("user registered")
	return nil
}

func (s *Service) Get(ctx context.Context, email string) (*User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Role returns the userType for an email.
func (s *Service) Role(ctx context.Context, email string) (string, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.UserType, nil
}

func (s *Service) List(ctx context.Context) ([]PublicUser, error) {
	return s.store.List(ctx)
}

// MakeAdmin promotes a user to the admin role. The guard chain has already
// established that the caller is an admin.
func (s *Service) MakeAdmin(ctx context.Context, email string) error {
	if _, err := s.store.GetByEmail(ctx, email); err != nil {
		return err
	}
	if err := s.store.UpdateType(ctx, email, TypeAdmin); err != nil {
		return fmt.Errorf("promote user: %w", err)
	}
	s.logger.Info().Str("email", email).Msg("user promoted to admin")
	return nil
}
