package events

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/digital-event-scheduler/server/internal/sanitize"
)

// Service is the event lifecycle manager. It owns the pending -> approved
// state machine and the best-effort maintenance of the author's cached
// counters. Multi-step mutations are sequential and non-transactional: a
// failure between steps leaves the counters behind the store, which is the
// accepted consistency model (the reconcile command closes the gap).
type Service struct {
	store    Store
	counters CounterStore
	logger   zerolog.Logger
}

func NewService(store Store, counters CounterStore, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		counters: counters,
		logger:   logger.With().Str("component", "events").Logger(),
	}
}

func sanitizeInput(input Input) Input {
	input.Title = sanitize.Text(input.Title)
	input.Description = sanitize.Text(input.Description)
	input.Location = sanitize.Text(input.Location)
	return input
}

// Create inserts a pending event and increments the author's totalPosts.
// The counter update runs after the insert succeeds; if it fails the event
// stays and the drift is logged, not rolled back.
func (s *Service) Create(ctx context.Context, author string, input Input) (*Event, error) {
	input = sanitizeInput(input)
	if err := ValidateInput(input); err != nil {
		return nil, err
	}
	if input.Photo == "" {
		input.Photo = DefaultPhoto
	}

	event, err := s.store.Create(ctx, CreateParams{
		ULID:        ulid.Make().String(),
		Title:       input.Title,
		Description: input.Description,
		Photo:       input.Photo,
		Category:    input.Category,
		Location:    input.Location,
		Participant: input.Participant,
		Date:        input.Date,
		Author:      author,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	if err := s.counters.AddTotalPosts(ctx, author, 1); err != nil {
		s.logger.Warn().Err(err).Str("author", author).Str("event", event.ULID).
			Msg("totalPosts increment failed after insert")
	}

	return event, nil
}

// Edit replaces the mutable fields of an event. Status and counters are
// untouched; updatedAt is refreshed by the store on every write.
func (s *Service) Edit(ctx context.Context, eventULID string, input Input) error {
	input = sanitizeInput(input)
	if err := ValidateInput(input); err != nil {
		return err
	}
	if input.Photo == "" {
		input.Photo = DefaultPhoto
	}

	if err := s.store.Update(ctx, eventULID, UpdateParams{
		Title:       input.Title,
		Description: input.Description,
		Photo:       input.Photo,
		Category:    input.Category,
		Location:    input.Location,
		Participant: input.Participant,
		Date:        input.Date,
	}); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete decrements the author's totalPosts and removes the record. A failed
// decrement is logged and deletion proceeds anyway, matching the observed
// behavior this service replaces.
func (s *Service) Delete(ctx context.Context, eventULID string) error {
	author, err := s.store.GetAuthor(ctx, eventULID)
	if err != nil {
		return err
	}

	if err := s.counters.AddTotalPosts(ctx, author, -1); err != nil {
		s.logger.Warn().Err(err).Str("author", author).Str("event", eventULID).
			Msg("totalPosts decrement failed; deleting anyway")
	}

	if err := s.store.Delete(ctx, eventULID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// Approve moves a pending event to approved and increments the author's
// approved counter. Approving an already approved event is a no-op so the
// counter can only ever grow by one per event. The counter write runs first;
// if it fails the status stays pending and the error surfaces.
func (s *Service) Approve(ctx context.Context, eventULID string) error {
	event, err := s.store.GetByULID(ctx, eventULID)
	if err != nil {
		return err
	}
	if event.Status == StatusApproved {
		return nil
	}

	if err := s.counters.AddApproved(ctx, event.Author, 1); err != nil {
		return fmt.Errorf("increment approved counter: %w", err)
	}

	if err := s.store.SetStatus(ctx, eventULID, StatusApproved); err != nil {
		s.logger.Error().Err(err).Str("event", eventULID).
			Msg("status update failed after counter increment")
		return fmt.Errorf("approve event: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, eventULID string) (*Event, error) {
	return s.store.GetByULID(ctx, eventULID)
}

// MyEvents lists an author's events, most recently updated first.
func (s *Service) MyEvents(ctx context.Context, author string) ([]Event, error) {
	return s.store.ListByAuthor(ctx, author)
}

// ListAll returns every event regardless of status, for the admin queue.
func (s *Service) ListAll(ctx context.Context) ([]Event, error) {
	return s.store.ListAll(ctx)
}

// CountsForAuthor answers my-event-count with live counts over the event
// store, not the cached counters on the user record.
func (s *Service) CountsForAuthor(ctx context.Context, author string) (AuthorCounts, error) {
	total, err := s.store.CountByAuthor(ctx, author)
	if err != nil {
		return AuthorCounts{}, fmt.Errorf("count events: %w", err)
	}
	approved, err := s.store.CountByAuthorAndStatus(ctx, author, StatusApproved)
	if err != nil {
		return AuthorCounts{}, fmt.Errorf("count approved events: %w", err)
	}
	return AuthorCounts{Total: total, Approved: approved}, nil
}

// Search lists approved events matching the public browse filters. Pending
// events are never returned here.
func (s *Service) Search(ctx context.Context, filters SearchFilters) ([]Event, error) {
	return s.store.SearchApproved(ctx, filters)
}

// Upcoming returns at most six approved future events, latest date first.
func (s *Service) Upcoming(ctx context.Context) ([]Event, error) {
	return s.store.Upcoming(ctx, time.Now(), UpcomingLimit)
}

// Stats answers the public count-events endpoint. "Completed" has always
// counted approved events with a future date; the literal behavior and the
// name are both preserved.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, err := s.store.CountByStatus(ctx, StatusApproved)
	if err != nil {
		return Stats{}, fmt.Errorf("count approved: %w", err)
	}
	completed, err := s.store.CountApprovedAfter(ctx, time.Now())
	if err != nil {
		return Stats{}, fmt.Errorf("count upcoming approved: %w", err)
	}
	return Stats{TotalEvents: total, CompletedEvents: completed}, nil
}
