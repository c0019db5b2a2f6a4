package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/digital-event-scheduler/server/internal/auth"
	"github.com/digital-event-scheduler/server/internal/config"
	"github.com/digital-event-scheduler/server/internal/domain/events"
	"github.com/digital-event-scheduler/server/internal/domain/users"
)

type memoryUsers struct {
	byEmail map[string]*users.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: map[string]*users.User{}}
}

func (m *memoryUsers) Create(_ context.Context, params users.CreateParams) error {
	m.byEmail[params.Email] = &users.User{
		ID:       params.ID,
		Email:    params.Email,
		FullName: params.FullName,
		UserType: params.UserType,
	}
	return nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memoryUsers) List(_ context.Context) ([]users.PublicUser, error) {
	listed := make([]users.PublicUser, 0, len(m.byEmail))
	for _, user := range m.byEmail {
		listed = append(listed, users.PublicUser{Email: user.Email, FullName: user.FullName, UserType: user.UserType})
	}
	return listed, nil
}

func (m *memoryUsers) UpdateType(_ context.Context, email string, userType string) error {
	user, ok := m.byEmail[email]
	if !ok {
		return users.ErrNotFound
	}
	user.UserType = userType
	return nil
}

func (m *memoryUsers) AddTotalPosts(_ context.Context, email string, delta int) error {
	user, ok := m.byEmail[email]
	if !ok {
		return users.ErrNotFound
	}
	user.TotalPosts += delta
	return nil
}

func (m *memoryUsers) AddApproved(_ context.Context, email string, delta int) error {
	user, ok := m.byEmail[email]
	if !ok {
		return users.ErrNotFound
	}
	user.Approved += delta
	return nil
}

func (m *memoryUsers) RecountCounters(_ context.Context) (int64, error) { return 0, nil }

type memoryEvents struct {
	byULID map[string]*events.Event
}

func newMemoryEvents() *memoryEvents {
	return &memoryEvents{byULID: map[string]*events.Event{}}
}

func (m *memoryEvents) Create(_ context.Context, params events.CreateParams) (*events.Event, error) {
	now := time.Now()
	event := &events.Event{
		ULID:        params.ULID,
		Title:       params.Title,
		Description: params.Description,
		Photo:       params.Photo,
		Category:    params.Category,
		Location:    params.Location,
		Participant: params.Participant,
		Date:        params.Date,
		Author:      params.Author,
		Status:      events.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.byULID[params.ULID] = event
	copied := *event
	return &copied, nil
}

func (m *memoryEvents) GetByULID(_ context.Context, ulid string) (*events.Event, error) {
	event, ok := m.byULID[ulid]
	if !ok {
		return nil, events.ErrNotFound
	}
	copied := *event
	return &copied, nil
}

func (m *memoryEvents) GetAuthor(_ context.Context, ulid string) (string, error) {
	event, ok := m.byULID[ulid]
	if !ok {
		return "", events.ErrNotFound
	}
	return event.Author, nil
}

func (m *memoryEvents) Update(_ context.Context, ulid string, params events.UpdateParams) error {
	event, ok := m.byULID[ulid]
	if !ok {
		return events.ErrNotFound
	}
	event.Title = params.Title
	event.Description = params.Description
	event.Photo = params.Photo
	event.Category = params.Category
	event.Location = params.Location
	event.Participant = params.Participant
	event.Date = params.Date
	event.UpdatedAt = time.Now()
	return nil
}

func (m *memoryEvents) SetStatus(_ context.Context, ulid string, status string) error {
	event, ok := m.byULID[ulid]
	if !ok {
		return events.ErrNotFound
	}
	event.Status = status
	event.UpdatedAt = time.Now()
	return nil
}

func (m *memoryEvents) Delete(_ context.Context, ulid string) error {
	if _, ok := m.byULID[ulid]; !ok {
		return events.ErrNotFound
	}
	delete(m.byULID, ulid)
	return nil
}

func (m *memoryEvents) ListByAuthor(_ context.Context, author string) ([]events.Event, error) {
	listed := []events.Event{}
	for _, event := range m.byULID {
		if event.Author == author {
			listed = append(listed, *event)
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].UpdatedAt.After(listed[j].UpdatedAt) })
	return listed, nil
}

func (m *memoryEvents) ListAll(_ context.Context) ([]events.Event, error) {
	listed := []events.Event{}
	for _, event := range m.byULID {
		listed = append(listed, *event)
	}
	return listed, nil
}

func (m *memoryEvents) SearchApproved(_ context.Context, filters events.SearchFilters) ([]events.Event, error) {
	pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(filters.SearchKey))
	if err != nil {
		return nil, err
	}
	listed := []events.Event{}
	for _, event := range m.byULID {
		if event.Status != events.StatusApproved || !pattern.MatchString(event.Title) {
			continue
		}
		if filters.Category != "" && event.Category != filters.Category {
			continue
		}
		listed = append(listed, *event)
	}
	return listed, nil
}

func (m *memoryEvents) Upcoming(_ context.Context, now time.Time, limit int) ([]events.Event, error) {
	listed := []events.Event{}
	for _, event := range m.byULID {
		if event.Status == events.StatusApproved && event.Date.After(now) {
			listed = append(listed, *event)
		}
	}
	sort.Slice(listed, func(i, j int) bool { return listed[i].Date.After(listed[j].Date) })
	if len(listed) > limit {
		listed = listed[:limit]
	}
	return listed, nil
}

func (m *memoryEvents) CountByAuthor(_ context.Context, author string) (int64, error) {
	var count int64
	for _, event := range m.byULID {
		if event.Author == author {
			count++
		}
	}
	return count, nil
}

func (m *memoryEvents) CountByAuthorAndStatus(_ context.Context, author string, status string) (int64, error) {
	var count int64
	for _, event := range m.byULID {
		if event.Author == author && event.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memoryEvents) CountByStatus(_ context.Context, status string) (int64, error) {
	var count int64
	for _, event := range m.byULID {
		if event.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memoryEvents) CountApprovedAfter(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for _, event := range m.byULID {
		if event.Status == events.StatusApproved && event.Date.After(now) {
			count++
		}
	}
	return count, nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	users   *memoryUsers
	events  *memoryEvents
	tokens  *auth.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Config{
		Auth:        config.AuthConfig{JWTSecret: "secret", JWTExpiry: time.Hour},
		Environment: "test",
	}
	logger := zerolog.Nop()
	userStore := newMemoryUsers()
	eventStore := newMemoryEvents()
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, "scheduler")
	deps := Dependencies{
		Tokens:     tokens,
		Users:      users.NewService(userStore, logger),
		Events:     events.NewService(eventStore, userStore, logger),
		UserStore:  userStore,
		EventStore: eventStore,
	}

	return &testServer{
		t:       t,
		handler: NewRouter(cfg, logger, deps),
		users:   userStore,
		events:  eventStore,
		tokens:  tokens,
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *strings.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = strings.NewReader(string(encoded))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	}
	res := httptest.NewRecorder()
	s.handler.ServeHTTP(res, req)
	return res
}

func (s *testServer) register(email, fullName string) {
	s.t.Helper()
	res := s.do(http.MethodPost, "/users", "", map[string]string{"email": email, "fullName": fullName})
	require.Equal(s.t, http.StatusOK, res.Code)
}

func (s *testServer) token(email string) string {
	s.t.Helper()
	token, err := s.tokens.Issue(email)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) promote(email string) {
	s.t.Helper()
	require.NoError(s.t, s.users.UpdateType(context.Background(), email, users.TypeAdmin))
}

func eventInfo(title string, daysAhead int) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "description for " + title,
		"category":    "fest",
		"location":    "Main Hall",
		"participant": "anyone",
		"date":        time.Now().Add(time.Duration(daysAhead) * 24 * time.Hour).Format(time.RFC3339),
	}
}

func decode(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	return payload
}

func (s *testServer) addEvent(email, token, title string, daysAhead int) string {
	s.t.Helper()
	res := s.do(http.MethodPost, "/add-event", token, map[string]any{
		"email":     email,
		"eventInfo": eventInfo(title, daysAhead),
	})
	require.Equal(s.t, http.StatusOK, res.Code)
	payload := decode(s.t, res)
	require.Equal(s.t, true, payload["acknowledged"])
	eventID, _ := payload["eventID"].(string)
	require.NotEmpty(s.t, eventID)
	return eventID
}

func TestModerationScenario(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "User A")
	s.register("b@example.com", "Admin B")
	s.promote("b@example.com")

	tokenA := s.token("a@example.com")
	tokenB := s.token("b@example.com")

	// A creates E1: pending, totalPosts = 1.
	eventID := s.addEvent("a@example.com", tokenA, "Spring Fest", 7)
	userA, err := s.users.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, userA.TotalPosts)
	require.Equal(t, events.StatusPending, s.events.byULID[eventID].Status)

	// A is not an admin: the moderation queue is off limits.
	res := s.do(http.MethodPost, "/get-all-events-for-admin", tokenA, map[string]string{"email": "a@example.com"})
	require.Equal(t, http.StatusForbidden, res.Code)

	// Public browse does not show pending events.
	res = s.do(http.MethodGet, "/get-all-events", "", nil)
	require.NotContains(t, res.Body.String(), eventID)

	// Admin B approves E1. The approved counter belongs to the author A,
	// not to the acting admin.
	res = s.do(http.MethodPost, "/event-approve", tokenB, map[string]string{"email": "b@example.com", "eventID": eventID})
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, true, decode(t, res)["acknowledged"])

	require.Equal(t, events.StatusApproved, s.events.byULID[eventID].Status)
	userA, err = s.users.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, userA.Approved)
	userB, err := s.users.GetByEmail(context.Background(), "b@example.com")
	require.NoError(t, err)
	require.Zero(t, userB.Approved)

	res = s.do(http.MethodGet, "/get-all-events", "", nil)
	require.Contains(t, res.Body.String(), eventID)
}

func TestDeleteOwnershipScenario(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "User A")
	s.register("b@example.com", "Admin B")
	s.register("c@example.com", "User C")
	s.promote("b@example.com")

	tokenA := s.token("a@example.com")
	eventID := s.addEvent("a@example.com", tokenA, "Exam Prep", 3)

	// C is neither the author nor an admin.
	res := s.do(http.MethodPost, "/delete-event", s.token("c@example.com"), map[string]string{
		"email": "c@example.com", "eventID": eventID,
	})
	require.Equal(t, http.StatusForbidden, res.Code)
	require.Contains(t, s.events.byULID, eventID)

	// Admin B may delete anyone's event; A's totalPosts drops back to zero.
	res = s.do(http.MethodPost, "/delete-event", s.token("b@example.com"), map[string]string{
		"email": "b@example.com", "eventID": eventID,
	})
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, true, decode(t, res)["acknowledged"])
	require.NotContains(t, s.events.byULID, eventID)

	userA, err := s.users.GetByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Zero(t, userA.TotalPosts)
}

func TestIdentityMismatchRejected(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "User A")
	s.register("b@example.com", "User B")

	// Valid session for A claiming to be B in the payload.
	res := s.do(http.MethodPost, "/my-events", s.token("a@example.com"), map[string]string{"email": "b@example.com"})
	require.Equal(t, http.StatusForbidden, res.Code)
	require.Contains(t, res.Body.String(), "forbidden access")
}

func TestAddEventMyEventRoundTrip(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "User A")
	token := s.token("a@example.com")

	info := eventInfo("Campus Tour", 10)
	info["photo"] = "https://img.example.com/tour.png"
	res := s.do(http.MethodPost, "/add-event", token, map[string]any{"email": "a@example.com", "eventInfo": info})
	require.Equal(t, http.StatusOK, res.Code)
	eventID := decode(t, res)["eventID"].(string)

	res = s.do(http.MethodPost, "/my-event", token, map[string]string{"email": "a@example.com", "eventID": eventID})
	require.Equal(t, http.StatusOK, res.Code)
	payload := decode(t, res)
	event := payload["event"].(map[string]any)
	require.Equal(t, info["title"], event["title"])
	require.Equal(t, info["description"], event["description"])
	require.Equal(t, info["category"], event["category"])
	require.Equal(t, info["location"], event["location"])
	require.Equal(t, info["participant"], event["participant"])
	require.Equal(t, info["photo"], event["photo"])
	require.Equal(t, events.StatusPending, event["status"])
}

func TestAddEventValidationSurfacesInBand(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "User A")
	token := s.token("a@example.com")

	info := eventInfo("Broken", 5)
	info["title"] = ""
	res := s.do(http.MethodPost, "/add-event", token, map[string]any{"email": "a@example.com", "eventInfo": info})

	require.Equal(t, http.StatusOK, res.Code)
	payload := decode(t, res)
	require.Equal(t, false, payload["acknowledged"])
	require.Equal(t, "Title is required", payload["message"])
}

func TestUpcomingCapsAtSix(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "User A")
	s.register("b@example.com", "Admin B")
	s.promote("b@example.com")
	tokenA := s.token("a@example.com")
	tokenB := s.token("b@example.com")

	for i := 0; i < 8; i++ {
		eventID := s.addEvent("a@example.com", tokenA, fmt.Sprintf("Event %d", i), i+1)
		res := s.do(http.MethodPost, "/event-approve", tokenB, map[string]string{"email": "b@example.com", "eventID": eventID})
		require.Equal(t, http.StatusOK, res.Code)
	}

	res := s.do(http.MethodGet, "/up-coming-events", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	payload := decode(t, res)
	listed := payload["events"].([]any)
	require.Len(t, listed, 6)
}

func TestMyEventCountUsesLiveCounts(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "User A")
	s.register("b@example.com", "Admin B")
	s.promote("b@example.com")
	tokenA := s.token("a@example.com")

	first := s.addEvent("a@example.com", tokenA, "First", 1)
	s.addEvent("a@example.com", tokenA, "Second", 2)
	res := s.do(http.MethodPost, "/event-approve", s.token("b@example.com"), map[string]string{"email": "b@example.com", "eventID": first})
	require.Equal(t, http.StatusOK, res.Code)

	res = s.do(http.MethodPost, "/my-event-count", tokenA, map[string]string{"email": "a@example.com"})
	require.Equal(t, http.StatusOK, res.Code)
	payload := decode(t, res)
	require.EqualValues(t, 2, payload["total"])
	require.EqualValues(t, 1, payload["approved"])
}

func TestJWTEndpointSetsSessionCookie(t *testing.T) {
	s := newTestServer(t)

	res := s.do(http.MethodPost, "/jwt", "", map[string]string{"email": "a@example.com"})
	require.Equal(t, http.StatusOK, res.Code)

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, auth.SessionCookieName, cookies[0].Name)
	require.NotEmpty(t, cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)

	email, err := s.tokens.Verify(cookies[0].Value)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", email)
}

func TestLogoutClearsSessionCookie(t *testing.T) {
	s := newTestServer(t)

	res := s.do(http.MethodPost, "/logout", "", nil)
	require.Equal(t, http.StatusOK, res.Code)

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestMakeAdminRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "User A")
	s.register("b@example.com", "Admin B")
	s.register("c@example.com", "User C")
	s.promote("b@example.com")

	// A general user may not promote anyone.
	res := s.do(http.MethodPost, "/make-admin", s.token("a@example.com"), map[string]string{
		"email": "a@example.com", "reqAdminEmail": "c@example.com",
	})
	require.Equal(t, http.StatusForbidden, res.Code)

	res = s.do(http.MethodPost, "/make-admin", s.token("b@example.com"), map[string]string{
		"email": "b@example.com", "reqAdminEmail": "c@example.com",
	})
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, true, decode(t, res)["acknowledged"])

	userC, err := s.users.GetByEmail(context.Background(), "c@example.com")
	require.NoError(t, err)
	require.Equal(t, users.TypeAdmin, userC.UserType)
}

func TestCountEventsCountsApprovedAndFuture(t *testing.T) {
	s := newTestServer(t)
	s.register("a@example.com", "User A")
	s.register("b@example.com", "Admin B")
	s.promote("b@example.com")
	tokenA := s.token("a@example.com")
	tokenB := s.token("b@example.com")

	future := s.addEvent("a@example.com", tokenA, "Future Fest", 5)
	res := s.do(http.MethodPost, "/event-approve", tokenB, map[string]string{"email": "b@example.com", "eventID": future})
	require.Equal(t, http.StatusOK, res.Code)
	s.addEvent("a@example.com", tokenA, "Still Pending", 5)

	res = s.do(http.MethodGet, "/count-events", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	payload := decode(t, res)
	require.EqualValues(t, 1, payload["totalEvents"])
	require.EqualValues(t, 1, payload["completedEvents"])
}
