package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	aimock "github.com/poiesic/lostfound/ai/mock"
	"github.com/poiesic/lostfound/core"
	"github.com/poiesic/lostfound/match"
	"github.com/poiesic/lostfound/report"
	"github.com/poiesic/lostfound/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	embedder *aimock.MockEmbedder
	router   http.Handler
	token    string
}

func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	embedder := aimock.NewMockEmbedder()
	matcher, err := match.NewSemanticMatcher(embedder)
	require.NoError(t, err)
	reporter, err := report.NewReporter(repos.Items, repos.Users, repos.Notifications, matcher)
	require.NoError(t, err)

	return &testEnv{embedder: embedder, router: NewRouter(reporter, token, nil), token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, user core.ID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != 0 {
		req.Header.Set(UserIDHeader, fmt.Sprint(user))
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createUser(t *testing.T, name, email string) UserResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/users", 0, CreateUserRequest{Name: name, Email: email})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var u UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var umbrella = ReportRequest{
	Title:       "Black Umbrella",
	Description: "black folding umbrella",
	Category:    "Umbrella",
	Location:    "Station",
}

func withType(r ReportRequest, t string) ReportRequest {
	r.Type = t
	return r
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAuthToken(t *testing.T) {
	env := newTestEnv(t, "secret")
	body := strings.NewReader(`{"name":"Ann"}`)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"not bearer", "Basic secret", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body.Seek(0, 0)
			req := httptest.NewRequest(http.MethodPost, "/users", body)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t, "")

	ann := env.createUser(t, "Ann", "ann@example.com")
	assert.NotZero(t, ann.ID)
	assert.Equal(t, "Ann", ann.Name)

	w := env.do(t, http.MethodPost, "/users", 0, CreateUserRequest{Name: "Ann Two", Email: "ANN@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/users", 0, CreateUserRequest{Email: "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":`))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireUser(t *testing.T) {
	env := newTestEnv(t, "")

	w := env.do(t, http.MethodGet, "/dashboard", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set(UserIDHeader, "abc")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	w = env.do(t, http.MethodGet, "/dashboard", 999, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportMatchAndDashboard(t *testing.T) {
	env := newTestEnv(t, "")
	finder := env.createUser(t, "Finder", "finder@example.com")
	loser := env.createUser(t, "Loser", "")

	w := env.do(t, http.MethodPost, "/items", finder.ID, withType(umbrella, "found"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	found := decode[ReportResponse](t, w)
	assert.Equal(t, "found", found.Item.Type)
	assert.Equal(t, finder.ID, found.Item.OwnerID)
	assert.Equal(t, core.DefaultImageRef, found.Item.ImageRef)
	assert.Empty(t, found.Matches)
	assert.Nil(t, found.Alerts)

	w = env.do(t, http.MethodPost, "/items", loser.ID, withType(umbrella, "lost"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	lost := decode[ReportResponse](t, w)
	require.Len(t, lost.Matches, 1)
	assert.Equal(t, found.Item.ID, lost.Matches[0].Item.ID)
	assert.InDelta(t, 1.0, lost.Matches[0].Score, 1e-6)
	require.Len(t, lost.Notifications, 1)

	w = env.do(t, http.MethodGet, "/dashboard", finder.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[DashboardResponse](t, w)
	assert.Equal(t, finder.ID, dash.User.ID)
	require.Len(t, dash.Items, 1)
	require.Len(t, dash.Notifications, 1)
	assert.Equal(t, 1, dash.Unread)
	assert.Equal(t, lost.Item.ID, dash.Notifications[0].MatchItemID)
	assert.Contains(t, dash.Notifications[0].Message, "Black Umbrella")

	w = env.do(t, http.MethodPost, "/notifications/read", finder.ID, MarkReadRequest{IDs: []core.ID{dash.Notifications[0].ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[MarkReadResponse](t, w).Updated)

	w = env.do(t, http.MethodGet, "/dashboard", finder.ID, nil)
	assert.Equal(t, 0, decode[DashboardResponse](t, w).Unread)

	w = env.do(t, http.MethodGet, "/dashboard", loser.ID, nil)
	loserDash := decode[DashboardResponse](t, w)
	assert.Empty(t, loserDash.Notifications)
	assert.NotNil(t, loserDash.Notifications, "empty lists encode as []")
}

func TestReportInvalid(t *testing.T) {
	env := newTestEnv(t, "")
	ann := env.createUser(t, "Ann", "")

	tests := []struct {
		name string
		user core.ID
		body ReportRequest
		want int
	}{
		{"bad type", ann.ID, withType(umbrella, "misplaced"), http.StatusBadRequest},
		{"missing title", ann.ID, ReportRequest{Category: "Umbrella", Type: "lost"}, http.StatusBadRequest},
		{"missing category", ann.ID, ReportRequest{Title: "Umbrella", Type: "lost"}, http.StatusBadRequest},
		{"unknown owner", 4242, withType(umbrella, "lost"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/items", tt.user, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestReportEmbeddingUnavailable(t *testing.T) {
	env := newTestEnv(t, "")
	ann := env.createUser(t, "Ann", "")
	bob := env.createUser(t, "Bob", "")

	w := env.do(t, http.MethodPost, "/items", ann.ID, withType(umbrella, "found"))
	require.Equal(t, http.StatusCreated, w.Code)

	env.embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("model offline")
	}

	w = env.do(t, http.MethodPost, "/items", bob.ID, withType(umbrella, "lost"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[ReportResponse](t, w)
	assert.NotZero(t, resp.Item.ID, "item is stored even though matching failed")
	assert.Equal(t, "matching unavailable", resp.Error)
	assert.Empty(t, resp.Matches)

	w = env.do(t, http.MethodPost, "/match", bob.ID, MatchRequest{Title: "Umbrella", Category: "Umbrella", Type: "lost"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestResolveItem(t *testing.T) {
	env := newTestEnv(t, "")
	ann := env.createUser(t, "Ann", "")
	bob := env.createUser(t, "Bob", "")

	w := env.do(t, http.MethodPost, "/items", ann.ID, withType(umbrella, "lost"))
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[ReportResponse](t, w).Item
	path := fmt.Sprintf("/items/%d", item.ID)

	w = env.do(t, http.MethodDelete, path, bob.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, path, ann.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, path, ann.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/items/abc", ann.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/dashboard", ann.ID, nil)
	assert.Empty(t, decode[DashboardResponse](t, w).Items)
}

func TestMatchDryRun(t *testing.T) {
	env := newTestEnv(t, "")
	ann := env.createUser(t, "Ann", "")

	w := env.do(t, http.MethodPost, "/items", ann.ID, withType(umbrella, "found"))
	require.Equal(t, http.StatusCreated, w.Code)

	query := MatchRequest{Title: umbrella.Title, Description: umbrella.Description, Category: umbrella.Category, Type: "lost"}
	w = env.do(t, http.MethodPost, "/match", ann.ID, query)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[MatchListResponse](t, w)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "found", resp.Matches[0].Item.Type)

	query.Type = "found"
	w = env.do(t, http.MethodPost, "/match", ann.ID, query)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[MatchListResponse](t, w).Matches)

	query.Type = "other"
	w = env.do(t, http.MethodPost, "/match", ann.ID, query)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/dashboard", ann.ID, nil)
	assert.Len(t, decode[DashboardResponse](t, w).Items, 1, "dry run stores nothing")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidItem, http.StatusBadRequest},
		{match.ErrMalformedQuery, http.StatusBadRequest},
		{report.ErrNotOwner, http.StatusForbidden},
		{report.ErrUnknownUser, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", match.ErrCandidateLookup), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := statusFor(tt.err)
		assert.Equal(t, tt.want, status, tt.err.Error())
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}
