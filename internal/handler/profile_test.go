package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgezone/forge-zone/internal/auth"
	"github.com/forgezone/forge-zone/internal/handler"
	"github.com/forgezone/forge-zone/internal/model"
	"github.com/forgezone/forge-zone/internal/notify"
	"github.com/forgezone/forge-zone/internal/repository/sqlite"
	"github.com/forgezone/forge-zone/internal/service"
)

// profileTestEnv wires a real in-memory store, the services, and a chi
// router with the same route/middleware layout as the production server.
// Going through the router (not calling handlers directly) means path
// params and the auth middleware are exercised exactly as deployed.
type profileTestEnv struct {
	router *chi.Mux
	users  *service.UserService
	tokens *auth.TokenService
}

func newProfileTestEnv(t *testing.T) *profileTestEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	users := service.NewUserService(db, notify.NewNotifier(nil, logger), logger)
	ph := handler.NewProfileHandler(users, logger)

	router := chi.NewRouter()
	router.Get("/api/users/{id}", ph.HandleGetProfile)
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Put("/api/users/{id}", ph.HandleUpdateProfile)
		r.Patch("/api/users/{id}/avatar", ph.HandleUpdateAvatar)
	})

	return &profileTestEnv{router: router, users: users, tokens: tokens}
}

// createUser registers an account the way the OAuth callback would.
func (e *profileTestEnv) createUser(t *testing.T, id, email string) *model.User {
	t.Helper()
	user, err := e.users.CreateOrFetch(context.Background(), model.Identity{
		ID: id, Email: email, Name: "Test Builder",
	})
	require.NoError(t, err)
	return user
}

// do sends a request through the router, optionally authenticated as userID.
func (e *profileTestEnv) do(t *testing.T, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if userID != "" {
		token, err := e.tokens.Generate(userID)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestProfileHandler_GetProfile(t *testing.T) {
	env := newProfileTestEnv(t)
	user := env.createUser(t, "github:42", "ada@example.com")

	rr := env.do(t, http.MethodGet, "/api/users/github:42", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var profile model.UserProfile
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&profile))
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, "ada", profile.Username)
	assert.NotNil(t, profile.Projects)
	assert.Empty(t, profile.Projects)
}

func TestProfileHandler_GetProfile_NotFound(t *testing.T) {
	env := newProfileTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/users/ghost", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var errRes handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
	assert.Equal(t, "not_found", errRes.Error)
}

func TestProfileHandler_UpdateProfile(t *testing.T) {
	env := newProfileTestEnv(t)
	env.createUser(t, "github:42", "ada@example.com")

	body := `{
		"name": "Ada Lovelace",
		"pfp": "https://cdn.example.com/ada.png",
		"oneLiner": "first programmer",
		"location": "London",
		"internshipOrJob": "job",
		"projectsNumber": 1,
		"socials": {"github": "https://github.com/ada"}
	}`
	rr := env.do(t, http.MethodPut, "/api/users/github:42", body, "github:42")
	assert.Equal(t, http.StatusOK, rr.Code)

	var profile model.UserProfile
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&profile))
	assert.Equal(t, "Ada Lovelace", profile.Name)
	assert.Equal(t, model.EmploymentJob, profile.InternshipOrJob)
	assert.Equal(t, "https://github.com/ada", profile.Socials.GitHub)
	// Full replace: omitted links come back cleared.
	assert.Empty(t, profile.Socials.LinkedIn)
	assert.Empty(t, profile.Socials.Twitter)
}

func TestProfileHandler_UpdateProfile_SocialsFullReplace(t *testing.T) {
	env := newProfileTestEnv(t)
	env.createUser(t, "github:42", "ada@example.com")

	first := `{"socials": {"github": "https://github.com/ada", "linkedIn": "https://linkedin.com/in/ada"}}`
	rr := env.do(t, http.MethodPut, "/api/users/github:42", first, "github:42")
	require.Equal(t, http.StatusOK, rr.Code)

	// Second update omits linkedIn — it must be cleared, not preserved.
	second := `{"socials": {"github": "https://github.com/ada"}}`
	rr = env.do(t, http.MethodPut, "/api/users/github:42", second, "github:42")
	require.Equal(t, http.StatusOK, rr.Code)

	var profile model.UserProfile
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&profile))
	assert.Equal(t, "https://github.com/ada", profile.Socials.GitHub)
	assert.Empty(t, profile.Socials.LinkedIn)
}

func TestProfileHandler_UpdateProfile_Unauthenticated(t *testing.T) {
	env := newProfileTestEnv(t)
	env.createUser(t, "github:42", "ada@example.com")

	rr := env.do(t, http.MethodPut, "/api/users/github:42", `{"name":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProfileHandler_UpdateProfile_NotOwner(t *testing.T) {
	env := newProfileTestEnv(t)
	env.createUser(t, "github:42", "ada@example.com")
	env.createUser(t, "github:7", "mallory@example.com")

	// Authenticated as mallory, writing ada's profile.
	rr := env.do(t, http.MethodPut, "/api/users/github:42", `{"name":"hacked"}`, "github:7")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	var errRes handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
	assert.Equal(t, "forbidden", errRes.Error)

	// And ada's profile is untouched.
	rr = env.do(t, http.MethodGet, "/api/users/github:42", "", "")
	var profile model.UserProfile
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&profile))
	assert.NotEqual(t, "hacked", profile.Name)
}

func TestProfileHandler_UpdateProfile_InvalidJSON(t *testing.T) {
	env := newProfileTestEnv(t)
	env.createUser(t, "github:42", "ada@example.com")

	rr := env.do(t, http.MethodPut, "/api/users/github:42", `{not json`, "github:42")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProfileHandler_UpdateAvatar(t *testing.T) {
	env := newProfileTestEnv(t)
	env.createUser(t, "github:42", "ada@example.com")

	rr := env.do(t, http.MethodPatch, "/api/users/github:42/avatar",
		`{"pfp": "https://cdn.example.com/new.png"}`, "github:42")
	assert.Equal(t, http.StatusOK, rr.Code)

	var user model.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&user))
	assert.Equal(t, "https://cdn.example.com/new.png", user.Pfp)
}

func TestProfileHandler_UpdateAvatar_NotOwner(t *testing.T) {
	env := newProfileTestEnv(t)
	env.createUser(t, "github:42", "ada@example.com")
	env.createUser(t, "github:7", "mallory@example.com")

	rr := env.do(t, http.MethodPatch, "/api/users/github:42/avatar",
		`{"pfp": "https://cdn.example.com/evil.png"}`, "github:7")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestProfileHandler_UpdateAvatar_EmptyURL(t *testing.T) {
	env := newProfileTestEnv(t)
	env.createUser(t, "github:42", "ada@example.com")

	rr := env.do(t, http.MethodPatch, "/api/users/github:42/avatar", `{"pfp": ""}`, "github:42")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var errRes handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errRes))
	assert.Equal(t, "validation_error", errRes.Error)
}
