package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forgezone/forge-zone/internal/apperror"
	"github.com/forgezone/forge-zone/internal/auth"
	"github.com/forgezone/forge-zone/internal/model"
	"github.com/forgezone/forge-zone/internal/service"
)

// ProfileHandler manages reads and writes of builder profiles.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGetProfile    → the full profile graph in one response
//   - HandleUpdateProfile → scalar fields + full social-links replacement
//   - HandleUpdateAvatar  → avatar URL only
//
// OWNERSHIP RULE:
// Reads are public. Writes require authentication AND the path {id} must
// match the authenticated userID — you can look at anyone's profile, but
// you can only edit your own.
type ProfileHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(users *service.UserService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, logger: logger}
}

// updateProfileRequest is the PUT body. Socials is a full replacement:
// a link left empty in the request is cleared, not preserved.
type updateProfileRequest struct {
	Name            string                 `json:"name"`
	Pfp             string                 `json:"pfp"`
	OneLiner        string                 `json:"oneLiner"`
	Location        string                 `json:"location"`
	InternshipOrJob model.EmploymentTarget `json:"internshipOrJob"`
	ProjectsNumber  int                    `json:"projectsNumber"`
	Socials         model.Socials          `json:"socials"`
}

// updateAvatarRequest is the PATCH body for avatar changes.
type updateAvatarRequest struct {
	Pfp string `json:"pfp"`
}

// HandleGetProfile returns the full profile graph for a user: the account
// row, the social links, and every project with its messages.
//
// HTTP: GET /api/users/{id}
// Auth: None (profiles are public)
//
// The whole graph comes from a single database round trip, so the response
// is consistent — no project can appear without its messages.
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	profile, err := h.users.FullProfile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile replaces the editable profile fields.
//
// HTTP: PUT /api/users/{id}
// Auth: Required, and {id} must be the caller's own ID
//
// SEMANTICS — FULL REPLACE, NOT MERGE:
// The request body is the complete desired state of the editable fields.
// Anything the caller omits comes through as the zero value and is written
// as such. In particular, sending socials with only "github" set clears
// linkedIn and twitter. Clients must send the full object.
//
// Projects and messages are NOT editable here; they have their own flows.
// The response is the freshly persisted full profile graph.
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	if err := h.requireOwner(r, id); err != nil {
		writeError(w, err)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid profile JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	profile := &model.UserProfile{
		User: model.User{
			ID:              id,
			Name:            req.Name,
			Pfp:             req.Pfp,
			OneLiner:        req.OneLiner,
			Location:        req.Location,
			InternshipOrJob: req.InternshipOrJob,
			ProjectsNumber:  req.ProjectsNumber,
		},
		Socials: req.Socials,
	}

	updated, err := h.users.UpdateProfile(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleUpdateAvatar changes only the avatar URL.
//
// HTTP: PATCH /api/users/{id}/avatar
// REQUEST BODY: {"pfp": "https://..."}
// Auth: Required, and {id} must be the caller's own ID
func (h *ProfileHandler) HandleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "User ID is required", http.StatusBadRequest)
		return
	}

	if err := h.requireOwner(r, id); err != nil {
		writeError(w, err)
		return
	}

	var req updateAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid avatar JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	user, err := h.users.UpdateAvatar(r.Context(), id, req.Pfp)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// requireOwner enforces the ownership rule on write routes: the
// authenticated user may only modify their own profile.
//
// RequireAuth has already run, so a missing userID here means the route
// was mis-wired — we still fail closed.
func (h *ProfileHandler) requireOwner(r *http.Request, id string) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperror.Forbidden("authentication required")
	}
	if userID != id {
		h.logger.Warn("profile write rejected: not owner",
			slog.String("userID", userID),
			slog.String("targetID", id),
		)
		return apperror.Forbidden("you can only modify your own profile")
	}
	return nil
}
