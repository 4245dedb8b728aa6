// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// UserService is the account synchronization workflow. It owns no durable
// state — everything persisted lives behind repository.UserRepository — and
// it has ZERO knowledge of HTTP. The OAuth callback calls it, but so could
// a CLI tool or a queue consumer, without changing a line here.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/forgezone/forge-zone/internal/apperror"
	"github.com/forgezone/forge-zone/internal/model"
	"github.com/forgezone/forge-zone/internal/notify"
	"github.com/forgezone/forge-zone/internal/repository"
)

// defaultAvatars is the fixed pool new accounts draw their avatar from.
// Selection is uniform-random — this is cosmetic, not security-sensitive.
var defaultAvatars = []string{
	"https://forgezone.dev/avatars/forge-01.png",
	"https://forgezone.dev/avatars/forge-02.png",
	"https://forgezone.dev/avatars/forge-03.png",
	"https://forgezone.dev/avatars/forge-04.png",
	"https://forgezone.dev/avatars/forge-05.png",
	"https://forgezone.dev/avatars/forge-06.png",
}

// UserService orchestrates account creation, profile reads, and profile
// updates.
//
// DEPENDENCIES (injected via NewUserService):
//   - users    repository.UserRepository → the store of record
//   - notifier *notify.Notifier          → best-effort welcome notifications
//   - logger   *slog.Logger              → structured logging
type UserService struct {
	users    repository.UserRepository
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewUserService creates a UserService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewUserService(
	users repository.UserRepository,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateOrFetch handles an identity event: someone authenticated with the
// identity provider, and we need the matching account — creating it on
// first sight.
//
// SEQUENCE:
//  1. Validate the identity. An empty email fails BEFORE any store access.
//  2. Build the candidate record with creation defaults (username = email
//     local part, random avatar, internship, zero projects).
//  3. Insert-or-get at the store level. Repeat sign-ins perform zero
//     writes and get the stored row back unchanged — the candidate
//     defaults are discarded. This also makes the concurrent
//     first-sign-in race safe: both racers receive the same row.
//  4. Only when THIS call created the row: fire the welcome email and
//     mailing-list contact, best effort.
//
// ERROR ASYMMETRY (deliberate):
// Store failures before or during the insert are surfaced. Notification
// failures after the insert are NOT — the account exists, the caller gets
// it, and a third-party email outage stays a log line.
func (s *UserService) CreateOrFetch(ctx context.Context, ident model.Identity) (*model.User, error) {
	if ident.ID == "" {
		return nil, apperror.ValidationFailed("id", "identity id is required")
	}
	if ident.Email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	user := &model.User{
		ID:              ident.ID,
		Email:           ident.Email,
		Username:        localPart(ident.Email),
		Name:            ident.Name,
		Pfp:             randomAvatar(),
		InternshipOrJob: model.EmploymentInternship,
		ProjectsNumber:  0,
	}

	created, err := s.users.CreateIfAbsent(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("service/user: creating account %s: %w", ident.ID, err)
	}

	if created {
		s.logger.Info("account created",
			slog.String("userID", user.ID),
			slog.String("username", user.Username),
		)
		// The row is committed; from here on nothing can fail the call.
		s.notifier.WelcomeNewUser(ctx, ident.Email, ident.Name)
	}

	return user, nil
}

// Get returns the bare user row (no socials, no projects).
// Used by the session endpoint, which doesn't need the full graph.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}
	return s.users.GetByID(ctx, id)
}

// FullProfile returns the user with socials and all projects (each with
// its messages) — the single joined read, normalized. Never partial:
// either the whole graph or ErrNotFound.
func (s *UserService) FullProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}

	profile, err := s.users.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	normalizeProfile(profile)
	return profile, nil
}

// UpdateProfile writes the scalar profile fields and full-replaces the
// socials record, then returns the freshly persisted graph.
//
// The incoming profile is normalized BEFORE the write so the full-replace
// contract holds: a socials link the caller left empty is written as an
// empty string, not skipped.
func (s *UserService) UpdateProfile(ctx context.Context, profile *model.UserProfile) (*model.UserProfile, error) {
	if profile == nil || strings.TrimSpace(profile.ID) == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}

	normalizeProfile(profile)

	if err := s.users.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", profile.ID))

	// Read back through the joined query so the caller sees exactly what
	// the store now holds (including projects, which the update never touches).
	return s.FullProfile(ctx, profile.ID)
}

// UpdateAvatar updates only the avatar URL.
func (s *UserService) UpdateAvatar(ctx context.Context, id, pfp string) (*model.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}
	if strings.TrimSpace(pfp) == "" {
		return nil, apperror.ValidationFailed("pfp", "avatar url is required")
	}

	if err := s.users.UpdateAvatar(ctx, id, pfp); err != nil {
		return nil, err
	}

	s.logger.Info("avatar updated", slog.String("userID", id))

	return s.users.GetByID(ctx, id)
}

// normalizeProfile is the single place profile shape rules live.
// Applied on every read AND before every write:
//   - employment target is always "internship" or "job", never anything else
//   - Projects is a non-nil slice, and so is each project's Messages
//
// Social links need no normalization: the Socials struct zero value is
// already three empty strings.
func normalizeProfile(p *model.UserProfile) {
	if p.InternshipOrJob != model.EmploymentJob {
		p.InternshipOrJob = model.EmploymentInternship
	}
	if p.Projects == nil {
		p.Projects = []model.Project{}
	}
	for i := range p.Projects {
		if p.Projects[i].Messages == nil {
			p.Projects[i].Messages = []model.Message{}
		}
	}
}

// randomAvatar picks one entry from the default pool.
func randomAvatar() string {
	return defaultAvatars[rand.Intn(len(defaultAvatars))]
}

// localPart returns everything before the '@' of an email address.
func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
