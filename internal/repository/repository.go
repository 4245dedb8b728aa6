// Package repository defines the storage contracts consumed by the service
// layer. The interfaces live here (not in the sqlite package) so services
// depend on the contract, never on a concrete driver — swapping SQLite for
// Postgres means changing one line of wiring in internal/server.
package repository

import (
	"context"

	"github.com/forgezone/forge-zone/internal/model"
)

// UserRepository is the store contract for accounts and their profile graph.
//
// CreateIfAbsent is the one write with special semantics: it is an
// insert-or-get. Two concurrent first sign-ins for the same identity can
// both find no row and both attempt the insert — the store resolves that
// race, not the caller. Exactly one row wins; both callers get the
// canonical persisted record back. The returned bool reports whether THIS
// call performed the insert (used to decide whether to fire welcome
// notifications).
type UserRepository interface {
	// CreateIfAbsent persists user unless a row with the same ID already
	// exists. Either way user is overwritten with the stored row on return.
	CreateIfAbsent(ctx context.Context, user *model.User) (created bool, err error)

	// GetByID returns the bare user row (no socials, no projects).
	// Returns apperror.ErrNotFound if no such user exists.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetProfile returns the user joined with socials, projects, and each
	// project's messages — one round trip to the store, never partial.
	// Returns apperror.ErrNotFound if no such user exists.
	GetProfile(ctx context.Context, id string) (*model.UserProfile, error)

	// UpdateProfile writes the scalar user fields and full-replaces the
	// socials record (all three links written, empty string when unset) in
	// one transaction. Returns apperror.ErrNotFound for an unknown user.
	UpdateProfile(ctx context.Context, profile *model.UserProfile) error

	// UpdateAvatar updates only the pfp column.
	// Returns apperror.ErrNotFound for an unknown user.
	UpdateAvatar(ctx context.Context, id, pfp string) error
}

// ProjectRepository writes builds and their messages. The account workflow
// never calls it — projects are created by the builds pipeline and by
// seeding — but the profile read surfaces everything written here.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	CreateMessage(ctx context.Context, projectID string, msg *model.Message) error
	ListByUser(ctx context.Context, userID string) ([]model.Project, error)
}
