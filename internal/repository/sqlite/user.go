package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/forgezone/forge-zone/internal/apperror"
	"github.com/forgezone/forge-zone/internal/model"
	"github.com/forgezone/forge-zone/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors immediately — here, not at
// some distant call site. A Go best practice for any interface implementation.
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, username, name, pfp, one_liner, location,
	what_working_on, internship_or_job, projects_number, created_at, updated_at`

// CreateIfAbsent inserts the user unless a row with the same ID exists.
//
// WHY ON CONFLICT DO NOTHING AND NOT check-then-insert?
// Two concurrent first sign-ins for the same identity can both observe "no
// row" and both attempt the insert. A SELECT followed by an INSERT leaves a
// window between the two; `INSERT ... ON CONFLICT(id) DO NOTHING` closes it
// at the store level. Whichever insert runs second becomes a no-op, and the
// follow-up SELECT hands both callers the same canonical row.
//
// The returned bool reports whether THIS call inserted the row —
// RowsAffected is 0 when the conflict clause swallowed the insert.
//
// Note: a NEW id reusing an EXISTING email is not a first-sign-in race, it's
// a data error. The UNIQUE constraint on email rejects it and the error is
// surfaced to the caller.
func (db *DB) CreateIfAbsent(ctx context.Context, user *model.User) (bool, error) {
	now := time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, username, name, pfp, one_liner, location,
			what_working_on, internship_or_job, projects_number, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		user.ID,
		user.Email,
		user.Username,
		user.Name,
		user.Pfp,
		user.OneLiner,
		user.Location,
		user.WhatWorkingOn,
		string(user.InternshipOrJob),
		user.ProjectsNumber,
		now,
		now,
	)
	if err != nil {
		return false, apperror.Unavailable("creating user", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Unavailable("creating user", err)
	}
	created := affected > 0

	// Read the canonical row back. On the insert path this picks up the
	// stored timestamps; on the conflict path it replaces the caller's
	// candidate record with what actually lives in the store.
	stored, err := db.GetByID(ctx, user.ID)
	if err != nil {
		return false, err
	}
	*user = *stored

	return created, nil
}

// GetByID retrieves the bare user row by the identity provider's ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, apperror.Unavailable("fetching user", err)
	}
	return u, nil
}

// GetProfile assembles the full profile graph in ONE round trip.
//
// WHY A SINGLE JOIN QUERY?
// The naive approach — fetch the user, then its socials, then each project,
// then each project's messages — costs O(projects × messages) round trips.
// A LEFT JOIN across all four tables returns the whole graph in one query;
// the database repeats the user columns on every row and we fold the rows
// back into a tree in Go.
//
// WHY LEFT (not INNER) JOIN?
// A brand-new user has no socials row and no projects. INNER JOIN would
// return zero rows and look like the user doesn't exist. LEFT JOIN returns
// one row with NULLs on the right side, which is why the project and
// message columns scan into sql.Null* types.
//
// The ORDER BY groups each project's messages into a contiguous run, so the
// fold below only needs to remember the previous project ID.
func (db *DB) GetProfile(ctx context.Context, id string) (*model.UserProfile, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT u.id, u.email, u.username, u.name, u.pfp, u.one_liner, u.location,
		       u.what_working_on, u.internship_or_job, u.projects_number,
		       u.created_at, u.updated_at,
		       s.github, s.linkedin, s.twitter,
		       p.id, p.projectname, p.is_discord_connected, p.is_twitter_shared,
		       p.total, p.current,
		       m.id, m.message, m.target
		FROM users u
		LEFT JOIN socials  s ON s.user_id = u.id
		LEFT JOIN projects p ON p.user_id = u.id
		LEFT JOIN messages m ON m.project_id = p.id
		WHERE u.id = ?
		ORDER BY p.id, m.id`, id)
	if err != nil {
		return nil, apperror.Unavailable("fetching profile", err)
	}
	defer rows.Close()

	var profile *model.UserProfile
	var currentProject *model.Project

	for rows.Next() {
		var (
			u        model.User
			emp      string
			github   sql.NullString
			linkedin sql.NullString
			twitter  sql.NullString
			pID      sql.NullString
			pName    sql.NullString
			pDiscord sql.NullBool
			pTwitter sql.NullBool
			pTotal   sql.NullInt64
			pCurrent sql.NullInt64
			mID      sql.NullString
			mBody    sql.NullString
			mTarget  sql.NullString
		)

		err := rows.Scan(
			&u.ID, &u.Email, &u.Username, &u.Name, &u.Pfp, &u.OneLiner,
			&u.Location, &u.WhatWorkingOn, &emp, &u.ProjectsNumber,
			&u.CreatedAt, &u.UpdatedAt,
			&github, &linkedin, &twitter,
			&pID, &pName, &pDiscord, &pTwitter, &pTotal, &pCurrent,
			&mID, &mBody, &mTarget,
		)
		if err != nil {
			return nil, apperror.Unavailable("fetching profile", err)
		}

		// The user and socials columns are identical on every row — fill
		// them once. Missing socials scan as NULL and default to "".
		if profile == nil {
			u.InternshipOrJob = model.EmploymentTarget(emp)
			profile = &model.UserProfile{
				User: u,
				Socials: model.Socials{
					GitHub:   github.String,
					LinkedIn: linkedin.String,
					Twitter:  twitter.String,
				},
				Projects: []model.Project{},
			}
		}

		if !pID.Valid {
			continue // user with no projects: the single all-NULL row
		}

		// New project? The ORDER BY guarantees message rows for one project
		// are contiguous, so a change of project ID means a new project.
		if currentProject == nil || currentProject.ID != pID.String {
			profile.Projects = append(profile.Projects, model.Project{
				ID:                 pID.String,
				ProjectName:        pName.String,
				IsDiscordConnected: pDiscord.Bool,
				IsTwitterShared:    pTwitter.Bool,
				Total:              int(pTotal.Int64),
				Current:            int(pCurrent.Int64),
				UserID:             profile.ID,
				Messages:           []model.Message{},
			})
			currentProject = &profile.Projects[len(profile.Projects)-1]
		}

		if mID.Valid {
			currentProject.Messages = append(currentProject.Messages, model.Message{
				ID:     mID.String,
				Body:   mBody.String,
				Target: mTarget.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("fetching profile", err)
	}

	if profile == nil {
		return nil, apperror.NotFound("user", id)
	}

	return profile, nil
}

// UpdateProfile writes the scalar user fields and full-replaces the socials
// record in one transaction.
//
// WHY A TRANSACTION?
// The user UPDATE and the socials upsert are one logical operation — a
// reader must never observe the new name with the old links. BeginTx +
// defer Rollback is the standard shape: Rollback after a successful Commit
// is a harmless no-op.
//
// FULL REPLACE, NOT PATCH:
// All three social links are always written, empty string when unset.
// Callers send the complete record; an omitted link means "remove it".
func (db *DB) UpdateProfile(ctx context.Context, profile *model.UserProfile) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Unavailable("updating profile", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, pfp = ?, one_liner = ?, location = ?,
		     internship_or_job = ?, projects_number = ?, updated_at = ?
		 WHERE id = ?`,
		profile.Name,
		profile.Pfp,
		profile.OneLiner,
		profile.Location,
		string(profile.InternshipOrJob),
		profile.ProjectsNumber,
		time.Now(),
		profile.ID,
	)
	if err != nil {
		return apperror.Unavailable("updating profile", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Unavailable("updating profile", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", profile.ID)
	}

	// Upsert the socials child row. The UNIQUE constraint on user_id makes
	// ON CONFLICT target the one existing row; `excluded` refers to the
	// values the rejected INSERT tried to write.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO socials (id, user_id, github, linkedin, twitter)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     github = excluded.github,
		     linkedin = excluded.linkedin,
		     twitter = excluded.twitter`,
		newID(),
		profile.ID,
		profile.Socials.GitHub,
		profile.Socials.LinkedIn,
		profile.Socials.Twitter,
	)
	if err != nil {
		return apperror.Unavailable("updating socials", err)
	}

	if err := tx.Commit(); err != nil {
		return apperror.Unavailable("updating profile", err)
	}
	return nil
}

// UpdateAvatar updates only the pfp column.
// Returns apperror.ErrNotFound if the user doesn't exist — checked via
// RowsAffected rather than a separate lookup, so it's still one statement.
func (db *DB) UpdateAvatar(ctx context.Context, id, pfp string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET pfp = ?, updated_at = ? WHERE id = ?`,
		pfp, time.Now(), id)
	if err != nil {
		return apperror.Unavailable("updating avatar", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperror.Unavailable("updating avatar", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows so scanUser works with both.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	var emp string

	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.Name, &u.Pfp, &u.OneLiner,
		&u.Location, &u.WhatWorkingOn, &emp, &u.ProjectsNumber,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.InternshipOrJob = model.EmploymentTarget(emp)
	return &u, nil
}
