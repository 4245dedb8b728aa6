package sqlite

import (
	"context"
	"database/sql"

	"github.com/forgezone/forge-zone/internal/apperror"
	"github.com/forgezone/forge-zone/internal/model"
	"github.com/forgezone/forge-zone/internal/repository"
	"github.com/rs/xid"
)

var _ repository.ProjectRepository = (*DB)(nil)

// newID generates a row ID for records we key ourselves (projects, messages,
// socials). xid IDs are 20 chars, URL-safe, and sortable by creation time —
// the ORDER BY in GetProfile relies on that to keep insertion order.
//
// User IDs are NOT generated here: the identity provider issues those.
func newID() string {
	return xid.New().String()
}

// CreateProject inserts a build for a user. The ID is generated unless the
// caller supplied one (tests do, to get deterministic fixtures).
func (db *DB) CreateProject(ctx context.Context, project *model.Project) error {
	if project.ID == "" {
		project.ID = newID()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, projectname, is_discord_connected,
			is_twitter_shared, total, current)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.UserID,
		project.ProjectName,
		project.IsDiscordConnected,
		project.IsTwitterShared,
		project.Total,
		project.Current,
	)
	if err != nil {
		return apperror.Unavailable("creating project", err)
	}
	return nil
}

// CreateMessage attaches a message to an existing project.
func (db *DB) CreateMessage(ctx context.Context, projectID string, msg *model.Message) error {
	if msg.ID == "" {
		msg.ID = newID()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, project_id, message, target) VALUES (?, ?, ?, ?)`,
		msg.ID, projectID, msg.Body, msg.Target,
	)
	if err != nil {
		return apperror.Unavailable("creating message", err)
	}
	return nil
}

// ListByUser returns a user's projects with their messages, folded from a
// single LEFT JOIN query the same way GetProfile folds the full graph.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.id, p.projectname, p.is_discord_connected, p.is_twitter_shared,
		       p.total, p.current, p.user_id,
		       m.id, m.message, m.target
		FROM projects p
		LEFT JOIN messages m ON m.project_id = p.id
		WHERE p.user_id = ?
		ORDER BY p.id, m.id`, userID)
	if err != nil {
		return nil, apperror.Unavailable("listing projects", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	var current *model.Project

	for rows.Next() {
		var (
			p       model.Project
			mID     sql.NullString
			mBody   sql.NullString
			mTarget sql.NullString
		)
		err := rows.Scan(
			&p.ID, &p.ProjectName, &p.IsDiscordConnected, &p.IsTwitterShared,
			&p.Total, &p.Current, &p.UserID,
			&mID, &mBody, &mTarget,
		)
		if err != nil {
			return nil, apperror.Unavailable("listing projects", err)
		}

		if current == nil || current.ID != p.ID {
			p.Messages = []model.Message{}
			projects = append(projects, p)
			current = &projects[len(projects)-1]
		}

		if mID.Valid {
			current.Messages = append(current.Messages, model.Message{
				ID:     mID.String,
				Body:   mBody.String,
				Target: mTarget.String,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("listing projects", err)
	}

	return projects, nil
}
