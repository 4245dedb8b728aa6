package sqlite

import (
	"context"
	"testing"

	"github.com/forgezone/forge-zone/internal/model"
)

func createTestProject(t *testing.T, db *DB, userID, name string) *model.Project {
	t.Helper()
	p := &model.Project{UserID: userID, ProjectName: name, Total: 7, Current: 1}
	if err := db.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

func createTestMessage(t *testing.T, db *DB, projectID, target string) *model.Message {
	t.Helper()
	msg := &model.Message{Body: "note for " + target, Target: target}
	if err := db.CreateMessage(context.Background(), projectID, msg); err != nil {
		t.Fatalf("failed to create test message: %v", err)
	}
	return msg
}

func TestListByUser_FoldsMessages(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "auth0|u1", "ada@example.com")

	p := createTestProject(t, db, user.ID, "spotify-rewind")
	createTestMessage(t, db, p.ID, "kickoff")
	createTestMessage(t, db, p.ID, "finish-line")

	projects, err := db.ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("ListByUser() returned %d projects, want 1", len(projects))
	}
	if len(projects[0].Messages) != 2 {
		t.Errorf("project has %d messages, want 2", len(projects[0].Messages))
	}
	if projects[0].ProjectName != "spotify-rewind" {
		t.Errorf("ProjectName = %q, want %q", projects[0].ProjectName, "spotify-rewind")
	}
}

func TestListByUser_NoProjects(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "auth0|u1", "ada@example.com")

	projects, err := db.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("ListByUser() returned %d projects, want 0", len(projects))
	}
}

func TestCreateProject_GeneratesID(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "auth0|u1", "ada@example.com")

	p := createTestProject(t, db, user.ID, "gpt3-writer")
	if p.ID == "" {
		t.Error("CreateProject() did not generate an ID")
	}
}

func TestCreateMessage_UnknownProject(t *testing.T) {
	db := newTestDB(t)

	// The foreign key on messages.project_id must reject orphan messages.
	msg := &model.Message{Body: "orphan", Target: "nowhere"}
	err := db.CreateMessage(context.Background(), "no-such-project", msg)
	if err == nil {
		t.Fatal("CreateMessage() should fail for an unknown project")
	}
}
