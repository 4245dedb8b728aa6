// Command seed populates a development database with a demo builder:
// one account, social links, two projects, and a handful of accountability
// messages. Run it once before starting the server locally so the profile
// endpoints have something to return.
//
// Usage:
//
//	go run ./cmd/seed            # seeds data/forgezone.db
//	DB_PATH=/tmp/x.db go run ./cmd/seed
//
// Seeding is idempotent: the demo user is created only if absent, and
// re-running skips the projects when the account already existed.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/forgezone/forge-zone/internal/model"
	"github.com/forgezone/forge-zone/internal/repository/sqlite"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	dbPath := "data/forgezone.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("creating database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		logger.Error("opening database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	demo := &model.User{
		ID:              "github:1000001",
		Email:           "demo@forgezone.dev",
		Username:        "demo",
		Name:            "Demo Builder",
		Pfp:             "https://forgezone.dev/avatars/forge-01.png",
		OneLiner:        "shipping in public",
		Location:        "Dhaka",
		InternshipOrJob: model.EmploymentInternship,
		ProjectsNumber:  2,
	}

	created, err := db.CreateIfAbsent(ctx, demo)
	if err != nil {
		logger.Error("seeding user", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !created {
		logger.Info("demo user already present, nothing to do", slog.String("userID", demo.ID))
		return
	}

	profile := &model.UserProfile{
		User: *demo,
		Socials: model.Socials{
			GitHub:  "https://github.com/forgezone-demo",
			Twitter: "https://twitter.com/forgezone_demo",
		},
	}
	if err := db.UpdateProfile(ctx, profile); err != nil {
		logger.Error("seeding socials", slog.String("error", err.Error()))
		os.Exit(1)
	}

	projects := []model.Project{
		{
			ProjectName:        "spotify-rewind",
			IsDiscordConnected: true,
			IsTwitterShared:    true,
			Total:              30,
			Current:            12,
			UserID:             demo.ID,
		},
		{
			ProjectName: "habit-forge",
			Total:       14,
			Current:     3,
			UserID:      demo.ID,
		},
	}

	messages := [][]model.Message{
		{
			{Body: "day 12: shipped the year-in-review screen", Target: "discord"},
			{Body: "day 11: wired up the Spotify API", Target: "twitter"},
		},
		{
			{Body: "day 3: streak tracking works", Target: "discord"},
		},
	}

	for i := range projects {
		if err := db.CreateProject(ctx, &projects[i]); err != nil {
			logger.Error("seeding project",
				slog.String("project", projects[i].ProjectName),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		for j := range messages[i] {
			if err := db.CreateMessage(ctx, projects[i].ID, &messages[i][j]); err != nil {
				logger.Error("seeding message", slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
	}

	logger.Info("seeded demo data",
		slog.String("userID", demo.ID),
		slog.Int("projects", len(projects)),
		slog.String("database", dbPath),
	)
}
