package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/uuid"

	"github.com/recallery/recallery-backend/internal/app"
	"github.com/recallery/recallery-backend/internal/platform/envutil"
	"github.com/recallery/recallery-backend/internal/platform/logger"
)

// Builds one practice session for a user and prints it, for poking at tuning
// changes against a real database.
func main() {
	logg, err := logger.New(envutil.String("LOG_MODE", "dev"))
	if err != nil {
		os.Exit(1)
	}
	defer logg.Sync()

	if len(os.Args) < 2 {
		logg.Fatal("usage: session <user-id>")
	}
	userID, err := uuid.Parse(os.Args[1])
	if err != nil {
		logg.Fatal("invalid user id", "arg", os.Args[1], "error", err)
	}

	a, err := app.Compose(logg)
	if err != nil {
		logg.Fatal("failed to compose app", "error", err)
	}

	cards, err := a.Sessions.BuildSession(context.Background(), userID, a.Tuning.Session)
	if err != nil {
		logg.Fatal("failed to build session", "user_id", userID, "error", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cards); err != nil {
		logg.Fatal("failed to encode session", "error", err)
	}

	logg.Info("built session", "user_id", userID, "cards", len(cards))
}
