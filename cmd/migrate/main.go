package main

// Run database migrations:
//   go run ./cmd/migrate [up|status]

import (
	"context"
	"os"

	"resume-screener/internal/shared/config"
	"resume-screener/internal/shared/storage/db"
	"resume-screener/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, dialect, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB, dialect)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB, dialect)
	default:
		telemetry.Error("migrate.unknown_command", map[string]any{"command": command})
		os.Exit(2)
	}
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "dialect": string(dialect), "error": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command, "dialect": string(dialect)})
}
