package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	loadEnvFiles()

	if err := migrate(context.Background(), *command, *name, logger); err != nil {
		logger.Error("migration failed", "command", *command, "error", err)
		os.Exit(1)
	}
}

func migrate(ctx context.Context, command, name string, logger *slog.Logger) error {
	dir := migrationsDir()

	if command == "create" {
		if name == "" {
			return errNameRequired
		}
		if err := goose.Create(nil, dir, name, "sql"); err != nil {
			return err
		}
		logger.Info("migration created", "name", name, "dir", dir)
		return nil
	}

	pool, err := pgxpool.New(ctx, databaseDSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			return err
		}
		logger.Info("migrations applied", "dir", dir)
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return err
		}
		logger.Info("migration rolled back", "dir", dir)
	case "status":
		return goose.StatusContext(ctx, db, dir)
	default:
		return errUnknownCommand(command)
	}
	return nil
}
