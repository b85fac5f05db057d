package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "migrations", "directory containing *.sql migration files")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		slog.Error("DATABASE_URL not set")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := run(ctx, pool, *mode, *dir); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, pool *pgxpool.Pool, mode, dir string) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("ensuring schema_migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	sort.Strings(files)

	switch mode {
	case "up":
		return migrateUp(ctx, pool, files)
	case "down":
		return migrateDown(ctx, pool, files)
	default:
		return fmt.Errorf("unknown mode %q (use up or down)", mode)
	}
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool, files []string) error {
	for _, file := range files {
		version := filepath.Base(file)

		var exists bool
		err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking migration status: %w", err)
		}
		if exists {
			slog.Info("skipping applied migration", "version", version)
			continue
		}

		up, _, err := splitMigration(file)
		if err != nil {
			return err
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		if _, err := tx.Exec(ctx, up); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("applying %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("recording %s: %w", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("committing %s: %w", version, err)
		}

		slog.Info("applied migration", "version", version)
	}

	return nil
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool, files []string) error {
	for i := len(files) - 1; i >= 0; i-- {
		version := filepath.Base(files[i])

		var exists bool
		err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking migration status: %w", err)
		}
		if !exists {
			continue
		}

		_, down, err := splitMigration(files[i])
		if err != nil {
			return err
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		if _, err := tx.Exec(ctx, down); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("reverting %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, version); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("unrecording %s: %w", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("committing revert of %s: %w", version, err)
		}

		slog.Info("reverted migration", "version", version)
	}

	return nil
}

// splitMigration separates a migration file into its "-- +up" and
// "-- +down" sections.
func splitMigration(file string) (up, down string, err error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", file, err)
	}

	content := string(raw)
	upIdx := strings.Index(content, "-- +up")
	downIdx := strings.Index(content, "-- +down")
	if upIdx < 0 {
		return "", "", fmt.Errorf("%s: missing -- +up marker", file)
	}

	if downIdx < 0 {
		return content[upIdx:], "", nil
	}
	return content[upIdx:downIdx], content[downIdx:], nil
}
