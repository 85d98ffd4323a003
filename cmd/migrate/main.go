package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"greencare-be/internal/config"
	"greencare-be/internal/db"
	"greencare-be/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const migrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "./migrations", "directory holding *.sql migrations")
	flag.Parse()

	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()
	log := logger.L()

	dsn, err := dataSource()
	if err != nil {
		log.Fatal("no database configured", zap.Error(err))
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conn, *mode, *dir); err != nil {
		log.Fatal("migration failed", zap.String("mode", *mode), zap.Error(err))
	}
}

var errNoDatabase = errors.New("set DB_URL or DB_HOST")

// dataSource prefers DB_URL and falls back to the DB_* variables the server uses.
func dataSource() (string, error) {
	if url := os.Getenv("DB_URL"); url != "" {
		return url, nil
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return "", errNoDatabase
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	return db.DSN(&config.Config{
		DBHost:     host,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     port,
	}), nil
}

func run(ctx context.Context, conn *sql.DB, mode, dir string) error {
	if _, err := conn.ExecContext(ctx, migrationsTable); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(files)

	switch mode {
	case "up":
		return migrateUp(ctx, conn, files)
	case "down":
		return migrateDown(ctx, conn, files)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

func migrateUp(ctx context.Context, conn *sql.DB, files []string) error {
	log := logger.L().With(zap.String("mode", "up"))

	applied := 0
	for _, file := range files {
		version := filepath.Base(file)

		var exists bool
		err := conn.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			log.Debug("skipping applied migration", zap.String("version", version))
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		log.Info("applying migration", zap.String("version", version))
		if err := apply(ctx, conn, section(string(content), "Up"),
			`INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("migration %s: %w", version, err)
		}
		applied++
	}

	log.Info("migrations complete", zap.Int("applied", applied))
	return nil
}

func migrateDown(ctx context.Context, conn *sql.DB, files []string) error {
	log := logger.L().With(zap.String("mode", "down"))

	var last string
	err := conn.QueryRowContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`,
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}

	var path string
	for _, f := range files {
		if filepath.Base(f) == last {
			path = f
			break
		}
	}
	if path == "" {
		return fmt.Errorf("migration file not found for version: %s", last)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	log.Info("rolling back migration", zap.String("version", last))
	if err := apply(ctx, conn, section(string(content), "Down"),
		`DELETE FROM schema_migrations WHERE version = $1`, last); err != nil {
		return fmt.Errorf("rollback %s: %w", last, err)
	}
	return nil
}

// apply runs body and the bookkeeping statement in one transaction.
func apply(ctx context.Context, conn *sql.DB, body, record, version string) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, record, version); err != nil {
		return fmt.Errorf("failed to record version: %w", err)
	}
	return tx.Commit()
}

// section returns the lines between "-- +migrate <name>" and the next marker.
func section(content, name string) string {
	var (
		part   strings.Builder
		inPart bool
	)
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "-- +migrate") {
			if inPart {
				break
			}
			inPart = strings.TrimSpace(line) == "-- +migrate "+name
			continue
		}
		if inPart {
			part.WriteString(line)
			part.WriteByte('\n')
		}
	}
	return part.String()
}
