package sqldb

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/sakif/course-registration/internal/repository/sqldb/migrations"
)

// goose keeps its base FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// Migrate applies all pending migrations.
func (db *DB) Migrate(ctx context.Context) error {
	return db.runGoose(func(dir string) error {
		return goose.UpContext(ctx, db.conn.DB, dir)
	})
}

// MigrateDown rolls back the most recent migration.
func (db *DB) MigrateDown(ctx context.Context) error {
	return db.runGoose(func(dir string) error {
		return goose.DownContext(ctx, db.conn.DB, dir)
	})
}

// MigrationStatus logs the applied/pending state of every migration.
func (db *DB) MigrationStatus(ctx context.Context) error {
	return db.runGoose(func(dir string) error {
		return goose.StatusContext(ctx, db.conn.DB, dir)
	})
}

// SchemaVersion returns the current migration version.
func (db *DB) SchemaVersion(ctx context.Context) (int64, error) {
	var version int64
	err := db.runGoose(func(string) error {
		v, err := goose.GetDBVersionContext(ctx, db.conn.DB)
		version = v
		return err
	})
	return version, err
}

func (db *DB) runGoose(fn func(dir string) error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{logger: db.logger})
	if err := goose.SetDialect(db.dialect.gooseDialect); err != nil {
		return fmt.Errorf("sqldb: setting goose dialect: %w", err)
	}

	if err := fn(db.dialect.migrationsDir); err != nil {
		return fmt.Errorf("sqldb: migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "goose"))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	l.logger.Error(msg, slog.String("component", "goose"))
	panic(msg)
}
