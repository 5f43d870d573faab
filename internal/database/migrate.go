package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending embedded migration and returns the resulting schema version.
func Migrate(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	db, err := openMigrationDB(pool)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := goose.UpContext(ctx, db, MigrationsDir); err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToMigrate, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToReadVersion, err)
	}

	slog.Default().Info(LogMsgMigrationsApplied, "version", version)
	return version, nil
}

// RollbackOne reverts the most recent migration and returns the resulting schema version.
func RollbackOne(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	db, err := openMigrationDB(pool)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := goose.DownContext(ctx, db, MigrationsDir); err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToRollback, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToReadVersion, err)
	}

	slog.Default().Info(LogMsgMigrationRolledBack, "version", version)
	return version, nil
}

// Status logs the applied state of every embedded migration
func Status(ctx context.Context, pool *pgxpool.Pool) error {
	db, err := openMigrationDB(pool)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.StatusContext(ctx, db, MigrationsDir); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToReadStatus, err)
	}
	return nil
}

func openMigrationDB(pool *pgxpool.Pool) (*sql.DB, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(MigrationDialect); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToSetDialect, err)
	}
	return stdlib.OpenDBFromPool(pool), nil
}
