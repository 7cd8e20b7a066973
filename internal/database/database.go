// Package database opens the configured SQL backend behind one sqlx handle.
package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"learnmap/internal/config"
	"learnmap/internal/database/postgres"
	"learnmap/internal/database/sqlite"
)

type DB struct {
	*sqlx.DB

	Driver string

	closeFn func() error
}

func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, closeFn, err := postgres.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &DB{DB: db, Driver: config.DriverPostgres, closeFn: closeFn}, nil
	case config.DriverSQLite, "":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &DB{DB: db, Driver: config.DriverSQLite}, nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Wrap adopts an already open handle. Tests use it with SQLite temp files.
func Wrap(db *sqlx.DB, driver string) *DB {
	return &DB{DB: db, Driver: driver}
}

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return errors.New("nil db")
	}
	return d.PingContext(ctx)
}

func (d *DB) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	if d.closeFn != nil {
		return d.closeFn()
	}
	return d.DB.Close()
}
