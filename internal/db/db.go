// Package db opens the SQL connection used by the repositories.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const pingTimeout = 10 * time.Second

// driverNames maps configured driver names to database/sql driver names.
var driverNames = map[string]string{
	"postgres": "pgx",
	"sqlite":   "sqlite",
}

// Open opens and pings a connection for driver ("postgres" or "sqlite").
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	name, ok := driverNames[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	conn, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == "sqlite" {
		// one writer; also keeps ":memory:" databases on a single connection
		conn.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().Str("driver", driver).Msg("database connected")
	return conn, nil
}
