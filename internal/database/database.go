// Package database opens the SQL connection used for snapshots and keeps its schema current.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // Postgres driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNone     = "none"
)

// ErrNoDatabase is returned by Open when persistence is switched off
var ErrNoDatabase = errors.New("database disabled")

// DB wraps a connection pool together with the driver that produced it
type DB struct {
	*sql.DB
	Driver string
}

// Open connects with the configured driver and runs pending migrations
func Open(ctx context.Context, driver, url string) (*DB, error) {
	var (
		db  *DB
		err error
	)
	switch driver {
	case DriverPostgres:
		db, err = NewPostgresConnection(url)
	case DriverSQLite, "":
		db, err = NewSQLiteConnection(url)
	case DriverNone:
		return nil, ErrNoDatabase
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// NewPostgresConnection opens and pings a Postgres pool
func NewPostgresConnection(url string) (*DB, error) {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{DB: conn, Driver: DriverPostgres}, nil
}

// NewSQLiteConnection opens a SQLite file, creating its directory if needed
func NewSQLiteConnection(path string) (*DB, error) {
	if dir := filepath.Dir(path); path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	return &DB{DB: conn, Driver: DriverSQLite}, nil
}

// Rebind rewrites ? placeholders into the driver's native form
func (db *DB) Rebind(query string) string {
	if db.Driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
