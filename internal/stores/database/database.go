package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"shopcart/internal/cart"
)

//go:embed migrations
var migrations embed.FS

// Open connects to the cart database and brings its schema up to date.
// dialect is cart.DialectPostgres (dsn is a postgres URL) or cart.DialectSQLite
// (dsn is a file path).
func Open(ctx context.Context, dialect cart.Dialect, dsn string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case cart.DialectPostgres:
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	case cart.DialectSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	if dialect == cart.DialectSQLite {
		// sqlite has a single writer; one connection keeps writes from
		// failing with SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate applies the embedded goose migrations for dialect.
func Migrate(db *sql.DB, dialect cart.Dialect) error {
	gooseDialect, dir := "postgres", "migrations/postgres"
	if dialect == cart.DialectSQLite {
		gooseDialect, dir = "sqlite3", "migrations/sqlite"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}
