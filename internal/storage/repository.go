package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/log"
)

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// Repository implements every storage port over database/sql.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

var _ Store = (*Repository)(nil)
var _ LineReplacer = (*Repository)(nil)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies migrations.
func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := sqliteDSN(dbPath)
	if err := RunMigrations(DialectSQLite, dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return newRepository(db, DialectSQLite), nil
}

// NewPostgresRepository connects through the pgx stdlib driver and applies
// migrations.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*Repository, error) {
	if err := RunMigrations(DialectPostgres, databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return newRepository(db, DialectPostgres), nil
}

func newRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(dialect.placeholder()),
	}
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Dialect reports which database the repository talks to.
func (r *Repository) Dialect() Dialect {
	return r.dialect
}

func (r *Repository) exec(ctx context.Context, q queryer, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return q.ExecContext(ctx, query, args...)
}

func (r *Repository) query(ctx context.Context, q queryer, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return q.QueryContext(ctx, query, args...)
}

func (r *Repository) queryRow(ctx context.Context, q queryer, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return q.QueryRowContext(ctx, query, args...), nil
}

// withTx runs fn in a transaction, rolling back on error.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.FromContext(ctx).WithComponent(log.ComponentStorage).WarnContext(ctx, "Rollback failed", log.FieldError, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SaveEntity inserts or updates e.
func (r *Repository) SaveEntity(ctx context.Context, e core.Entity) error {
	b := r.sb.Insert("entities").
		Columns("id", "kind", "name", "year", "status").
		Values(e.ID, string(e.Kind), e.Name, e.Year, string(e.Status)).
		Suffix("ON CONFLICT (id) DO UPDATE SET kind = excluded.kind, name = excluded.name, year = excluded.year, status = excluded.status")
	if _, err := r.exec(ctx, r.db, b); err != nil {
		return fmt.Errorf("save entity %s: %w", e.ID, err)
	}
	return nil
}

var entityColumns = []string{"id", "kind", "name", "year", "status"}

func (r *Repository) GetEntity(ctx context.Context, id string) (core.Entity, error) {
	row, err := r.queryRow(ctx, r.db, r.sb.Select(entityColumns...).From("entities").Where(sq.Eq{"id": id}))
	if err != nil {
		return core.Entity{}, err
	}
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entity{}, fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Entity{}, fmt.Errorf("get entity %s: %w", id, err)
	}
	return e, nil
}

// ListEntities applies f in SQL so Rollup only ever sees matching entities.
func (r *Repository) ListEntities(ctx context.Context, f budget.EntityFilter) ([]core.Entity, error) {
	b := r.sb.Select(entityColumns...).From("entities").OrderBy("year DESC", "name", "id")
	if f.Year != 0 {
		b = b.Where(sq.Eq{"year": f.Year})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": string(f.Status)})
	}

	rows, err := r.query(ctx, r.db, b)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var out []core.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(s scanner) (core.Entity, error) {
	var e core.Entity
	var kind, status string
	if err := s.Scan(&e.ID, &kind, &e.Name, &e.Year, &status); err != nil {
		return core.Entity{}, err
	}
	e.Kind = core.EntityKind(kind)
	e.Status = core.EntityStatus(status)
	return e, nil
}
