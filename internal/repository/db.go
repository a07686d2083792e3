package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type Config struct {
	DSN             string // sqlite://path, sqlite://:memory: or postgres://...
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB is the ledger's database handle, backed by pgx or modernc sqlite.
type DB struct {
	sql     *sql.DB
	pool    *pgxpool.Pool
	dialect Dialect
	logger  *slog.Logger
}

func (db *DB) Dialect() Dialect { return db.dialect }

// Open connects to the ledger database named by cfg.DSN and creates the schema if needed.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	var (
		db  *DB
		err error
	)
	switch {
	case strings.HasPrefix(cfg.DSN, "sqlite://"):
		db, err = openSQLite(strings.TrimPrefix(cfg.DSN, "sqlite://"), logger)
	case strings.HasPrefix(cfg.DSN, "postgres://"), strings.HasPrefix(cfg.DSN, "postgresql://"):
		db, err = openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported ledger dsn %q", redact(cfg.DSN))
	}
	if err != nil {
		logger.Error("failed to connect to ledger database", "dialect", dialectOf(cfg.DSN), "error", err)
		return nil, err
	}

	if err := db.HealthCheck(ctx, cfg.DialTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}
	if err := db.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("ledger database ready", "dialect", db.dialect)
	return db, nil
}

func openSQLite(path string, logger *slog.Logger) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite dsn needs a path")
	}
	logger.Info("opening sqlite ledger", "path", path)
	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer; an in-memory database also lives only as long as its connection.
	sdb.SetMaxOpenConns(1)
	return &DB{sql: sdb, dialect: DialectSQLite, logger: logger}, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to postgres ledger", "dsn", redact(cfg.DSN))
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "resume-parser"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &DB{sql: stdlib.OpenDBFromPool(pool), pool: pool, dialect: DialectPostgres, logger: logger}, nil
}

// Close closes the database connections gracefully
func (db *DB) Close() {
	db.logger.Info("closing ledger database")
	if err := db.sql.Close(); err != nil {
		db.logger.Error("failed to close ledger database", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
}

// HealthCheck pings the database to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	db.logger.Debug("pinging ledger database")
	return db.sql.PingContext(ctx)
}

func (db *DB) migrate(ctx context.Context) error {
	ddl := sqliteSchema
	if db.dialect == DialectPostgres {
		ddl = postgresSchema
	}
	for _, stmt := range ddl {
		if _, err := db.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate ledger: %w", err)
		}
	}
	return nil
}

// rebind turns ? placeholders into $n for postgres.
func (db *DB) rebind(q string) string {
	if db.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func dialectOf(dsn string) string {
	if i := strings.Index(dsn, "://"); i > 0 {
		return dsn[:i]
	}
	return "unknown"
}

// redact hides the password of a URL-style DSN.
func redact(dsn string) string {
	i := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if i < 0 || at < i {
		return dsn
	}
	creds := dsn[i+3 : at]
	if c := strings.Index(creds, ":"); c >= 0 {
		return dsn[:i+3] + creds[:c] + ":***" + dsn[at:]
	}
	return dsn
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS extract_job (
		id            TEXT PRIMARY KEY,
		run_id        TEXT NOT NULL,
		source_path   TEXT NOT NULL,
		kind          TEXT NOT NULL,
		mode          TEXT NOT NULL,
		started_at    TIMESTAMP NOT NULL,
		finished_at   TIMESTAMP,
		status        TEXT NOT NULL,
		strategy      TEXT,
		error_code    TEXT,
		error_message TEXT,
		output_path   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS extract_job_run_idx ON extract_job (run_id, started_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS extract_job (
		id            UUID PRIMARY KEY,
		run_id        UUID NOT NULL,
		source_path   TEXT NOT NULL,
		kind          TEXT NOT NULL,
		mode          TEXT NOT NULL,
		started_at    TIMESTAMPTZ NOT NULL,
		finished_at   TIMESTAMPTZ,
		status        TEXT NOT NULL,
		strategy      TEXT,
		error_code    TEXT,
		error_message TEXT,
		output_path   TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS extract_job_run_idx ON extract_job (run_id, started_at)`,
}
