package repos

import (
	"context"
	"database/sql/driver"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"golang.org/x/text/cases"
	"modernc.org/sqlite"

	"stockledger/internal/domain"
	applog "stockledger/internal/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

const memoryDSN = ":memory:"

// timeLayout is how timestamps are stored; it sorts lexically and is
// understood by SQLite's date functions.
const timeLayout = "2006-01-02 15:04:05.000"

func stamp(t time.Time) string { return t.UTC().Format(timeLayout) }

// fold is the Unicode case folding used for search. SQLite's LOWER only
// folds ASCII, so the same function is exposed to SQL as fold(x).
func fold(s string) string { return cases.Fold().String(s) }

func init() {
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return fold(v), nil
			case []byte:
				return fold(string(v)), nil
			default:
				return v, nil
			}
		})
}

type options struct {
	busyTimeout time.Duration
}

type Option func(*options)

// WithBusyTimeout bounds how long a statement waits on a locked store.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// OpenDB opens the store at path (":memory:" for a private in-memory store),
// enables foreign keys on the connection and ensures the schema. The parent
// directory of path is created when missing.
func OpenDB(path string, opts ...Option) (*sqlx.DB, error) {
	o := options{busyTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	if path != memoryDSN {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("%w: create %s: %v", domain.ErrStoreUnavailable, dir, err)
			}
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_txlock=immediate",
		path, o.busyTimeout.Milliseconds())
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStoreUnavailable, path, err)
	}
	// One connection: writes are serialised by the driver and an in-memory
	// store stays a single database.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStoreUnavailable, path, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	applog.Info("store.open", map[string]any{"path": path})
	return db, nil
}

// EnsureSchema applies the embedded migrations. Already applied versions are
// skipped, so it is safe on every startup.
func EnsureSchema(db *sqlx.DB) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db.DB, sub)
	if err != nil {
		return fmt.Errorf("%w: schema: %v", domain.ErrStoreUnavailable, err)
	}
	results, err := p.Up(context.Background())
	if err != nil {
		return fmt.Errorf("%w: schema: %v", domain.ErrStoreUnavailable, err)
	}
	for _, r := range results {
		applog.Info("store.migrate", map[string]any{"version": r.Source.Version, "took_ms": r.Duration.Milliseconds()})
	}
	return nil
}
