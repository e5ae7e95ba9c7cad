package database

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/trezcool/academia/core"
	appfs "github.com/trezcool/academia/fs"
)

const (
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"

	memoryPath = ":memory:"
)

// DB is the sqlx handle shared by every repository.
// Writers are serialised through WithinTx.
type DB struct {
	*sqlx.DB
	engine string
	mu     sync.Mutex
}

var _ core.DB = (*DB)(nil) // interface compliance check

// Engine returns the configured engine name: "sqlite" or "postgres".
func (db *DB) Engine() string { return db.engine }

// WithinTx runs fn in a transaction, committing if fn succeeds and rolling back otherwise.
func (db *DB) WithinTx(ctx context.Context, fn func(tx core.DBExecutor) error) (err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back: %v", rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func sqliteDSN(path string) string {
	if path == "" {
		path = memoryPath
	}
	if path != memoryPath {
		path = filepath.Clean(path)
	}
	q := make(url.Values)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return path + "?" + q.Encode()
}

func postgresDSN(conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   EnginePostgres,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.DatabaseAddress(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Open connects to the configured database engine and waits until it answers.
func Open(conf *core.Config) (*DB, error) {
	engine := strings.ToLower(conf.Database.Engine)

	var (
		sdb *sqlx.DB
		err error
	)
	switch engine {
	case "", EngineSQLite:
		engine = EngineSQLite
		sdb, err = sqlx.Open(EngineSQLite, sqliteDSN(conf.Database.Path))
		if err == nil && (conf.Database.Path == "" || conf.Database.Path == memoryPath) {
			// every connection to :memory: is a distinct database
			sdb.SetMaxOpenConns(1)
		}
	case EnginePostgres:
		sdb, err = sqlx.Open(EnginePostgres, postgresDSN(conf))
	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	if err = ping(sdb.DB); err != nil {
		_ = sdb.Close()
		return nil, err
	}
	return &DB{DB: sdb, engine: engine}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// MigrationsDir returns the embedded migrations directory of engine, along with its goose dialect.
func MigrationsDir(engine string) (dir, dialect string) {
	if engine == EnginePostgres {
		return "migrations/postgres", "postgres"
	}
	return "migrations/sqlite", "sqlite3"
}

// PrepareGoose points goose at the embedded migrations of db's engine.
func PrepareGoose(db *DB) (string, error) {
	dir, dialect := MigrationsDir(db.engine)
	goose.SetBaseFS(appfs.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return "", errors.Wrap(err, "setting goose dialect")
	}
	return dir, nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *DB) error {
	dir, err := PrepareGoose(db)
	if err != nil {
		return err
	}
	if err = goose.UpContext(ctx, db.DB.DB, dir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
