package registry

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/edge-gateway/messageproxy/pkg/gatewayerrors"
)

// Config configures a Registry's SQLite backing store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// Registry maps a validated image digest to the local filesystem path
// its rootfs was extracted to, surviving process restarts.
type Registry struct {
	db        *sql.DB
	mu        sync.Mutex
	closeOnce sync.Once
}

// Open opens or creates the registry database at cfg.DBPath.
func Open(cfg Config) (*Registry, error) {
	if cfg.DBPath == "" {
		return nil, gatewayerrors.New(gatewayerrors.KindInvalidArgument, "registry.Open", "DBPath must not be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL", cfg.DBPath, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "registry.Open", err)
	}
	db.SetMaxOpenConns(1)

	r := &Registry{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Registry) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS image_extractions (
		digest      TEXT PRIMARY KEY,
		path        TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	);`

	if _, err := r.db.Exec(schema); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "registry.initSchema", err)
	}
	return nil
}

// Lookup returns the extraction path recorded for digest, if any.
func (r *Registry) Lookup(digest string) (path string, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.db.QueryRow(`SELECT path FROM image_extractions WHERE digest = ?`, digest)
	if scanErr := row.Scan(&path); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, gatewayerrors.Wrap(gatewayerrors.KindRuntime, "registry.Lookup", scanErr)
	}
	return path, true, nil
}

// Record stores (or overwrites) the extraction path for digest.
func (r *Registry) Record(digest, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO image_extractions (digest, path, recorded_at) VALUES (?, ?, ?)
		 ON CONFLICT(digest) DO UPDATE SET path = excluded.path, recorded_at = excluded.recorded_at`,
		digest, path, time.Now().Unix(),
	)
	if err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "registry.Record", err)
	}
	return nil
}

// Forget removes digest's recorded extraction path, e.g. after
// pkg/imagestore/gc has swept the directory it pointed to.
func (r *Registry) Forget(digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec(`DELETE FROM image_extractions WHERE digest = ?`, digest); err != nil {
		return gatewayerrors.Wrap(gatewayerrors.KindRuntime, "registry.Forget", err)
	}
	return nil
}

// Close closes the underlying database handle. Safe to call more than
// once.
func (r *Registry) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.db.Close()
	})
	return err
}
