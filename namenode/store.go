package namenode

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/filecoord/osnfs/models"
)

//go:embed migrations/files/*.sql
var migrationFiles embed.FS

// Store is the NN's durable registry backing, grounded in
// theanswer42-bt-go's internal/database package: a plain database/sql
// connection over mattn/go-sqlite3, schema-versioned with
// golang-migrate/migrate/v4 reading migrations embedded at build time.
// Queries are hand-written rather than sqlc-generated (SPEC_FULL.md §4.2)
// since running the sqlc generator is not available here.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) a SQLite database at path and
// applies any pending migrations.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationFiles, "migrations/files")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("wrapping sqlite driver for migration: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("constructing migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadInto reads every persisted row back into an in-memory Registry on
// startup, so a restarted NN process recovers its namespace, SN roster,
// and user list without replaying operations.
func (s *Store) LoadInto(r *Registry) error {
	rows, err := s.db.Query(`SELECT id, address, control_port, client_port, file_count, replica_peer, registered_order FROM storage_nodes`)
	if err != nil {
		return fmt.Errorf("loading storage nodes: %w", err)
	}
	for rows.Next() {
		var n models.StorageNodeRecord
		var replicaPeer sql.NullString
		var order int
		if err := rows.Scan(&n.ID, &n.Address, &n.ControlPort, &n.ClientPort, &n.FileCount, &replicaPeer, &order); err != nil {
			rows.Close()
			return fmt.Errorf("scanning storage node row: %w", err)
		}
		n.ReplicaPeer = replicaPeer.String
		n.Connected = false // a restarted NN waits for a fresh heartbeat before trusting any SN
		r.nodes[n.ID] = &n
		r.nodeOrder[n.ID] = order
		if order > r.nextOrder {
			r.nextOrder = order
		}
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT identity, address, registered FROM users`)
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	for rows.Next() {
		var u models.UserRecord
		if err := rows.Scan(&u.Identity, &u.Address, &u.Registered); err != nil {
			rows.Close()
			return fmt.Errorf("scanning user row: %w", err)
		}
		r.users[u.Identity] = &u
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT filename, owner, home_ss_id, created, modified, accessed, last_accessed_by, word_count, char_count FROM files`)
	if err != nil {
		return fmt.Errorf("loading files: %w", err)
	}
	for rows.Next() {
		var f models.FileRecord
		if err := rows.Scan(&f.Filename, &f.Owner, &f.HomeSSID, &f.Created, &f.Modified, &f.Accessed, &f.LastAccessedBy, &f.WordCount, &f.CharCount); err != nil {
			rows.Close()
			return fmt.Errorf("scanning file row: %w", err)
		}
		r.files[f.Filename] = &f
	}
	rows.Close()

	rows, err = s.db.Query(`SELECT filename, requester, owner, requested_at FROM access_requests`)
	if err != nil {
		return fmt.Errorf("loading access requests: %w", err)
	}
	for rows.Next() {
		var req models.AccessRequest
		if err := rows.Scan(&req.Filename, &req.Requester, &req.Owner, &req.RequestedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scanning access request row: %w", err)
		}
		req.Pending = true
		key := models.AccessRequestKey{Filename: req.Filename, Requester: req.Requester}
		r.requests[key] = &req
	}
	rows.Close()

	return nil
}

// persistUser upserts rec's row. No-op when the Registry has no Store.
func (r *Registry) persistUser(rec *models.UserRecord) error {
	if r.store == nil {
		return nil
	}
	_, err := r.store.db.Exec(
		`INSERT INTO users (identity, address, registered) VALUES (?, ?, ?)
		 ON CONFLICT(identity) DO UPDATE SET address = excluded.address`,
		rec.Identity, rec.Address, rec.Registered,
	)
	return err
}

// persistNode upserts rec's row. The registered_order column is only set
// on the initial INSERT, not the ON CONFLICT update, so a node's
// placement tie-break order stays fixed to when it first registered
// rather than drifting on every re-registration upsert.
func (r *Registry) persistNode(rec *models.StorageNodeRecord) error {
	if r.store == nil {
		return nil
	}
	_, err := r.store.db.Exec(
		`INSERT INTO storage_nodes (id, address, control_port, client_port, file_count, replica_peer, registered_order) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET address = excluded.address, control_port = excluded.control_port,
			client_port = excluded.client_port, replica_peer = excluded.replica_peer`,
		rec.ID, rec.Address, rec.ControlPort, rec.ClientPort, rec.FileCount, rec.ReplicaPeer, r.nodeOrder[rec.ID],
	)
	return err
}

func (r *Registry) persistFile(rec *models.FileRecord) error {
	if r.store == nil {
		return nil
	}
	_, err := r.store.db.Exec(
		`INSERT INTO files (filename, owner, home_ss_id, created, modified, accessed, last_accessed_by, word_count, char_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(filename) DO UPDATE SET modified = excluded.modified, accessed = excluded.accessed,
			last_accessed_by = excluded.last_accessed_by, word_count = excluded.word_count, char_count = excluded.char_count`,
		rec.Filename, rec.Owner, rec.HomeSSID, rec.Created, rec.Modified, rec.Accessed, rec.LastAccessedBy, rec.WordCount, rec.CharCount,
	)
	return err
}

func (r *Registry) persistFileDelete(filename string) error {
	if r.store == nil {
		return nil
	}
	_, err := r.store.db.Exec(`DELETE FROM files WHERE filename = ?`, filename)
	return err
}

func (r *Registry) persistRequest(req *models.AccessRequest) error {
	if r.store == nil {
		return nil
	}
	_, err := r.store.db.Exec(
		`INSERT INTO access_requests (filename, requester, owner, requested_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(filename, requester) DO UPDATE SET requested_at = excluded.requested_at`,
		req.Filename, req.Requester, req.Owner, req.RequestedAt,
	)
	return err
}

func (r *Registry) persistRequestDelete(key models.AccessRequestKey) error {
	if r.store == nil {
		return nil
	}
	_, err := r.store.db.Exec(`DELETE FROM access_requests WHERE filename = ? AND requester = ?`, key.Filename, key.Requester)
	return err
}
