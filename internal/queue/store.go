package queue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/acssjr/vizu/internal/model"
)

// QueuedVote is one durable pending submission. It is written to local
// storage before any network attempt and removed only on confirmed success.
type QueuedVote struct {
	ID            string
	PhotoID       string
	Payload       model.VoteRequest
	Attempts      int
	CreatedAt     time.Time
	LastAttemptAt *time.Time
}

// Store persists queued votes in a local SQLite database. A single
// connection guarded by a mutex is plenty: the queue is device-local and
// low-volume.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

// OpenStore opens (or creates) the durable queue database at path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return nil, fmt.Errorf("open queue database: %w", err)
	}

	err = sqlitex.Execute(conn, `
		CREATE TABLE IF NOT EXISTS queued_votes (
			id              TEXT PRIMARY KEY,
			photo_id        TEXT NOT NULL,
			payload         TEXT NOT NULL,
			attempts        INTEGER NOT NULL DEFAULT 0,
			created_at      INTEGER NOT NULL,
			last_attempt_at INTEGER
		)`, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create queue table: %w", err)
	}

	return &Store{conn: conn}, nil
}

// Put persists a queued vote.
func (s *Store) Put(v QueuedVote) error {
	payload, err := json.Marshal(v.Payload)
	if err != nil {
		return fmt.Errorf("marshal queued vote: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return sqlitex.Execute(s.conn, `
		INSERT INTO queued_votes (id, photo_id, payload, attempts, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{v.ID, v.PhotoID, string(payload), v.Attempts, v.CreatedAt.Unix()},
		})
}

// MarkAttempt increments the attempt counter and records the attempt time.
// Returns the updated record.
func (s *Store) MarkAttempt(id string, at time.Time) (*QueuedVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := sqlitex.Execute(s.conn, `
		UPDATE queued_votes SET attempts = attempts + 1, last_attempt_at = ?
		WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{at.Unix(), id}})
	if err != nil {
		return nil, err
	}
	return s.getLocked(id)
}

// Get returns one queued vote by ID, or nil if it no longer exists.
func (s *Store) Get(id string) (*QueuedVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (*QueuedVote, error) {
	var found *QueuedVote
	err := sqlitex.Execute(s.conn, `
		SELECT id, photo_id, payload, attempts, created_at, last_attempt_at
		FROM queued_votes WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				v, err := scanQueuedVote(stmt)
				if err != nil {
					return err
				}
				found = v
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Delete removes a queued vote (on confirmed success or expiry).
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sqlitex.Execute(s.conn, `DELETE FROM queued_votes WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}})
}

// List returns all queued votes, oldest first.
func (s *Store) List() ([]QueuedVote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []QueuedVote
	err := sqlitex.Execute(s.conn, `
		SELECT id, photo_id, payload, attempts, created_at, last_attempt_at
		FROM queued_votes ORDER BY created_at ASC`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				v, err := scanQueuedVote(stmt)
				if err != nil {
					return err
				}
				out = append(out, *v)
				return nil
			},
		})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close shuts down the underlying connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

func scanQueuedVote(stmt *sqlite.Stmt) (*QueuedVote, error) {
	v := QueuedVote{
		ID:        stmt.ColumnText(0),
		PhotoID:   stmt.ColumnText(1),
		Attempts:  stmt.ColumnInt(3),
		CreatedAt: time.Unix(stmt.ColumnInt64(4), 0),
	}
	if err := json.Unmarshal([]byte(stmt.ColumnText(2)), &v.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal queued vote %s: %w", v.ID, err)
	}
	if stmt.ColumnType(5) != sqlite.TypeNull {
		t := time.Unix(stmt.ColumnInt64(5), 0)
		v.LastAttemptAt = &t
	}
	return &v, nil
}
