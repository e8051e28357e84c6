package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dori/dayplan/internal/store"
	"github.com/oklog/ulid/v2"
)

// Commit describes one entry of the commit log
type Commit struct {
	Seq       int64
	ID        ulid.ULID
	Op        string
	CreatedAt time.Time
	Head      bool
}

// BaseOp labels the empty commit written ahead of the first save
const BaseOp = "init"

var emptyPayload = []byte(`{"tasks":[],"events":[]}`)

// CommitLog is a store.Storage backed by SQLite. Every Save appends a full
// snapshot; a cursor row tracks which commit is current so Undo and Redo
// survive restarts.
type CommitLog struct {
	db    *DB
	path  string
	limit int
	now   func() time.Time
}

var _ store.Storage = (*CommitLog)(nil)

// CommitLogOption configures a CommitLog
type CommitLogOption func(*CommitLog)

// WithHistoryLimit keeps at most n commits, pruning the oldest. Zero keeps
// everything.
func WithHistoryLimit(n int) CommitLogOption {
	return func(c *CommitLog) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithCommitClock overrides the clock used to stamp commits
func WithCommitClock(now func() time.Time) CommitLogOption {
	return func(c *CommitLog) {
		c.now = now
	}
}

// OpenCommitLog opens or creates the commit log at path
func OpenCommitLog(path string, opts ...CommitLogOption) (*CommitLog, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	c := &CommitLog{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Path returns the file backing the log
func (c *CommitLog) Path() string {
	return c.path
}

// Close closes the underlying database
func (c *CommitLog) Close() error {
	return c.db.Close()
}

// Save appends snap as a new commit, dropping anything after the cursor
func (c *CommitLog) Save(snap *store.Snapshot) error {
	return c.SaveOp("", snap)
}

// SaveOp is Save with a label recorded alongside the commit
func (c *CommitLog) SaveOp(op string, snap *store.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	now := c.now()

	return c.db.Transaction(func(tx *sql.Tx) error {
		head, err := readHead(tx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM commits WHERE seq > ?`, head); err != nil {
			return fmt.Errorf("failed to drop redo history: %w", err)
		}
		// The first save also records the empty state it started from, so
		// it can be undone like any other commit.
		if head == 0 {
			if _, err := insertCommit(tx, BaseOp, emptyPayload, now); err != nil {
				return err
			}
		}
		seq, err := insertCommit(tx, op, payload, now)
		if err != nil {
			return err
		}
		if err := writeHead(tx, seq); err != nil {
			return err
		}
		if c.limit > 0 {
			if _, err := tx.Exec(`
				DELETE FROM commits WHERE seq <= (
					SELECT seq FROM commits ORDER BY seq DESC LIMIT 1 OFFSET ?
				)
			`, c.limit); err != nil {
				return fmt.Errorf("failed to prune history: %w", err)
			}
		}
		return nil
	})
}

// Load returns the snapshot at the cursor
func (c *CommitLog) Load() (*store.Snapshot, error) {
	var snap *store.Snapshot
	err := c.db.Transaction(func(tx *sql.Tx) error {
		head, err := readHead(tx)
		if err != nil {
			return err
		}
		if head == 0 {
			snap = &store.Snapshot{}
			return nil
		}
		snap, err = readSnapshot(tx, head)
		return err
	})
	return snap, err
}

// Undo moves the cursor to the previous commit
func (c *CommitLog) Undo() (*store.Snapshot, error) {
	return c.step(`SELECT seq FROM commits WHERE seq < ? ORDER BY seq DESC LIMIT 1`, store.ErrNothingToUndo)
}

// Redo moves the cursor to the next commit
func (c *CommitLog) Redo() (*store.Snapshot, error) {
	return c.step(`SELECT seq FROM commits WHERE seq > ? ORDER BY seq ASC LIMIT 1`, store.ErrNothingToRedo)
}

func (c *CommitLog) step(query string, exhausted error) (*store.Snapshot, error) {
	var snap *store.Snapshot
	err := c.db.Transaction(func(tx *sql.Tx) error {
		head, err := readHead(tx)
		if err != nil {
			return err
		}
		if head == 0 {
			return exhausted
		}
		var seq int64
		err = tx.QueryRow(query, head).Scan(&seq)
		if err == sql.ErrNoRows {
			return exhausted
		}
		if err != nil {
			return fmt.Errorf("failed to find commit: %w", err)
		}
		if snap, err = readSnapshot(tx, seq); err != nil {
			return err
		}
		return writeHead(tx, seq)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// UndoSize returns the number of commits before the cursor
func (c *CommitLog) UndoSize() int {
	return c.count(`SELECT COUNT(*) FROM commits WHERE seq < (SELECT head FROM commit_head WHERE id = 1)`)
}

// RedoSize returns the number of commits after the cursor
func (c *CommitLog) RedoSize() int {
	return c.count(`
		SELECT COUNT(*) FROM commits
		WHERE seq > (SELECT head FROM commit_head WHERE id = 1)
		AND (SELECT head FROM commit_head WHERE id = 1) > 0
	`)
}

func (c *CommitLog) count(query string) int {
	var n int
	if err := c.db.QueryRow(query).Scan(&n); err != nil {
		return 0
	}
	return n
}

// History lists commits oldest first
func (c *CommitLog) History() ([]Commit, error) {
	var head int64
	if err := c.db.QueryRow(`SELECT head FROM commit_head WHERE id = 1`).Scan(&head); err != nil {
		return nil, fmt.Errorf("failed to read cursor: %w", err)
	}

	rows, err := c.db.Query(`SELECT seq, id, op, created_at FROM commits ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commits []Commit
	for rows.Next() {
		var cm Commit
		var id string
		if err := rows.Scan(&cm.Seq, &id, &cm.Op, &cm.CreatedAt); err != nil {
			return nil, err
		}
		if cm.ID, err = ulid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to parse commit id %q: %w", id, err)
		}
		cm.Head = cm.Seq == head
		commits = append(commits, cm)
	}
	return commits, rows.Err()
}

// Move copies the log to path, switches to the copy and removes the old
// file. The directory of path is created if needed.
func (c *CommitLog) Move(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if old, err := filepath.Abs(c.path); err == nil && old == abs {
		return nil
	}
	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("failed to move commit log: %s already exists", abs)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if _, err := c.db.Exec(`VACUUM INTO ?`, abs); err != nil {
		return fmt.Errorf("failed to copy commit log: %w", err)
	}

	moved, err := Open(abs)
	if err != nil {
		_ = os.Remove(abs)
		return err
	}
	oldPath := c.path
	if err := c.db.Close(); err != nil {
		_ = moved.Close()
		return fmt.Errorf("failed to close old commit log: %w", err)
	}
	c.db = moved
	c.path = abs
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(oldPath + suffix)
	}
	return nil
}

func insertCommit(tx *sql.Tx, op string, payload []byte, now time.Time) (int64, error) {
	id, err := ulid.New(ulid.Timestamp(now), ulid.DefaultEntropy())
	if err != nil {
		return 0, fmt.Errorf("failed to create commit id: %w", err)
	}
	res, err := tx.Exec(`
		INSERT INTO commits (id, op, payload, created_at)
		VALUES (?, ?, ?, ?)
	`, id.String(), op, payload, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert commit: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read commit seq: %w", err)
	}
	return seq, nil
}

func readHead(tx *sql.Tx) (int64, error) {
	var head int64
	if err := tx.QueryRow(`SELECT head FROM commit_head WHERE id = 1`).Scan(&head); err != nil {
		return 0, fmt.Errorf("failed to read cursor: %w", err)
	}
	return head, nil
}

func writeHead(tx *sql.Tx, seq int64) error {
	if _, err := tx.Exec(`UPDATE commit_head SET head = ? WHERE id = 1`, seq); err != nil {
		return fmt.Errorf("failed to move cursor: %w", err)
	}
	return nil
}

func readSnapshot(tx *sql.Tx, seq int64) (*store.Snapshot, error) {
	var payload []byte
	if err := tx.QueryRow(`SELECT payload FROM commits WHERE seq = ?`, seq).Scan(&payload); err != nil {
		return nil, fmt.Errorf("failed to read commit %d: %w", seq, err)
	}
	var snap store.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode commit %d: %w", seq, err)
	}
	return &snap, nil
}
