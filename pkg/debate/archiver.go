package debate

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Archiver receives the final snapshot of every ended debate. Implementations
// are write-only from the engine's point of view: live sessions are never
// restored from an archive.
type Archiver interface {
	ArchiveDebate(ctx context.Context, snap *Snapshot) error
}

const archiveSchema = `
CREATE TABLE IF NOT EXISTS debates (
	debate_id      TEXT PRIMARY KEY,
	topic          TEXT NOT NULL,
	human_position TEXT NOT NULL,
	agent_position TEXT NOT NULL,
	summary        TEXT,
	turn_count     INTEGER NOT NULL,
	ended_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS turns (
	debate_id TEXT NOT NULL REFERENCES debates(debate_id),
	seq       INTEGER NOT NULL,
	role      TEXT NOT NULL,
	text      TEXT NOT NULL,
	PRIMARY KEY (debate_id, seq)
);
`

// SQLiteArchiver stores ended-debate transcripts in a local sqlite database.
type SQLiteArchiver struct {
	db *sql.DB
}

// NewSQLiteArchiver opens (creating if needed) the archive database at path.
func NewSQLiteArchiver(path string) (*SQLiteArchiver, error) {
	if path == "" {
		return nil, fmt.Errorf("archive path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}

	return &SQLiteArchiver{db: db}, nil
}

// ArchiveDebate writes the debate row and its retained turns in one
// transaction. Re-archiving the same debate id replaces the previous rows.
func (a *SQLiteArchiver) ArchiveDebate(ctx context.Context, snap *Snapshot) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO debates (debate_id, topic, human_position, agent_position, summary, turn_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.DebateID, snap.Topic, string(snap.HumanPosition), string(snap.AgentPosition),
		snap.Summary, snap.TurnCount,
	); err != nil {
		return fmt.Errorf("failed to write debate row: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM turns WHERE debate_id = ?`, snap.DebateID,
	); err != nil {
		return fmt.Errorf("failed to clear previous turns: %w", err)
	}

	for _, turn := range snap.Turns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns (debate_id, seq, role, text) VALUES (?, ?, ?, ?)`,
			snap.DebateID, turn.Seq, string(turn.Role), turn.Text,
		); err != nil {
			return fmt.Errorf("failed to write turn %d: %w", turn.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive transaction: %w", err)
	}
	return nil
}

// Close closes the archive database.
func (a *SQLiteArchiver) Close() error {
	return a.db.Close()
}
