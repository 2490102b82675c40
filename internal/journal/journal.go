// Package journal keeps an SQLite audit log of every generated story turn.
// It is write-mostly and never used to restore sessions.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tatianab/story-adventure/internal/models"
)

// DB wraps a SQLite connection holding the turn log.
type DB struct {
	conn *sqlx.DB
}

type turnRow struct {
	ID            int64  `db:"id"`
	StoryID       string `db:"story_id"`
	Turn          int    `db:"turn"`
	Theme         string `db:"theme"`
	Action        string `db:"action"`
	Prompt        string `db:"prompt"`
	Response      string `db:"response"`
	Narrative     string `db:"narrative"`
	InventoryJSON string `db:"inventory_json"`
	IsEnding      bool   `db:"is_ending"`
	EndReason     string `db:"end_reason"`
	DurationMS    int64  `db:"duration_ms"`
	CreatedAt     string `db:"created_at"`
}

// Open opens or creates the journal database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// SQLite allows one writer at a time.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		story_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		theme TEXT NOT NULL,
		action TEXT NOT NULL,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		narrative TEXT NOT NULL,
		inventory_json TEXT NOT NULL,
		is_ending INTEGER NOT NULL,
		end_reason TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_turns_story ON turns(story_id, turn);
	`
	_, err := db.conn.ExecContext(ctx, schema)
	return err
}

// RecordTurn appends one turn to the log.
func (db *DB) RecordTurn(ctx context.Context, rec models.TurnRecord) error {
	inventory := rec.Inventory
	if inventory == nil {
		inventory = []string{}
	}
	invJSON, err := json.Marshal(inventory)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	row := turnRow{
		StoryID:       rec.StoryID,
		Turn:          rec.Turn,
		Theme:         rec.Theme,
		Action:        rec.Action,
		Prompt:        rec.Prompt,
		Response:      rec.Response,
		Narrative:     rec.Narrative,
		InventoryJSON: string(invJSON),
		IsEnding:      rec.IsEnding,
		EndReason:     rec.EndReason,
		DurationMS:    rec.Duration.Milliseconds(),
		CreatedAt:     createdAt.UTC().Format(time.RFC3339Nano),
	}
	_, err = db.conn.NamedExecContext(ctx, `INSERT INTO turns
		(story_id, turn, theme, action, prompt, response, narrative,
		 inventory_json, is_ending, end_reason, duration_ms, created_at)
		VALUES (:story_id, :turn, :theme, :action, :prompt, :response, :narrative,
		 :inventory_json, :is_ending, :end_reason, :duration_ms, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// Transcript returns every recorded turn of a story in turn order. An unknown
// story yields an empty transcript.
func (db *DB) Transcript(ctx context.Context, storyID string) ([]models.TurnRecord, error) {
	var rows []turnRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM turns WHERE story_id = ? ORDER BY turn, id", storyID)
	if err != nil {
		return nil, fmt.Errorf("select transcript: %w", err)
	}

	records := make([]models.TurnRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r turnRow) record() (models.TurnRecord, error) {
	var inventory []string
	if err := json.Unmarshal([]byte(r.InventoryJSON), &inventory); err != nil {
		return models.TurnRecord{}, fmt.Errorf("decode inventory of turn %d: %w", r.ID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return models.TurnRecord{}, fmt.Errorf("decode timestamp of turn %d: %w", r.ID, err)
	}
	return models.TurnRecord{
		StoryID:   r.StoryID,
		Turn:      r.Turn,
		Theme:     r.Theme,
		Action:    r.Action,
		Prompt:    r.Prompt,
		Response:  r.Response,
		Narrative: r.Narrative,
		Inventory: inventory,
		IsEnding:  r.IsEnding,
		EndReason: r.EndReason,
		Duration:  time.Duration(r.DurationMS) * time.Millisecond,
		CreatedAt: createdAt,
	}, nil
}
