// Package session persists a judge's working state (gallery, projects, rubric,
// results) as one explicit value, loaded and saved at request boundaries.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"hackathon-judge/internal/models"
)

var ErrNotFound = errors.New("session not found")

// State is everything a judging session carries between page loads.
type State struct {
	ID         string                 `json:"id"`
	GalleryURL string                 `json:"galleryUrl"`
	Model      string                 `json:"model,omitempty"`
	Projects   []models.Project       `json:"projects"`
	Rubric     []models.Criterion     `json:"rubric"`
	Results    []models.ProjectResult `json:"results"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// NewState returns an empty state with a fresh ID.
func NewState() State {
	return State{
		ID:       uuid.NewString(),
		Projects: []models.Project{},
		Rubric:   []models.Criterion{},
		Results:  []models.ProjectResult{},
	}
}

type Store interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, s State) (State, error)
}

const schema = `CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps one JSON document per session.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load(ctx context.Context, id string) (State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM sessions WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("load session %s: %w", id, err)
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return State{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return st, nil
}

// Save upserts st, assigning an ID if it has none, and returns what was stored.
func (s *SQLiteStore) Save(ctx context.Context, st State) (State, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	st.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	raw, err := json.Marshal(st)
	if err != nil {
		return State{}, fmt.Errorf("encode session %s: %w", st.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		st.ID, string(raw), st.UpdatedAt.UnixMilli())
	if err != nil {
		return State{}, fmt.Errorf("save session %s: %w", st.ID, err)
	}
	return st, nil
}
