// Package store persists installations, FAQ topics, and feedback in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deskbot/internal/domain"

	_ "modernc.org/sqlite"
)

// Store implements domain.InstallationStore, domain.TopicStore, and
// domain.FeedbackStore on a single SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection: SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS installations (
		team_id      TEXT PRIMARY KEY,
		team_name    TEXT,
		bot_token    TEXT NOT NULL,
		installed_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS topics (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL UNIQUE,
		answer   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		body       TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_time ON feedback(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

// Get returns the installation for teamID, or nil when none exists.
func (s *Store) Get(ctx context.Context, teamID string) (*domain.Installation, error) {
	var inst domain.Installation
	err := s.db.QueryRowContext(ctx,
		`SELECT team_id, team_name, bot_token, installed_at FROM installations WHERE team_id = ?`,
		teamID,
	).Scan(&inst.TeamID, &inst.TeamName, &inst.BotToken, &inst.InstalledAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// Upsert inserts or replaces the installation for inst.TeamID. Re-installs
// rotate the token in place; installations are never deleted here.
func (s *Store) Upsert(ctx context.Context, inst domain.Installation) error {
	if inst.InstalledAt.IsZero() {
		inst.InstalledAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO installations (team_id, team_name, bot_token, installed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(team_id) DO UPDATE SET team_name = excluded.team_name, bot_token = excluded.bot_token`,
		inst.TeamID, inst.TeamName, inst.BotToken, inst.InstalledAt,
	)
	return err
}

func (s *Store) List(ctx context.Context) ([]domain.Installation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT team_id, team_name, bot_token, installed_at FROM installations ORDER BY installed_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insts []domain.Installation
	for rows.Next() {
		var inst domain.Installation
		if err := rows.Scan(&inst.TeamID, &inst.TeamName, &inst.BotToken, &inst.InstalledAt); err != nil {
			return nil, err
		}
		insts = append(insts, inst)
	}
	return insts, rows.Err()
}

// ListAll returns every topic ordered by question.
func (s *Store) ListAll(ctx context.Context) ([]domain.Topic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT question, answer FROM topics ORDER BY question`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []domain.Topic
	for rows.Next() {
		var t domain.Topic
		if err := rows.Scan(&t.Question, &t.Answer); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// FindByQuery returns the first topic whose question matches the query,
// case-insensitive in either direction: a short query finds a longer
// question, and a long message finds a question contained in it.
func (s *Store) FindByQuery(ctx context.Context, query string) (*domain.Topic, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	topics, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range topics {
		q := strings.ToLower(t.Question)
		if strings.Contains(q, query) || strings.Contains(query, q) {
			return &t, nil
		}
	}
	return nil, nil
}

// UpsertTopic inserts or updates one topic keyed by question.
func (s *Store) UpsertTopic(ctx context.Context, t domain.Topic) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO topics (question, answer) VALUES (?, ?)
		 ON CONFLICT(question) DO UPDATE SET answer = excluded.answer`,
		t.Question, t.Answer,
	)
	return err
}

// ImportTopics upserts a batch of topics in one transaction.
func (s *Store) ImportTopics(ctx context.Context, topics []domain.Topic) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range topics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO topics (question, answer) VALUES (?, ?)
			 ON CONFLICT(question) DO UPDATE SET answer = excluded.answer`,
			t.Question, t.Answer,
		); err != nil {
			return fmt.Errorf("import topic %q: %w", t.Question, err)
		}
	}
	return tx.Commit()
}

func (s *Store) Append(ctx context.Context, userID, body string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (user_id, body) VALUES (?, ?)`,
		userID, body,
	)
	return err
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, body, created_at FROM feedback ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fbs []domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Body, &f.CreatedAt); err != nil {
			return nil, err
		}
		fbs = append(fbs, f)
	}
	return fbs, rows.Err()
}
