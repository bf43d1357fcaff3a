package followup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/spigell/resumebek/internal/lang"
)

const schema = `
CREATE TABLE IF NOT EXISTS followup_jobs (
	id            TEXT PRIMARY KEY,
	user_id       INTEGER NOT NULL,
	chat_id       INTEGER NOT NULL,
	language      TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	scheduled_for TEXT NOT NULL
)`

// SQLiteStore keeps jobs in the followup_jobs table of a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("follow-up store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating followup_jobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, job Job) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO followup_jobs (id, user_id, chat_id, language, created_at, scheduled_for)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			chat_id = excluded.chat_id,
			language = excluded.language,
			created_at = excluded.created_at,
			scheduled_for = excluded.scheduled_for`,
		job.ID, job.UserID, job.ChatID, string(job.Language),
		job.CreatedAt.Format(time.RFC3339Nano), job.ScheduledFor.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving job %s: %w", job.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM followup_jobs WHERE id = ?", id); err != nil {
		return fmt.Errorf("removing job %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, chat_id, language, created_at, scheduled_for
		FROM followup_jobs`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var (
			job                     Job
			language                string
			createdAt, scheduledFor string
		)
		if err := rows.Scan(&job.ID, &job.UserID, &job.ChatID, &language, &createdAt, &scheduledFor); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}

		job.Language = lang.Language(language)
		if job.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at of job %s: %w", job.ID, err)
		}
		if job.ScheduledFor, err = time.Parse(time.RFC3339Nano, scheduledFor); err != nil {
			return nil, fmt.Errorf("parsing scheduled_for of job %s: %w", job.ID, err)
		}

		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}

	sortJobs(jobs)
	return jobs, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
