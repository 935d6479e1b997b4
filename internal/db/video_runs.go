package db

import (
	"time"

	"github.com/google/uuid"
)

// Video run statuses
const (
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// VideoRun is one attempt at turning a video into notes
type VideoRun struct {
	ID        string
	Project   string
	URL       string
	Title     string
	Status    string
	Error     string
	Attempts  int
	CreatedAt time.Time
}

// RecordVideoRun stores a run, assigning an id and timestamp if missing
func (db *DB) RecordVideoRun(run *VideoRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(`
		INSERT INTO video_runs (id, project, url, title, status, error, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Project, run.URL, run.Title, run.Status, run.Error, run.Attempts, run.CreatedAt)
	return err
}

// ListVideoRuns returns the most recent runs for a project, newest first
func (db *DB) ListVideoRuns(project string, limit int) ([]VideoRun, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(`
		SELECT id, project, url, title, status, error, attempts, created_at
		FROM video_runs
		WHERE project = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, project, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []VideoRun
	for rows.Next() {
		var r VideoRun
		if err := rows.Scan(&r.ID, &r.Project, &r.URL, &r.Title, &r.Status, &r.Error, &r.Attempts, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// DeleteVideoRuns removes the history of a project
func (db *DB) DeleteVideoRuns(project string) error {
	_, err := db.Exec("DELETE FROM video_runs WHERE project = ?", project)
	return err
}
