// Package video turns a YouTube video into summarized project notes.
package video

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/tgienger/focusboard/internal/db"
	"github.com/tgienger/focusboard/internal/models"
	"github.com/tgienger/focusboard/internal/retry"
)

// Troubleshooting is shown next to a failed run
const Troubleshooting = `If you're seeing an error, try these troubleshooting steps:
1. Verify the video is publicly accessible
2. Check if the video has captions available
3. Check if the video URL is correct`

// ProjectStore is the part of the project store the service writes to
type ProjectStore interface {
	Load(name string) (*models.Project, error)
	Save(name string, p *models.Project) error
}

// RunRecorder keeps the history of video runs
type RunRecorder interface {
	RecordVideoRun(run *db.VideoRun) error
}

// Service fetches captions, summarizes them and saves the result as a document
type Service struct {
	Fetcher    CaptionFetcher
	Summarizer Summarizer
	Projects   ProjectStore
	Runs       RunRecorder
	Policy     retry.Policy
	Logger     *zap.Logger
	Now        func() time.Time
}

// Retryable reports whether a failed attempt is worth repeating
func Retryable(err error) bool {
	if errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrMissingAPIKey) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	// yt-dlp failures, network errors and missing captions are often transient
	return true
}

// ValidateURL accepts absolute http(s) URLs
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

// Summarize adds video notes for url to project and returns the new document
func (s *Service) Summarize(ctx context.Context, project, videoURL string) (*models.Document, error) {
	log := s.logger().With(zap.String("project", project), zap.String("url", videoURL))
	run := &db.VideoRun{Project: project, URL: videoURL}

	doc, err := s.summarize(ctx, project, videoURL, run, log)
	if err != nil {
		run.Status = db.RunFailed
		run.Error = err.Error()
		log.Warn("video notes failed", zap.Int("attempts", run.Attempts), zap.Error(err))
	} else {
		run.Status = db.RunSucceeded
		log.Info("video notes saved", zap.String("title", run.Title), zap.Int("attempts", run.Attempts))
	}
	s.record(run, log)
	return doc, err
}

func (s *Service) summarize(ctx context.Context, project, videoURL string, run *db.VideoRun, log *zap.Logger) (*models.Document, error) {
	if err := ValidateURL(videoURL); err != nil {
		return nil, err
	}

	policy := s.Policy
	if policy.Retryable == nil {
		policy.Retryable = Retryable
	}
	onRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, err error) {
		log.Info("retrying video", zap.Int("attempt", attempt), zap.Error(err))
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	var summary string
	err := policy.Do(ctx, func(ctx context.Context) error {
		run.Attempts++
		caps, err := s.Fetcher.Fetch(ctx, videoURL)
		if err != nil {
			return err
		}
		run.Title = caps.Title

		summary, err = s.Summarizer.Summarize(ctx, caps.Transcript)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process video: %w", err)
	}

	p, err := s.Projects.Load(project)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	doc := models.Document{
		Title:       "Video Notes: " + run.Title,
		Content:     "## Video Summary\n\n" + summary,
		DateCreated: s.now().Format(models.DateLayout),
		Type:        models.DocumentTypeVideoNotes,
	}
	p.AddDocument(doc)
	if err := s.Projects.Save(project, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return &doc, nil
}

func (s *Service) record(run *db.VideoRun, log *zap.Logger) {
	if s.Runs == nil {
		return
	}
	if err := s.Runs.RecordVideoRun(run); err != nil {
		log.Error("record video run", zap.Error(err))
	}
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
