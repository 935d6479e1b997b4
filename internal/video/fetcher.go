package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNoCaptions = errors.New("could not extract captions from the video")
	ErrInvalidURL = errors.New("not a video URL")
)

// Captions is what a fetcher returns for one video
type Captions struct {
	Title      string
	Transcript string
}

// CaptionFetcher retrieves a video's title and transcript
type CaptionFetcher interface {
	Fetch(ctx context.Context, url string) (*Captions, error)
}

// Runner executes a command and returns its stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return out, err
}

// YTDLPFetcher reads video metadata with yt-dlp and downloads the json3
// caption track over HTTP
type YTDLPFetcher struct {
	Binary   string
	Language string
	HTTP     *http.Client
	Run      Runner
	Logger   *zap.Logger
}

// NewYTDLPFetcher returns a fetcher using the yt-dlp binary at path
func NewYTDLPFetcher(path, language string, log *zap.Logger) *YTDLPFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &YTDLPFetcher{
		Binary:   path,
		Language: language,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
		Run:      execRunner,
		Logger:   log,
	}
}

type trackInfo struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

type videoInfo struct {
	Title             string                 `json:"title"`
	Subtitles         map[string][]trackInfo `json:"subtitles"`
	AutomaticCaptions map[string][]trackInfo `json:"automatic_captions"`
}

// Fetch implements CaptionFetcher
func (f *YTDLPFetcher) Fetch(ctx context.Context, url string) (*Captions, error) {
	out, err := f.Run(ctx, f.Binary, "-J", "--skip-download", "--no-warnings", url)
	if err != nil {
		return nil, fmt.Errorf("fetch video info: %w", err)
	}

	var info videoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("decode video info: %w", err)
	}
	if info.Title == "" {
		info.Title = "Untitled Video"
	}

	trackURL := f.pickTrack(info)
	if trackURL == "" {
		return nil, ErrNoCaptions
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download captions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Service: "captions", Code: resp.StatusCode}
	}

	transcript, err := ParseJSON3(resp.Body)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, ErrNoCaptions
	}

	f.Logger.Debug("captions fetched", zap.String("title", info.Title), zap.Int("chars", len(transcript)))
	return &Captions{Title: info.Title, Transcript: transcript}, nil
}

// pickTrack prefers uploaded subtitles over automatic captions
func (f *YTDLPFetcher) pickTrack(info videoInfo) string {
	for _, tracks := range []map[string][]trackInfo{info.Subtitles, info.AutomaticCaptions} {
		for _, t := range tracks[f.Language] {
			if t.Ext == "json3" && t.URL != "" {
				return t.URL
			}
		}
	}
	return ""
}
