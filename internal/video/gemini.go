package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tgienger/focusboard/internal/retry"
)

var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY is not set")

const summaryPrompt = `Please provide a concise summary of the following text:

%s

Focus on the main points and key takeaways. If I have not provided any text, please print an error message.`

// Summarizer turns a transcript into notes
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// StatusError is a non-2xx response from a remote service
type StatusError struct {
	Service string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Service, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Service, e.Code)
}

// Temporary reports whether the request may succeed if repeated
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// GeminiClient calls the generateContent REST endpoint
type GeminiClient struct {
	Endpoint string
	Model    string
	APIKey   string
	HTTP     *http.Client
}

// NewGeminiClient returns a client with the given request timeout
func NewGeminiClient(endpoint, model, apiKey string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Model:    model,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize implements Summarizer
func (c *GeminiClient) Summarize(ctx context.Context, transcript string) (string, error) {
	if c.APIKey == "" {
		return "", retry.Permanent(ErrMissingAPIKey)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: fmt.Sprintf(summaryPrompt, transcript)}}}},
	})
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("marshal request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.Endpoint, url.PathEscape(c.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out geminiResponse
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Service: "gemini", Code: resp.StatusCode}
		if decodeErr == nil && out.Error != nil {
			se.Message = out.Error.Message
		}
		if se.Temporary() {
			return "", se
		}
		return "", retry.Permanent(se)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}

	var b strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			b.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}
