package video

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// json3 is the timed-segment caption format served for YouTube videos
type json3 struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// ParseJSON3 returns the transcript text of a json3 caption track.
// Segments are joined with single spaces.
func ParseJSON3(r io.Reader) (string, error) {
	var doc json3
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode captions: %w", err)
	}

	var b strings.Builder
	for _, ev := range doc.Events {
		for _, seg := range ev.Segs {
			b.WriteString(seg.UTF8)
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " "), nil
}
