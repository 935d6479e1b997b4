// Package due computes how far away a project's due date is.
package due

import (
	"fmt"
	"time"

	"github.com/tgienger/focusboard/internal/models"
)

// DaysUntil returns the whole days from now until the start of date.
// The offset is truncated toward zero. ok is false when date is empty.
func DaysUntil(date string, now time.Time) (days int, ok bool, err error) {
	if date == "" {
		return 0, false, nil
	}
	d, err := time.ParseInLocation(models.DateLayout, date, now.Location())
	if err != nil {
		return 0, false, fmt.Errorf("parse due date %q: %w", date, err)
	}
	return int(d.Sub(now).Hours() / 24), true, nil
}

// Describe renders a day offset the way the dashboard shows it
func Describe(days int) string {
	switch {
	case days > 0:
		if days == 1 {
			return "1 day until due"
		}
		return fmt.Sprintf("%d days until due", days)
	case days == 0:
		return "Due today!"
	case days == -1:
		return "1 day overdue"
	default:
		return fmt.Sprintf("%d days overdue", -days)
	}
}
