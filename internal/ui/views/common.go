package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/focusboard/internal/auth"
	"github.com/tgienger/focusboard/internal/store"
	"github.com/tgienger/focusboard/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// LoginSucceeded is sent once credentials are verified
type LoginSucceeded struct {
	Username string
}

// LogoutRequested ends the session
type LogoutRequested struct{}

// SelectedProject opens a project dashboard
type SelectedProject struct {
	Name string
}

// BackToProjects returns to the project list
type BackToProjects struct{}

// OpenManage switches to the manage screen
type OpenManage struct{}

// ProjectRemoved is sent after a project is archived or deleted
type ProjectRemoved struct {
	Name    string
	Deleted bool
}

// CategoryChanged is sent when the project list filter changes
type CategoryChanged struct {
	Category string
}

// errMsg carries a failed background operation back to the view
type errMsg struct{ err error }

// userMessage converts an error into something to show on screen
func userMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, auth.ErrDuplicateUser):
		return "Username already exists"
	case errors.Is(err, auth.ErrInvalidUsername):
		return "Username must not be empty"
	case errors.Is(err, auth.ErrInvalidPassword):
		return "Password must be between 1 and 72 bytes"
	case errors.Is(err, store.ErrInvalidName):
		return "Project names cannot contain path separators or start with a dot"
	case errors.Is(err, store.ErrNotFound):
		return "Project no longer exists"
	case errors.Is(err, store.ErrCorrupt):
		return "Project data is damaged and could not be read"
	case errors.Is(err, store.ErrAlreadyArchived):
		return "An archived project with this name already exists"
	case errors.Is(err, store.ErrPartialDelete):
		return "Some project files could not be removed"
	case errors.Is(err, store.ErrAttachmentType):
		return "Only PDF, TXT and image attachments are allowed"
	}
	return fmt.Sprintf("Error: %v", err)
}

type helpEntry struct {
	key  string
	desc string
}

// renderHelpLine renders "k desc • k desc" hints
func renderHelpLine(s *styles.Styles, entries ...helpEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = s.HelpKey.Render(e.key) + " " + e.desc
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// renderConfirm renders a centered yes/no prompt
func renderConfirm(s *styles.Styles, title, detail string, width, height int) string {
	contentWidth := styles.ContentWidth(width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(detail),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}
