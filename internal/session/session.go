// Package session holds the per-user interaction state of the dashboard.
//
// State is a plain value. Events are applied to it to produce the next state,
// and it is persisted per user through a settings store between runs.
package session

import (
	"encoding/json"
	"fmt"
)

// View identifies the active screen
type View string

const (
	ViewLogin     View = "login"
	ViewProjects  View = "projects"
	ViewDashboard View = "dashboard"
	ViewManage    View = "manage"
)

// State is the serializable interaction context
type State struct {
	Username        string `json:"username"`
	SelectedProject string `json:"selected_project,omitempty"`
	CategoryFilter  string `json:"category_filter,omitempty"`
	View            View   `json:"view"`
}

// LoggedIn returns true when a user is authenticated
func (s State) LoggedIn() bool {
	return s.Username != ""
}

// Event is something that changes State
type Event interface {
	apply(State) State
}

// LoggedIn starts a session, restoring what was saved for the user
type LoggedIn struct {
	Username string
	Restored *State
}

// LoggedOut clears the session
type LoggedOut struct{}

// ProjectSelected opens a project dashboard
type ProjectSelected struct{ Name string }

// ProjectClosed returns to the project list
type ProjectClosed struct{}

// ProjectRemoved forgets a project that was archived or deleted
type ProjectRemoved struct{ Name string }

// FilterChanged sets the category filter
type FilterChanged struct{ Category string }

// ViewChanged switches screens without touching the selection
type ViewChanged struct{ View View }

func (e LoggedIn) apply(State) State {
	next := State{Username: e.Username, View: ViewProjects}
	if e.Restored != nil && e.Restored.Username == e.Username {
		next.SelectedProject = e.Restored.SelectedProject
		next.CategoryFilter = e.Restored.CategoryFilter
		if e.Restored.SelectedProject != "" {
			next.View = ViewDashboard
		}
	}
	return next
}

func (LoggedOut) apply(State) State {
	return State{View: ViewLogin}
}

func (e ProjectSelected) apply(s State) State {
	s.SelectedProject = e.Name
	s.View = ViewDashboard
	return s
}

func (ProjectClosed) apply(s State) State {
	s.SelectedProject = ""
	s.View = ViewProjects
	return s
}

func (e ProjectRemoved) apply(s State) State {
	if s.SelectedProject == e.Name {
		s.SelectedProject = ""
		if s.View == ViewDashboard {
			s.View = ViewProjects
		}
	}
	return s
}

func (e FilterChanged) apply(s State) State {
	s.CategoryFilter = e.Category
	return s
}

func (e ViewChanged) apply(s State) State {
	s.View = e.View
	return s
}

// Apply returns the state that follows ev. Events other than LoggedIn are
// ignored while nobody is logged in.
func Apply(s State, ev Event) State {
	if _, ok := ev.(LoggedIn); !ok && !s.LoggedIn() {
		return s
	}
	return ev.apply(s)
}

// Changed reports whether two states differ in anything that is persisted
func Changed(a, b State) bool {
	return a != b
}

// Settings is the key/value store sessions are saved in
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

func settingKey(username string) string {
	return "session:" + username
}

// Save persists s for its user
func Save(store Settings, s State) error {
	if !s.LoggedIn() {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := store.SetSetting(settingKey(s.Username), string(data)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the saved state of username, or nil if there is none
func Load(store Settings, username string) (*State, error) {
	raw, err := store.GetSetting(settingKey(username))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if raw == "" {
		return nil, nil
	}
	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
