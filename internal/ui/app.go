package ui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tgienger/focusboard/internal/session"
	"github.com/tgienger/focusboard/internal/store"
	"github.com/tgienger/focusboard/internal/ui/views"
)

// ProjectStore is the project store as seen by every screen
type ProjectStore interface {
	views.ProjectStore
	views.DashboardStore
}

// RunCleaner drops the video history of a deleted project
type RunCleaner interface {
	DeleteVideoRuns(project string) error
}

// Options wires the application to its stores
type Options struct {
	Users      views.Authenticator
	Projects   ProjectStore
	Settings   session.Settings
	Videos     views.VideoSummarizer
	History    views.RunHistory
	Runs       RunCleaner
	Categories []string
	Logger     *zap.Logger
}

type App struct {
	opts  Options
	log   *zap.Logger
	state session.State

	current tea.Model
	width   int
	height  int
}

// Creates a new application showing the login screen
func NewApp(opts Options) *App {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		opts:  opts,
		log:   log,
		state: session.State{View: session.ViewLogin},
	}
	a.current = views.NewLoginView(opts.Users)
	return a
}

// State returns the current session state
func (a *App) State() session.State {
	return a.state
}

func (a *App) Init() tea.Cmd {
	return a.current.Init()
}

// apply moves the session forward and switches screens when the view changed
func (a *App) apply(ev session.Event) tea.Cmd {
	prev := a.state
	a.state = session.Apply(prev, ev)
	if !session.Changed(prev, a.state) {
		return nil
	}

	a.persist()

	if prev.View != a.state.View || (prev.SelectedProject != a.state.SelectedProject && a.state.View == session.ViewDashboard) {
		return a.enter()
	}
	return nil
}

// enter builds the screen for the current state
func (a *App) enter() tea.Cmd {
	switch a.state.View {
	case session.ViewLogin:
		a.current = views.NewLoginView(a.opts.Users)
	case session.ViewProjects:
		list := views.NewProjectListView(a.opts.Projects, a.opts.Categories)
		list.SetFilter(a.state.CategoryFilter)
		a.current = list
	case session.ViewDashboard:
		a.current = views.NewDashboardView(a.opts.Projects, a.opts.Videos, a.opts.History, a.state.SelectedProject)
	case session.ViewManage:
		a.current = views.NewManageView(a.opts.Projects)
	}

	width, height := a.width, a.height
	return tea.Batch(
		a.current.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: width, Height: height}
		},
	)
}

// login starts a session, restoring the user's last project if it still exists
func (a *App) login(username string) tea.Cmd {
	var restored *session.State
	if a.opts.Settings != nil {
		var err error
		if restored, err = session.Load(a.opts.Settings, username); err != nil {
			a.log.Warn("restore session", zap.String("user", username), zap.Error(err))
		}
	}
	if restored != nil && restored.SelectedProject != "" {
		if _, err := a.opts.Projects.Load(restored.SelectedProject); errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidName) {
			restored.SelectedProject = ""
		}
	}

	a.log.Info("user logged in", zap.String("user", username))
	prev := a.state
	a.state = session.Apply(prev, session.LoggedIn{Username: username, Restored: restored})
	a.persist()
	return a.enter()
}

func (a *App) persist() {
	if a.opts.Settings == nil {
		return
	}
	if err := session.Save(a.opts.Settings, a.state); err != nil {
		a.log.Warn("save session", zap.String("user", a.state.Username), zap.Error(err))
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.LoginSucceeded:
		return a, a.login(msg.Username)

	case views.LogoutRequested:
		a.log.Info("user logged out", zap.String("user", a.state.Username))
		return a, a.apply(session.LoggedOut{})

	case views.SelectedProject:
		return a, a.apply(session.ProjectSelected{Name: msg.Name})

	case views.BackToProjects:
		return a, a.apply(session.ProjectClosed{})

	case views.OpenManage:
		return a, a.apply(session.ViewChanged{View: session.ViewManage})

	case views.ProjectRemoved:
		if msg.Deleted && a.opts.Runs != nil {
			if err := a.opts.Runs.DeleteVideoRuns(msg.Name); err != nil {
				a.log.Warn("delete video runs", zap.String("project", msg.Name), zap.Error(err))
			}
		}
		return a, a.apply(session.ProjectRemoved{Name: msg.Name})

	case views.CategoryChanged:
		return a, a.apply(session.FilterChanged{Category: msg.Category})
	}

	var cmd tea.Cmd
	_, cmd = a.current.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.current.View()
}
