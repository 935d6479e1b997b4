package ui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgienger/focusboard/internal/auth"
	"github.com/tgienger/focusboard/internal/models"
	"github.com/tgienger/focusboard/internal/session"
	"github.com/tgienger/focusboard/internal/store"
	"github.com/tgienger/focusboard/internal/ui/views"
)

type memSettings map[string]string

func (m memSettings) GetSetting(key string) (string, error) { return m[key], nil }

func (m memSettings) SetSetting(key, value string) error {
	m[key] = value
	return nil
}

type memRuns struct{ deleted []string }

func (m *memRuns) DeleteVideoRuns(project string) error {
	m.deleted = append(m.deleted, project)
	return nil
}

func newTestOptions(t *testing.T) (Options, *store.Store) {
	t.Helper()
	dir := t.TempDir()

	users, err := auth.Open(filepath.Join(dir, "users", "users.json"), auth.Options{Cost: bcrypt.MinCost})
	require.NoError(t, err)
	require.NoError(t, users.Register("alice", "pw"))

	projects, err := store.New(filepath.Join(dir, "project_data"), store.Options{})
	require.NoError(t, err)
	require.NoError(t, projects.Save("Thesis", models.NewProject("Thesis", "Education", "", time.Now())))

	return Options{
		Users:      users,
		Projects:   projects,
		Settings:   memSettings{},
		Categories: models.DefaultCategories,
	}, projects
}

func TestAppNavigationFollowsSession(t *testing.T) {
	opts, _ := newTestOptions(t)
	app := NewApp(opts)

	_, isLogin := app.current.(*views.LoginView)
	assert.True(t, isLogin)

	// events other than login are ignored before authentication
	app.Update(views.SelectedProject{Name: "Thesis"})
	assert.Equal(t, session.ViewLogin, app.State().View)

	app.Update(views.LoginSucceeded{Username: "alice"})
	assert.Equal(t, session.State{Username: "alice", View: session.ViewProjects}, app.State())
	_, isList := app.current.(*views.ProjectListView)
	assert.True(t, isList)

	app.Update(views.CategoryChanged{Category: "Education"})
	app.Update(views.SelectedProject{Name: "Thesis"})
	assert.Equal(t, session.ViewDashboard, app.State().View)
	assert.Equal(t, "Thesis", app.State().SelectedProject)
	dash, ok := app.current.(*views.DashboardView)
	require.True(t, ok)
	assert.Equal(t, "Thesis", dash.Name())

	app.Update(views.BackToProjects{})
	assert.Equal(t, session.ViewProjects, app.State().View)
	assert.Empty(t, app.State().SelectedProject)
	assert.Equal(t, "Education", app.State().CategoryFilter)

	app.Update(views.OpenManage{})
	_, isManage := app.current.(*views.ManageView)
	assert.True(t, isManage)

	app.Update(views.LogoutRequested{})
	assert.False(t, app.State().LoggedIn())
	_, isLogin = app.current.(*views.LoginView)
	assert.True(t, isLogin)
}

func TestAppRestoresLastProject(t *testing.T) {
	opts, projects := newTestOptions(t)

	first := NewApp(opts)
	first.Update(views.LoginSucceeded{Username: "alice"})
	first.Update(views.SelectedProject{Name: "Thesis"})

	second := NewApp(opts)
	second.Update(views.LoginSucceeded{Username: "alice"})
	assert.Equal(t, session.ViewDashboard, second.State().View)
	assert.Equal(t, "Thesis", second.State().SelectedProject)

	// a project deleted between runs is dropped from the restored session
	require.NoError(t, projects.Delete("Thesis"))
	third := NewApp(opts)
	third.Update(views.LoginSucceeded{Username: "alice"})
	assert.Equal(t, session.ViewProjects, third.State().View)
	assert.Empty(t, third.State().SelectedProject)
}

func TestAppProjectRemovedClosesDashboard(t *testing.T) {
	opts, _ := newTestOptions(t)
	app := NewApp(opts)
	app.Update(views.LoginSucceeded{Username: "alice"})
	app.Update(views.SelectedProject{Name: "Thesis"})

	app.Update(views.ProjectRemoved{Name: "Thesis"})
	assert.Equal(t, session.ViewProjects, app.State().View)
	assert.Empty(t, app.State().SelectedProject)
}

func TestAppDeleteClearsVideoHistory(t *testing.T) {
	opts, _ := newTestOptions(t)
	runs := &memRuns{}
	opts.Runs = runs
	app := NewApp(opts)
	app.Update(views.LoginSucceeded{Username: "alice"})

	app.Update(views.ProjectRemoved{Name: "Archived"})
	app.Update(views.ProjectRemoved{Name: "Thesis", Deleted: true})
	assert.Equal(t, []string{"Thesis"}, runs.deleted)
}

func TestAppForwardsWindowSize(t *testing.T) {
	opts, _ := newTestOptions(t)
	app := NewApp(opts)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 100, app.width)
	assert.NotEmpty(t, app.View())
}
