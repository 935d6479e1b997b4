package views

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/focusboard/internal/due"
	"github.com/tgienger/focusboard/internal/models"
	"github.com/tgienger/focusboard/internal/store"
	"github.com/tgienger/focusboard/internal/ui/keys"
	"github.com/tgienger/focusboard/internal/ui/styles"
)

// ProjectStore is what the project screens need from the project store
type ProjectStore interface {
	List() ([]string, error)
	ListByCategory(category string) ([]string, error)
	Load(name string) (*models.Project, error)
	Save(name string, p *models.Project) error
	ListArchived() ([]string, error)
	Archive(name string) error
	Delete(name string) error
}

// allCategories is the filter value that matches every project
const allCategories = "All"

// dueText describes a due date relative to now, or "" when there is none
func dueText(date string, now time.Time) string {
	days, ok, err := due.DaysUntil(date, now)
	if err != nil {
		return "invalid due date"
	}
	if !ok {
		return ""
	}
	return due.Describe(days)
}

type projectItem struct {
	name    string
	project *models.Project
	now     time.Time
}

func (i projectItem) Title() string { return i.name }

func (i projectItem) Description() string {
	if i.project == nil {
		return "archived"
	}
	parts := []string{i.project.Category}
	if d := dueText(i.project.DueDate, i.now); d != "" {
		parts = append(parts, d)
	}
	st := i.project.Stats()
	parts = append(parts, fmt.Sprintf("%d/%d tasks", st.CompletedTasks, st.TotalTasks))
	return strings.Join(parts, " • ")
}

func (i projectItem) FilterValue() string { return i.name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)
	titleStyle := d.styles.ListItem.Width(width)
	descStyle := d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	if index == m.Index() {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(p.Title()), descStyle.Render(p.Description()))
}

type projectsLoadedMsg struct {
	items []projectItem
}

type projectRemovedMsg struct {
	name   string
	action string
}

// ProjectListView lists projects and creates, archives and deletes them
type ProjectListView struct {
	store      ProjectStore
	categories []string
	now        func() time.Time

	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool

	filter       string
	showArchived bool

	creating    bool
	newName     textinput.Model
	newDue      textinput.Model
	categoryIdx int
	focusIdx    int // 0=name, 1=category, 2=due date, 3=create

	confirmingDelete bool
	deleteTarget     string

	status        string
	statusIsError bool

	showHelpPopup bool
}

// NewProjectListView creates the project list. categories are the choices
// offered when creating a project and cycled through by the filter.
func NewProjectListView(s ProjectStore, categories []string) *ProjectListView {
	st := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	newDue := textinput.New()
	newDue.Placeholder = "YYYY-MM-DD (optional)"
	newDue.CharLimit = 10

	delegate := &projectDelegate{styles: st, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = st.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		store:      s,
		categories: categories,
		now:        time.Now,
		list:       l,
		delegate:   delegate,
		styles:     st,
		keys:       keys.DefaultKeyMap(),
		filter:     allCategories,
		newName:    newName,
		newDue:     newDue,
	}
}

// SetFilter restores a category filter without emitting a change
func (v *ProjectListView) SetFilter(category string) {
	if category == "" {
		category = allCategories
	}
	v.filter = category
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	if v.showArchived {
		names, err := v.store.ListArchived()
		if err != nil {
			return errMsg{err}
		}
		items := make([]projectItem, len(names))
		for i, name := range names {
			items[i] = projectItem{name: name}
		}
		return projectsLoadedMsg{items: items}
	}

	names, err := v.store.ListByCategory(v.filter)
	if err != nil {
		return errMsg{err}
	}
	now := v.now()
	items := make([]projectItem, 0, len(names))
	for _, name := range names {
		p, err := v.store.Load(name)
		if err != nil {
			continue
		}
		items = append(items, projectItem{name: name, project: p, now: now})
	}
	return projectsLoadedMsg{items: items}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-8)
		return v, nil

	case projectsLoadedMsg:
		items := make([]list.Item, len(msg.items))
		for i, p := range msg.items {
			items[i] = p
		}
		v.list.SetItems(items)
		v.loaded = true
		return v, nil

	case projectRemovedMsg:
		v.setStatus(fmt.Sprintf("Project %q %s", msg.name, msg.action), false)
		removed := ProjectRemoved{Name: msg.name, Deleted: msg.action == "deleted"}
		return v, tea.Batch(v.loadProjects, func() tea.Msg { return removed })

	case errMsg:
		v.setStatus(userMessage(msg.err), true)
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}

		if v.showArchived {
			return v.updateArchived(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			if v.list.FilterState() == list.FilterApplied {
				break
			}
			return v, nil
		case key.Matches(msg, v.keys.Archived):
			return v, v.setArchived(true)
		case key.Matches(msg, v.keys.New):
			v.startCreate()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg { return SelectedProject{Name: item.name} }
			}
			return v, nil
		case key.Matches(msg, v.keys.Filter):
			v.filter = v.nextFilter()
			v.list.ResetSelected()
			category := v.filter
			return v, tea.Batch(v.loadProjects, func() tea.Msg { return CategoryChanged{Category: category} })
		case key.Matches(msg, v.keys.Archive):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, v.archive(item.name)
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTarget = item.name
			}
			return v, nil
		case key.Matches(msg, v.keys.Manage):
			return v, func() tea.Msg { return OpenManage{} }
		case key.Matches(msg, v.keys.Logout):
			return v, func() tea.Msg { return LogoutRequested{} }
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// updateArchived handles keys while archived projects are listed. They
// cannot be opened or changed from here.
func (v *ProjectListView) updateArchived(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Archived), key.Matches(msg, v.keys.Back):
		return v, v.setArchived(false)
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	case key.Matches(msg, v.keys.Logout):
		return v, func() tea.Msg { return LogoutRequested{} }
	}
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) setArchived(on bool) tea.Cmd {
	v.showArchived = on
	v.status = ""
	v.list.ResetSelected()
	if on {
		v.list.Title = "Archived Projects"
	} else {
		v.list.Title = "Projects"
	}
	return v.loadProjects
}

func (v *ProjectListView) setStatus(text string, isErr bool) {
	v.status = text
	v.statusIsError = isErr
}

func (v *ProjectListView) nextFilter() string {
	options := append([]string{allCategories}, v.categories...)
	for i, c := range options {
		if c == v.filter {
			return options[(i+1)%len(options)]
		}
	}
	return allCategories
}

func (v *ProjectListView) archive(name string) tea.Cmd {
	return func() tea.Msg {
		if err := v.store.Archive(name); err != nil {
			return errMsg{err}
		}
		return projectRemovedMsg{name: name, action: "archived"}
	}
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		name := v.deleteTarget
		return v, func() tea.Msg {
			if err := v.store.Delete(name); err != nil {
				return errMsg{err}
			}
			return projectRemovedMsg{name: name, action: "deleted"}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ProjectListView) startCreate() {
	v.creating = true
	v.focusIdx = 0
	v.categoryIdx = 0
	v.status = ""
	v.newName.Reset()
	v.newDue.Reset()
	v.updateFocus()
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		v.status = ""
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.create()

	case key.Matches(msg, v.keys.BackTab):
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 3 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.create()
	}

	if v.focusIdx == 1 && len(v.categories) > 0 {
		switch msg.String() {
		case "left", "h":
			v.categoryIdx = (v.categoryIdx + len(v.categories) - 1) % len(v.categories)
		case "right", "l", " ":
			v.categoryIdx = (v.categoryIdx + 1) % len(v.categories)
		}
		return v, nil
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 2:
		v.newDue, cmd = v.newDue.Update(msg)
	}
	return v, cmd
}

func (v *ProjectListView) updateFocus() {
	v.newName.Blur()
	v.newDue.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 2:
		v.newDue.Focus()
	}
}

// create validates the form and saves a new project. The form stays open
// with an error when validation fails.
func (v *ProjectListView) create() tea.Cmd {
	name := strings.TrimSpace(v.newName.Value())
	dueDate := strings.TrimSpace(v.newDue.Value())

	if name == "" {
		v.setStatus("Please enter a project name", true)
		return nil
	}
	if err := store.ValidateName(name); err != nil {
		v.setStatus(userMessage(err), true)
		return nil
	}
	if dueDate != "" {
		if _, err := time.Parse(models.DateLayout, dueDate); err != nil {
			v.setStatus("Due date must look like 2025-01-31", true)
			return nil
		}
	}
	if _, err := v.store.Load(name); !errors.Is(err, store.ErrNotFound) {
		v.setStatus("Project with this name already exists", true)
		return nil
	}

	category := ""
	if len(v.categories) > 0 {
		category = v.categories[v.categoryIdx]
	}
	p := models.NewProject(name, category, dueDate, v.now())
	if err := v.store.Save(name, p); err != nil {
		v.setStatus(userMessage(err), true)
		return nil
	}

	v.creating = false
	v.status = ""
	return tea.Batch(v.loadProjects, func() tea.Msg { return SelectedProject{Name: name} })
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return renderConfirm(v.styles, "Delete Project?",
			fmt.Sprintf("%q and all its files will be removed.", v.deleteTarget), v.width, v.height)
	}
	if v.creating {
		return v.renderCreateForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	s := v.styles
	header := s.TitleMuted.Render("Category: ") + s.Subtitle.Render(v.filter)
	if v.showArchived {
		header = s.TitleMuted.Render("Archived projects are read-only")
	}

	var body string
	if len(v.list.Items()) == 0 {
		body = v.renderEmpty()
	} else {
		body = v.list.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left, header, body, v.renderStatus(), v.renderHelp())
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderStatus() string {
	if v.status == "" {
		return ""
	}
	if v.statusIsError {
		return v.styles.ErrorBanner.Render(v.status)
	}
	return v.styles.SuccessBanner.Render(v.status)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	msg := "Press 'n' to create your first project"
	if v.showArchived {
		msg = "Nothing archived. Press 'A' to go back."
	} else if v.filter != allCategories {
		msg = "No projects in this category. Press 'f' to change it."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render(msg),
		"",
	)
}

func (v *ProjectListView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	nameStyle, catStyle, dueStyle, btnStyle := s.Input, s.Input, s.Input, s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		catStyle = s.InputFocused
	case 2:
		dueStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	category := "-"
	if len(v.categories) > 0 {
		category = "‹ " + v.categories[v.categoryIdx] + " ›"
	}

	rows := []string{
		s.Title.Render("New Project"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"Category:",
		catStyle.Width(inputWidth).Render(category),
		"Due date:",
		dueStyle.Width(inputWidth).Render(v.newDue.View()),
		"",
		btnStyle.Render(" Create "),
	}
	if v.status != "" {
		rows = append(rows, "", v.renderStatus())
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • ←/→: category • Ctrl+S: save • Esc: cancel"))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	if v.showArchived {
		return renderHelpLine(v.styles,
			helpEntry{"A", "active"},
			helpEntry{"esc", "back"},
			helpEntry{"q", "quit"},
		)
	}
	return renderHelpLine(v.styles,
		helpEntry{"↵", "open"},
		helpEntry{"n", "new"},
		helpEntry{"f", "category"},
		helpEntry{"a", "archive"},
		helpEntry{"A", "archived"},
		helpEntry{"d", "del"},
		helpEntry{"m", "manage"},
		helpEntry{"L", "logout"},
		helpEntry{"q", "quit"},
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("/") + "      search by name",
		s.HelpKey.Render("f") + "      next category",
		s.HelpKey.Render("a") + "      archive project",
		s.HelpKey.Render("A") + "      show archived projects",
		s.HelpKey.Render("d") + "      delete project",
		s.HelpKey.Render("m") + "      manage projects",
		s.HelpKey.Render("L") + "      logout",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
