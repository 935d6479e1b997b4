package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/focusboard/internal/models"
	"github.com/tgienger/focusboard/internal/ui/keys"
	"github.com/tgienger/focusboard/internal/ui/styles"
)

type manageEntry struct {
	name    string
	project *models.Project
}

type manageLoadedMsg struct {
	entries []manageEntry
}

type manageDeletedMsg struct {
	name string
}

// ManageView shows every project with its details and edits due dates
type ManageView struct {
	store ProjectStore
	now   func() time.Time

	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	entries []manageEntry
	cursor  int
	top     int
	loaded  bool

	editing  bool
	dueInput textinput.Model

	confirmingDelete bool

	status        string
	statusIsError bool
}

// NewManageView creates the manage screen
func NewManageView(s ProjectStore) *ManageView {
	dueInput := textinput.New()
	dueInput.Placeholder = "YYYY-MM-DD (empty clears)"
	dueInput.CharLimit = 10

	return &ManageView{
		store:    s,
		now:      time.Now,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		dueInput: dueInput,
	}
}

func (v *ManageView) Init() tea.Cmd {
	return v.load
}

func (v *ManageView) load() tea.Msg {
	names, err := v.store.List()
	if err != nil {
		return errMsg{err}
	}
	entries := make([]manageEntry, 0, len(names))
	for _, name := range names {
		p, err := v.store.Load(name)
		if err != nil {
			continue
		}
		entries = append(entries, manageEntry{name: name, project: p})
	}
	return manageLoadedMsg{entries: entries}
}

func (v *ManageView) setStatus(text string, isErr bool) {
	v.status = text
	v.statusIsError = isErr
}

func (v *ManageView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case manageLoadedMsg:
		v.entries = msg.entries
		v.loaded = true
		v.cursor = min(v.cursor, max(len(v.entries)-1, 0))
		return v, nil

	case manageDeletedMsg:
		v.setStatus(fmt.Sprintf("Project %q deleted", msg.name), false)
		name := msg.name
		return v, tea.Batch(v.load, func() tea.Msg { return ProjectRemoved{Name: name, Deleted: true} })

	case errMsg:
		v.setStatus(userMessage(msg.err), true)
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToProjects{} }
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.entries)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.Enter):
			if len(v.entries) > 0 {
				name := v.entries[v.cursor].name
				return v, func() tea.Msg { return SelectedProject{Name: name} }
			}
		case key.Matches(msg, v.keys.Edit):
			if len(v.entries) > 0 {
				v.editing = true
				v.dueInput.SetValue(v.entries[v.cursor].project.DueDate)
				v.dueInput.CursorEnd()
				v.dueInput.Focus()
				return v, textinput.Blink
			}
		case key.Matches(msg, v.keys.Delete):
			if len(v.entries) > 0 {
				v.confirmingDelete = true
			}
		}
	}
	return v, nil
}

func (v *ManageView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.dueInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		date := strings.TrimSpace(v.dueInput.Value())
		if date != "" {
			if _, err := time.Parse(models.DateLayout, date); err != nil {
				v.setStatus("Due date must look like 2025-01-31", true)
				return v, nil
			}
		}
		entry := v.entries[v.cursor]
		entry.project.DueDate = date
		if err := v.store.Save(entry.name, entry.project); err != nil {
			v.setStatus(userMessage(err), true)
			return v, nil
		}
		v.editing = false
		v.dueInput.Blur()
		v.setStatus("Due date updated", false)
		return v, nil
	}
	var cmd tea.Cmd
	v.dueInput, cmd = v.dueInput.Update(msg)
	return v, cmd
}

func (v *ManageView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		name := v.entries[v.cursor].name
		return v, func() tea.Msg {
			if err := v.store.Delete(name); err != nil {
				return errMsg{err}
			}
			return manageDeletedMsg{name: name}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

// View renders the view
func (v *ManageView) View() string {
	s := v.styles
	if v.confirmingDelete {
		return renderConfirm(s, "Delete Project?",
			fmt.Sprintf("%q and all its files will be removed.", v.entries[v.cursor].name), v.width, v.height)
	}
	if !v.loaded {
		return s.TitleMuted.Render("Loading...")
	}

	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	rows := []string{s.Title.Render("Manage Projects"), ""}
	if len(v.entries) == 0 {
		rows = append(rows, s.TitleMuted.Render("No projects yet"))
	}

	// each entry takes four lines plus a blank one
	visible := max((v.height-8)/5, 1)
	start, end := window(v.cursor, v.top, len(v.entries), visible)
	v.top = start
	for i := start; i < end; i++ {
		rows = append(rows, v.renderEntry(v.entries[i], i == v.cursor, width), "")
	}

	if v.status != "" {
		if v.statusIsError {
			rows = append(rows, s.ErrorBanner.Render(v.status))
		} else {
			rows = append(rows, s.SuccessBanner.Render(v.status))
		}
	}
	rows = append(rows, renderHelpLine(s,
		helpEntry{"↵", "open"},
		helpEntry{"e", "due date"},
		helpEntry{"d", "del"},
		helpEntry{"esc", "back"},
		helpEntry{"q", "quit"},
	))

	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}

func (v *ManageView) renderEntry(e manageEntry, selected bool, width int) string {
	s := v.styles
	p := e.project
	st := p.Stats()

	titleStyle := s.ListItem
	if selected {
		titleStyle = s.ListSelected
	}

	dueLine := "Due: none"
	if p.DueDate != "" {
		dueLine = "Due: " + p.DueDate
		if d := dueText(p.DueDate, v.now()); d != "" {
			dueLine += " (" + d + ")"
		}
	}
	if selected && v.editing {
		dueLine = "Due: " + s.InputFocused.Width(30).Render(v.dueInput.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Width(width).Render(e.name),
		s.ListItem.Render(fmt.Sprintf("Created: %s • Category: %s", p.CreatedDate, p.Category)),
		s.ListItem.Render(dueLine),
		s.ListItem.Render(fmt.Sprintf("Tasks: %d/%d completed • Documents: %d", st.CompletedTasks, st.TotalTasks, st.Documents)),
	)
}
