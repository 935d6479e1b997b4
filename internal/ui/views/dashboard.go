package views

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/focusboard/internal/db"
	"github.com/tgienger/focusboard/internal/due"
	"github.com/tgienger/focusboard/internal/models"
	"github.com/tgienger/focusboard/internal/ui/keys"
	"github.com/tgienger/focusboard/internal/ui/styles"
	"github.com/tgienger/focusboard/internal/video"
)

// DashboardStore is what the dashboard needs from the project store
type DashboardStore interface {
	Load(name string) (*models.Project, error)
	Save(name string, p *models.Project) error
	SaveAttachment(name, fileName string, data []byte) (string, error)
	AllowedAttachment(fileName string) bool
	ReadAttachment(name, ref string) ([]byte, error)
}

// VideoSummarizer adds video notes to a project
type VideoSummarizer interface {
	Summarize(ctx context.Context, project, url string) (*models.Document, error)
}

// RunHistory lists past video runs
type RunHistory interface {
	ListVideoRuns(project string, limit int) ([]db.VideoRun, error)
}

// Pane is a column of the dashboard
type Pane int

const (
	PaneTodos Pane = iota
	PaneDocuments
	PaneVideo
)

const paneCount = 3

type dashboardMode int

const (
	dashNormal dashboardMode = iota
	dashAddTodo
	dashAddDocument
	dashViewDocument
	dashVideoURL
	dashExport
)

type projectLoadedMsg struct {
	project *models.Project
}

type runsLoadedMsg struct {
	runs []db.VideoRun
}

type videoDoneMsg struct {
	doc *models.Document
	err error
}

// DashboardView is the per-project workspace
type DashboardView struct {
	store   DashboardStore
	videos  VideoSummarizer
	history RunHistory
	name    string
	project *models.Project
	runs    []db.VideoRun
	now     func() time.Time

	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	focus     Pane
	mode      dashboardMode
	todoIdx   int
	todoTop   int
	docIdx    int
	docTop    int
	formFocus int // add document: 0=title, 1=content, 2=attachment

	todoInput  textinput.Model
	docTitle   textinput.Model
	docContent textarea.Model
	docFile    textinput.Model
	urlInput   textinput.Model
	exportDir  textinput.Model
	reader     viewport.Model
	spinner    spinner.Model

	processing  bool
	cancelVideo context.CancelFunc
	videoErr    string

	status        string
	statusIsError bool

	showHelpPopup bool
}

// NewDashboardView creates the dashboard for the named project. videos and
// history may be nil, which disables video notes.
func NewDashboardView(s DashboardStore, videos VideoSummarizer, history RunHistory, name string) *DashboardView {
	todoInput := textinput.New()
	todoInput.Placeholder = "New task"
	todoInput.CharLimit = 200

	docTitle := textinput.New()
	docTitle.Placeholder = "Document title"
	docTitle.CharLimit = 200

	docContent := textarea.New()
	docContent.Placeholder = "Content (markdown)"
	docContent.CharLimit = 20000
	docContent.SetWidth(50)
	docContent.SetHeight(8)
	docContent.ShowLineNumbers = false

	docFile := textinput.New()
	docFile.Placeholder = "Path to attachment (optional)"
	docFile.CharLimit = 500

	urlInput := textinput.New()
	urlInput.Placeholder = "https://www.youtube.com/watch?v=..."
	urlInput.CharLimit = 500

	exportDir := textinput.New()
	exportDir.Placeholder = "Directory"
	exportDir.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Current.Accent)

	return &DashboardView{
		store:      s,
		videos:     videos,
		history:    history,
		name:       name,
		now:        time.Now,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		todoInput:  todoInput,
		docTitle:   docTitle,
		docContent: docContent,
		docFile:    docFile,
		urlInput:   urlInput,
		exportDir:  exportDir,
		reader:     viewport.New(60, 20),
		spinner:    sp,
	}
}

// Name returns the project shown
func (v *DashboardView) Name() string {
	return v.name
}

func (v *DashboardView) Init() tea.Cmd {
	return tea.Batch(v.loadProject, v.loadRuns)
}

func (v *DashboardView) loadProject() tea.Msg {
	p, err := v.store.Load(v.name)
	if err != nil {
		return errMsg{err}
	}
	p.EnsureTodoIDs(v.now())
	return projectLoadedMsg{project: p}
}

func (v *DashboardView) loadRuns() tea.Msg {
	if v.history == nil {
		return nil
	}
	runs, err := v.history.ListVideoRuns(v.name, 5)
	if err != nil {
		return errMsg{err}
	}
	return runsLoadedMsg{runs: runs}
}

// save persists the in-memory project and reports failures on the status line
func (v *DashboardView) save() {
	if err := v.store.Save(v.name, v.project); err != nil {
		v.setStatus(userMessage(err), true)
	}
}

func (v *DashboardView) setStatus(text string, isErr bool) {
	v.status = text
	v.statusIsError = isErr
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.docContent.SetWidth(clamp(contentWidth-10, 20, 70))
		v.reader.Width = clamp(contentWidth-6, 20, 100)
		v.reader.Height = max(v.height-8, 5)
		return v, nil

	case projectLoadedMsg:
		v.project = msg.project
		v.todoIdx = min(v.todoIdx, max(len(v.project.Todos)-1, 0))
		v.docIdx = min(v.docIdx, max(len(v.project.Documents)-1, 0))
		return v, nil

	case runsLoadedMsg:
		v.runs = msg.runs
		return v, nil

	case videoDoneMsg:
		v.processing = false
		v.cancelVideo = nil
		if msg.err != nil {
			v.videoErr = msg.err.Error()
			return v, v.loadRuns
		}
		v.videoErr = ""
		// a save made while the video ran can drop the new document from disk
		if v.project != nil && !slices.Contains(v.project.Documents, *msg.doc) {
			v.project.AddDocument(*msg.doc)
			v.save()
		}
		v.setStatus("Video processed and notes saved: "+msg.doc.Title, false)
		return v, v.loadRuns

	case spinner.TickMsg:
		if !v.processing {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case errMsg:
		v.setStatus(userMessage(msg.err), true)
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		switch v.mode {
		case dashAddTodo:
			return v.updateAddTodo(msg)
		case dashAddDocument:
			return v.updateAddDocument(msg)
		case dashViewDocument:
			return v.updateViewDocument(msg)
		case dashVideoURL:
			return v.updateVideoURL(msg)
		case dashExport:
			return v.updateExport(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *DashboardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		v.stopVideo()
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.processing {
			v.stopVideo()
			return v, nil
		}
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focus = (v.focus + 1) % paneCount
		return v, nil

	case key.Matches(msg, v.keys.BackTab):
		v.focus = (v.focus + paneCount - 1) % paneCount
		return v, nil

	case key.Matches(msg, v.keys.Video):
		return v, v.startVideo()
	}

	if v.project == nil {
		return v, nil
	}

	switch v.focus {
	case PaneTodos:
		return v.updateTodos(msg)
	case PaneDocuments:
		return v.updateDocuments(msg)
	case PaneVideo:
		if key.Matches(msg, v.keys.Enter) || key.Matches(msg, v.keys.New) {
			return v, v.startVideo()
		}
	}
	return v, nil
}

func (v *DashboardView) updateTodos(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	todos := v.project.Todos
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.todoIdx > 0 {
			v.todoIdx--
		}
	case key.Matches(msg, v.keys.Down):
		if v.todoIdx < len(todos)-1 {
			v.todoIdx++
		}
	case key.Matches(msg, v.keys.New):
		v.mode = dashAddTodo
		v.todoInput.Reset()
		v.todoInput.Focus()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Enter):
		if len(todos) > 0 && v.project.ToggleTodo(todos[v.todoIdx].ID) {
			v.save()
		}
	case key.Matches(msg, v.keys.Delete):
		if len(todos) > 0 && v.project.RemoveTodo(todos[v.todoIdx].ID) {
			v.todoIdx = min(v.todoIdx, max(len(v.project.Todos)-1, 0))
			v.save()
		}
	case key.Matches(msg, v.keys.Clear):
		if n := v.project.ClearCompleted(); n > 0 {
			v.todoIdx = min(v.todoIdx, max(len(v.project.Todos)-1, 0))
			v.save()
			v.setStatus(fmt.Sprintf("Cleared %d completed tasks", n), false)
		}
	}
	return v, nil
}

func (v *DashboardView) updateAddTodo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = dashNormal
		v.todoInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		task := strings.TrimSpace(v.todoInput.Value())
		if task != "" {
			v.project.AddTodo(task, v.now())
			v.todoIdx = len(v.project.Todos) - 1
			v.save()
		}
		v.mode = dashNormal
		v.todoInput.Blur()
		return v, nil
	}
	var cmd tea.Cmd
	v.todoInput, cmd = v.todoInput.Update(msg)
	return v, cmd
}

func (v *DashboardView) updateDocuments(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	docs := v.project.Documents
	switch {
	case key.Matches(msg, v.keys.Up):
		if v.docIdx > 0 {
			v.docIdx--
		}
	case key.Matches(msg, v.keys.Down):
		if v.docIdx < len(docs)-1 {
			v.docIdx++
		}
	case key.Matches(msg, v.keys.New):
		v.mode = dashAddDocument
		v.formFocus = 0
		v.docTitle.Reset()
		v.docContent.Reset()
		v.docFile.Reset()
		v.updateFormFocus()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Enter):
		if len(docs) > 0 {
			v.openReader(docs[v.docIdx])
		}
	case key.Matches(msg, v.keys.Delete):
		if v.project.RemoveDocument(v.docIdx) {
			v.docIdx = min(v.docIdx, max(len(v.project.Documents)-1, 0))
			v.save()
		}
	case key.Matches(msg, v.keys.Export):
		if len(docs) > 0 && docs[v.docIdx].Attachment != "" {
			v.mode = dashExport
			v.exportDir.SetValue(".")
			v.exportDir.Focus()
			return v, textinput.Blink
		}
		v.setStatus("This document has no attachment", true)
	}
	return v, nil
}

func (v *DashboardView) updateFormFocus() {
	v.docTitle.Blur()
	v.docContent.Blur()
	v.docFile.Blur()
	switch v.formFocus {
	case 0:
		v.docTitle.Focus()
	case 1:
		v.docContent.Focus()
	case 2:
		v.docFile.Focus()
	}
}

func (v *DashboardView) updateAddDocument(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = dashNormal
		v.status = ""
		return v, nil
	case key.Matches(msg, v.keys.Save):
		v.saveDocument()
		return v, nil
	case key.Matches(msg, v.keys.Tab):
		v.formFocus = (v.formFocus + 1) % 3
		v.updateFormFocus()
		return v, nil
	case key.Matches(msg, v.keys.BackTab):
		v.formFocus = (v.formFocus + 2) % 3
		v.updateFormFocus()
		return v, nil
	case key.Matches(msg, v.keys.Enter) && v.formFocus != 1:
		if v.formFocus == 0 {
			v.formFocus = 1
			v.updateFormFocus()
			return v, nil
		}
		v.saveDocument()
		return v, nil
	}

	var cmd tea.Cmd
	switch v.formFocus {
	case 0:
		v.docTitle, cmd = v.docTitle.Update(msg)
	case 1:
		v.docContent, cmd = v.docContent.Update(msg)
	case 2:
		v.docFile, cmd = v.docFile.Update(msg)
	}
	return v, cmd
}

// saveDocument adds the form as a document. A title and either content or
// an attachment are required.
func (v *DashboardView) saveDocument() {
	title := strings.TrimSpace(v.docTitle.Value())
	content := v.docContent.Value()
	file := strings.TrimSpace(v.docFile.Value())

	if title == "" || (strings.TrimSpace(content) == "" && file == "") {
		v.setStatus("A document needs a title and content or an attachment", true)
		return
	}

	var ref string
	if file != "" {
		if !v.store.AllowedAttachment(file) {
			v.setStatus("Only PDF, TXT and image attachments are allowed", true)
			return
		}
		data, err := os.ReadFile(file)
		if err != nil {
			v.setStatus(userMessage(err), true)
			return
		}
		ref, err = v.store.SaveAttachment(v.name, file, data)
		if err != nil {
			v.setStatus(userMessage(err), true)
			return
		}
	}

	v.project.AddDocument(models.Document{
		Title:       title,
		Content:     content,
		DateCreated: v.now().Format(models.DateLayout),
		Attachment:  ref,
	})
	v.docIdx = len(v.project.Documents) - 1
	v.mode = dashNormal
	v.setStatus("Document saved", false)
	v.save()
}

func (v *DashboardView) openReader(doc models.Document) {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(doc.Title))
	b.WriteString("\n")
	b.WriteString(v.styles.TitleMuted.Render(doc.DateCreated))
	if doc.Attachment != "" {
		b.WriteString(v.styles.TitleMuted.Render(" • attachment: " + filepath.Base(doc.Attachment)))
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(v.reader.Width).Render(doc.Content))

	v.reader.SetContent(b.String())
	v.reader.GotoTop()
	v.mode = dashViewDocument
}

func (v *DashboardView) updateViewDocument(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, v.keys.Back) || msg.String() == "q" {
		v.mode = dashNormal
		return v, nil
	}
	var cmd tea.Cmd
	v.reader, cmd = v.reader.Update(msg)
	return v, cmd
}

func (v *DashboardView) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = dashNormal
		v.exportDir.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		v.mode = dashNormal
		v.exportDir.Blur()
		v.exportAttachment(strings.TrimSpace(v.exportDir.Value()))
		return v, nil
	}
	var cmd tea.Cmd
	v.exportDir, cmd = v.exportDir.Update(msg)
	return v, cmd
}

// exportAttachment copies the selected document's attachment into dir
func (v *DashboardView) exportAttachment(dir string) {
	if dir == "" {
		dir = "."
	}
	doc := v.project.Documents[v.docIdx]
	data, err := v.store.ReadAttachment(v.name, doc.Attachment)
	if err != nil {
		v.setStatus(userMessage(err), true)
		return
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.setStatus(userMessage(err), true)
		return
	}
	dst := filepath.Join(dir, filepath.Base(filepath.FromSlash(doc.Attachment)))
	if err := os.WriteFile(dst, data, 0644); err != nil {
		v.setStatus(userMessage(err), true)
		return
	}
	v.setStatus("Saved "+dst, false)
}

func (v *DashboardView) startVideo() tea.Cmd {
	if v.videos == nil {
		v.setStatus("Video notes are not configured", true)
		return nil
	}
	if v.processing {
		return nil
	}
	v.focus = PaneVideo
	v.mode = dashVideoURL
	v.urlInput.Reset()
	v.urlInput.Focus()
	return textinput.Blink
}

func (v *DashboardView) updateVideoURL(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = dashNormal
		v.urlInput.Blur()
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		url := strings.TrimSpace(v.urlInput.Value())
		v.mode = dashNormal
		v.urlInput.Blur()
		if url == "" {
			return v, nil
		}
		return v, v.processVideo(url)
	}
	var cmd tea.Cmd
	v.urlInput, cmd = v.urlInput.Update(msg)
	return v, cmd
}

func (v *DashboardView) processVideo(url string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	v.cancelVideo = cancel
	v.processing = true
	v.videoErr = ""

	name := v.name
	videos := v.videos
	run := func() tea.Msg {
		defer cancel()
		doc, err := videos.Summarize(ctx, name, url)
		return videoDoneMsg{doc: doc, err: err}
	}
	return tea.Batch(run, v.spinner.Tick)
}

func (v *DashboardView) stopVideo() {
	if v.cancelVideo != nil {
		v.cancelVideo()
	}
}

// View renders the view
func (v *DashboardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.project == nil {
		body := v.styles.TitleMuted.Render("Loading...")
		if v.statusIsError {
			body = v.renderStatus()
		}
		return styles.CenterView(body, v.width, v.height)
	}
	switch v.mode {
	case dashAddDocument:
		return v.renderDocumentForm()
	case dashViewDocument:
		return styles.CenterView(v.reader.View()+"\n"+renderHelpLine(v.styles, helpEntry{"↑↓", "scroll"}, helpEntry{"esc", "close"}), v.width, v.height)
	}

	contentWidth := styles.ContentWidth(v.width)

	var panes string
	if contentWidth >= 90 {
		w := (contentWidth - 6) / paneCount
		panes = lipgloss.JoinHorizontal(lipgloss.Top,
			v.paneStyle(PaneTodos).Width(w).Render(v.renderTodos(w)),
			v.paneStyle(PaneDocuments).Width(w).Render(v.renderDocuments(w)),
			v.paneStyle(PaneVideo).Width(w).Render(v.renderVideo(w)),
		)
	} else {
		w := max(contentWidth-4, 20)
		var body string
		switch v.focus {
		case PaneTodos:
			body = v.renderTodos(w)
		case PaneDocuments:
			body = v.renderDocuments(w)
		case PaneVideo:
			body = v.renderVideo(w)
		}
		panes = v.paneStyle(v.focus).Width(w).Render(body)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		"",
		panes,
		v.renderStatus(),
		v.renderHelp(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *DashboardView) paneStyle(p Pane) lipgloss.Style {
	if p == v.focus {
		return v.styles.PaneFocused
	}
	return v.styles.Pane
}

func (v *DashboardView) renderHeader() string {
	s := v.styles
	p := v.project

	title := s.Title.Render(p.Name + ": Project Dashboard")

	info := []string{s.TitleMuted.Render(p.Category)}
	if days, ok, err := due.DaysUntil(p.DueDate, v.now()); err == nil && ok {
		text := due.Describe(days)
		if days < 0 {
			info = append(info, s.Overdue.Render(text))
		} else {
			info = append(info, s.TitleMuted.Render(text))
		}
	}
	st := p.Stats()
	info = append(info,
		s.Metric.Render(fmt.Sprintf("%d", st.TotalTasks))+s.TitleMuted.Render(" tasks"),
		s.Metric.Render(fmt.Sprintf("%d", st.CompletedTasks))+s.TitleMuted.Render(" done"),
		s.Metric.Render(fmt.Sprintf("%d", st.Documents))+s.TitleMuted.Render(" docs"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(info, s.TitleMuted.Render(" • ")))
}

// visibleRows is how many list rows fit in a pane
func (v *DashboardView) visibleRows() int {
	return max(v.height-14, 3)
}

// window returns the [start, end) slice of n rows that keeps cursor in view
func window(cursor, top, n, rows int) (int, int) {
	if cursor < top {
		top = cursor
	} else if cursor >= top+rows {
		top = cursor - rows + 1
	}
	top = clamp(top, 0, max(n-rows, 0))
	return top, min(top+rows, n)
}

func (v *DashboardView) renderTodos(width int) string {
	s := v.styles
	rows := []string{s.Subtitle.Render("To-Do List")}

	if v.mode == dashAddTodo {
		rows = append(rows, s.InputFocused.Width(width-4).Render(v.todoInput.View()))
	}

	todos := v.project.Todos
	if len(todos) == 0 {
		rows = append(rows, s.TitleMuted.Render("No tasks. Press 'n' to add one."))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	start, end := window(v.todoIdx, v.todoTop, len(todos), v.visibleRows())
	v.todoTop = start
	for i := start; i < end; i++ {
		t := todos[i]
		box := "[ ] "
		text := t.Task
		if t.Completed {
			box = "[x] "
			text = s.TodoDone.Render(text)
		}
		line := box + text
		if v.focus == PaneTodos && i == v.todoIdx {
			rows = append(rows, s.ListSelected.Width(width-2).Render(line))
		} else {
			rows = append(rows, s.ListItem.Width(width-2).Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *DashboardView) renderDocuments(width int) string {
	s := v.styles
	rows := []string{s.Subtitle.Render("Documents")}

	docs := v.project.Documents
	if len(docs) == 0 {
		rows = append(rows, s.TitleMuted.Render("No documents. Press 'n' to add one."))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	start, end := window(v.docIdx, v.docTop, len(docs), v.visibleRows())
	v.docTop = start
	for i := start; i < end; i++ {
		d := docs[i]
		line := fmt.Sprintf("%s (%s)", d.Title, d.DateCreated)
		if d.Attachment != "" {
			line += " 📎"
		}
		if v.focus == PaneDocuments && i == v.docIdx {
			rows = append(rows, s.ListSelected.Width(width-2).Render(line))
		} else {
			rows = append(rows, s.ListItem.Width(width-2).Render(line))
		}
	}

	if v.mode == dashExport {
		rows = append(rows, "", "Save attachment to:", s.InputFocused.Width(width-4).Render(v.exportDir.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *DashboardView) renderVideo(width int) string {
	s := v.styles
	rows := []string{s.Subtitle.Render("Video Notes")}

	switch {
	case v.videos == nil:
		rows = append(rows, s.TitleMuted.Render("Not configured"))
	case v.mode == dashVideoURL:
		rows = append(rows, s.InputFocused.Width(width-4).Render(v.urlInput.View()))
	case v.processing:
		rows = append(rows, v.spinner.View()+" Processing video... (esc to cancel)")
	default:
		rows = append(rows, s.TitleMuted.Width(width-2).Render(
			"Add video notes to your project by:\n1. Press 'v' and paste a YouTube URL\n2. Wait for processing (this may take a few minutes)\n3. Notes will be saved in your documents"))
	}

	if v.videoErr != "" {
		rows = append(rows, "",
			s.ErrorBanner.Width(width-2).Render("An error occurred: "+v.videoErr),
			s.TitleMuted.Width(width-2).Render(video.Troubleshooting),
		)
	}

	if len(v.runs) > 0 {
		rows = append(rows, "", s.TitleMuted.Render("Recent runs"))
		for _, r := range v.runs {
			mark := s.SuccessBanner.Render("✓")
			if r.Status != db.RunSucceeded {
				mark = s.ErrorBanner.Render("✗")
			}
			label := r.Title
			if label == "" {
				label = r.URL
			}
			rows = append(rows, mark+" "+lipgloss.NewStyle().MaxWidth(max(width-8, 10)).Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *DashboardView) renderStatus() string {
	if v.status == "" {
		return ""
	}
	if v.statusIsError {
		return v.styles.ErrorBanner.Render(v.status)
	}
	return v.styles.SuccessBanner.Render(v.status)
}

func (v *DashboardView) renderDocumentForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 72)

	field := func(idx int, view string) string {
		st := s.Input
		if idx == v.formFocus {
			st = s.InputFocused
		}
		return st.Width(inputWidth).Render(view)
	}

	rows := []string{
		s.Title.Render("New Document"),
		"",
		"Title:",
		field(0, v.docTitle.View()),
		"Content:",
		field(1, v.docContent.View()),
		"Attachment:",
		field(2, v.docFile.View()),
	}
	if v.status != "" {
		rows = append(rows, "", v.renderStatus())
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *DashboardView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	entries := []helpEntry{{"tab", "pane"}, {"n", "new"}}
	switch v.focus {
	case PaneTodos:
		entries = append(entries, helpEntry{"space", "toggle"}, helpEntry{"d", "del"}, helpEntry{"c", "clear done"})
	case PaneDocuments:
		entries = append(entries, helpEntry{"↵", "read"}, helpEntry{"d", "del"}, helpEntry{"s", "save attachment"})
	}
	entries = append(entries, helpEntry{"v", "video"}, helpEntry{"esc", "back"}, helpEntry{"q", "quit"})
	return renderHelpLine(v.styles, entries...)
}

func (v *DashboardView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("tab") + "    next pane",
		s.HelpKey.Render("n") + "      new task / document",
		s.HelpKey.Render("space") + "  toggle task",
		s.HelpKey.Render("c") + "      clear completed tasks",
		s.HelpKey.Render("↵") + "      read document",
		s.HelpKey.Render("s") + "      save attachment",
		s.HelpKey.Render("d") + "      delete",
		s.HelpKey.Render("v") + "      video notes",
		s.HelpKey.Render("esc") + "    back",
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
