package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/focusboard/internal/ui/keys"
	"github.com/tgienger/focusboard/internal/ui/styles"
)

// Authenticator checks and creates logins
type Authenticator interface {
	Authenticate(username, password string) error
	Register(username, password string) error
	Count() int
}

type loginMode int

const (
	modeLogin loginMode = iota
	modeRegister
)

type loginResultMsg struct {
	username string
	err      error
}

type registerResultMsg struct {
	err error
}

// LoginView is the login / register screen
type LoginView struct {
	auth   Authenticator
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int

	mode     loginMode
	username textinput.Model
	password textinput.Model
	confirm  textinput.Model
	focusIdx int
	busy     bool

	errText  string
	infoText string
}

// NewLoginView creates the login screen
func NewLoginView(a Authenticator) *LoginView {
	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 72
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	confirm := textinput.New()
	confirm.Placeholder = "Confirm password"
	confirm.CharLimit = 72
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'

	v := &LoginView{
		auth:     a,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		username: username,
		password: password,
		confirm:  confirm,
	}
	if a.Count() == 0 {
		v.setMode(modeRegister)
		v.infoText = "No accounts yet. Create one to get started."
	}
	return v
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) fieldCount() int {
	if v.mode == modeRegister {
		return 3
	}
	return 2
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginResultMsg:
		v.busy = false
		if msg.err != nil {
			v.errText = userMessage(msg.err)
			v.password.Reset()
			return v, nil
		}
		return v, func() tea.Msg { return LoginSucceeded{Username: msg.username} }

	case registerResultMsg:
		v.busy = false
		if msg.err != nil {
			v.errText = userMessage(msg.err)
			return v, nil
		}
		v.infoText = "Registration successful! Please login."
		v.setMode(modeLogin)
		return v, nil

	case tea.KeyMsg:
		if v.busy {
			return v, nil
		}
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case key.Matches(msg, v.keys.Mode):
			if v.mode == modeLogin {
				v.setMode(modeRegister)
			} else {
				v.setMode(modeLogin)
			}
			return v, textinput.Blink
		// j and k are typed into the fields, so only the arrows move focus
		case key.Matches(msg, v.keys.Tab), msg.String() == "down":
			v.focusIdx = (v.focusIdx + 1) % v.fieldCount()
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.BackTab), msg.String() == "up":
			v.focusIdx = (v.focusIdx + v.fieldCount() - 1) % v.fieldCount()
			v.updateFocus()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < v.fieldCount()-1 {
				v.focusIdx++
				v.updateFocus()
				return v, nil
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.username, cmd = v.username.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	case 2:
		v.confirm, cmd = v.confirm.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) setMode(m loginMode) {
	v.mode = m
	v.password.Reset()
	v.confirm.Reset()
	v.errText = ""
	v.focusIdx = 0
	if m == modeRegister {
		v.username.Reset()
		v.infoText = ""
	}
	v.updateFocus()
}

func (v *LoginView) updateFocus() {
	v.username.Blur()
	v.password.Blur()
	v.confirm.Blur()
	switch v.focusIdx {
	case 0:
		v.username.Focus()
	case 1:
		v.password.Focus()
	case 2:
		v.confirm.Focus()
	}
}

func (v *LoginView) submit() tea.Cmd {
	username := strings.TrimSpace(v.username.Value())
	password := v.password.Value()
	v.errText = ""
	v.infoText = ""

	if v.mode == modeRegister {
		if password != v.confirm.Value() {
			v.errText = "Passwords do not match"
			return nil
		}
		v.busy = true
		return func() tea.Msg {
			return registerResultMsg{err: v.auth.Register(username, password)}
		}
	}

	v.busy = true
	return func() tea.Msg {
		return loginResultMsg{username: username, err: v.auth.Authenticate(username, password)}
	}
}

// View renders the view
func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-10, 20, 40)

	loginTab, registerTab := s.TabActive, s.Tab
	if v.mode == modeRegister {
		loginTab, registerTab = s.Tab, s.TabActive
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		loginTab.Render("Login"),
		registerTab.Render("Register"),
	)

	field := func(idx int, input textinput.Model) string {
		st := s.Input
		if idx == v.focusIdx {
			st = s.InputFocused
		}
		return st.Width(inputWidth).Render(input.View())
	}

	rows := []string{
		s.Title.Render("FocusBoard"),
		"",
		tabs,
		"",
		field(0, v.username),
		field(1, v.password),
	}
	if v.mode == modeRegister {
		rows = append(rows, field(2, v.confirm))
	}
	rows = append(rows, "")

	switch {
	case v.busy:
		rows = append(rows, s.TitleMuted.Render("Checking..."))
	case v.errText != "":
		rows = append(rows, s.ErrorBanner.Render(v.errText))
	case v.infoText != "":
		rows = append(rows, s.SuccessBanner.Render(v.infoText))
	}

	action := "login"
	if v.mode == modeRegister {
		action = "register"
	}
	rows = append(rows, renderHelpLine(s,
		helpEntry{"tab", "next"},
		helpEntry{"↵", action},
		helpEntry{"ctrl+t", "switch tab"},
		helpEntry{"ctrl+c", "quit"},
	))

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
	return styles.CenterView(centered, v.width, v.height)
}
