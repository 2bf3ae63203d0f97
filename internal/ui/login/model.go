// Package login is the sign-in screen.
package login

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/session"
	"github.com/insuretm/console/internal/theme"
)

// LoggedInMsg is sent to the parent when authentication succeeds.
type LoggedInMsg struct {
	User *model.User
}

// resultMsg carries the outcome of a login attempt.
type resultMsg struct {
	user *model.User
	err  error
}

// Model is the login form.
type Model struct {
	sess     *session.Store
	form     *huh.Form
	username string
	password string
	pending  bool
	errText  string
	width    int
	height   int
}

// New creates the login screen bound to the session store.
func New(sess *session.Store, width, height int) Model {
	m := Model{
		sess:   sess,
		width:  width,
		height: height,
	}
	m.form = m.newForm()
	return m
}

func (m *Model) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Username").
				Value(&m.username),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.password),
		),
	).WithShowHelp(false)
}

// Reset clears the form and any prior error, e.g. after a logout.
func (m *Model) Reset() {
	m.username = ""
	m.password = ""
	m.errText = ""
	m.pending = false
	m.form = m.newForm()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update drives the form and submits the credentials when complete.
// While a login request is outstanding the form is inert, so rapid
// repeated submits cannot fire duplicate requests.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if result, ok := msg.(resultMsg); ok {
		m.pending = false
		if result.err != nil {
			// Failed login never changes navigation state; the form
			// resets in place with a visible error.
			m.errText = "Sign-in failed: " + result.err.Error()
			m.password = ""
			m.form = m.newForm()
			return m, m.form.Init()
		}
		return m, func() tea.Msg { return LoggedInMsg{User: result.user} }
	}

	if m.pending {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.pending = true
		m.errText = ""
		return m, m.submit()
	}

	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	sess := m.sess
	username := m.username
	password := m.password
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := sess.Login(ctx, username, password)
		return resultMsg{user: user, err: err}
	}
}

// View renders the sign-in screen.
func (m Model) View() string {
	title := theme.HeaderStyle.Render("InsureTM")

	body := m.form.View()
	if m.pending {
		body = theme.HelpStyle.Render("Signing in...")
	}

	out := title + "\n\n" + body
	if m.errText != "" {
		out += "\n\n" + theme.ErrorStyle.Render(m.errText)
	}
	return theme.PanelStyle.Width(min(m.width-2, 60)).Render(out)
}
