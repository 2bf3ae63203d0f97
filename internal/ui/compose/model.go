// Package compose is the email composition screen. Required fields are
// validated before any network call; an incomplete message never
// reaches the backend.
package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/store"
	"github.com/insuretm/console/internal/theme"
)

// ValidationError is a client-side required-field failure. It blocks
// submission and never reaches the network layer.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing required field: " + e.Field
}

// DoneMsg tells the parent the compose screen is finished. Sent is
// true after a successful send, false on cancel.
type DoneMsg struct {
	Sent bool
}

// sentMsg carries the send outcome.
type sentMsg struct {
	err error
}

// recipientsMsg delivers the user directory for the recipient picker.
type recipientsMsg struct {
	users []model.User
	err   error
}

const requestTimeout = 30 * time.Second

// Model is the compose screen.
type Model struct {
	client *api.Client
	drafts *store.SQLiteStore
	log    *zap.Logger

	form      *huh.Form
	recipient string
	subject   string
	body      string
	users     []model.User

	draftID string
	sending bool
	errText string
	width   int
	height  int
}

// New creates the compose screen. drafts may be nil (no local cache).
func New(client *api.Client, drafts *store.SQLiteStore, log *zap.Logger, width, height int) Model {
	return Model{
		client: client,
		drafts: drafts,
		log:    log,
		width:  width,
		height: height,
	}
}

// Open resets the screen, optionally restoring a draft, and returns a
// command that loads the recipient directory.
func (m *Model) Open(draft *store.EmailDraft) tea.Cmd {
	m.recipient = ""
	m.subject = ""
	m.body = ""
	m.draftID = ""
	m.sending = false
	m.errText = ""
	m.form = nil

	if draft != nil {
		m.draftID = draft.ID
		m.recipient = draft.Recipient
		m.subject = draft.Subject
		m.body = draft.Body
	}

	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		users, err := client.ListUsers(ctx)
		return recipientsMsg{users: users, err: err}
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) newForm() *huh.Form {
	options := make([]huh.Option[string], 0, len(m.users))
	for _, u := range m.users {
		label := fmt.Sprintf("%s <%s>", u.DisplayName(), u.Email)
		options = append(options, huh.NewOption(label, fmt.Sprintf("%d", u.ID)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("recipient").
				Title("Recipient").
				Options(options...).
				Value(&m.recipient),
			huh.NewInput().
				Key("subject").
				Title("Subject").
				Value(&m.subject),
			huh.NewText().
				Key("body").
				Title("Message").
				Value(&m.body),
		),
	).WithShowHelp(false)
}

// Validate applies the required-field checks. It is exported so tests
// can exercise the rule set directly.
func Validate(recipient, subject, body string) error {
	if strings.TrimSpace(recipient) == "" {
		return &ValidationError{Field: "recipient"}
	}
	if strings.TrimSpace(subject) == "" {
		return &ValidationError{Field: "subject"}
	}
	if strings.TrimSpace(body) == "" {
		return &ValidationError{Field: "body"}
	}
	return nil
}

// Update drives the form and handles send/cancel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recipientsMsg:
		if msg.err != nil {
			m.errText = "Could not load recipients: " + msg.err.Error()
			return m, nil
		}
		m.users = msg.users
		m.form = m.newForm()
		return m, m.form.Init()

	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.errText = "Send failed: " + msg.err.Error()
			m.form = m.newForm()
			return m, m.form.Init()
		}
		if m.draftID != "" && m.drafts != nil {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			if err := m.drafts.DeleteDraft(ctx, m.draftID); err != nil {
				m.log.Warn("deleting sent draft", zap.Error(err))
			}
			cancel()
		}
		return m, func() tea.Msg { return DoneMsg{Sent: true} }

	case tea.KeyMsg:
		if msg.String() == "esc" && !m.sending {
			m.saveDraft()
			return m, func() tea.Msg { return DoneMsg{Sent: false} }
		}
	}

	if m.form == nil || m.sending {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if err := Validate(m.recipient, m.subject, m.body); err != nil {
			// Blocked client-side; the request is never issued.
			m.errText = err.Error()
			m.form = m.newForm()
			return m, m.form.Init()
		}
		m.sending = true
		m.errText = ""
		return m, m.send()
	}

	return m, cmd
}

func (m *Model) send() tea.Cmd {
	client := m.client
	recipient := m.recipient
	subject := m.subject
	body := m.body
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var recipientID int64
		if _, err := fmt.Sscanf(recipient, "%d", &recipientID); err != nil {
			return sentMsg{err: err}
		}

		_, err := client.SendEmail(ctx, recipientID, subject, body, nil)
		return sentMsg{err: err}
	}
}

// saveDraft stores the half-written message locally on cancel.
func (m *Model) saveDraft() {
	if m.drafts == nil {
		return
	}
	if strings.TrimSpace(m.subject) == "" && strings.TrimSpace(m.body) == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	_, err := m.drafts.SaveDraft(ctx, store.EmailDraft{
		ID:        m.draftID,
		Recipient: m.recipient,
		Subject:   m.subject,
		Body:      m.body,
	})
	if err != nil {
		m.log.Warn("saving email draft", zap.Error(err))
	}
}

// View renders the compose screen.
func (m Model) View() string {
	if m.form == nil {
		return theme.HelpStyle.Render("Loading recipients...")
	}

	out := m.form.View()
	if m.sending {
		out = theme.HelpStyle.Render("Sending...")
	}
	if m.errText != "" {
		out += "\n" + theme.ErrorStyle.Render(m.errText)
	}
	return out
}
