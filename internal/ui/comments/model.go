// Package comments is the discussion panel attached to an execution.
// Sent messages appear immediately as optimistic entries and the whole
// thread is replaced by the server's list once the write lands.
package comments

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/theme"
	"github.com/insuretm/console/internal/thread"
)

// BackMsg asks the parent to leave the comments panel.
type BackMsg struct{}

// loadedMsg delivers the authoritative thread for an execution.
type loadedMsg struct {
	testCaseID int64
	entries    []thread.Entry
	err        error
}

// sendFailedMsg reports a rejected write for one optimistic entry.
type sendFailedMsg struct {
	entryID int64
	err     error
}

const requestTimeout = 30 * time.Second

// Model is the comments panel.
type Model struct {
	client *api.Client

	testCaseID int64
	sender     string
	list       thread.List

	input    textarea.Model
	viewport viewport.Model

	// attachPath stages a file to send with the next message.
	attachPath  string
	attaching   bool
	attachInput textarea.Model

	// sending disables the send control while a write is in flight so
	// a held-down enter cannot fire duplicate requests.
	sending bool
	errText string
	loading bool

	width  int
	height int
}

// New creates the comments panel.
func New(client *api.Client, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Write a comment..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	attach := textarea.New()
	attach.Placeholder = "Path of file to attach"
	attach.Prompt = "attach> "
	attach.ShowLineNumbers = false
	attach.SetHeight(1)

	vp := viewport.New(width-4, max(height-9, 4))

	return Model{
		client:      client,
		input:       ta,
		attachInput: attach,
		viewport:    vp,
		width:       width,
		height:      height,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)
	m.attachInput.SetWidth(width - 4)
	m.viewport.Width = width - 4
	m.viewport.Height = max(height-9, 4)
}

// Open binds the panel to an execution's thread and returns the
// command that loads it.
func (m *Model) Open(testCaseID int64, sender string) tea.Cmd {
	m.testCaseID = testCaseID
	m.sender = sender
	m.list = thread.List{}
	m.errText = ""
	m.sending = false
	m.loading = true
	m.input.Reset()
	m.attachPath = ""
	return m.load(testCaseID)
}

// load fetches the authoritative comment list for the thread.
func (m *Model) load(testCaseID int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		comments, err := client.ListComments(ctx, api.Query{
			"test_case": fmt.Sprintf("%d", testCaseID),
		})
		if err != nil {
			return loadedMsg{testCaseID: testCaseID, err: err}
		}
		return loadedMsg{testCaseID: testCaseID, entries: toEntries(comments)}
	}
}

func toEntries(comments []model.Comment) []thread.Entry {
	entries := make([]thread.Entry, len(comments))
	for i, c := range comments {
		sender := c.AuthorName
		if sender == "" {
			sender = fmt.Sprintf("user %d", c.Author)
		}
		entries[i] = thread.Entry{
			ID:         c.ID,
			Sender:     sender,
			Body:       c.Message,
			Attachment: c.Attachment,
			CreatedAt:  c.CreatedAt,
		}
	}
	return entries
}

// Update handles input, sending, and reconciliation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.testCaseID != m.testCaseID {
			// Stale response from a thread we already left.
			return m, nil
		}
		m.loading = false
		m.sending = false
		if msg.err != nil {
			m.errText = "Could not load comments: " + msg.err.Error()
			return m, nil
		}
		// Authoritative replace: any confirmed optimistic entry comes
		// back with its server id, any other is gone.
		m.list.ReplaceAll(msg.entries)
		m.refreshViewport()
		return m, nil

	case sendFailedMsg:
		// The entry stays visible, flagged, and is not retried.
		m.list.MarkFailed(msg.entryID)
		m.sending = false
		m.errText = "Message not delivered: " + msg.err.Error()
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if m.attaching {
			switch msg.String() {
			case "enter":
				m.attachPath = strings.TrimSpace(m.attachInput.Value())
				m.attaching = false
				m.attachInput.Reset()
				return m, nil
			case "esc":
				m.attaching = false
				m.attachInput.Reset()
				return m, nil
			}
			var cmd tea.Cmd
			m.attachInput, cmd = m.attachInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return BackMsg{} }
		case "ctrl+a":
			m.attaching = true
			m.attachInput.Focus()
			return m, nil
		case "enter":
			return m.send()
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// send appends the optimistic entry, clears the input and attachment
// staging immediately, and issues the write.
func (m Model) send() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.sending {
		return m, nil
	}

	attachPath := m.attachPath
	attachName := ""
	if attachPath != "" {
		attachName = filepath.Base(attachPath)
	}
	entry := m.list.Append(m.sender, text, attachName)

	// Input and staging clear regardless of the network outcome so the
	// user can keep typing.
	m.input.Reset()
	m.attachPath = ""
	m.sending = true
	m.errText = ""
	m.refreshViewport()

	client := m.client
	testCaseID := m.testCaseID
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var attachment *api.File
		if attachPath != "" {
			data, err := os.ReadFile(attachPath)
			if err != nil {
				return sendFailedMsg{entryID: entry.ID, err: err}
			}
			attachment = &api.File{
				Field: "attachment",
				Name:  filepath.Base(attachPath),
				Data:  data,
			}
		}

		if _, err := client.CreateComment(ctx, testCaseID, text, attachment); err != nil {
			return sendFailedMsg{entryID: entry.ID, err: err}
		}

		// Success: refetch the whole thread so the displayed list is a
		// true server snapshot.
		ctx2, cancel2 := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel2()

		comments, err := client.ListComments(ctx2, api.Query{
			"test_case": fmt.Sprintf("%d", testCaseID),
		})
		if err != nil {
			return loadedMsg{testCaseID: testCaseID, err: err}
		}
		return loadedMsg{testCaseID: testCaseID, entries: toEntries(comments)}
	}
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderThread())
	m.viewport.GotoBottom()
}

func (m Model) renderThread() string {
	entries := m.list.Entries()
	if len(entries) == 0 {
		return theme.HelpStyle.Render("No comments yet.")
	}

	out := ""
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s", e.Sender, e.CreatedAt.Format("2006-01-02 15:04"))
		body := e.Body
		if e.Attachment != "" {
			body += "  [" + e.Attachment + "]"
		}
		switch {
		case e.Failed:
			body = theme.FailedStyle.Render(body + "  (not delivered)")
		case e.Optimistic:
			body = theme.OptimisticStyle.Render(body + "  (sending)")
		}
		out += theme.UnreadStyle.Render(line) + "\n" + body + "\n\n"
	}
	return out
}

// View renders the panel.
func (m Model) View() string {
	if m.loading {
		return theme.HelpStyle.Render("Loading comments...")
	}

	out := m.viewport.View() + "\n"
	if m.attaching {
		out += m.attachInput.View() + "\n"
	} else {
		out += m.input.View() + "\n"
	}

	if m.attachPath != "" {
		out += theme.HelpStyle.Render("attachment staged: "+filepath.Base(m.attachPath)) + "\n"
	}
	if m.sending {
		out += theme.HelpStyle.Render("Sending...") + "\n"
	}
	if m.errText != "" {
		out += theme.ErrorStyle.Render(m.errText) + "\n"
	}
	return out
}

