// Package app is the root bubbletea model. It owns the route table
// evaluation, the notification feed lifecycle, and the switch between
// screens.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/internal/feed"
	"github.com/insuretm/console/internal/keys"
	"github.com/insuretm/console/internal/nav"
	"github.com/insuretm/console/internal/session"
	"github.com/insuretm/console/internal/store"
	"github.com/insuretm/console/internal/theme"
	"github.com/insuretm/console/internal/ui"
	"github.com/insuretm/console/internal/ui/comments"
	"github.com/insuretm/console/internal/ui/compose"
	"github.com/insuretm/console/internal/ui/datagrid"
	"github.com/insuretm/console/internal/ui/login"
	"github.com/insuretm/console/internal/ui/notifpanel"
	"github.com/insuretm/console/internal/ui/settings"
)

const requestTimeout = 30 * time.Second

// restoredMsg signals that startup session restoration finished.
type restoredMsg struct{}

// rowMutatedMsg reports the outcome of a row delete or mark-read. On
// success the screen that issued it is reloaded.
type rowMutatedMsg struct {
	path string
	err  error
}

// markedAllMsg reports the outcome of mark-all-notifications-read.
type markedAllMsg struct {
	err error
}

type overlay int

const (
	overlayNone overlay = iota
	overlayPanel
	overlayComments
	overlayCompose
)

// Model is the application root.
type Model struct {
	client       *api.Client
	sess         *session.Store
	cache        *store.SQLiteStore
	themes       *theme.Manager
	keys         *keys.KeyMap
	log          *zap.Logger
	pollInterval time.Duration

	layout ui.Layout

	// current route plus a generation counter; load results tagged
	// with an older generation are dropped.
	route nav.Route
	gen   int

	spec    screen
	hasGrid bool

	feed *feed.Feed

	loginView    login.Model
	grid         datagrid.Model
	thread       comments.Model
	composeView  compose.Model
	settingsView settings.Model
	panel        notifpanel.Model

	overlay overlay
	errText string
}

// New assembles the root model. cache may be nil when the local
// database could not be opened; the UI degrades to live-only data.
func New(
	client *api.Client,
	sess *session.Store,
	cache *store.SQLiteStore,
	themes *theme.Manager,
	log *zap.Logger,
	pollInterval time.Duration,
) Model {
	km := keys.DefaultKeyMap()
	layout := ui.NewLayout(80, 24)

	return Model{
		client:       client,
		sess:         sess,
		cache:        cache,
		themes:       themes,
		keys:         km,
		log:          log,
		pollInterval: pollInterval,
		layout:       layout,
		loginView:    login.New(sess, layout.ContentWidth(), layout.ContentHeight()),
		thread:       comments.New(client, layout.ContentWidth(), layout.ContentHeight()),
		composeView:  compose.New(client, cache, log, layout.ContentWidth(), layout.ContentHeight()),
		settingsView: settings.New(themes, layout.ContentWidth(), layout.ContentHeight()),
		panel:        notifpanel.New(*km, layout.ContentWidth(), layout.ContentHeight()),
	}
}

// Init kicks off session restoration from the credential store.
func (m Model) Init() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sess.Restore(ctx)
		return restoredMsg{}
	}
}

// Update is the root message loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.loginView.SetSize(w, h)
		if m.hasGrid {
			m.grid.SetSize(w, h)
		}
		m.thread.SetSize(w, h)
		m.composeView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.panel.SetSize(w, h)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m.dispatch(msg)

	case restoredMsg:
		if user := m.sess.CurrentUser(); user != nil {
			var feedCmd tea.Cmd
			m, feedCmd = m.startFeed()
			next, navCmd := m.navigate(nav.HomePath(user.Role), 0)
			return next, tea.Batch(feedCmd, navCmd)
		}
		return m.navigate(nav.PathLogin, 0)

	case login.LoggedInMsg:
		var feedCmd tea.Cmd
		m, feedCmd = m.startFeed()
		next, navCmd := m.navigate(nav.HomePath(msg.User.Role), 0)
		return next, tea.Batch(feedCmd, navCmd)

	case datagrid.LoadedMsg:
		if msg.Path != m.route.Path || msg.Gen != m.gen {
			// A result for a screen the user already left.
			return m, nil
		}
		if msg.Err != nil {
			if api.IsAuthError(msg.Err) {
				return m.logout()
			}
			m.grid.SetError(msg.Err)
			return m, nil
		}
		m.grid.SetRows(msg.Rows)
		return m, nil

	case datagrid.DeleteRequestMsg:
		if msg.Path != m.route.Path || !m.spec.deletable() {
			return m, nil
		}
		return m, m.mutateRow(func(ctx context.Context) error {
			return m.spec.deleteRow(ctx, m.client, msg.ID)
		})

	case rowMutatedMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m.logout()
			}
			m.grid.SetError(msg.err)
			return m, nil
		}
		if msg.path != m.route.Path {
			return m, nil
		}
		return m.reloadGrid()

	case feed.RefreshedMsg:
		if m.feed == nil {
			return m, nil
		}
		if msg.Err != nil && api.IsAuthError(msg.Err) {
			return m.logout()
		}
		m.panel.SetNotifications(m.feed.Notifications())
		return m, m.feed.WaitForNextResult()

	case feed.ClickedMsg:
		m.overlay = overlayNone
		if !msg.Navigate {
			return m, nil
		}
		return m.navigate(msg.Target.Path, msg.Target.Highlight)

	case comments.BackMsg, notifpanel.CloseMsg:
		m.overlay = overlayNone
		return m, nil

	case compose.DoneMsg:
		m.overlay = overlayNone
		if msg.Sent && m.hasGrid {
			return m.reloadGrid()
		}
		return m, nil

	case settings.ThemeToggledMsg:
		// Styles read the active mode at render time.
		return m, nil

	case settings.MarkAllReadMsg, notifpanel.MarkAllMsg:
		return m, m.markAllRead()

	case markedAllMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m.logout()
			}
			m.errText = "Could not mark notifications read: " + msg.err.Error()
			return m, nil
		}
		if m.feed != nil {
			m.feed.Refresh()
		}
		return m, nil
	}

	return m.dispatch(msg)
}

// dispatch routes a message to the active overlay or screen after the
// global keybindings have had their chance.
func (m Model) dispatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlayPanel:
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg, m.feed)
		return m, cmd
	case overlayComments:
		var cmd tea.Cmd
		m.thread, cmd = m.thread.Update(msg)
		return m, cmd
	case overlayCompose:
		var cmd tea.Cmd
		m.composeView, cmd = m.composeView.Update(msg)
		return m, cmd
	}

	if m.route.Path == nav.PathLogin {
		var cmd tea.Cmd
		m.loginView, cmd = m.loginView.Update(msg)
		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.sess.CurrentUser() != nil {
		if next, cmd, handled := m.globalKey(keyMsg); handled {
			return next, cmd
		}
	}

	if m.route.Path == nav.PathSettings {
		var cmd tea.Cmd
		m.settingsView, cmd = m.settingsView.Update(msg)
		return m, cmd
	}

	if m.hasGrid {
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg, m.route.Path)
		return m, cmd
	}
	return m, nil
}

// globalKey handles the application-wide shortcuts available on every
// authenticated screen.
func (m Model) globalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Notifications):
		m.overlay = overlayPanel
		if m.feed != nil {
			m.panel.SetNotifications(m.feed.Notifications())
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Theme):
		if _, err := m.themes.Toggle(); err != nil {
			m.log.Warn("theme preference not saved", zap.Error(err))
		}
		return m, nil, true

	case key.Matches(msg, m.keys.Refresh):
		if m.feed != nil {
			m.feed.Refresh()
		}
		if m.hasGrid {
			next, cmd := m.reloadGrid()
			return next, cmd, true
		}
		return m, nil, true

	case key.Matches(msg, m.keys.GoHome):
		user := m.sess.CurrentUser()
		next, cmd := m.navigate(nav.HomePath(user.Role), 0)
		return next, cmd, true

	case key.Matches(msg, m.keys.GoExecution):
		next, cmd := m.navigate(nav.PathExecution, 0)
		return next, cmd, true

	case key.Matches(msg, m.keys.GoAnomalies):
		next, cmd := m.navigate(nav.PathAnomalies, 0)
		return next, cmd, true

	case key.Matches(msg, m.keys.GoEmails):
		next, cmd := m.navigate(nav.PathEmails, 0)
		return next, cmd, true

	case key.Matches(msg, m.keys.GoSettings):
		next, cmd := m.navigate(nav.PathSettings, 0)
		return next, cmd, true

	case key.Matches(msg, m.keys.LogOut):
		next, cmd := m.logout()
		return next, cmd, true

	case key.Matches(msg, m.keys.Comment):
		if m.hasGrid && m.spec.comments {
			if id, ok := m.grid.SelectedID(); ok {
				m.overlay = overlayComments
				sender := ""
				if u := m.sess.CurrentUser(); u != nil {
					sender = u.DisplayName()
				}
				return m, m.thread.Open(id, sender), true
			}
		}
		return m, nil, false

	case key.Matches(msg, m.keys.New):
		if m.hasGrid && m.spec.compose {
			m.overlay = overlayCompose
			return m, m.composeView.Open(m.latestDraft()), true
		}
		return m, nil, false

	case key.Matches(msg, m.keys.Select):
		if m.route.Path == nav.PathEmails {
			if id, ok := m.grid.SelectedID(); ok {
				return m, m.mutateRow(func(ctx context.Context) error {
					return m.client.MarkEmailRead(ctx, id)
				}), true
			}
		}
		return m, nil, false
	}
	return m, nil, false
}

// navigate evaluates the route table for path and switches screens
// accordingly. highlight marks the row the destination should
// emphasize (from a notification click), zero for none.
func (m Model) navigate(path string, highlight int64) (Model, tea.Cmd) {
	route := nav.Lookup(path)
	switch nav.Evaluate(route, m.sess.State()) {
	case nav.DecisionLoading:
		// Restoration is still in flight; restoredMsg navigates again.
		m.route = route
		return m, nil
	case nav.DecisionRedirectLogin:
		route = nav.Lookup(nav.PathLogin)
	case nav.DecisionRedirectUnauthorized:
		route = nav.Lookup(nav.PathUnauthorized)
	}

	m.route = route
	m.overlay = overlayNone
	m.errText = ""

	if route.Path == nav.PathLogin {
		m.loginView.Reset()
		return m, m.loginView.Init()
	}

	if spec, ok := screenFor(route.Path); ok {
		m.spec = spec
		m.hasGrid = true
		m.gen++
		m.grid = datagrid.New(
			spec.columns, m.keys, spec.deletable(),
			m.layout.ContentWidth(), m.layout.ContentHeight(),
		)
		m.grid.StartLoading()
		if highlight != 0 {
			m.grid.SetHighlight(highlight)
		}
		return m, m.loadRows()
	}

	m.hasGrid = false
	if route.Path == nav.PathSettings {
		m.settingsView.SetUser(m.sess.CurrentUser())
	}
	return m, nil
}

func (m Model) loadRows() tea.Cmd {
	client, spec, path, gen := m.client, m.spec, m.route.Path, m.gen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		rows, err := spec.load(ctx, client)
		return datagrid.LoadedMsg{Path: path, Gen: gen, Rows: rows, Err: err}
	}
}

func (m Model) reloadGrid() (Model, tea.Cmd) {
	m.gen++
	m.grid.StartLoading()
	return m, m.loadRows()
}

func (m Model) mutateRow(mutate func(ctx context.Context) error) tea.Cmd {
	path := m.route.Path
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return rowMutatedMsg{path: path, err: mutate(ctx)}
	}
}

func (m Model) markAllRead() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return markedAllMsg{err: client.MarkAllNotificationsRead(ctx)}
	}
}

// latestDraft returns the most recently saved email draft, nil when
// none exists or the cache is unavailable.
func (m Model) latestDraft() *store.EmailDraft {
	if m.cache == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	drafts, err := m.cache.Drafts(ctx)
	if err != nil || len(drafts) == 0 {
		return nil
	}
	return &drafts[0]
}

func (m Model) startFeed() (Model, tea.Cmd) {
	if m.feed != nil {
		return m, nil
	}
	var cache feed.Cache
	if m.cache != nil {
		cache = m.cache
	}
	m.feed = feed.New(m.client, cache, m.pollInterval, m.log)
	return m, m.feed.Start()
}

// logout tears the session down in full: poller stopped, credentials
// cleared, back to the sign-in screen.
func (m Model) logout() (Model, tea.Cmd) {
	if m.feed != nil {
		m.feed.Stop()
		m.feed = nil
	}
	m.sess.Logout()
	return m.navigate(nav.PathLogin, 0)
}

// View renders the full frame.
func (m Model) View() string {
	if m.route.Path == "" || m.sess.State().Resolving {
		return theme.HelpStyle.Render("Restoring session...")
	}

	header := m.layout.RenderHeader("InsureTM · "+m.route.Title, m.headerStatus())
	status := m.layout.RenderStatusBar(m.hints())
	return m.layout.RenderWithFrame(header, m.content(), status)
}

func (m Model) content() string {
	switch m.overlay {
	case overlayPanel:
		return m.panel.View()
	case overlayComments:
		return m.thread.View()
	case overlayCompose:
		return m.composeView.View()
	}

	var out string
	switch m.route.Path {
	case nav.PathLogin:
		out = m.loginView.View()
	case nav.PathUnauthorized:
		out = theme.ErrorStyle.Render("You do not have access to this screen.") +
			"\n" + theme.HelpStyle.Render("g home · L log out")
	case nav.PathNotFound:
		out = "This screen does not exist." +
			"\n" + theme.HelpStyle.Render("g home")
	case nav.PathSettings:
		out = m.settingsView.View()
	case nav.PathHome:
		out = m.welcome()
	default:
		if m.hasGrid {
			out = m.grid.View()
		}
	}

	if m.errText != "" {
		out += "\n" + theme.ErrorStyle.Render(m.errText)
	}
	return out
}

func (m Model) welcome() string {
	user := m.sess.CurrentUser()
	if user == nil {
		return ""
	}
	return fmt.Sprintf("Welcome, %s.\n%s",
		user.DisplayName(),
		theme.HelpStyle.Render("g opens your dashboard"),
	)
}

func (m Model) headerStatus() string {
	user := m.sess.CurrentUser()
	if user == nil {
		return ""
	}
	unread := 0
	if m.feed != nil {
		unread = m.feed.UnreadCount()
	}
	if unread > 0 {
		return fmt.Sprintf("%s · %d unread", user.DisplayName(), unread)
	}
	return user.DisplayName()
}

func (m Model) hints() string {
	switch {
	case m.overlay == overlayPanel:
		return "enter open · a mark all read · esc close"
	case m.overlay == overlayComments:
		return "enter send · ctrl+a attach · esc back"
	case m.overlay == overlayCompose:
		return "esc save draft & close"
	case m.route.Path == nav.PathLogin:
		return "enter sign in · ctrl+c quit"
	case m.route.Path == nav.PathEmails:
		return "n compose · enter mark read · N notifications · L log out"
	case m.hasGrid && m.spec.comments:
		return "c comments · d delete · r refresh · N notifications · T theme · L log out"
	default:
		return "r refresh · N notifications · T theme · s settings · L log out"
	}
}
