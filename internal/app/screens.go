package app

import (
	"context"
	"strconv"
	"strings"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/internal/nav"
	"github.com/insuretm/console/internal/theme"
	"github.com/insuretm/console/internal/ui/datagrid"
)

// screen describes one table-backed route: its columns, how to load
// rows, and how to delete one.
type screen struct {
	columns   []datagrid.Column
	load      func(ctx context.Context, c *api.Client) ([]datagrid.Row, error)
	deleteRow func(ctx context.Context, c *api.Client, id int64) error
	// comments is true when the selected row is a test case whose
	// discussion thread can be opened.
	comments bool
	// compose is true on the mailbox screen.
	compose bool
}

func (s screen) deletable() bool {
	return s.deleteRow != nil
}

// screenFor returns the table configuration for a route. ok is false
// for routes that are not table-backed (login, settings, unauthorized).
func screenFor(path string) (screen, bool) {
	s, ok := screens[path]
	return s, ok
}

var screens = map[string]screen{
	nav.PathReleases:        projectScreen,
	nav.PathAdminReleases:   projectScreen,
	nav.PathManager:         campaignScreen,
	nav.PathAdminCampaigns:  campaignScreen,
	nav.PathExecution:       executionScreen,
	nav.PathAdminExecutions: executionScreen,
	nav.PathTesterDashboard: executionScreen,
	nav.PathPerformance:     performanceScreen,
	nav.PathAnomalies:       anomalyScreen,
	nav.PathAdminAnomalies:  anomalyScreen,
	nav.PathAdminComments:   commentScreen,
	nav.PathUsers:           userScreen,
	nav.PathEmails:          emailScreen,
}

var projectScreen = screen{
	columns: []datagrid.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 28},
		{Title: "Description", Width: 40},
		{Title: "Created", Width: 12},
	},
	load: func(ctx context.Context, c *api.Client) ([]datagrid.Row, error) {
		projects, err := c.ListProjects(ctx, nil)
		if err != nil {
			return nil, err
		}
		rows := make([]datagrid.Row, len(projects))
		for i, p := range projects {
			rows[i] = datagrid.Row{ID: p.ID, Cells: []string{
				strconv.FormatInt(p.ID, 10),
				p.Name,
				truncate(p.Description, 40),
				p.CreatedAt.Format("2006-01-02"),
			}}
		}
		return rows, nil
	},
	deleteRow: func(ctx context.Context, c *api.Client, id int64) error {
		return c.DeleteProject(ctx, id)
	},
}

var campaignScreen = screen{
	columns: []datagrid.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: 28},
		{Title: "Start", Width: 12},
		{Title: "End (est.)", Width: 12},
		{Title: "Cases", Width: 7},
		{Title: "Processed", Width: 10},
	},
	load: func(ctx context.Context, c *api.Client) ([]datagrid.Row, error) {
		campaigns, err := c.ListCampaigns(ctx, nil)
		if err != nil {
			return nil, err
		}
		rows := make([]datagrid.Row, len(campaigns))
		for i, cp := range campaigns {
			processed := "no"
			if cp.IsProcessed {
				processed = "yes"
			}
			rows[i] = datagrid.Row{ID: cp.ID, Cells: []string{
				strconv.FormatInt(cp.ID, 10),
				truncate(cp.Title, 28),
				cp.StartDate,
				cp.EstimatedEndDate,
				strconv.Itoa(cp.NbTestCases),
				processed,
			}}
		}
		return rows, nil
	},
	deleteRow: func(ctx context.Context, c *api.Client, id int64) error {
		return c.DeleteCampaign(ctx, id)
	},
}

var executionScreen = screen{
	columns: []datagrid.Column{
		{Title: "ID", Width: 6},
		{Title: "Ref", Width: 16},
		{Title: "Campaign", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "Executed", Width: 12},
	},
	load:     loadExecutions,
	comments: true,
	deleteRow: func(ctx context.Context, c *api.Client, id int64) error {
		return c.DeleteExecution(ctx, id)
	},
}

// performanceScreen is the read-only execution overview; no deletes.
var performanceScreen = screen{
	columns: []datagrid.Column{
		{Title: "ID", Width: 6},
		{Title: "Ref", Width: 16},
		{Title: "Campaign", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "Executed", Width: 12},
	},
	load: loadExecutions,
}

func loadExecutions(ctx context.Context, c *api.Client) ([]datagrid.Row, error) {
	executions, err := c.ListExecutions(ctx, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]datagrid.Row, len(executions))
	for i, e := range executions {
		when := ""
		if e.ExecutionDate != nil {
			when = e.ExecutionDate.Format("2006-01-02")
		}
		rows[i] = datagrid.Row{ID: e.ID, Cells: []string{
			strconv.FormatInt(e.ID, 10),
			e.TestCaseRef,
			strconv.FormatInt(e.Campaign, 10),
			theme.ExecutionStatusStyle(e.Status).Render(e.Status),
			when,
		}}
	}
	return rows, nil
}

var anomalyScreen = screen{
	columns: []datagrid.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: 28},
		{Title: "Criticality", Width: 12},
		{Title: "Test case", Width: 10},
		{Title: "Created", Width: 12},
	},
	load: func(ctx context.Context, c *api.Client) ([]datagrid.Row, error) {
		anomalies, err := c.ListAnomalies(ctx, nil)
		if err != nil {
			return nil, err
		}
		rows := make([]datagrid.Row, len(anomalies))
		for i, a := range anomalies {
			rows[i] = datagrid.Row{ID: a.ID, Cells: []string{
				strconv.FormatInt(a.ID, 10),
				truncate(a.Title, 28),
				theme.CriticalityStyle(a.Criticality).Render(a.Criticality),
				strconv.FormatInt(a.TestCase, 10),
				a.CreatedAt.Format("2006-01-02"),
			}}
		}
		return rows, nil
	},
	deleteRow: func(ctx context.Context, c *api.Client, id int64) error {
		return c.DeleteAnomaly(ctx, id)
	},
}

var commentScreen = screen{
	columns: []datagrid.Column{
		{Title: "ID", Width: 6},
		{Title: "Author", Width: 20},
		{Title: "Test case", Width: 10},
		{Title: "Message", Width: 40},
		{Title: "Posted", Width: 12},
	},
	load: func(ctx context.Context, c *api.Client) ([]datagrid.Row, error) {
		comments, err := c.ListComments(ctx, nil)
		if err != nil {
			return nil, err
		}
		rows := make([]datagrid.Row, len(comments))
		for i, cm := range comments {
			rows[i] = datagrid.Row{ID: cm.ID, Cells: []string{
				strconv.FormatInt(cm.ID, 10),
				cm.AuthorName,
				strconv.FormatInt(cm.TestCase, 10),
				truncate(cm.Message, 40),
				cm.CreatedAt.Format("2006-01-02"),
			}}
		}
		return rows, nil
	},
	deleteRow: func(ctx context.Context, c *api.Client, id int64) error {
		return c.DeleteComment(ctx, id)
	},
}

var userScreen = screen{
	columns: []datagrid.Column{
		{Title: "ID", Width: 6},
		{Title: "Username", Width: 20},
		{Title: "Name", Width: 24},
		{Title: "Email", Width: 28},
		{Title: "Role", Width: 10},
	},
	load: func(ctx context.Context, c *api.Client) ([]datagrid.Row, error) {
		users, err := c.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]datagrid.Row, len(users))
		for i, u := range users {
			rows[i] = datagrid.Row{ID: u.ID, Cells: []string{
				strconv.FormatInt(u.ID, 10),
				u.Username,
				u.DisplayName(),
				u.Email,
				string(u.Role),
			}}
		}
		return rows, nil
	},
	deleteRow: func(ctx context.Context, c *api.Client, id int64) error {
		return c.DeleteUser(ctx, id)
	},
}

var emailScreen = screen{
	columns: []datagrid.Column{
		{Title: "ID", Width: 6},
		{Title: "Subject", Width: 32},
		{Title: "From", Width: 8},
		{Title: "Read", Width: 6},
		{Title: "Received", Width: 12},
	},
	load: func(ctx context.Context, c *api.Client) ([]datagrid.Row, error) {
		emails, err := c.ListEmails(ctx, nil)
		if err != nil {
			return nil, err
		}
		rows := make([]datagrid.Row, len(emails))
		for i, e := range emails {
			read := ""
			subject := e.Subject
			if !e.IsRead {
				read = "●"
				subject = theme.UnreadStyle.Render(subject)
			}
			rows[i] = datagrid.Row{ID: e.ID, Cells: []string{
				strconv.FormatInt(e.ID, 10),
				truncate(subject, 32),
				strconv.FormatInt(e.Sender, 10),
				read,
				e.CreatedAt.Format("2006-01-02"),
			}}
		}
		return rows, nil
	},
	compose: true,
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
