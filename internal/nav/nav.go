// Package nav is the access-control and routing layer: a static route
// table, a pure role-policy function, and the notification
// click-to-navigate mapping. Screens never re-implement role checks;
// they consume Evaluate's result.
package nav

import (
	"fmt"
	"strings"

	"github.com/insuretm/console/internal/model"
	"github.com/insuretm/console/internal/session"
)

// Well-known paths.
const (
	PathLogin           = "/login"
	PathUnauthorized    = "/unauthorized"
	PathHome            = "/"
	PathAnomalies       = "/anomalies"
	PathManager         = "/manager"
	PathReleases        = "/releases"
	PathPerformance     = "/performance"
	PathExecution       = "/execution"
	PathTesterDashboard = "/tester-dashboard"
	PathUsers           = "/users"
	PathSettings        = "/settings"
	PathAdminReleases   = "/admin/releases"
	PathAdminCampaigns  = "/admin/campaigns"
	PathAdminExecutions = "/admin/executions"
	PathAdminAnomalies  = "/admin/anomalies"
	PathAdminComments   = "/admin/comments"
	PathEmails          = "/emails"
	PathNotFound        = "/not-found"
)

// Route describes one client-visible screen and who may open it.
type Route struct {
	Path string

	// AllowedRoles is the set of roles that may open the route.
	// Empty means public (no identity required).
	AllowedRoles []model.Role

	// Title is the screen heading shown in the header bar.
	Title string
}

// Public reports whether the route requires no identity.
func (r Route) Public() bool {
	return len(r.AllowedRoles) == 0
}

func (r Route) allows(role model.Role) bool {
	for _, allowed := range r.AllowedRoles {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	everyone = []model.Role{model.RoleAdmin, model.RoleManager, model.RoleTester}
	managers = []model.Role{model.RoleAdmin, model.RoleManager}
	admins   = []model.Role{model.RoleAdmin}
)

// Table is the static route table, defined once at startup and never
// mutated.
var Table = []Route{
	{Path: PathLogin, Title: "Sign in"},
	{Path: PathUnauthorized, Title: "Unauthorized"},
	{Path: PathNotFound, Title: "Not found"},
	{Path: PathHome, AllowedRoles: everyone, Title: "Home"},
	{Path: PathAnomalies, AllowedRoles: everyone, Title: "Anomalies"},
	{Path: PathManager, AllowedRoles: managers, Title: "Campaign manager"},
	{Path: PathReleases, AllowedRoles: managers, Title: "Releases"},
	{Path: PathPerformance, AllowedRoles: managers, Title: "Team performance"},
	{Path: PathSettings, AllowedRoles: managers, Title: "Settings"},
	{Path: PathExecution, AllowedRoles: []model.Role{model.RoleAdmin, model.RoleTester, model.RoleManager}, Title: "Execution tracking"},
	{Path: PathTesterDashboard, AllowedRoles: []model.Role{model.RoleAdmin, model.RoleTester}, Title: "Tester dashboard"},
	{Path: PathUsers, AllowedRoles: admins, Title: "User management"},
	{Path: PathEmails, AllowedRoles: everyone, Title: "Emails"},
	{Path: PathAdminReleases, AllowedRoles: admins, Title: "Releases (admin)"},
	{Path: PathAdminCampaigns, AllowedRoles: admins, Title: "Campaigns (admin)"},
	{Path: PathAdminExecutions, AllowedRoles: admins, Title: "Executions (admin)"},
	{Path: PathAdminAnomalies, AllowedRoles: admins, Title: "Anomalies (admin)"},
	{Path: PathAdminComments, AllowedRoles: admins, Title: "Comments (admin)"},
}

// Lookup resolves a path to its route. Unmatched paths resolve to the
// public not-found route. Any `/admin/...` path not in the table is
// still admin-only.
func Lookup(path string) Route {
	path = normalize(path)
	for _, r := range Table {
		if r.Path == path {
			return r
		}
	}
	if strings.HasPrefix(path, "/admin/") {
		return Route{Path: path, AllowedRoles: admins, Title: "Admin"}
	}
	return Route{Path: PathNotFound, Title: "Not found"}
}

func normalize(path string) string {
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// Decision is the outcome of evaluating a navigation attempt.
type Decision int

const (
	// DecisionLoading means identity resolution is still in flight;
	// render a neutral placeholder.
	DecisionLoading Decision = iota

	// DecisionAllowed renders the requested screen.
	DecisionAllowed

	// DecisionRedirectLogin means no identity is present.
	DecisionRedirectLogin

	// DecisionRedirectUnauthorized means the identity's role is not
	// in the route's allowed set.
	DecisionRedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionAllowed:
		return "allowed"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectUnauthorized:
		return "redirect-unauthorized"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Evaluate applies the role policy to a navigation attempt. It is a
// pure function of (route, state): no prior decision is cached, so a
// re-login as a different user re-evaluates every guarded route.
func Evaluate(route Route, st session.State) Decision {
	if route.Public() {
		return DecisionAllowed
	}
	if st.Resolving {
		return DecisionLoading
	}
	if st.User == nil {
		return DecisionRedirectLogin
	}
	if !route.allows(st.User.Role) {
		return DecisionRedirectUnauthorized
	}
	return DecisionAllowed
}

// HomePath maps a role to its landing screen. The mapping is total:
// an unrecognized role lands on the unauthorized screen instead of a
// blank one.
func HomePath(role model.Role) string {
	switch role {
	case model.RoleAdmin:
		return PathAdminExecutions
	case model.RoleManager:
		return PathExecution
	case model.RoleTester:
		return PathTesterDashboard
	default:
		return PathUnauthorized
	}
}

// Target is a resolved navigation destination.
type Target struct {
	Path string

	// Highlight is the row the destination screen should emphasize,
	// zero when not applicable.
	Highlight int64
}

// Query renders the destination as a path with its highlight query
// parameter, matching the backend dashboard's URL convention.
func (t Target) Query() string {
	if t.Highlight == 0 {
		return t.Path
	}
	return fmt.Sprintf("%s?highlight=%d", t.Path, t.Highlight)
}

// NotificationTarget maps a notification to the screen a click should
// open. ok is false for unrecognized types: the click stays on the
// current screen and never panics.
func NotificationTarget(n model.Notification) (Target, bool) {
	switch n.Type {
	case model.NotificationCampaignAssignment:
		return Target{Path: PathTesterDashboard}, true
	case model.NotificationExecutionValidated:
		return Target{Path: PathAdminExecutions, Highlight: n.RelatedObjectID}, true
	case model.NotificationAnomalyReported:
		return Target{Path: PathAdminAnomalies, Highlight: n.RelatedObjectID}, true
	case model.NotificationCommentPosted:
		return Target{Path: PathAdminComments, Highlight: n.RelatedObjectID}, true
	default:
		return Target{}, false
	}
}
