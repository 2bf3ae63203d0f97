package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/insuretm/console/internal/model"
)

// Query is an optional set of list filters passed through as query
// parameters (e.g. {"campaign": "3"}).
type Query map[string]string

func (q Query) encode() string {
	if len(q) == 0 {
		return ""
	}
	v := url.Values{}
	for k, val := range q {
		v.Set(k, val)
	}
	return "?" + v.Encode()
}

// --- Projects (releases) ---

func (c *Client) ListProjects(ctx context.Context, q Query) ([]model.Project, error) {
	var projects []model.Project
	if err := c.get(ctx, "/projects/"+q.encode(), &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, name, description string) (*model.Project, error) {
	body := map[string]string{"name": name, "description": description}
	var project model.Project
	if err := c.post(ctx, "/projects/", body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id int64, fields map[string]interface{}) error {
	return c.patch(ctx, fmt.Sprintf("/projects/%d/", id), fields, nil)
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/projects/%d/", id))
}

// --- Campaigns ---

func (c *Client) ListCampaigns(ctx context.Context, q Query) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	if err := c.get(ctx, "/campaigns/"+q.encode(), &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// CreateCampaign uploads a new campaign with its referentiel file. The
// backend expects multipart form data because of the attachment.
func (c *Client) CreateCampaign(
	ctx context.Context,
	projectID int64,
	title string,
	fields map[string]string,
	referentiel *File,
) (*model.Campaign, error) {
	form := map[string]string{
		"project": strconv.FormatInt(projectID, 10),
		"title":   title,
	}
	for k, v := range fields {
		form[k] = v
	}

	var files []File
	if referentiel != nil {
		files = append(files, *referentiel)
	}

	var campaign model.Campaign
	err := c.doMultipart(ctx, http.MethodPost, "/campaigns/", form, files, &campaign)
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (c *Client) UpdateCampaign(ctx context.Context, id int64, fields map[string]interface{}) error {
	return c.patch(ctx, fmt.Sprintf("/campaigns/%d/", id), fields, nil)
}

func (c *Client) DeleteCampaign(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/campaigns/%d/", id))
}

// --- Executions (backend resource name: testcases) ---

func (c *Client) ListExecutions(ctx context.Context, q Query) ([]model.Execution, error) {
	var executions []model.Execution
	if err := c.get(ctx, "/testcases/"+q.encode(), &executions); err != nil {
		return nil, err
	}
	return executions, nil
}

// UpdateExecution patches an execution row, optionally attaching a
// proof file (multipart when present).
func (c *Client) UpdateExecution(
	ctx context.Context,
	id int64,
	fields map[string]string,
	proof *File,
) error {
	path := fmt.Sprintf("/testcases/%d/", id)
	if proof == nil {
		body := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			body[k] = v
		}
		return c.patch(ctx, path, body, nil)
	}
	return c.doMultipart(ctx, http.MethodPatch, path, fields, []File{*proof}, nil)
}

func (c *Client) DeleteExecution(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/testcases/%d/", id))
}

// --- Anomalies ---

func (c *Client) ListAnomalies(ctx context.Context, q Query) ([]model.Anomaly, error) {
	var anomalies []model.Anomaly
	if err := c.get(ctx, "/anomalies/"+q.encode(), &anomalies); err != nil {
		return nil, err
	}
	return anomalies, nil
}

// CreateAnomaly files a new anomaly against an execution, with an
// optional proof image.
func (c *Client) CreateAnomaly(
	ctx context.Context,
	testCaseID int64,
	title, description, criticality string,
	proof *File,
) (*model.Anomaly, error) {
	form := map[string]string{
		"test_case":   strconv.FormatInt(testCaseID, 10),
		"titre":       title,
		"description": description,
		"criticite":   criticality,
	}

	var files []File
	if proof != nil {
		files = append(files, *proof)
	}

	var anomaly model.Anomaly
	err := c.doMultipart(ctx, http.MethodPost, "/anomalies/", form, files, &anomaly)
	if err != nil {
		return nil, err
	}
	return &anomaly, nil
}

func (c *Client) UpdateAnomaly(ctx context.Context, id int64, fields map[string]interface{}) error {
	return c.patch(ctx, fmt.Sprintf("/anomalies/%d/", id), fields, nil)
}

func (c *Client) DeleteAnomaly(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/anomalies/%d/", id))
}

// --- Comments ---

func (c *Client) ListComments(ctx context.Context, q Query) ([]model.Comment, error) {
	var comments []model.Comment
	if err := c.get(ctx, "/comments/"+q.encode(), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment posts a comment on an execution, with an optional
// attachment.
func (c *Client) CreateComment(
	ctx context.Context,
	testCaseID int64,
	message string,
	attachment *File,
) (*model.Comment, error) {
	form := map[string]string{
		"test_case": strconv.FormatInt(testCaseID, 10),
		"message":   message,
	}

	var files []File
	if attachment != nil {
		files = append(files, *attachment)
	}

	var comment model.Comment
	err := c.doMultipart(ctx, http.MethodPost, "/comments/", form, files, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/comments/%d/", id))
}

// --- Emails ---

func (c *Client) ListEmails(ctx context.Context, q Query) ([]model.Email, error) {
	var emails []model.Email
	if err := c.get(ctx, "/emails/"+q.encode(), &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// SendEmail sends an internal message, with an optional attachment.
func (c *Client) SendEmail(
	ctx context.Context,
	recipientID int64,
	subject, body string,
	attachment *File,
) (*model.Email, error) {
	form := map[string]string{
		"recipient": strconv.FormatInt(recipientID, 10),
		"subject":   subject,
		"body":      body,
	}

	var files []File
	if attachment != nil {
		files = append(files, *attachment)
	}

	var email model.Email
	err := c.doMultipart(ctx, http.MethodPost, "/emails/", form, files, &email)
	if err != nil {
		return nil, err
	}
	return &email, nil
}

// MarkEmailRead acknowledges an email.
func (c *Client) MarkEmailRead(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/emails/%d/mark_read/", id), nil, nil)
}
