package api

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/insuretm/console/internal/model"
)

// ListNotifications fetches the current user's notifications. The
// backend occasionally returns a non-list body (pagination envelope,
// error object); anything that is not a JSON array is treated as an
// empty list rather than an error.
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/notifications/", &raw); err != nil {
		return nil, err
	}

	var notifications []model.Notification
	if err := json.Unmarshal(raw, &notifications); err != nil {
		c.log.Warn("notification list had unexpected shape, treating as empty",
			zap.Error(err),
		)
		return []model.Notification{}, nil
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	return notifications, nil
}

// MarkNotificationRead acknowledges a single notification.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/notifications/%d/mark_read/", id), nil, nil)
}

// MarkAllNotificationsRead acknowledges every unread notification.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.post(ctx, "/notifications/mark_all_read/", nil, nil)
}
