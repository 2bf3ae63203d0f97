package api

import (
	"context"
	"fmt"

	"github.com/insuretm/console/internal/model"
)

// GetUser fetches a single user record by id.
func (c *Client) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := c.get(ctx, fmt.Sprintf("/users/%d/", id), &user); err != nil {
		return nil, err
	}
	user.Role = model.ParseRole(string(user.Role))
	return &user, nil
}

// ListUsers fetches all user accounts (admin screens).
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.get(ctx, "/users/", &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Role = model.ParseRole(string(users[i].Role))
	}
	return users, nil
}

// UserUpdate carries the mutable fields of a user account.
type UserUpdate struct {
	Email     *string `json:"email,omitempty"`
	Role      *string `json:"role,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// UpdateUser patches a user account.
func (c *Client) UpdateUser(ctx context.Context, id int64, update UserUpdate) (*model.User, error) {
	var user model.User
	if err := c.patch(ctx, fmt.Sprintf("/users/%d/", id), update, &user); err != nil {
		return nil, err
	}
	user.Role = model.ParseRole(string(user.Role))
	return &user, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.del(ctx, fmt.Sprintf("/users/%d/", id))
}
