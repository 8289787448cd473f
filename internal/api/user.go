package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/devtracker/devtracker-cli/internal/errors"
)

// GetUser fetches a user by id.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	path := fmt.Sprintf("/user/%d", id)
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &user, true); err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.New(errors.ErrCodeUserNotFound, errors.KindNotFound, fmt.Sprintf("user %d not found", id))
		}
		return nil, err
	}
	return &user, nil
}
