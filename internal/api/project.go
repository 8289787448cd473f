package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/devtracker/devtracker-cli/internal/errors"
)

// ListProjects fetches every project visible to the authenticated user.
//
// An empty organization legitimately returns an empty list; callers must
// not confuse that with the authorization failure this returns when the
// session is absent or rejected.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.call(ctx, http.MethodGet, "/project/all", nil, nil, &projects, true); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// SearchProjects fetches projects whose name matches keyword.
//
// The caller owns supersede discipline: cancel the context of a stale
// request when issuing a newer one for the same purpose.
func (c *Client) SearchProjects(ctx context.Context, keyword string) ([]Project, error) {
	query := map[string]string{"keyword": keyword}

	var projects []Project
	if err := c.call(ctx, http.MethodGet, "/project/search", query, nil, &projects, true); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// GetProject fetches a single project by id.
func (c *Client) GetProject(ctx context.Context, id int64) (*Project, error) {
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ProjectID == id {
			return &projects[i], nil
		}
	}
	return nil, errors.New(errors.ErrCodeProjectNotFound, errors.KindNotFound, fmt.Sprintf("project %d not found", id)).
		WithSuggestion("Run 'devtracker projects list' to see available projects")
}
