package api

import (
	"context"
	"net/http"

	"github.com/devtracker/devtracker-cli/internal/errors"
)

// CreateOrganization creates a new organization owned by ownerID.
//
// The returned passcode is the only credential for joining; the creator is
// not a member until a join with that passcode succeeds.
func (c *Client) CreateOrganization(ctx context.Context, name, description string, ownerID int64) (*Organization, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"ownerId":     ownerID,
	}

	var org Organization
	if err := c.call(ctx, http.MethodPost, "/organization/create", nil, body, &org, true); err != nil {
		if errors.IsValidation(err) {
			return nil, errors.Wrap(errors.ErrCodeOrgCreateFailed, errors.KindValidation, "organization creation rejected", err)
		}
		return nil, err
	}

	return &org, nil
}

// JoinOrganization makes userID a member of orgID, authorized by passcode.
//
// A 403 means the passcode or id is wrong; a 404 means the organization
// does not exist. Both are surfaced distinctly so the caller can message
// them apart from generic failures.
func (c *Client) JoinOrganization(ctx context.Context, orgID int64, passcode string, userID int64) error {
	body := map[string]any{
		"orgId":    orgID,
		"passcode": passcode,
		"userId":   userID,
	}

	if err := c.call(ctx, http.MethodPost, "/organization/join", nil, body, nil, true); err != nil {
		switch {
		case errors.IsAuthorization(err):
			return errors.NewJoinDeniedError(orgID)
		case errors.IsNotFound(err):
			return errors.NewOrgNotFoundError(orgID)
		default:
			return err
		}
	}
	return nil
}
