// Package onboarding drives the signup → login → organization-resolution
// flow. It is the only component that writes a token into the session store.
//
// One Flow value is one onboarding attempt: created fresh, advanced by
// discrete user submissions, and discarded once the user is authenticated
// and organization-bound. All intermediate credentials (the pending token
// and user id from a NO_ORG login) live in memory only.
package onboarding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devtracker/devtracker-cli/internal/api"
	"github.com/devtracker/devtracker-cli/internal/errors"
	"github.com/devtracker/devtracker-cli/internal/log"
	"github.com/devtracker/devtracker-cli/internal/session"
)

// Stage is a discrete step in the onboarding flow.
type Stage int

const (
	// StageSignup collects account details and registers them.
	StageSignup Stage = iota
	// StageLogin authenticates and learns the org-membership status.
	StageLogin
	// StageResolveOrg joins or creates an organization.
	StageResolveOrg
	// StageComplete is reached only through a successful join.
	StageComplete
)

// String returns the string representation of the stage
func (s Stage) String() string {
	switch s {
	case StageSignup:
		return "signup"
	case StageLogin:
		return "login"
	case StageResolveOrg:
		return "resolve_org"
	case StageComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Service is the slice of the API the flow drives.
//
// WithToken binds an explicit bearer token; the flow uses it to attach the
// pending login token to organization calls before any session exists.
type Service interface {
	Signup(ctx context.Context, req api.SignupRequest) error
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	CreateOrganization(ctx context.Context, name, description string, ownerID int64) (*api.Organization, error)
	JoinOrganization(ctx context.Context, orgID int64, passcode string, userID int64) error
	WithToken(token string) Service
}

type clientService struct {
	c *api.Client
}

func (s clientService) Signup(ctx context.Context, req api.SignupRequest) error {
	return s.c.Signup(ctx, req)
}

func (s clientService) Login(ctx context.Context, email, password string) (*api.LoginResult, error) {
	return s.c.Login(ctx, email, password)
}

func (s clientService) CreateOrganization(ctx context.Context, name, description string, ownerID int64) (*api.Organization, error) {
	return s.c.CreateOrganization(ctx, name, description, ownerID)
}

func (s clientService) JoinOrganization(ctx context.Context, orgID int64, passcode string, userID int64) error {
	return s.c.JoinOrganization(ctx, orgID, passcode, userID)
}

func (s clientService) WithToken(token string) Service {
	return clientService{c: s.c.WithToken(token)}
}

// Wrap adapts an api.Client to the Service interface.
func Wrap(c *api.Client) Service {
	return clientService{c: c}
}

// SignupForm is the input of the signup stage.
type SignupForm struct {
	Name       string
	Email      string
	Password   string
	ExternalID string // optional; a fallback id is generated when blank
	Position   string
}

// Flow is the onboarding state machine.
//
// Submissions are issued one at a time: the busy flag is set before every
// network call and cleared on all exit paths, so a submit control cannot be
// re-triggered mid-flight.
type Flow struct {
	id       string
	svc      Service
	sessions session.Store
	logger   *log.Logger

	mu    sync.Mutex
	stage Stage
	busy  bool

	// pending credentials from a NO_ORG login; never persisted until the
	// organization is resolved.
	pendingToken  string
	pendingUserID int64

	// createdOrg echoes a successful create whose follow-up join failed,
	// so the user can retry the join with the same passcode.
	createdOrg *api.Organization

	// lastCreated records the most recent successful create, surviving
	// flow completion so callers can report the id and passcode.
	lastCreated *api.Organization

	authenticated bool
}

// NewFlow creates a flow starting at the signup stage.
func NewFlow(svc Service, sessions session.Store, logger *log.Logger) *Flow {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	id := uuid.New().String()
	return &Flow{
		id:       id,
		svc:      svc,
		sessions: sessions,
		logger:   logger.With("onboarding_attempt", id),
		stage:    StageSignup,
	}
}

// NewLoginFlow creates a flow starting at the login stage, for users who
// already have an account.
func NewLoginFlow(svc Service, sessions session.Store, logger *log.Logger) *Flow {
	f := NewFlow(svc, sessions, logger)
	f.stage = StageLogin
	return f
}

// AttemptID returns the unique id of this onboarding attempt.
func (f *Flow) AttemptID() string {
	return f.id
}

// Stage returns the current stage.
func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

// Busy reports whether a submission is in flight.
func (f *Flow) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Authenticated reports whether the flow has persisted a session.
// True either after a login that needed no org resolution, or after
// reaching StageComplete.
func (f *Flow) Authenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

// PendingUserID returns the user id from a NO_ORG login, valid during
// StageResolveOrg.
func (f *Flow) PendingUserID() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingUserID
}

// CreatedOrg returns the organization from a create whose follow-up join
// failed, if any. The user can retry joining with its passcode.
func (f *Flow) CreatedOrg() *api.Organization {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createdOrg
}

// LastCreatedOrg returns the most recent successfully created organization,
// including after the flow completed. Nil if no create succeeded.
func (f *Flow) LastCreatedOrg() *api.Organization {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCreated
}

// begin validates the stage and claims the busy flag.
func (f *Flow) begin(want Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.busy {
		return errors.New(errors.ErrCodeAuthBusy, errors.KindValidation, "a submission is already in flight")
	}
	if f.stage != want {
		return errors.New(errors.ErrCodeAuthWrongStage, errors.KindValidation,
			fmt.Sprintf("cannot submit %s from stage %s", want, f.stage))
	}
	f.busy = true
	return nil
}

func (f *Flow) end() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// FallbackExternalID generates the unique external id used when the signup
// form leaves the id blank.
func FallbackExternalID() string {
	return fmt.Sprintf("user-%d", time.Now().UnixMilli())
}

// SubmitSignup registers a new account and advances to the login stage.
//
// Signup never authenticates: the flow always requires an explicit login
// afterwards, because only login returns the token and the org-membership
// status that decide the next branch. On failure the flow stays at signup
// and the error is surfaced.
func (f *Flow) SubmitSignup(ctx context.Context, form SignupForm) error {
	if err := f.begin(StageSignup); err != nil {
		return err
	}
	defer f.end()

	req := api.SignupRequest{
		UserName: form.Name,
		Email:    form.Email,
		Password: form.Password,
		UUID:     form.ExternalID,
		Position: form.Position,
	}
	if req.UUID == "" {
		req.UUID = FallbackExternalID()
	}
	if req.Position == "" {
		req.Position = "DEVELOPER"
	}

	if err := f.svc.Signup(ctx, req); err != nil {
		f.logger.WithError(err).Debug("signup rejected")
		return err
	}

	f.mu.Lock()
	f.stage = StageLogin
	f.mu.Unlock()

	f.logger.Info("signup accepted", "external_id", req.UUID)
	return nil
}

// SubmitLogin authenticates. A NO_ORG status advances to organization
// resolution, holding the token and user id in memory without persisting
// them. Any other recognized status persists the token and ends the flow
// authenticated. On failure the flow stays at login.
func (f *Flow) SubmitLogin(ctx context.Context, email, password string) error {
	if err := f.begin(StageLogin); err != nil {
		return err
	}
	defer f.end()

	result, err := f.svc.Login(ctx, email, password)
	if err != nil {
		f.logger.WithError(err).Debug("login rejected")
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if result.Status == api.LoginNoOrg {
		f.pendingToken = result.Token
		f.pendingUserID = result.UserID
		f.stage = StageResolveOrg
		f.logger.Info("login ok, organization required", "user_id", result.UserID)
		return nil
	}

	if err := f.sessions.SetToken(result.Token); err != nil {
		return err
	}
	f.authenticated = true
	f.logger.Info("login ok", "user_id", result.UserID)
	return nil
}

// SubmitJoin joins an existing organization with a user-supplied id and
// passcode. On success the pending token becomes the persisted session and
// the flow completes; on failure it stays at organization resolution.
func (f *Flow) SubmitJoin(ctx context.Context, orgID int64, passcode string) error {
	if err := f.begin(StageResolveOrg); err != nil {
		return err
	}
	defer f.end()

	return f.join(ctx, orgID, passcode)
}

// SubmitCreate creates an organization and immediately joins it with the
// returned id and passcode, so "create" implies "become a member".
//
// The two calls are not transactional on the backend. If the create
// succeeds but the join fails, the flow stays at organization resolution
// and surfaces the join error; the organization exists, the user is not a
// member, and re-joining with the echoed passcode recovers.
func (f *Flow) SubmitCreate(ctx context.Context, name, description string) error {
	if err := f.begin(StageResolveOrg); err != nil {
		return err
	}
	defer f.end()

	f.mu.Lock()
	token := f.pendingToken
	userID := f.pendingUserID
	f.mu.Unlock()

	org, err := f.svc.WithToken(token).CreateOrganization(ctx, name, description, userID)
	if err != nil {
		f.logger.WithError(err).Debug("organization create rejected")
		return err
	}

	f.mu.Lock()
	f.createdOrg = org
	f.lastCreated = org
	f.mu.Unlock()

	f.logger.Info("organization created", "org_id", org.OrgID)
	return f.join(ctx, org.OrgID, org.JoinPasscode)
}

// join performs the join call and, on success, completes the flow.
func (f *Flow) join(ctx context.Context, orgID int64, passcode string) error {
	f.mu.Lock()
	token := f.pendingToken
	userID := f.pendingUserID
	f.mu.Unlock()

	if err := f.svc.WithToken(token).JoinOrganization(ctx, orgID, passcode, userID); err != nil {
		f.logger.WithError(err).Debug("organization join rejected", "org_id", orgID)
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.sessions.SetToken(token); err != nil {
		return err
	}
	f.stage = StageComplete
	f.authenticated = true
	f.createdOrg = nil
	f.logger.Info("organization joined", "org_id", orgID, "user_id", userID)
	return nil
}
