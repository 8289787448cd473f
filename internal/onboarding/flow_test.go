package onboarding

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtracker/devtracker-cli/internal/api"
	"github.com/devtracker/devtracker-cli/internal/errors"
	"github.com/devtracker/devtracker-cli/internal/session"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeBackend records calls and scripts responses shared across WithToken
// clones, mirroring how the real client clones around one transport.
type fakeBackend struct {
	signupErr   error
	loginResult *api.LoginResult
	loginErr    error
	createdOrg  *api.Organization
	createErr   error
	joinErr     error

	signupReqs  []api.SignupRequest
	joinTokens  []string
	joinOrgIDs  []int64
	joinCodes   []string
	joinUserIDs []int64
	createToken string

	// loginGate, when set, blocks Login until released.
	loginGate chan struct{}
}

type fakeService struct {
	*fakeBackend
	token string
}

func (s fakeService) Signup(ctx context.Context, req api.SignupRequest) error {
	s.fakeBackend.signupReqs = append(s.fakeBackend.signupReqs, req)
	return s.signupErr
}

func (s fakeService) Login(ctx context.Context, email, password string) (*api.LoginResult, error) {
	if s.loginGate != nil {
		<-s.loginGate
	}
	return s.loginResult, s.loginErr
}

func (s fakeService) CreateOrganization(ctx context.Context, name, description string, ownerID int64) (*api.Organization, error) {
	s.fakeBackend.createToken = s.token
	return s.createdOrg, s.createErr
}

func (s fakeService) JoinOrganization(ctx context.Context, orgID int64, passcode string, userID int64) error {
	s.fakeBackend.joinTokens = append(s.fakeBackend.joinTokens, s.token)
	s.fakeBackend.joinOrgIDs = append(s.fakeBackend.joinOrgIDs, orgID)
	s.fakeBackend.joinCodes = append(s.fakeBackend.joinCodes, passcode)
	s.fakeBackend.joinUserIDs = append(s.fakeBackend.joinUserIDs, userID)
	return s.joinErr
}

func (s fakeService) WithToken(token string) Service {
	return fakeService{fakeBackend: s.fakeBackend, token: token}
}

func newTestFlow(t *testing.T, backend *fakeBackend) (*Flow, session.Store) {
	t.Helper()
	store := session.NewFileStore(t.TempDir())
	return NewFlow(fakeService{fakeBackend: backend}, store, nil), store
}

func TestSubmitSignup_AdvancesToLogin(t *testing.T) {
	backend := &fakeBackend{}
	flow, _ := newTestFlow(t, backend)

	err := flow.SubmitSignup(context.Background(), SignupForm{
		Name:       "Ada",
		Email:      "ada@example.com",
		Password:   "secret",
		ExternalID: "ada-1",
		Position:   "MANAGER",
	})
	require.NoError(t, err)

	assert.Equal(t, StageLogin, flow.Stage())
	require.Len(t, backend.signupReqs, 1)
	assert.Equal(t, "ada-1", backend.signupReqs[0].UUID)
	assert.Equal(t, "MANAGER", backend.signupReqs[0].Position)
}

func TestSubmitSignup_GeneratesFallbackID(t *testing.T) {
	backend := &fakeBackend{}
	flow, _ := newTestFlow(t, backend)

	err := flow.SubmitSignup(context.Background(), SignupForm{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	require.Len(t, backend.signupReqs, 1)
	assert.Regexp(t, regexp.MustCompile(`^user-\d+$`), backend.signupReqs[0].UUID)
	assert.Equal(t, "DEVELOPER", backend.signupReqs[0].Position)
}

func TestSubmitSignup_FailureStaysAtSignup(t *testing.T) {
	backend := &fakeBackend{
		signupErr: errors.New(errors.ErrCodeAuthSignupRejected, errors.KindValidation, "taken"),
	}
	flow, _ := newTestFlow(t, backend)

	err := flow.SubmitSignup(context.Background(), SignupForm{Name: "a", Email: "b", Password: "c"})
	require.Error(t, err)
	assert.Equal(t, StageSignup, flow.Stage())
	assert.False(t, flow.Authenticated())
}

func TestSubmitLogin_SuccessPersistsToken(t *testing.T) {
	backend := &fakeBackend{
		loginResult: &api.LoginResult{Status: api.LoginSuccess, Token: "tok-1", UserID: 5},
	}
	flow, store := newTestFlow(t, backend)
	flow.stage = StageLogin

	require.NoError(t, flow.SubmitLogin(context.Background(), "a@b.c", "pw"))

	assert.True(t, flow.Authenticated())
	assert.Equal(t, StageLogin, flow.Stage(), "direct success never visits organization resolution")

	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestSubmitLogin_NoOrgHoldsTokenInMemory(t *testing.T) {
	backend := &fakeBackend{
		loginResult: &api.LoginResult{Status: api.LoginNoOrg, Token: "pending-tok", UserID: 9},
	}
	flow, store := newTestFlow(t, backend)
	flow.stage = StageLogin

	require.NoError(t, flow.SubmitLogin(context.Background(), "a@b.c", "pw"))

	assert.Equal(t, StageResolveOrg, flow.Stage())
	assert.False(t, flow.Authenticated())
	assert.Equal(t, int64(9), flow.PendingUserID())

	_, ok := store.Token()
	assert.False(t, ok, "pending token must not be persisted before the org is resolved")
}

func TestSubmitLogin_FailureStaysAtLogin(t *testing.T) {
	backend := &fakeBackend{
		loginErr: errors.New(errors.ErrCodeAuthLoginFailed, errors.KindValidation, "bad credentials"),
	}
	flow, store := newTestFlow(t, backend)
	flow.stage = StageLogin

	err := flow.SubmitLogin(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	assert.Equal(t, StageLogin, flow.Stage())

	_, ok := store.Token()
	assert.False(t, ok)
}

func TestSubmitJoin_SuccessCompletesFlow(t *testing.T) {
	backend := &fakeBackend{
		loginResult: &api.LoginResult{Status: api.LoginNoOrg, Token: "pending-tok", UserID: 9},
	}
	flow, store := newTestFlow(t, backend)
	flow.stage = StageLogin
	require.NoError(t, flow.SubmitLogin(context.Background(), "a@b.c", "pw"))

	require.NoError(t, flow.SubmitJoin(context.Background(), 42, "passcode"))

	assert.Equal(t, StageComplete, flow.Stage())
	assert.True(t, flow.Authenticated())

	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "pending-tok", token)

	require.Len(t, backend.joinTokens, 1)
	assert.Equal(t, "pending-tok", backend.joinTokens[0], "join must carry the pending token")
	assert.Equal(t, int64(42), backend.joinOrgIDs[0])
	assert.Equal(t, int64(9), backend.joinUserIDs[0])
}

func TestSubmitJoin_DeniedStaysAtResolveOrg(t *testing.T) {
	backend := &fakeBackend{
		loginResult: &api.LoginResult{Status: api.LoginNoOrg, Token: "pending-tok", UserID: 9},
		joinErr:     errors.NewJoinDeniedError(42),
	}
	flow, store := newTestFlow(t, backend)
	flow.stage = StageLogin
	require.NoError(t, flow.SubmitLogin(context.Background(), "a@b.c", "pw"))

	err := flow.SubmitJoin(context.Background(), 42, "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsAuthorization(err))

	assert.Equal(t, StageResolveOrg, flow.Stage())
	assert.False(t, flow.Authenticated())
	_, ok := store.Token()
	assert.False(t, ok)
}

func TestSubmitCreate_AutoJoins(t *testing.T) {
	backend := &fakeBackend{
		loginResult: &api.LoginResult{Status: api.LoginNoOrg, Token: "pending-tok", UserID: 9},
		createdOrg:  &api.Organization{OrgID: 7, JoinPasscode: "pc-7"},
	}
	flow, store := newTestFlow(t, backend)
	flow.stage = StageLogin
	require.NoError(t, flow.SubmitLogin(context.Background(), "a@b.c", "pw"))

	require.NoError(t, flow.SubmitCreate(context.Background(), "Acme", "desc"))

	assert.Equal(t, StageComplete, flow.Stage())
	assert.True(t, flow.Authenticated())
	assert.Equal(t, "pending-tok", backend.createToken, "create must carry the pending token")

	require.Len(t, backend.joinOrgIDs, 1)
	assert.Equal(t, int64(7), backend.joinOrgIDs[0])
	assert.Equal(t, "pc-7", backend.joinCodes[0], "auto-join uses the returned passcode")

	token, ok := store.Token()
	assert.True(t, ok)
	assert.Equal(t, "pending-tok", token)

	assert.Nil(t, flow.CreatedOrg(), "retry echo is cleared on success")
	require.NotNil(t, flow.LastCreatedOrg())
	assert.Equal(t, int64(7), flow.LastCreatedOrg().OrgID)
}

func TestSubmitCreate_JoinFailureKeepsEcho(t *testing.T) {
	backend := &fakeBackend{
		loginResult: &api.LoginResult{Status: api.LoginNoOrg, Token: "pending-tok", UserID: 9},
		createdOrg:  &api.Organization{OrgID: 7, JoinPasscode: "pc-7"},
		joinErr:     errors.NewJoinDeniedError(7),
	}
	flow, store := newTestFlow(t, backend)
	flow.stage = StageLogin
	require.NoError(t, flow.SubmitLogin(context.Background(), "a@b.c", "pw"))

	err := flow.SubmitCreate(context.Background(), "Acme", "desc")
	require.Error(t, err)

	assert.Equal(t, StageResolveOrg, flow.Stage())
	assert.False(t, flow.Authenticated())
	_, ok := store.Token()
	assert.False(t, ok)

	echo := flow.CreatedOrg()
	require.NotNil(t, echo, "created org is echoed so the join can be retried")
	assert.Equal(t, int64(7), echo.OrgID)
	assert.Equal(t, "pc-7", echo.JoinPasscode)

	// Retrying the join with the echoed passcode recovers.
	backend.joinErr = nil
	require.NoError(t, flow.SubmitJoin(context.Background(), echo.OrgID, echo.JoinPasscode))
	assert.Equal(t, StageComplete, flow.Stage())
}

func TestSubmit_WrongStageRejected(t *testing.T) {
	backend := &fakeBackend{}
	flow, _ := newTestFlow(t, backend)

	err := flow.SubmitJoin(context.Background(), 1, "pc")
	require.Error(t, err)

	var clientErr *errors.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, errors.ErrCodeAuthWrongStage, clientErr.Code)

	err = flow.SubmitLogin(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, errors.ErrCodeAuthWrongStage, clientErr.Code)
}

func TestSubmit_BusyRejected(t *testing.T) {
	backend := &fakeBackend{
		loginGate:   make(chan struct{}),
		loginResult: &api.LoginResult{Status: api.LoginSuccess, Token: "tok"},
	}
	flow, _ := newTestFlow(t, backend)
	flow.stage = StageLogin

	done := make(chan error, 1)
	go func() {
		done <- flow.SubmitLogin(context.Background(), "a@b.c", "pw")
	}()

	// Wait until the first submission is in flight.
	require.Eventually(t, flow.Busy, waitFor, tick)

	err := flow.SubmitLogin(context.Background(), "a@b.c", "pw")
	require.Error(t, err)

	var clientErr *errors.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, errors.ErrCodeAuthBusy, clientErr.Code)

	close(backend.loginGate)
	require.NoError(t, <-done)
	assert.False(t, flow.Busy())
}
