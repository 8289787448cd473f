package api

// LoginStatus is the org-membership status returned by the login endpoint.
type LoginStatus string

const (
	// LoginSuccess means the user is authenticated and belongs to an organization.
	LoginSuccess LoginStatus = "SUCCESS"
	// LoginNoOrg means the credentials are valid but the user belongs to no organization.
	LoginNoOrg LoginStatus = "NO_ORG"
)

// LoginResult is the response of POST /api/auth/login.
type LoginResult struct {
	Status LoginStatus `json:"status"`
	Token  string      `json:"token"`
	UserID int64       `json:"userId"`
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	UUID     string `json:"uuId"`
	Position string `json:"position"`
}

// Organization is the response of POST /organization/create.
//
// Creating an organization does not make the creator a member; membership
// requires a subsequent join with the returned passcode.
type Organization struct {
	OrgID        int64  `json:"orgId"`
	JoinPasscode string `json:"joinPasscode"`
}

// Project is a project object as returned by the project endpoints.
type Project struct {
	ProjectID     int64   `json:"projectId"`
	ProjectName   string  `json:"projectName"`
	ProjectDesc   string  `json:"projectDesc"`
	Status        string  `json:"status"`
	Deadline      string  `json:"deadline"`
	TeamLeadID    int64   `json:"teamLeadId"`
	TeamMemberIDs []int64 `json:"teamMemberIds"`
}

// User is a user object as returned by GET /user/{id}.
type User struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	UUID     string `json:"uuid"`
	Position string `json:"position"`
}
