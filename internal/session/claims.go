package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the subset of the bearer token payload the client reads.
//
// The token is decoded without signature verification: the client has no key
// material and the decoded id is only a UI hint. The backend authorizes every
// call independently; this decode is not a security boundary.
type tokenClaims struct {
	jwt.RegisteredClaims

	UserID int64 `json:"userId"`
}

// DecodeUserID extracts the userId claim from a bearer token.
//
// Any token that is not well-formed JWT (bad segment count, invalid
// base64url, invalid JSON) or that carries no userId claim yields false.
// Malformed input must never escape as a panic or error.
func DecodeUserID(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}

	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, false
	}

	if claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}
