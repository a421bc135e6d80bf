package auth

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionCorrupted = errors.New("stored session is corrupted")
	ErrTokenExpired     = errors.New("token has expired")
	ErrEmptyToken       = errors.New("backend returned an empty token")
)

// MsgLoginFailed is shown when the backend gives no reason for a failed login.
const MsgLoginFailed = "Login failed"
