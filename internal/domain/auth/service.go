package auth

import (
	"context"
)

type SessionService interface {
	Login(ctx context.Context, creds Credentials) error
	Logout(ctx context.Context) error
	Restore(ctx context.Context) error
	ClearError()
	HandleAuthFailure(ctx context.Context)

	Snapshot() Session
	// Ready is closed once Restore has finished, successfully or not.
	Ready() <-chan struct{}
	Subscribe() (<-chan Session, func())
}
