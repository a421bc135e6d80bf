package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/apiclient"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/jwt"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/metrics"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/sse"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/storage"
	"github.com/cmlabs-hris/employee-directory/internal/pkg/validator"
	"golang.org/x/oauth2"
)

// MsgSessionExpired replaces the session error after a forced logout.
const MsgSessionExpired = "Your session has expired, please log in again"

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds auth.Credentials) (auth.LoginResponse, error)
}

type Options struct {
	RestoreMode         auth.RestoreMode
	ClockSkew           time.Duration
	LogoutOnAuthFailure bool
	Logger              *slog.Logger
}

type SessionServiceImpl struct {
	authenticator Authenticator
	storage       storage.KeyValueStorage
	opts          Options
	logger        *slog.Logger
	now           func() time.Time

	mu    sync.Mutex
	state auth.Session

	// ops serializes Login, Logout, Restore and the expiry sweep so their
	// storage writes and final transitions never interleave.
	ops chan struct{}

	hub       *sse.Hub[auth.Session]
	ready     chan struct{}
	readyOnce sync.Once
}

var (
	_ auth.SessionService = (*SessionServiceImpl)(nil)
	_ oauth2.TokenSource  = (*SessionServiceImpl)(nil)
)

// NewSessionService starts unauthenticated and loading; Restore must be
// called once to settle the initial state.
func NewSessionService(authenticator Authenticator, kv storage.KeyValueStorage, opts Options) *SessionServiceImpl {
	if opts.RestoreMode == "" {
		opts.RestoreMode = auth.RestoreTrust
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionServiceImpl{
		authenticator: authenticator,
		storage:       kv,
		opts:          opts,
		logger:        logger.With(slog.String("store", "session")),
		now:           time.Now,
		state: auth.Session{
			Status:  auth.StatusUnauthenticated,
			Loading: true,
		},
		ops:   make(chan struct{}, 1),
		hub:   sse.NewHub[auth.Session](),
		ready: make(chan struct{}),
	}
}

func (s *SessionServiceImpl) Snapshot() auth.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *SessionServiceImpl) Ready() <-chan struct{} {
	return s.ready
}

func (s *SessionServiceImpl) Subscribe() (<-chan auth.Session, func()) {
	return s.hub.Subscribe()
}

// Token implements oauth2.TokenSource for the protected API calls.
func (s *SessionServiceImpl) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	token := s.state.Token
	s.mu.Unlock()

	if token == "" {
		return nil, auth.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func (s *SessionServiceImpl) Login(ctx context.Context, creds auth.Credentials) error {
	if err := creds.Validate(); err != nil {
		var verrs validator.ValidationErrors
		msg := err.Error()
		if errors.As(err, &verrs) {
			msg = verrs.Messages()
		}
		s.transition(func(st *auth.Session) {
			st.Error = msg
		})
		metrics.ObserveOperation("session", "login", "invalid")
		return err
	}

	if err := s.acquire(ctx); err != nil {
		metrics.ObserveOperation("session", "login", "canceled")
		return err
	}
	defer s.release()

	prev := s.transition(func(st *auth.Session) {
		st.Status = auth.StatusAuthenticating
		st.Loading = true
		st.Error = ""
	})

	resp, err := s.authenticator.Login(ctx, creds)
	if cerr := ctx.Err(); cerr != nil {
		s.transition(func(st *auth.Session) {
			st.Status = statusOf(st.Token)
			st.Loading = false
		})
		metrics.ObserveOperation("session", "login", "canceled")
		return cerr
	}
	if err == nil && resp.Token == "" {
		err = auth.ErrEmptyToken
	}
	if err != nil {
		msg := apiclient.Message(err, auth.MsgLoginFailed)
		s.logger.Warn("login failed",
			slog.String("email", creds.Email),
			slog.String("error", err.Error()),
		)
		if prev.IsAuthenticated {
			if perr := s.clearStorage(ctx); perr != nil {
				s.logger.Error("failed to clear stored session", slog.String("error", perr.Error()))
			}
		}
		s.transition(func(st *auth.Session) {
			*st = auth.Session{Status: auth.StatusUnauthenticated, Error: msg}
		})
		metrics.ObserveOperation("session", "login", "failure")
		return err
	}

	user := resp.User
	if perr := s.persist(ctx, resp.Token, user); perr != nil {
		// The session still works for this process; it just won't survive a restart.
		s.logger.Error("failed to persist session", slog.String("error", perr.Error()))
	}
	s.transition(func(st *auth.Session) {
		*st = auth.Session{
			Token:           resp.Token,
			User:            &user,
			IsAuthenticated: true,
			Status:          auth.StatusAuthenticated,
		}
	})
	s.logger.Info("login succeeded", slog.String("user_id", user.ID))
	metrics.ObserveOperation("session", "login", "success")
	return nil
}

// Logout never calls the backend. Memory is cleared even if storage fails.
func (s *SessionServiceImpl) Logout(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()
	return s.logout(ctx)
}

func (s *SessionServiceImpl) logout(ctx context.Context) error {
	err := s.clearStorage(ctx)
	s.transition(func(st *auth.Session) {
		*st = auth.Session{Status: auth.StatusUnauthenticated}
	})
	metrics.ObserveOperation("session", "logout", "success")
	if err != nil {
		s.logger.Error("failed to clear stored session", slog.String("error", err.Error()))
		return fmt.Errorf("failed to clear stored session: %w", err)
	}
	return nil
}

// Restore rehydrates a stored session. In trust mode the token is accepted
// as is, with no backend call.
func (s *SessionServiceImpl) Restore(ctx context.Context) error {
	defer s.readyOnce.Do(func() { close(s.ready) })

	if err := s.acquire(ctx); err != nil {
		s.transition(func(st *auth.Session) {
			st.Loading = false
		})
		return err
	}
	defer s.release()

	// A login may have started before Restore got the lock; it owns the state now.
	if s.Snapshot().IsAuthenticated {
		s.transition(func(st *auth.Session) {
			st.Loading = false
		})
		metrics.ObserveOperation("session", "restore", "skipped")
		return nil
	}

	token, user, err := s.load(ctx)
	if err == nil && s.opts.RestoreMode == auth.RestoreExpiry {
		err = s.checkExpiry(token)
	}

	if err != nil {
		if errors.Is(err, auth.ErrSessionCorrupted) || errors.Is(err, auth.ErrTokenExpired) {
			s.logger.Warn("discarding stored session", slog.String("error", err.Error()))
			if cerr := s.clearStorage(ctx); cerr != nil {
				s.logger.Error("failed to clear stored session", slog.String("error", cerr.Error()))
			}
			err = nil
		}
		s.transition(func(st *auth.Session) {
			*st = auth.Session{Status: auth.StatusUnauthenticated, Error: st.Error}
		})
		metrics.ObserveOperation("session", "restore", "failure")
		return err
	}

	if token == "" {
		s.transition(func(st *auth.Session) {
			*st = auth.Session{Status: auth.StatusUnauthenticated, Error: st.Error}
		})
		metrics.ObserveOperation("session", "restore", "empty")
		return nil
	}

	s.transition(func(st *auth.Session) {
		*st = auth.Session{
			Token:           token,
			User:            &user,
			IsAuthenticated: true,
			Status:          auth.StatusAuthenticated,
		}
	})
	s.logger.Debug("session restored", slog.String("user_id", user.ID))
	metrics.ObserveOperation("session", "restore", "success")
	return nil
}

func (s *SessionServiceImpl) ClearError() {
	s.transition(func(st *auth.Session) {
		st.Error = ""
	})
}

// HandleAuthFailure is called when a protected request was rejected with
// 401/403. It only logs out when LogoutOnAuthFailure is set.
func (s *SessionServiceImpl) HandleAuthFailure(ctx context.Context) {
	if !s.opts.LogoutOnAuthFailure {
		return
	}
	if err := s.acquire(ctx); err != nil {
		return
	}
	defer s.release()

	if !s.Snapshot().IsAuthenticated {
		return
	}
	s.logger.Info("backend rejected token, logging out")
	if err := s.logout(ctx); err != nil {
		s.logger.Warn("session cleared in memory only", slog.String("error", err.Error()))
	}
	s.transition(func(st *auth.Session) {
		st.Error = MsgSessionExpired
	})
}

// SweepExpired logs out a held session whose token has passed its exp
// claim. It does nothing outside expiry mode, and keeps tokens it cannot read.
func (s *SessionServiceImpl) SweepExpired(ctx context.Context) error {
	if s.opts.RestoreMode != auth.RestoreExpiry {
		return nil
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	token := s.Snapshot().Token

	if !errors.Is(s.checkExpiry(token), auth.ErrTokenExpired) {
		return nil
	}

	s.logger.Info("session token expired, logging out")
	err := s.clearStorage(ctx)
	s.transition(func(st *auth.Session) {
		*st = auth.Session{Status: auth.StatusUnauthenticated, Error: MsgSessionExpired}
	})
	metrics.ObserveOperation("session", "expire", "success")
	if err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}
	return nil
}

// transition replaces the state with a modified copy and returns the state
// as it was before.
func (s *SessionServiceImpl) transition(fn func(st *auth.Session)) auth.Session {
	s.mu.Lock()
	prev := s.state.Clone()
	next := s.state.Clone()
	fn(&next)
	s.state = next

	// Publishing under the lock keeps subscribers in transition order.
	metrics.SetAuthenticated(next.IsAuthenticated)
	s.hub.Publish(next.Clone())
	s.mu.Unlock()
	return prev
}

func (s *SessionServiceImpl) acquire(ctx context.Context) error {
	select {
	case s.ops <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionServiceImpl) release() {
	<-s.ops
}

func (s *SessionServiceImpl) load(ctx context.Context) (string, auth.User, error) {
	flag, err := s.storage.Get(ctx, auth.StorageKeyAuthenticated)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && flag != "true") {
		return "", auth.User{}, nil
	}
	if err != nil {
		return "", auth.User{}, fmt.Errorf("failed to read session flag: %w", err)
	}

	rawUser, err := s.storage.Get(ctx, auth.StorageKeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		return "", auth.User{}, fmt.Errorf("%w: user missing", auth.ErrSessionCorrupted)
	}
	if err != nil {
		return "", auth.User{}, fmt.Errorf("failed to read stored user: %w", err)
	}
	var user auth.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return "", auth.User{}, fmt.Errorf("%w: %v", auth.ErrSessionCorrupted, err)
	}

	token, err := s.storage.Get(ctx, auth.StorageKeyToken)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && token == "") {
		return "", auth.User{}, fmt.Errorf("%w: token missing", auth.ErrSessionCorrupted)
	}
	if err != nil {
		return "", auth.User{}, fmt.Errorf("failed to read stored token: %w", err)
	}

	return token, user, nil
}

func (s *SessionServiceImpl) checkExpiry(token string) error {
	if token == "" {
		return nil
	}
	claims, err := jwt.Inspect(token)
	if err != nil {
		return fmt.Errorf("%w: %v", auth.ErrSessionCorrupted, err)
	}
	if claims.Expired(s.now(), s.opts.ClockSkew) {
		return auth.ErrTokenExpired
	}
	return nil
}

func (s *SessionServiceImpl) persist(ctx context.Context, token string, user auth.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, auth.StorageKeyUser, string(rawUser)); err != nil {
		return err
	}
	if err := s.storage.Set(ctx, auth.StorageKeyToken, token); err != nil {
		return err
	}
	// The flag goes last so a partial write is never read back as a session.
	return s.storage.Set(ctx, auth.StorageKeyAuthenticated, "true")
}

func (s *SessionServiceImpl) clearStorage(ctx context.Context) error {
	var errs []error
	for _, key := range []string{auth.StorageKeyAuthenticated, auth.StorageKeyToken, auth.StorageKeyUser} {
		if err := s.storage.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func statusOf(token string) auth.Status {
	if token == "" {
		return auth.StatusUnauthenticated
	}
	return auth.StatusAuthenticated
}
