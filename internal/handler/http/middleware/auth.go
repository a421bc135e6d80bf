package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/cmlabs-hris/employee-directory/internal/domain/auth"
	"github.com/cmlabs-hris/employee-directory/internal/handler/http/response"
)

type contextKey string

const userContextKey contextKey = "user"

// RequireSession only lets requests through once the session has been
// restored and is authenticated. Browser navigations are redirected to
// loginPath; API callers get a 401 carrying the same redirect target.
func RequireSession(sessions auth.SessionService, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			// Nothing is decided while the stored session is still being read.
			select {
			case <-sessions.Ready():
			case <-r.Context().Done():
				return
			}

			session := sessions.Snapshot()
			if session.IsAuthenticated {
				ctx := r.Context()
				if session.User != nil {
					ctx = context.WithValue(ctx, userContextKey, *session.User)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			location := LoginRedirect(loginPath, r.URL.RequestURI())
			if wantsHTML(r) {
				http.Redirect(w, r, location, http.StatusFound)
				return
			}
			response.UnauthorizedRedirect(w, "Authentication required", location)
		}
		return http.HandlerFunc(hfn)
	}
}

// LoginRedirect builds the login location that brings the user back to next.
func LoginRedirect(loginPath, next string) string {
	if next == "" || next == loginPath {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}

// UserFromContext returns the user attached by RequireSession.
func UserFromContext(ctx context.Context) (auth.User, bool) {
	u, ok := ctx.Value(userContextKey).(auth.User)
	return u, ok
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
