package auth

// User is the identity returned by the backend on login and kept for the
// lifetime of the session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticating  Status = "authenticating"
	StatusAuthenticated   Status = "authenticated"
)

// Session is an immutable snapshot of the client-side authentication state.
// IsAuthenticated is true exactly when Token is non-empty.
type Session struct {
	Token           string `json:"-"`
	User            *User  `json:"user"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	Loading         bool   `json:"loading"`
	Error           string `json:"error,omitempty"`
	Status          Status `json:"status"`
}

// Clone returns a copy that shares no pointers with s.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Durable storage keys.
const (
	StorageKeyAuthenticated = "isAuthenticated"
	StorageKeyUser          = "user"
	StorageKeyToken         = "token"
)

type RestoreMode string

const (
	// RestoreTrust rehydrates a stored token without checking it.
	RestoreTrust RestoreMode = "trust"
	// RestoreExpiry discards stored tokens whose exp claim has passed.
	RestoreExpiry RestoreMode = "expiry"
)
