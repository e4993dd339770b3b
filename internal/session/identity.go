package session

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/iklimsesi/iklimsesi-go/internal/cache"
	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
)

// Identity is the resolved actor for one request. The zero value is the
// unauthenticated identity.
type Identity struct {
	User *model.User
}

// IsAuthenticated reports whether an active user was resolved.
func (i Identity) IsAuthenticated() bool {
	return i.User != nil && i.User.IsActive
}

// HasPermission reports whether the resolved user holds a permission.
// Always false for the unauthenticated identity and for inactive users.
func (i Identity) HasPermission(perm string) bool {
	if !i.IsAuthenticated() {
		return false
	}
	return i.User.HasPermission(perm)
}

// Resolver turns request credentials (session cookie or bearer token)
// into an Identity. Resolution failures of any shape — absent, malformed,
// expired, or revoked credentials — produce the same unauthenticated
// Identity; "no session" is a normal outcome, never an error, and the
// caller learns nothing about why a credential did not resolve.
type Resolver struct {
	queries *store.Queries
	sm      *scs.SessionManager
	users   *cache.Users
}

// NewResolver creates an identity resolver. users may be nil to disable
// caching.
func NewResolver(queries *store.Queries, sm *scs.SessionManager, users *cache.Users) *Resolver {
	return &Resolver{queries: queries, sm: sm, users: users}
}

// Resolve resolves the request's actor. On success the user's last_login
// is updated in the background.
func (r *Resolver) Resolve(req *http.Request) Identity {
	if user, ok := r.resolveSession(req); ok {
		return Identity{User: user}
	}
	if user, ok := r.resolveBearer(req); ok {
		return Identity{User: user}
	}
	return Identity{}
}

// resolveSession loads the user referenced by the session cookie.
func (r *Resolver) resolveSession(req *http.Request) (*model.User, bool) {
	if r.sm == nil {
		return nil, false
	}
	userID := r.sm.GetInt64(req.Context(), KeyUserID)
	if userID == 0 {
		return nil, false
	}

	user, err := r.loadUser(req.Context(), userID)
	if err != nil || !user.IsActive {
		// Stale session for a removed or disabled user: drop it.
		_ = r.sm.Destroy(req.Context())
		return nil, false
	}
	return &user, true
}

// resolveBearer validates an Authorization: Bearer token. Malformed
// headers and unknown, inactive, or expired tokens are all just
// "unauthenticated".
func (r *Resolver) resolveBearer(req *http.Request) (*model.User, bool) {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return nil, false
	}

	token, err := r.queries.GetTokenByHash(req.Context(), model.HashToken(parts[1]))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("token lookup failed", "error", err)
		}
		return nil, false
	}
	if !token.IsValid() {
		return nil, false
	}

	user, err := r.loadUser(req.Context(), token.UserID)
	if err != nil || !user.IsActive {
		return nil, false
	}

	r.touch(token, user.ID)
	return &user, true
}

func (r *Resolver) loadUser(ctx context.Context, id int64) (model.User, error) {
	if r.users != nil {
		if user, ok := r.users.Get(ctx, id); ok {
			return user, nil
		}
	}

	user, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if r.users != nil {
		r.users.Set(ctx, user)
	}
	return user, nil
}

// touch records token use and the user's last login without holding up
// the request.
func (r *Resolver) touch(token model.APIToken, userID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		now := time.Now().UTC()
		_ = r.queries.UpdateTokenLastUsed(ctx, token.ID, now)
		_ = r.queries.UpdateUserLastLogin(ctx, userID, now)
	}()
}

// RecordLogin stores the user in the session after a successful password
// login and records last_login.
func (r *Resolver) RecordLogin(req *http.Request, user model.User) error {
	if err := r.sm.RenewToken(req.Context()); err != nil {
		return err
	}
	r.sm.Put(req.Context(), KeyUserID, user.ID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.queries.UpdateUserLastLogin(ctx, user.ID, time.Now().UTC())
	}()
	return nil
}

// Logout destroys the current session.
func (r *Resolver) Logout(req *http.Request) error {
	return r.sm.Destroy(req.Context())
}
