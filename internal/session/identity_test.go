package session_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iklimsesi/iklimsesi-go/internal/model"
	"github.com/iklimsesi/iklimsesi-go/internal/session"
	"github.com/iklimsesi/iklimsesi-go/internal/store"
	"github.com/iklimsesi/iklimsesi-go/internal/testutil"
)

func issueToken(t *testing.T, queries *store.Queries, userID int64, expires sql.NullTime, active bool) string {
	t.Helper()

	raw, prefix, err := model.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tok, err := queries.CreateToken(context.Background(), store.CreateTokenParams{
		UserID: userID, Name: "test", TokenHash: model.HashToken(raw),
		Prefix: prefix, ExpiresAt: expires,
	})
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	if !active {
		if err := queries.RevokeToken(context.Background(), tok.ID); err != nil {
			t.Fatalf("RevokeToken: %v", err)
		}
	}
	return raw
}

func TestResolveBearer(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	queries := store.New(db)

	user := testutil.CreateUser(t, db, "bearer@iklimsesi.org", model.RoleEditor)
	inactive := testutil.CreateUser(t, db, "inactive@iklimsesi.org", model.RoleEditor)
	if err := queries.SetUserActive(context.Background(), inactive.ID, false); err != nil {
		t.Fatalf("SetUserActive: %v", err)
	}

	valid := issueToken(t, queries, user.ID, sql.NullTime{}, true)
	expired := issueToken(t, queries, user.ID,
		sql.NullTime{Time: time.Now().UTC().Add(-time.Hour), Valid: true}, true)
	revoked := issueToken(t, queries, user.ID, sql.NullTime{}, false)
	disabledOwner := issueToken(t, queries, inactive.ID, sql.NullTime{}, true)

	resolver := session.NewResolver(queries, nil, nil)

	tests := []struct {
		name   string
		header string
		wantID int64
	}{
		{"no header", "", 0},
		{"not bearer", "Basic abc", 0},
		{"bearer without token", "Bearer ", 0},
		{"garbage token", "Bearer not-a-real-token", 0},
		{"valid token", "Bearer " + valid, user.ID},
		{"case-insensitive scheme", "bearer " + valid, user.ID},
		{"expired token", "Bearer " + expired, 0},
		{"revoked token", "Bearer " + revoked, 0},
		{"token of disabled user", "Bearer " + disabledOwner, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			identity := resolver.Resolve(req)
			if tt.wantID == 0 {
				if identity.IsAuthenticated() {
					t.Errorf("resolved as %d, want unauthenticated", identity.User.ID)
				}
				return
			}
			if !identity.IsAuthenticated() || identity.User.ID != tt.wantID {
				t.Errorf("identity = %+v, want user %d", identity, tt.wantID)
			}
		})
	}
}

func TestResolveSessionCookie(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	queries := store.New(db)

	user := testutil.CreateUser(t, db, "cookie@iklimsesi.org", model.RoleModerator)

	sm := session.New(db, true)
	resolver := session.NewResolver(queries, sm, nil)

	// Establish a session the way the login handler does.
	login := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := resolver.RecordLogin(r, user); err != nil {
			t.Errorf("RecordLogin: %v", err)
		}
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login response set no session cookie")
	}

	resolve := func() session.Identity {
		var got session.Identity
		h := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = resolver.Resolve(r)
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		return got
	}

	identity := resolve()
	if !identity.IsAuthenticated() || identity.User.ID != user.ID {
		t.Fatalf("identity = %+v, want user %d", identity, user.ID)
	}
	if !identity.HasPermission("voices.edit") {
		t.Error("moderator session should carry voices.edit")
	}

	// Disabling the user turns the same cookie into an anonymous request.
	if err := queries.SetUserActive(context.Background(), user.ID, false); err != nil {
		t.Fatalf("SetUserActive: %v", err)
	}
	identity = resolve()
	if identity.IsAuthenticated() {
		t.Error("session for disabled user should not resolve")
	}
}

func TestIdentityZeroValue(t *testing.T) {
	var identity session.Identity
	if identity.IsAuthenticated() {
		t.Error("zero identity must be unauthenticated")
	}
	if identity.HasPermission("blog.view") {
		t.Error("zero identity must hold no permissions")
	}
}
