// Copyright (c) 2026 İklim Sesi
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAccountLockoutAfterMaxFailures(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	email := "target@iklimsesi.org"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("fresh account should not be locked")
	}

	for i := 0; i < 2; i++ {
		if locked, _ := lp.RecordFailedAttempt(email); locked {
			t.Fatalf("locked after %d attempts", i+1)
		}
	}

	locked, dur := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("third failure should lock")
	}
	if dur != time.Minute {
		t.Errorf("first lockout = %v, want 1m", dur)
	}

	if locked, remaining := lp.IsAccountLocked(email); !locked || remaining <= 0 {
		t.Errorf("IsAccountLocked = %v, %v", locked, remaining)
	}

	// Other accounts are unaffected.
	if locked, _ := lp.IsAccountLocked("other@iklimsesi.org"); locked {
		t.Error("unrelated account locked")
	}
}

func TestLockoutBackoffDoubles(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Hour,
	})
	email := "repeat@iklimsesi.org"

	lp.RecordFailedAttempt(email)
	locked, first := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("expected first lockout")
	}

	lp.RecordFailedAttempt(email)
	locked, second := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("expected second lockout")
	}
	if second != 2*first {
		t.Errorf("second lockout = %v, want %v", second, 2*first)
	}
}

func TestSuccessfulLoginClearsAttempts(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	email := "comeback@iklimsesi.org"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	// Counter starts over; two more failures do not lock.
	lp.RecordFailedAttempt(email)
	if locked, _ := lp.RecordFailedAttempt(email); locked {
		t.Error("attempts should have been cleared by the successful login")
	}
}

func TestLoginRateLimitMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 0.001, // effectively no refill during the test
		IPBurst:     2,
	})

	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := post("10.0.0.1:1234"); code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i+1, code)
		}
	}
	if code := post("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Errorf("over-burst request = %d, want 429", code)
	}

	// Other IPs have their own budget.
	if code := post("10.0.0.2:1234"); code != http.StatusOK {
		t.Errorf("fresh IP = %d, want 200", code)
	}

	// Non-POST traffic is never limited.
	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET = %d, want 200", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"x-real-ip wins", "1.2.3.4", "5.6.7.8", "9.9.9.9:80", "1.2.3.4"},
		{"forwarded-for takes first hop", "", "5.6.7.8, 10.0.0.1", "9.9.9.9:80", "5.6.7.8"},
		{"remote addr fallback", "", "", "9.9.9.9:80", "9.9.9.9:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
