package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionManager(rdb, "daftar_session", "test-secret", time.Hour, false)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser("42")
	sess.SetLanguage("fa")
	sess.Set("theme", "dark")

	rec := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := sessionCookie(t, rec, "daftar_session")
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be http only")
	}

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.User() != "42" {
		t.Fatalf("expected user 42, got %q", loaded.User())
	}
	if loaded.Language() != "fa" {
		t.Fatalf("expected language fa, got %q", loaded.Language())
	}
	if loaded.Get("theme") != "dark" {
		t.Fatalf("expected theme dark, got %q", loaded.Get("theme"))
	}
}

func TestSessionDestroy(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.SetUser("42")

	rec := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := sessionCookie(t, rec, "daftar_session")

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	sm.Destroy(loaded)

	rec2 := httptest.NewRecorder()
	if err := sm.Commit(ctx, rec2, req2, loaded); err != nil {
		t.Fatalf("commit destroy: %v", err)
	}
	cleared := sessionCookie(t, rec2, "daftar_session")
	if cleared.MaxAge != -1 {
		t.Fatalf("expected expired cookie, got max age %d", cleared.MaxAge)
	}

	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.AddCookie(cookie)
	fresh, err := sm.Load(ctx, req3)
	if err != nil {
		t.Fatalf("load after destroy: %v", err)
	}
	if fresh.User() != "" {
		t.Fatalf("destroyed session must not retain user, got %q", fresh.User())
	}
}

func TestSessionFlashes(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.AddFlash(FlashMessage{Kind: "info", Message: "saved"})
	sess.AddFlash(FlashMessage{Kind: "error", Message: "failed"})

	first := sess.PopFlash()
	if first == nil || first.Message != "saved" {
		t.Fatalf("expected oldest flash first, got %+v", first)
	}
	second := sess.PopFlash()
	if second == nil || second.Kind != "error" {
		t.Fatalf("expected error flash, got %+v", second)
	}
	if sess.PopFlash() != nil {
		t.Fatal("expected no more flashes")
	}
}

func TestCSRFTokenVerification(t *testing.T) {
	sm := newTestSessionManager(t)
	csrf := NewCSRFManager("csrf-secret")
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	token, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if token == "" {
		t.Fatal("token must not be empty")
	}

	again, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token again: %v", err)
	}
	if again != token {
		t.Fatal("token must be stable within a session")
	}

	if err := csrf.VerifyToken(ctx, sess, token); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := csrf.VerifyToken(ctx, sess, "forged"); err == nil {
		t.Fatal("forged token must be rejected")
	}
	if err := csrf.VerifyToken(ctx, sess, ""); err == nil {
		t.Fatal("empty token must be rejected")
	}
}
