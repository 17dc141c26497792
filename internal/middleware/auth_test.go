package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/miniblog/internal/auth"
	"github.com/hitoshi/miniblog/internal/model"
)

type mockResolver struct {
	resolveFn func(ctx context.Context, tokenString string) (auth.Identity, error)
}

func (m *mockResolver) Resolve(ctx context.Context, tokenString string) (auth.Identity, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, tokenString)
	}
	return auth.Anonymous(), errors.New("no resolver configured")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func identityEchoHandler(t *testing.T, got *auth.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityMiddleware_ValidCookie_InjectsIdentity(t *testing.T) {
	user := &model.User{ID: "user-1", Name: "Alice"}
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, tokenString string) (auth.Identity, error) {
			if tokenString != "valid-token" {
				t.Errorf("token = %q, want %q", tokenString, "valid-token")
			}
			return auth.Identity{User: user}, nil
		},
	}

	var got auth.Identity
	handler := NewIdentityMiddleware(resolver, testLogger())(identityEchoHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/blogs", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !got.Present() {
		t.Fatal("identity should be present for a valid token")
	}
	if got.User.ID != "user-1" {
		t.Errorf("user ID = %q, want %q", got.User.ID, "user-1")
	}
}

func TestIdentityMiddleware_MissingCookie_ProceedsAnonymous(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, tokenString string) (auth.Identity, error) {
			t.Error("Resolve should not be called without a cookie")
			return auth.Anonymous(), nil
		},
	}

	var got auth.Identity
	handler := NewIdentityMiddleware(resolver, testLogger())(identityEchoHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/blogs", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got.Present() {
		t.Error("identity should be anonymous without a cookie")
	}
}

func TestIdentityMiddleware_RejectedToken_ProceedsAnonymous(t *testing.T) {
	resolver := &mockResolver{
		resolveFn: func(ctx context.Context, tokenString string) (auth.Identity, error) {
			return auth.Anonymous(), errors.New("token verification failed")
		},
	}

	var got auth.Identity
	handler := NewIdentityMiddleware(resolver, testLogger())(identityEchoHandler(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/blogs", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tampered"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got.Present() {
		t.Error("identity should be anonymous for a rejected token")
	}
}

func TestRequireUser_Anonymous_RedirectsToLogin(t *testing.T) {
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("protected handler should not run for anonymous request")
	}))

	req := httptest.NewRequest(http.MethodGet, "/blogs/create", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), auth.Anonymous()))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
}

func TestRequireUser_Authenticated_PassesThrough(t *testing.T) {
	called := false
	handler := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	identity := auth.Identity{User: &model.User{ID: "user-1"}}
	req := httptest.NewRequest(http.MethodGet, "/blogs/create", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), identity))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("protected handler should run for an authenticated request")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestIdentityFromContext_NotSet_ReturnsAnonymous(t *testing.T) {
	identity := IdentityFromContext(context.Background())
	if identity.Present() {
		t.Error("identity should be anonymous when not set")
	}
}
