package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/miniblog/internal/auth"
	"github.com/hitoshi/miniblog/internal/model"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0),
		GeneralBurst:    3,
		AuthRate:        rate.Limit(1.0),
		AuthBurst:       2,
		CleanupInterval: time.Hour,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/blogs", nil)
	identity := auth.Identity{User: &model.User{ID: userID}}
	return req.WithContext(ContextWithIdentity(req.Context(), identity))
}

func TestRateLimiter_General_AllowsUpToBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(), testLogger())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest("user-1"))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	// バーストを超えると429
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("user-1"))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("429 response should include Retry-After header")
	}
}

func TestRateLimiter_General_SeparateLimitsPerUser(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(), testLogger())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest("user-1"))
		if w.Code != http.StatusOK {
			t.Fatalf("user-1 request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	// 別ユーザーには影響しない
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("user-2"))
	if w.Code != http.StatusOK {
		t.Errorf("user-2 status = %d, want 200", w.Code)
	}

	if count := rl.GeneralLimiterCount(); count != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", count)
	}
}

func TestRateLimiter_General_AnonymousKeyedByIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(), testLogger())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/blogs", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}

	// 別IPは独立
	other := httptest.NewRequest(http.MethodGet, "/blogs", nil)
	other.RemoteAddr = "10.0.0.2:54321"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", w.Code)
	}
}

func TestRateLimiter_Auth_StricterThanGeneral(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(), testLogger())
	defer rl.Stop()

	handler := rl.AuthMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestRateLimiter_AuthAndGeneralAreIndependent(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(), testLogger())
	defer rl.Stop()

	authHandler := rl.AuthMiddleware()(okHandler())
	generalHandler := rl.GeneralMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	// ログイン側のバーストを使い切る
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		authHandler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("auth request %d: status = %d, want 200", i+1, w.Code)
		}
	}

	// 全般側は引き続き通る
	w := httptest.NewRecorder()
	generalHandler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("general status = %d, want 200", w.Code)
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	config := testRateLimiterConfig()
	config.CleanupInterval = 10 * time.Millisecond
	rl := NewRateLimiter(config, testLogger())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("user-1"))

	if count := rl.GeneralLimiterCount(); count != 1 {
		t.Fatalf("GeneralLimiterCount = %d, want 1", count)
	}

	// TTL（CleanupInterval*2）経過後にクリーンアップされること
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if rl.GeneralLimiterCount() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("stale limiter entry should be cleaned up")
}
