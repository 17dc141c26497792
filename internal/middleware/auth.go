// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/miniblog/internal/auth"
)

// SessionCookieName はセッショントークンを格納するCookieの名前。
const SessionCookieName = "token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストにIdentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// IdentityResolver はセッショントークンからユーザーを解決するインターフェース。
// auth.Serviceの部分集合として定義する。
type IdentityResolver interface {
	Resolve(ctx context.Context, tokenString string) (auth.Identity, error)
}

// NewIdentityMiddleware はCookieのセッショントークンを検証し、
// 解決したIdentityをリクエストコンテキストに注入するミドルウェアを返す。
// Cookieがない・トークンが不正・期限切れ・ユーザー不在のいずれも
// 匿名として扱い、リクエスト自体は通過させる。アクセス制御はRequireUserが行う。
func NewIdentityMiddleware(resolver IdentityResolver, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), auth.Anonymous())))
				return
			}

			identity, err := resolver.Resolve(r.Context(), cookie.Value)
			if err != nil {
				// 失敗理由は区別せず匿名に落とす。詳細はログにのみ残す。
				logger.Debug("session token rejected",
					slog.String("error", err.Error()),
					slog.String("path", r.URL.Path),
				)
				identity = auth.Anonymous()
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireUser は認証済みユーザーのみを通過させるミドルウェア。
// 匿名リクエストはログインページへリダイレクトする。
// NewIdentityMiddlewareの後に配置すること。
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if !identity.Present() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext はリクエストコンテキストからIdentityを取得する。
// 注入されていない場合は匿名を返す。
func IdentityFromContext(ctx context.Context) auth.Identity {
	identity, ok := ctx.Value(identityContextKey).(auth.Identity)
	if !ok {
		return auth.Anonymous()
	}
	return identity
}

// ContextWithIdentity はコンテキストにIdentityを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
