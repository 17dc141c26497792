package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/miniblog/internal/middleware"
	"github.com/hitoshi/miniblog/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録し、セッショントークンを発行する。
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	// Login はユーザーを認証し、セッショントークンを発行する。
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

// CookieConfig はセッションCookieの属性設定。
type CookieConfig struct {
	Secure bool          // 本番環境ではtrue
	Domain string        // 空の場合は設定しない
	MaxAge time.Duration // トークンの有効期間と一致させる
}

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	cookie  CookieConfig
	views   *Views
	logger  *slog.Logger
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, cookie CookieConfig, views *Views, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
		views:   views,
		logger:  logger,
	}
}

// ShowRegister は登録フォームを表示する。
// GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	// ログイン済みなら一覧へ
	if middleware.IdentityFromContext(r.Context()).Present() {
		http.Redirect(w, r, "/blogs", http.StatusSeeOther)
		return
	}
	h.views.Render(w, http.StatusOK, "register", pageData{Title: "ユーザー登録"})
}

// Register は新規ユーザーを登録し、セッションCookieを設定して記事一覧へリダイレクトする。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.Render(w, http.StatusBadRequest, "register", pageData{
			Title: "ユーザー登録",
			Error: "リクエストの形式が正しくありません。",
		})
		return
	}

	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	_, token, err := h.service.Register(r.Context(), name, email, password)
	if err != nil {
		h.handleAuthError(w, err, "register", pageData{
			Title: "ユーザー登録",
			Name:  name,
			Email: email,
		})
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/blogs", http.StatusSeeOther)
}

// ShowLogin はログインフォームを表示する。
// GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if middleware.IdentityFromContext(r.Context()).Present() {
		http.Redirect(w, r, "/blogs", http.StatusSeeOther)
		return
	}
	h.views.Render(w, http.StatusOK, "login", pageData{Title: "ログイン"})
}

// Login はユーザーを認証し、セッションCookieを設定して記事一覧へリダイレクトする。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.views.Render(w, http.StatusBadRequest, "login", pageData{
			Title: "ログイン",
			Error: "リクエストの形式が正しくありません。",
		})
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	_, token, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		h.handleAuthError(w, err, "login", pageData{
			Title: "ログイン",
			Email: email,
		})
		return
	}

	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/blogs", http.StatusSeeOther)
}

// Logout はセッションCookieを失効済みの空値で上書きし、ログインページへリダイレクトする。
// サーバー側に破棄する状態はないため冪等。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleAuthError は認証フローのエラーをフォーム再表示に変換する。
// AppError以外の内部エラーは詳細をログにのみ残し、汎用メッセージを表示する。
func (h *AuthHandler) handleAuthError(w http.ResponseWriter, err error, templateName string, data pageData) {
	var appErr *model.AppError
	if errors.As(err, &appErr) {
		data.Error = appErr.Message
		switch appErr.Code {
		case model.ErrCodeDuplicateEmail, model.ErrCodeValidation:
			h.views.Render(w, http.StatusBadRequest, templateName, data)
		case model.ErrCodeInvalidCredentials:
			h.views.Render(w, http.StatusUnauthorized, templateName, data)
		default:
			h.views.RenderServerError(w, nil)
		}
		return
	}

	h.logger.Error("auth flow failed",
		slog.String("flow", templateName),
		slog.String("error", err.Error()),
	)
	h.views.RenderServerError(w, nil)
}

// setSessionCookie はセッショントークンをHTTP Only Cookieとして設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを即時失効させる。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
