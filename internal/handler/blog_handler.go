package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/miniblog/internal/middleware"
	"github.com/hitoshi/miniblog/internal/model"
)

// BlogServiceInterface はブログハンドラーが必要とするサービスインターフェース。
type BlogServiceInterface interface {
	// Create は新しい記事を作成する。
	Create(ctx context.Context, authorID, title, content string) (*model.Post, error)
	// List は全記事を作成日時の降順で返す。
	List(ctx context.Context) ([]model.PostWithAuthor, error)
	// GetByID は指定IDの記事を返す。
	GetByID(ctx context.Context, id string) (*model.PostWithAuthor, error)
}

// BlogHandler はブログ記事のHTTPハンドラー。
type BlogHandler struct {
	service BlogServiceInterface
	views   *Views
	logger  *slog.Logger
}

// NewBlogHandler はBlogHandlerを生成する。
func NewBlogHandler(service BlogServiceInterface, views *Views, logger *slog.Logger) *BlogHandler {
	return &BlogHandler{
		service: service,
		views:   views,
		logger:  logger,
	}
}

// List は記事一覧を表示する。未ログインでも閲覧できる。
// GET /blogs
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.IdentityFromContext(r.Context()).User

	posts, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list posts", slog.String("error", err.Error()))
		h.views.RenderServerError(w, currentUser)
		return
	}

	h.views.Render(w, http.StatusOK, "blogList", pageData{
		Title:       "記事一覧",
		CurrentUser: currentUser,
		Posts:       posts,
	})
}

// ShowCreate は新規投稿フォームを表示する。認証必須。
// GET /blogs/create
func (h *BlogHandler) ShowCreate(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.IdentityFromContext(r.Context()).User

	h.views.Render(w, http.StatusOK, "blogCreate", pageData{
		Title:       "新規投稿",
		CurrentUser: currentUser,
	})
}

// Create は新しい記事を作成し、記事一覧へリダイレクトする。認証必須。
// POST /blogs/create
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if !identity.Present() {
		// RequireUserの後ろに配置される前提だが、単体でも安全に動くようにする
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.views.Render(w, http.StatusBadRequest, "blogCreate", pageData{
			Title:       "新規投稿",
			CurrentUser: identity.User,
			Error:       "リクエストの形式が正しくありません。",
		})
		return
	}

	title := r.PostFormValue("title")
	content := r.PostFormValue("content")

	if _, err := h.service.Create(r.Context(), identity.User.ID, title, content); err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) && appErr.Code == model.ErrCodeValidation {
			h.views.Render(w, http.StatusBadRequest, "blogCreate", pageData{
				Title:       "新規投稿",
				CurrentUser: identity.User,
				Error:       appErr.Message,
				PostTitle:   title,
				PostContent: content,
			})
			return
		}

		h.logger.Error("failed to create post",
			slog.String("author_id", identity.User.ID),
			slog.String("error", err.Error()),
		)
		h.views.RenderServerError(w, identity.User)
		return
	}

	http.Redirect(w, r, "/blogs", http.StatusSeeOther)
}

// Detail は記事の詳細を表示する。未ログインでも閲覧できる。
// GET /blogs/{id}
func (h *BlogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	currentUser := middleware.IdentityFromContext(r.Context()).User
	postID := chi.URLParam(r, "id")

	post, err := h.service.GetByID(r.Context(), postID)
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) && appErr.Code == model.ErrCodeNotFound {
			h.views.RenderNotFound(w, currentUser)
			return
		}

		h.logger.Error("failed to get post",
			slog.String("post_id", postID),
			slog.String("error", err.Error()),
		)
		h.views.RenderServerError(w, currentUser)
		return
	}

	h.views.Render(w, http.StatusOK, "blogDetail", pageData{
		Title:       post.Title,
		CurrentUser: currentUser,
		Post:        post,
	})
}
