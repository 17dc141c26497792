// Package blog はブログ記事のドメインロジックを提供する。
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/miniblog/internal/model"
	"github.com/hitoshi/miniblog/internal/repository"
	"github.com/hitoshi/miniblog/internal/security"
)

// MetricsRecorder は記事イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordPostCreated()
}

// Service はブログ記事のサービス層。
// 作成・一覧・詳細取得を提供する。更新・削除はスコープ外。
type Service struct {
	posts     repository.PostRepository
	sanitizer security.ContentSanitizerService
	metrics   MetricsRecorder
	logger    *slog.Logger
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(posts repository.PostRepository, sanitizer security.ContentSanitizerService, metrics MetricsRecorder, logger *slog.Logger) *Service {
	return &Service{
		posts:     posts,
		sanitizer: sanitizer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Create は新しい記事を作成する。
// タイトルまたは本文が空（空白のみを含む）の場合はValidationErrorを返し、何も永続化しない。
func (s *Service) Create(ctx context.Context, authorID, title, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" || content == "" {
		return nil, model.NewValidationError("タイトルと本文の両方を入力してください")
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPostCreated()
	}
	s.logger.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("author_id", authorID),
	)

	return post, nil
}

// List は全記事を作成日時の降順で、著者表示名付きで返す。
// 記事が1件もない場合は空スライスを返す（エラーではない）。
// 本文は表示用にサニタイズ済みの状態で返す。
func (s *Service) List(ctx context.Context) ([]model.PostWithAuthor, error) {
	posts, err := s.posts.ListNewestFirst(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	for i := range posts {
		posts[i].Content = s.sanitizer.Sanitize(posts[i].Content)
	}

	return posts, nil
}

// GetByID は指定IDの記事を著者表示名付きで返す。
// 記事が存在しない場合はNotFoundエラーを返す。
func (s *Service) GetByID(ctx context.Context, id string) (*model.PostWithAuthor, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}

	post.Content = s.sanitizer.Sanitize(post.Content)

	return post, nil
}
