// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/miniblog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// メールアドレスが既に登録済みの場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByEmail は指定メールアドレスのユーザーを取得する。
	// 大文字小文字は保存された値との完全一致で判定する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// PostRepository はブログ記事の永続化インターフェース。
type PostRepository interface {
	// Create は記事を作成する。
	Create(ctx context.Context, post *model.Post) error

	// ListNewestFirst は全記事をcreated_at降順で、著者表示名付きで返す。
	// 記事が存在しない場合は空スライスを返す（エラーではない）。
	ListNewestFirst(ctx context.Context) ([]model.PostWithAuthor, error)

	// FindByID は指定IDの記事を著者表示名付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.PostWithAuthor, error)
}
