// Package auth は登録・ログインの認証フローとセッション解決を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/miniblog/internal/model"
	"github.com/hitoshi/miniblog/internal/repository"
	"github.com/hitoshi/miniblog/internal/security"
)

// TokenCodec はセッショントークンの発行・検証インターフェース。
// token.Codecの部分集合として定義する。
type TokenCodec interface {
	Issue(userID string) (string, error)
	Verify(tokenString string) (string, error)
}

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordRegistration()
	RecordLoginSuccess()
	RecordLoginFailure()
}

// Identity はリクエストの解決済みユーザーを表す値。
// Userがnilの場合は匿名リクエストを意味する。
type Identity struct {
	User *model.User
}

// Present は認証済みユーザーが解決されているかどうかを返す。
func (i Identity) Present() bool {
	return i.User != nil
}

// Anonymous は匿名のIdentityを返す。
func Anonymous() Identity {
	return Identity{}
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users     repository.UserRepository
	codec     TokenCodec
	metrics   MetricsRecorder
	logger    *slog.Logger
	dummyHash string
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(users repository.UserRepository, codec TokenCodec, metrics MetricsRecorder, logger *slog.Logger) *Service {
	// ユーザー不在時にも同等のbcrypt比較を行うためのダミーハッシュ。
	// 「ユーザーなし」と「パスワード不一致」の応答時間差をなくす。
	dummyHash, err := security.HashPassword(uuid.New().String())
	if err != nil {
		// bcryptの失敗は入力長超過のみで、uuidでは起こらない
		dummyHash = ""
	}

	return &Service{
		users:     users,
		codec:     codec,
		metrics:   metrics,
		logger:    logger,
		dummyHash: dummyHash,
	}
}

// Register は新規ユーザーを登録し、セッショントークンを発行する。
// メールアドレスが登録済みの場合はDuplicateEmailエラーを返す。
// 平文パスワードはハッシュ化後に破棄し、ログにも出力しない。
func (s *Service) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	if name == "" || email == "" || password == "" {
		return nil, "", model.NewValidationError("名前・メールアドレス・パスワードは必須です")
	}

	// 事前チェック。競合時の最終的な一意性はストアのUNIQUE制約が保証する。
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewDuplicateEmailError()
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", model.NewDuplicateEmailError()
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	tok, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}
	s.logger.Info("new user registered",
		slog.String("user_id", user.ID),
	)

	return user, tok, nil
}

// Login はメールアドレスとパスワードでユーザーを認証し、セッショントークンを発行する。
// ユーザー不在とパスワード不一致は同一のInvalidCredentialsエラーとして返し、
// レスポンスから区別できないようにする。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		// 不在時もハッシュ比較を行い、応答時間からユーザーの有無を推測できないようにする
		_ = security.ComparePassword(s.dummyHash, password)
		if s.metrics != nil {
			s.metrics.RecordLoginFailure()
		}
		return nil, "", model.NewInvalidCredentialsError()
	}

	if err := security.ComparePassword(user.PasswordHash, password); err != nil {
		if s.metrics != nil {
			s.metrics.RecordLoginFailure()
		}
		return nil, "", model.NewInvalidCredentialsError()
	}

	tok, err := s.codec.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return user, tok, nil
}

// Resolve はセッショントークンを検証し、対応するユーザーをIdentityとして返す。
// トークン不正・期限切れ・ユーザー不在はいずれもエラーを返す。
// 呼び出し側（Access Guard）は失敗を一律「未認証」として扱い、エラーはログ用に使う。
func (s *Service) Resolve(ctx context.Context, tokenString string) (Identity, error) {
	userID, err := s.codec.Verify(tokenString)
	if err != nil {
		return Anonymous(), fmt.Errorf("token verification failed: %w", err)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Anonymous(), fmt.Errorf("failed to resolve user: %w", err)
	}
	if user == nil {
		return Anonymous(), fmt.Errorf("user %s no longer exists", userID)
	}

	return Identity{User: user}, nil
}
