package model

import "fmt"

// AppError は統一エラーフォーマットを表す。
// ハンドラーがHTTPステータスと表示メッセージに変換するための原因カテゴリを含む。
// 内部エラーの詳細はここには含めず、ログ側にのみ記録する。
type AppError struct {
	Code     string // エラーコード
	Message  string // ユーザー向けメッセージ
	Category string // カテゴリ: auth, validation, content, system
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	ErrCodeUnexpected         = "UNEXPECTED"
)

// NewValidationError は入力値不正エラーを生成する。
func NewValidationError(reason string) *AppError {
	return &AppError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *AppError {
	return &AppError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザー不在とパスワード不一致を区別しない（列挙攻撃対策）。
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *AppError {
	return &AppError{
		Code:     ErrCodeUnauthenticated,
		Message:  "このページを表示するにはログインが必要です。",
		Category: "auth",
	}
}

// NewPostNotFoundError は記事未検出エラーを生成する。
func NewPostNotFoundError(postID string) *AppError {
	return &AppError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定された記事が見つかりません: %s", postID),
		Category: "content",
	}
}

// NewStoreUnavailableError はデータストア障害エラーを生成する。
func NewStoreUnavailableError() *AppError {
	return &AppError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "データベースに接続できません。しばらく待ってから再度お試しください。",
		Category: "system",
	}
}

// NewUnexpectedError は予期しない内部エラーを生成する。
// 内部の失敗理由はクライアントに漏らさない。
func NewUnexpectedError() *AppError {
	return &AppError{
		Code:     ErrCodeUnexpected,
		Message:  "内部エラーが発生しました。しばらく待ってから再度お試しください。",
		Category: "system",
	}
}
