// Package model はドメインモデルを定義する。
package model

import "time"

// User はブログの登録ユーザーを表す。
// PasswordHashはbcryptによるソルト付きハッシュで、平文パスワードは保持しない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
