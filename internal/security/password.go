// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost はパスワードハッシュのコストファクタ。
// ソルトはbcryptがユーザーごとにランダム生成する。
const bcryptCost = 10

// HashPassword は平文パスワードのソルト付きbcryptハッシュを生成する。
// 平文はハッシュ化後にいかなる形でも保持・記録しない。
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword は平文パスワードと保存済みハッシュを定数時間で比較する。
// 一致しない場合はエラーを返す。
func ComparePassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
