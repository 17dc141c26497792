package repository

import "errors"

// ErrDuplicateEmail はメールアドレスの一意制約違反を表すセンチネルエラー。
// 一意性の強制はストア側（UNIQUE制約）に委ね、リポジトリは違反を検出して変換する。
var ErrDuplicateEmail = errors.New("email already registered")
