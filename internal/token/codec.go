// Package token はステートレスなセッショントークンの発行と検証を提供する。
//
// トークンはサーバー保持の秘密鍵でHMAC署名したJWT（HS256）であり、
// サーバー側にはセッション状態を一切持たない。
// そのため有効期限前の失効（ログアウト全端末、パスワード変更時の無効化）はできない。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "miniblog"

var (
	// ErrTokenInvalid は署名不一致・形式不正のトークンを表す。
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired は有効期限切れのトークンを表す。
	// 呼び出し側はErrTokenInvalidと同一に扱う（アクセス拒否）が、ログ上は区別できる。
	ErrTokenExpired = errors.New("token expired")
)

// Claims はセッショントークンのペイロード。
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Codec はセッショントークンの発行・検証を行う。
// イミュータブルであり、複数ゴルーチンから安全に利用できる。
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec はCodecを生成する。ttlは発行するトークンの有効期間。
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue は指定ユーザーIDの署名付きトークンを発行する。
// 発行時刻は現在時刻、有効期限は現在時刻+TTL。
func (c *Codec) Issue(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify はトークンを検証し、埋め込まれたユーザーIDを返す。
// 署名不一致・形式不正はErrTokenInvalid、期限切れはErrTokenExpiredを返す。
func (c *Codec) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UserID, nil
}
