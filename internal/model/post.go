package model

import "time"

// Post はブログ記事を表す。
// AuthorIDはUserへの弱参照であり、記事側にユーザー情報は埋め込まない。
type Post struct {
	ID        string
	Title     string
	Content   string
	AuthorID  string
	CreatedAt time.Time
}

// PostWithAuthor は記事と著者表示名を結合した読み取り用の構造体。
// 一覧・詳細表示で著者名を非正規化して返すために使用する。
type PostWithAuthor struct {
	Post
	AuthorName string
}
