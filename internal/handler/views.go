package handler

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/hitoshi/miniblog/internal/model"
)

// pageData はテンプレートに渡す表示データ。
type pageData struct {
	Title       string
	CurrentUser *model.User
	Error       string
	Name        string
	Email       string
	PostTitle   string
	PostContent string
	Posts       []model.PostWithAuthor
	Post        *model.PostWithAuthor
}

const layoutHeader = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8">
<title>{{.Title}} - miniblog</title>
</head>
<body>
<nav>
<a href="/blogs">記事一覧</a>
{{if .CurrentUser}}
<a href="/blogs/create">新規投稿</a>
<span>{{.CurrentUser.Name}}</span>
<a href="/logout">ログアウト</a>
{{else}}
<a href="/login">ログイン</a>
<a href="/register">登録</a>
{{end}}
</nav>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
`

const layoutFooter = `</body>
</html>
`

const registerBody = `<h1>ユーザー登録</h1>
<form method="post" action="/register">
<label>名前 <input type="text" name="name" value="{{.Name}}" required></label>
<label>メールアドレス <input type="email" name="email" value="{{.Email}}" required></label>
<label>パスワード <input type="password" name="password" required></label>
<button type="submit">登録</button>
</form>
`

const loginBody = `<h1>ログイン</h1>
<form method="post" action="/login">
<label>メールアドレス <input type="email" name="email" value="{{.Email}}" required></label>
<label>パスワード <input type="password" name="password" required></label>
<button type="submit">ログイン</button>
</form>
`

const blogListBody = `<h1>記事一覧</h1>
{{if .Posts}}
<ul>
{{range .Posts}}
<li>
<a href="/blogs/{{.ID}}">{{.Title}}</a>
<small>{{.AuthorName}} / {{.CreatedAt.Format "2006-01-02 15:04"}}</small>
</li>
{{end}}
</ul>
{{else}}
<p>まだ記事がありません。</p>
{{end}}
`

const blogCreateBody = `<h1>新規投稿</h1>
<form method="post" action="/blogs/create">
<label>タイトル <input type="text" name="title" value="{{.PostTitle}}" required></label>
<label>本文 <textarea name="content" required>{{.PostContent}}</textarea></label>
<button type="submit">投稿</button>
</form>
`

const blogDetailBody = `<article>
<h1>{{.Post.Title}}</h1>
<p><small>{{.Post.AuthorName}} / {{.Post.CreatedAt.Format "2006-01-02 15:04"}}</small></p>
<div>{{.Post.Content | safeHTML}}</div>
</article>
`

const notFoundBody = `<h1>404 Not Found</h1>
<p>お探しのページは見つかりませんでした。</p>
`

const serverErrorBody = `<h1>500 Internal Server Error</h1>
<p>内部エラーが発生しました。しばらく待ってから再度お試しください。</p>
`

// Views はページテンプレートのレンダリングを提供する。
// 全テンプレートは起動時にパースされる。
type Views struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewViews は全テンプレートをパースしてViewsを生成する。
func NewViews(logger *slog.Logger) *Views {
	// 記事本文はサービス層でサニタイズ済みのHTMLとして埋め込む
	funcs := template.FuncMap{
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	}

	parse := func(name, body string) *template.Template {
		return template.Must(template.New(name).Funcs(funcs).Parse(layoutHeader + body + layoutFooter))
	}

	return &Views{
		templates: map[string]*template.Template{
			"register":    parse("register", registerBody),
			"login":       parse("login", loginBody),
			"blogList":    parse("blogList", blogListBody),
			"blogCreate":  parse("blogCreate", blogCreateBody),
			"blogDetail":  parse("blogDetail", blogDetailBody),
			"notFound":    parse("notFound", notFoundBody),
			"serverError": parse("serverError", serverErrorBody),
		},
		logger: logger,
	}
}

// Render は指定テンプレートを指定ステータスコードでレンダリングする。
func (v *Views) Render(w http.ResponseWriter, statusCode int, name string, data pageData) {
	tmpl, ok := v.templates[name]
	if !ok {
		v.logger.Error("template not found", slog.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := tmpl.Execute(w, data); err != nil {
		// ヘッダー送信後なのでステータスは変更できない
		v.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}

// RenderNotFound は404フォールバックページをレンダリングする。
func (v *Views) RenderNotFound(w http.ResponseWriter, currentUser *model.User) {
	v.Render(w, http.StatusNotFound, "notFound", pageData{
		Title:       "ページが見つかりません",
		CurrentUser: currentUser,
	})
}

// RenderServerError は500フォールバックページをレンダリングする。
func (v *Views) RenderServerError(w http.ResponseWriter, currentUser *model.User) {
	v.Render(w, http.StatusInternalServerError, "serverError", pageData{
		Title:       "内部エラー",
		CurrentUser: currentUser,
	})
}
