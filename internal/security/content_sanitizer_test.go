package security

import (
	"strings"
	"testing"
)

func TestSanitize_RemovesScriptTags(t *testing.T) {
	s := NewContentSanitizer()

	out := s.Sanitize(`<p>hello</p><script>alert("xss")</script>`)

	if strings.Contains(out, "<script") {
		t.Errorf("output should not contain script tag: %q", out)
	}
	if !strings.Contains(out, "<p>hello</p>") {
		t.Errorf("output should keep allowed tags: %q", out)
	}
}

func TestSanitize_RemovesEventAttributes(t *testing.T) {
	s := NewContentSanitizer()

	out := s.Sanitize(`<p onclick="alert('xss')">text</p>`)

	if strings.Contains(out, "onclick") {
		t.Errorf("output should not contain event attributes: %q", out)
	}
}

func TestSanitize_AllowsHTTPSImageOnly(t *testing.T) {
	s := NewContentSanitizer()

	httpsOut := s.Sanitize(`<img src="https://example.com/a.png" alt="a">`)
	if !strings.Contains(httpsOut, "https://example.com/a.png") {
		t.Errorf("https image should be kept: %q", httpsOut)
	}

	jsOut := s.Sanitize(`<img src="javascript:alert(1)">`)
	if strings.Contains(jsOut, "javascript:") {
		t.Errorf("javascript scheme should be removed: %q", jsOut)
	}
}

func TestSanitize_AddsNoopenerToLinks(t *testing.T) {
	s := NewContentSanitizer()

	out := s.Sanitize(`<a href="https://example.com">link</a>`)

	if !strings.Contains(out, `target="_blank"`) {
		t.Errorf("links should get target=_blank: %q", out)
	}
	if !strings.Contains(out, "noopener") {
		t.Errorf("links should get rel=noopener: %q", out)
	}
}

func TestSanitize_EmptyInput_ReturnsEmpty(t *testing.T) {
	s := NewContentSanitizer()

	if out := s.Sanitize(""); out != "" {
		t.Errorf("Sanitize(\"\") = %q, want empty", out)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	s := NewContentSanitizer()

	input := `<p>text <strong>bold</strong></p><script>bad()</script>`
	once := s.Sanitize(input)
	twice := s.Sanitize(once)

	if once != twice {
		t.Errorf("sanitize should be idempotent: %q != %q", once, twice)
	}
}
