// Package preview renders section documents to sanitized HTML.
package preview

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	nethtml "golang.org/x/net/html"
)

// Renderer converts markdown with tables and raw <sup> markers to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GitHub tables enabled.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render converts markdown and sanitizes the result.
func (r *Renderer) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return Sanitize(&buf)
}

var allowedTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "br": true, "hr": true, "blockquote": true,
	"ul": true, "ol": true, "li": true,
	"table": true, "thead": true, "tbody": true, "tr": true, "th": true, "td": true,
	"em": true, "strong": true, "del": true, "code": true, "pre": true,
	"sup": true, "sub": true, "a": true,
}

// allowedAttrs lists the attributes kept per tag.
var allowedAttrs = map[string]map[string]bool{
	"a":  {"href": true, "title": true},
	"th": {"align": true},
	"td": {"align": true},
	"ol": {"start": true},
}

// dropContent lists elements removed together with everything inside.
var dropContent = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "noscript": true, "template": true,
}

// Sanitize keeps an allow-list of tags and attributes. Disallowed tags
// are unwrapped, so their text survives; script-like elements are
// removed whole. Links keep only http, https, mailto and relative hrefs.
func Sanitize(r io.Reader) (string, error) {
	z := nethtml.NewTokenizer(r)
	var sb strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case nethtml.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", fmt.Errorf("sanitize: %w", err)
			}
			return sb.String(), nil

		case nethtml.TextToken:
			if skip == 0 {
				sb.WriteString(nethtml.EscapeString(string(z.Text())))
			}

		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			tok := z.Token()
			if dropContent[tok.Data] {
				if tt == nethtml.StartTagToken {
					skip++
				}
				continue
			}
			if skip > 0 || !allowedTags[tok.Data] {
				continue
			}
			tok.Attr = filterAttrs(tok.Data, tok.Attr)
			sb.WriteString(tok.String())

		case nethtml.EndTagToken:
			tok := z.Token()
			if dropContent[tok.Data] {
				skip = max(0, skip-1)
				continue
			}
			if skip > 0 || !allowedTags[tok.Data] {
				continue
			}
			sb.WriteString(tok.String())
		}
	}
}

func filterAttrs(tag string, attrs []nethtml.Attribute) []nethtml.Attribute {
	allowed := allowedAttrs[tag]
	var out []nethtml.Attribute
	for _, a := range attrs {
		if a.Namespace != "" || !allowed[a.Key] {
			continue
		}
		if a.Key == "href" && !safeHref(a.Val) {
			continue
		}
		out = append(out, nethtml.Attribute{Key: a.Key, Val: a.Val})
	}
	return out
}

func safeHref(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	}
	return false
}
