// Package richtext renders Prismic structured text as HTML.
//
// Output is sanitized with a bluemonday policy unless the Renderer is built
// with the Trusted option. Trusted output is written verbatim: embed HTML
// from the CMS reaches the page as-is, so whoever enables it owns the
// sanitization of the content repository.
package richtext

import (
	"bytes"
	"context"
	"html"
	"html/template"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"github.com/eringen/spacetraveling/prismic"
)

var reTarget = regexp.MustCompile(`^_(blank|self|parent|top)$`)

// LinkResolver maps a document link to an href.
type LinkResolver func(link prismic.LinkData) string

// DefaultLinkResolver links documents to /<type>/<uid>/.
func DefaultLinkResolver(link prismic.LinkData) string {
	if link.UID == "" || link.Type == "" {
		return "/"
	}
	return "/" + url.PathEscape(link.Type) + "/" + url.PathEscape(link.UID) + "/"
}

// Renderer converts structured text to HTML.
type Renderer struct {
	trusted bool
	policy  *bluemonday.Policy
	resolve LinkResolver
}

// Option configures a Renderer.
type Option func(*Renderer)

// Trusted disables sanitization. See the package documentation.
func Trusted() Option {
	return func(r *Renderer) { r.trusted = true }
}

// WithPolicy replaces the default sanitization policy.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(r *Renderer) { r.policy = p }
}

// WithLinkResolver replaces DefaultLinkResolver.
func WithLinkResolver(fn LinkResolver) Option {
	return func(r *Renderer) { r.resolve = fn }
}

// New returns a Renderer. Without options it sanitizes its output.
func New(opts ...Option) *Renderer {
	r := &Renderer{resolve: DefaultLinkResolver}
	for _, opt := range opts {
		opt(r)
	}
	if r.policy == nil {
		r.policy = DefaultPolicy()
	}
	return r
}

// DefaultPolicy is the UGC policy extended with the attributes the
// renderer emits for labels, images and embeds.
func DefaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	p.AllowAttrs("class").OnElements("p", "span", "pre", "h1", "h2", "h3", "h4", "h5", "h6", "li")
	p.AllowAttrs("target").Matching(reTarget).OnElements("a")
	p.AllowAttrs("data-oembed", "data-oembed-type", "data-oembed-provider").OnElements("div")
	return p
}

// Trusted reports whether output skips sanitization.
func (r *Renderer) Trusted() bool {
	return r.trusted
}

// AsHTML renders rt and returns markup safe to embed in html/template.
func (r *Renderer) AsHTML(rt prismic.RichText) template.HTML {
	var buf bytes.Buffer
	r.Render(&buf, rt)
	if r.trusted {
		return template.HTML(buf.String())
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// Component returns rt as a templ.Component.
func (r *Renderer) Component(rt prismic.RichText) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, string(r.AsHTML(rt)))
		return err
	})
}

// Render writes unsanitized HTML for rt to buf. Consecutive list items are
// grouped into a single <ul> or <ol>.
func (r *Renderer) Render(buf *bytes.Buffer, rt prismic.RichText) {
	list := ""
	closeList := func() {
		if list != "" {
			buf.WriteString("</" + list + ">")
			list = ""
		}
	}
	for _, b := range rt {
		switch b.Type {
		case prismic.BlockListItem, prismic.BlockOListItem:
			want := "ul"
			if b.Type == prismic.BlockOListItem {
				want = "ol"
			}
			if list != want {
				closeList()
				buf.WriteString("<" + want + ">")
				list = want
			}
			buf.WriteString("<li" + labelAttr(b.Label) + ">")
			r.writeText(buf, b.Text, b.Spans)
			buf.WriteString("</li>")
			continue
		}
		closeList()
		r.writeBlock(buf, b)
	}
	closeList()
}

func (r *Renderer) writeBlock(buf *bytes.Buffer, b prismic.Block) {
	switch b.Type {
	case prismic.BlockHeading1, prismic.BlockHeading2, prismic.BlockHeading3,
		prismic.BlockHeading4, prismic.BlockHeading5, prismic.BlockHeading6:
		tag := "h" + strings.TrimPrefix(b.Type, "heading")
		buf.WriteString("<" + tag + labelAttr(b.Label) + ">")
		r.writeText(buf, b.Text, b.Spans)
		buf.WriteString("</" + tag + ">")
	case prismic.BlockParagraph:
		buf.WriteString("<p" + labelAttr(b.Label) + ">")
		r.writeText(buf, b.Text, b.Spans)
		buf.WriteString("</p>")
	case prismic.BlockPreformatted:
		buf.WriteString("<pre" + labelAttr(b.Label) + ">")
		r.writeText(buf, b.Text, b.Spans)
		buf.WriteString("</pre>")
	case prismic.BlockImage:
		r.writeImage(buf, b)
	case prismic.BlockEmbed:
		writeEmbed(buf, b)
	}
}

func (r *Renderer) writeImage(buf *bytes.Buffer, b prismic.Block) {
	src := safeURL(b.URL)
	if src == "" {
		return
	}
	img := `<img src="` + src + `" alt="` + html.EscapeString(b.Alt) + `"`
	if b.Dimensions != nil && b.Dimensions.Width > 0 && b.Dimensions.Height > 0 {
		img += ` width="` + strconv.Itoa(b.Dimensions.Width) + `" height="` + strconv.Itoa(b.Dimensions.Height) + `"`
	}
	if b.Copyright != "" {
		img += ` title="` + html.EscapeString(b.Copyright) + `"`
	}
	img += ` loading="lazy" />`
	buf.WriteString(`<p class="block-img">`)
	if b.LinkTo != nil {
		if href := r.href(*b.LinkTo); href != "" {
			img = `<a href="` + href + `"` + targetAttr(b.LinkTo.Target) + `>` + img + `</a>`
		}
	}
	buf.WriteString(img)
	buf.WriteString(`</p>`)
}

func writeEmbed(buf *bytes.Buffer, b prismic.Block) {
	if b.Oembed == nil {
		return
	}
	buf.WriteString(`<div data-oembed="` + html.EscapeString(b.Oembed.EmbedURL) + `"`)
	buf.WriteString(` data-oembed-type="` + html.EscapeString(b.Oembed.Type) + `"`)
	buf.WriteString(` data-oembed-provider="` + html.EscapeString(b.Oembed.ProviderName) + `">`)
	buf.WriteString(b.Oembed.HTML)
	buf.WriteString(`</div>`)
}

type span struct {
	prismic.Span
	index int
}

// writeText writes text with its spans applied. Span offsets are UTF-16
// code units. Overlapping spans are closed and reopened so the output
// stays well nested.
func (r *Renderer) writeText(buf *bytes.Buffer, text string, spans []prismic.Span) {
	units := utf16.Encode([]rune(text))
	n := len(units)

	var active []span
	points := map[int]struct{}{0: {}, n: {}}
	for i, s := range spans {
		start, end := max(s.Start, 0), min(s.End, n)
		if start >= end || openTag(s, r) == "" {
			continue
		}
		s.Start, s.End = start, end
		active = append(active, span{Span: s, index: i})
		points[start] = struct{}{}
		points[end] = struct{}{}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Start != active[j].Start {
			return active[i].Start < active[j].Start
		}
		if active[i].End != active[j].End {
			return active[i].End > active[j].End
		}
		return active[i].index < active[j].index
	})
	bounds := make([]int, 0, len(points))
	for p := range points {
		bounds = append(bounds, p)
	}
	sort.Ints(bounds)

	var stack []span
	for i := 0; i+1 < len(bounds); i++ {
		from, to := bounds[i], bounds[i+1]
		var want []span
		for _, s := range active {
			if s.Start <= from && s.End >= to {
				want = append(want, s)
			}
		}
		keep := 0
		for keep < len(stack) && keep < len(want) && stack[keep].index == want[keep].index {
			keep++
		}
		for j := len(stack) - 1; j >= keep; j-- {
			buf.WriteString(closeTag(stack[j].Span))
		}
		for _, s := range want[keep:] {
			buf.WriteString(openTag(s.Span, r))
		}
		stack = want
		writeEscaped(buf, string(utf16.Decode(units[from:to])))
	}
	for j := len(stack) - 1; j >= 0; j-- {
		buf.WriteString(closeTag(stack[j].Span))
	}
}

func openTag(s prismic.Span, r *Renderer) string {
	switch s.Type {
	case prismic.SpanStrong:
		return "<strong>"
	case prismic.SpanEm:
		return "<em>"
	case prismic.SpanLabel:
		if s.Data == nil || s.Data.Label == "" {
			return ""
		}
		return `<span class="` + html.EscapeString(s.Data.Label) + `">`
	case prismic.SpanHyperlink:
		if s.Data == nil {
			return ""
		}
		href := r.href(*s.Data)
		if href == "" {
			return ""
		}
		return `<a href="` + href + `"` + targetAttr(s.Data.Target) + `>`
	}
	return ""
}

func closeTag(s prismic.Span) string {
	switch s.Type {
	case prismic.SpanStrong:
		return "</strong>"
	case prismic.SpanEm:
		return "</em>"
	case prismic.SpanLabel:
		return "</span>"
	case prismic.SpanHyperlink:
		return "</a>"
	}
	return ""
}

func (r *Renderer) href(link prismic.LinkData) string {
	if link.LinkType == prismic.LinkDocument {
		return safeURL(r.resolve(link))
	}
	return safeURL(link.URL)
}

func targetAttr(target string) string {
	if target == "" {
		return ""
	}
	return ` target="` + html.EscapeString(target) + `" rel="noopener"`
}

func labelAttr(label string) string {
	if label == "" {
		return ""
	}
	return ` class="` + html.EscapeString(label) + `"`
}

func writeEscaped(buf *bytes.Buffer, s string) {
	buf.WriteString(strings.ReplaceAll(html.EscapeString(s), "\n", "<br />"))
}

// safeURL returns raw escaped for an attribute when it is relative or uses
// an allowed scheme, and "" otherwise.
func safeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
