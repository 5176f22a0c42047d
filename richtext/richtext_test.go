package richtext

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/microcosm-cc/bluemonday"

	"github.com/eringen/spacetraveling/prismic"
)

func render(rt prismic.RichText) string {
	var buf bytes.Buffer
	New().Render(&buf, rt)
	return buf.String()
}

func TestRenderBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    prismic.RichText
		expected string
	}{
		{
			"paragraph escapes text",
			prismic.RichText{{Type: prismic.BlockParagraph, Text: "Hello & <world>"}},
			"<p>Hello &amp; &lt;world&gt;</p>",
		},
		{
			"heading",
			prismic.RichText{{Type: prismic.BlockHeading2, Text: "Title"}},
			"<h2>Title</h2>",
		},
		{
			"preformatted keeps newlines as breaks",
			prismic.RichText{{Type: prismic.BlockPreformatted, Text: "a\nb"}},
			"<pre>a<br />b</pre>",
		},
		{
			"block label",
			prismic.RichText{{Type: prismic.BlockParagraph, Text: "x", Label: "note"}},
			`<p class="note">x</p>`,
		},
		{
			"unknown block type is skipped",
			prismic.RichText{{Type: "table", Text: "x"}},
			"",
		},
	}
	for _, tt := range tests {
		if got := render(tt.input); got != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestRenderGroupsListItems(t *testing.T) {
	got := render(prismic.RichText{
		{Type: prismic.BlockListItem, Text: "a"},
		{Type: prismic.BlockListItem, Text: "b"},
		{Type: prismic.BlockOListItem, Text: "c"},
		{Type: prismic.BlockParagraph, Text: "d"},
		{Type: prismic.BlockListItem, Text: "e"},
	})
	want := "<ul><li>a</li><li>b</li></ul><ol><li>c</li></ol><p>d</p><ul><li>e</li></ul>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderNestedSpans(t *testing.T) {
	got := render(prismic.RichText{{
		Type: prismic.BlockParagraph,
		Text: "bold italic text",
		Spans: []prismic.Span{
			{Start: 0, End: 16, Type: prismic.SpanStrong},
			{Start: 5, End: 11, Type: prismic.SpanEm},
		},
	}})
	want := "<p><strong>bold <em>italic</em> text</strong></p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderOverlappingSpansStayNested(t *testing.T) {
	got := render(prismic.RichText{{
		Type: prismic.BlockParagraph,
		Text: "abcdef",
		Spans: []prismic.Span{
			{Start: 0, End: 4, Type: prismic.SpanStrong},
			{Start: 2, End: 6, Type: prismic.SpanEm},
		},
	}})
	want := "<p><strong>ab<em>cd</em></strong><em>ef</em></p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderSpanOffsetsAreUTF16(t *testing.T) {
	got := render(prismic.RichText{{
		Type:  prismic.BlockParagraph,
		Text:  "😀 ok",
		Spans: []prismic.Span{{Start: 3, End: 5, Type: prismic.SpanStrong}},
	}})
	want := "<p>😀 <strong>ok</strong></p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderSpanOutOfRangeIsClamped(t *testing.T) {
	got := render(prismic.RichText{{
		Type:  prismic.BlockParagraph,
		Text:  "abc",
		Spans: []prismic.Span{{Start: 1, End: 99, Type: prismic.SpanEm}},
	}})
	if got != "<p>a<em>bc</em></p>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderHyperlinks(t *testing.T) {
	tests := []struct {
		name     string
		data     prismic.LinkData
		expected string
	}{
		{
			"web link with target",
			prismic.LinkData{LinkType: prismic.LinkWeb, URL: "https://example.com", Target: "_blank"},
			`<p>see <a href="https://example.com" target="_blank" rel="noopener">docs</a></p>`,
		},
		{
			"document link resolves to route",
			prismic.LinkData{LinkType: prismic.LinkDocument, Type: "post", UID: "hello"},
			`<p>see <a href="/post/hello/">docs</a></p>`,
		},
		{
			"unsafe scheme drops the link",
			prismic.LinkData{LinkType: prismic.LinkWeb, URL: "javascript:alert(1)"},
			`<p>see docs</p>`,
		},
	}
	for _, tt := range tests {
		data := tt.data
		got := render(prismic.RichText{{
			Type:  prismic.BlockParagraph,
			Text:  "see docs",
			Spans: []prismic.Span{{Start: 4, End: 8, Type: prismic.SpanHyperlink, Data: &data}},
		}})
		if got != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestRenderLabelSpan(t *testing.T) {
	got := render(prismic.RichText{{
		Type:  prismic.BlockParagraph,
		Text:  "run go test",
		Spans: []prismic.Span{{Start: 4, End: 11, Type: prismic.SpanLabel, Data: &prismic.LinkData{Label: "code"}}},
	}})
	if got != `<p>run <span class="code">go test</span></p>` {
		t.Errorf("got %q", got)
	}
}

func TestRenderImage(t *testing.T) {
	got := render(prismic.RichText{{
		Type:       prismic.BlockImage,
		URL:        "https://images.prismic.io/x.png",
		Alt:        "Alt",
		Dimensions: &prismic.Dimensions{Width: 800, Height: 600},
	}})
	want := `<p class="block-img"><img src="https://images.prismic.io/x.png" alt="Alt" width="800" height="600" loading="lazy" /></p>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCustomLinkResolver(t *testing.T) {
	r := New(WithLinkResolver(func(l prismic.LinkData) string { return "/blog/" + l.UID }))
	var buf bytes.Buffer
	r.Render(&buf, prismic.RichText{{
		Type: prismic.BlockParagraph,
		Text: "x",
		Spans: []prismic.Span{{Start: 0, End: 1, Type: prismic.SpanHyperlink,
			Data: &prismic.LinkData{LinkType: prismic.LinkDocument, Type: "post", UID: "a"}}},
	}})
	if buf.String() != `<p><a href="/blog/a">x</a></p>` {
		t.Errorf("got %q", buf.String())
	}
}

var embed = prismic.RichText{{
	Type: prismic.BlockEmbed,
	Oembed: &prismic.Embed{
		Type:         "video",
		EmbedURL:     "https://www.youtube.com/watch?v=x",
		ProviderName: "YouTube",
		HTML:         `<iframe src="https://www.youtube.com/embed/x"></iframe><script>alert(1)</script>`,
	},
}}

func TestAsHTMLSanitizesByDefault(t *testing.T) {
	got := string(New().AsHTML(embed))
	if strings.Contains(got, "<script") || strings.Contains(got, "<iframe") {
		t.Errorf("expected embed markup to be stripped, got %q", got)
	}
	if !strings.Contains(got, `data-oembed="https://www.youtube.com/watch?v=x"`) {
		t.Errorf("expected oembed wrapper to survive, got %q", got)
	}
}

func TestAsHTMLWithPolicy(t *testing.T) {
	rt := prismic.RichText{{Type: prismic.BlockParagraph, Text: "hello"}}
	got := string(New(WithPolicy(bluemonday.StrictPolicy())).AsHTML(rt))
	if got != "hello" {
		t.Errorf("expected strict policy to strip the paragraph tag, got %q", got)
	}
}

func TestAsHTMLTrustedKeepsMarkup(t *testing.T) {
	r := New(Trusted())
	if !r.Trusted() {
		t.Fatal("expected renderer to report trusted")
	}
	got := string(r.AsHTML(embed))
	if !strings.Contains(got, "<iframe") {
		t.Errorf("expected trusted output to keep iframe, got %q", got)
	}
}

func TestAsHTMLPlainParagraphUnchanged(t *testing.T) {
	got := string(New().AsHTML(prismic.RichText{{Type: prismic.BlockParagraph, Text: "Hello & world"}}))
	if got != "<p>Hello &amp; world</p>" {
		t.Errorf("got %q", got)
	}
}

func TestComponentWritesHTML(t *testing.T) {
	var buf bytes.Buffer
	rt := prismic.RichText{{Type: prismic.BlockParagraph, Text: "hi"}}
	if err := New().Component(rt).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<p>hi</p>" {
		t.Errorf("got %q", buf.String())
	}
}
