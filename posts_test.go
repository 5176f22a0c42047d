package spacetraveling

import (
	"testing"
	"time"

	"github.com/eringen/spacetraveling/prismic"
)

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2021-03-15T00:00:00Z", "15 mar 2021"},
		{"2021-01-01T12:00:00Z", "01 jan 2021"},
		{"2020-12-31T23:59:59Z", "31 dez 2020"},
		{"2022-02-05T10:00:00Z", "05 fev 2022"},
	}
	for _, tc := range cases {
		ts, err := time.Parse(time.RFC3339, tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if got := FormatDate(&ts, nil); got != tc.want {
			t.Errorf("FormatDate(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDateNil(t *testing.T) {
	if got := FormatDate(nil, time.UTC); got != "" {
		t.Fatalf("FormatDate(nil) = %q, want empty", got)
	}
}

func TestFormatDateLocation(t *testing.T) {
	ts := time.Date(2021, 3, 15, 1, 0, 0, 0, time.UTC)
	loc := time.FixedZone("BRT", -3*60*60)
	if got := FormatDate(&ts, loc); got != "14 mar 2021" {
		t.Fatalf("FormatDate in BRT = %q, want %q", got, "14 mar 2021")
	}
}

func TestCountWords(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"A B C", 3},
		{"D E", 2},
		{"one", 1},
		{"", 1},
		{"a  b", 3},
		{" a", 2},
	}
	for _, tc := range cases {
		if got := CountWords(tc.in); got != tc.want {
			t.Errorf("CountWords(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func paragraph(text string) prismic.Block {
	return prismic.Block{Type: prismic.BlockParagraph, Text: text}
}

func TestReadingTime(t *testing.T) {
	sections := []ContentSection{
		{Heading: "A B C", Body: prismic.RichText{paragraph("D E")}},
	}
	if got := ReadingTime(sections); got != 1 {
		t.Fatalf("ReadingTime = %d, want 1", got)
	}

	sections = []ContentSection{
		{Heading: "X", Body: prismic.RichText{paragraph("a b"), paragraph("c")}},
		{Heading: "Y Y", Body: prismic.RichText{paragraph("d")}},
	}
	if got := ReadingTime(sections); got != 1 {
		t.Fatalf("ReadingTime = %d, want 1", got)
	}
}

func TestReadingTimeRoundsUp(t *testing.T) {
	words := make([]byte, 0, 402)
	for i := 0; i < 201; i++ {
		if i > 0 {
			words = append(words, ' ')
		}
		words = append(words, 'w')
	}
	sections := []ContentSection{{Heading: string(words)}}
	if got := ReadingTime(sections); got != 2 {
		t.Fatalf("ReadingTime for 201 words = %d, want 2", got)
	}
}

func TestReadingTimeEmpty(t *testing.T) {
	if got := ReadingTime(nil); got != 0 {
		t.Fatalf("ReadingTime(nil) = %d, want 0", got)
	}
}

func TestDetailCopiesBodies(t *testing.T) {
	doc := prismic.Document{
		UID:  "hello",
		Type: postType,
		Data: []byte(`{"title":"Hello","author":"Ana","banner":{"url":"https://images.example.com/b.png"},
			"content":[{"heading":"First","body":[{"type":"paragraph","text":"one two","spans":[]}]}]}`),
	}
	post, err := detail(doc, time.UTC)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if post.Title != "Hello" || post.Author != "Ana" || post.Banner != "https://images.example.com/b.png" {
		t.Fatalf("unexpected post: %+v", post)
	}
	if post.Date != "" || post.PublishedAt != nil {
		t.Fatalf("unpublished post should have no date, got %q", post.Date)
	}
	if len(post.Content) != 1 || post.Content[0].Heading != "First" {
		t.Fatalf("unexpected content: %+v", post.Content)
	}

	again, err := detail(doc, time.UTC)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	post.Content[0].Body[0].Text = "changed"
	if again.Content[0].Body[0].Text != "one two" {
		t.Fatalf("bodies of separate details alias each other")
	}
}

func TestSummarizeKeepsOrder(t *testing.T) {
	published := prismic.Time{Time: time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)}
	docs := []prismic.Document{
		{UID: "b", Data: []byte(`{"title":"B"}`), FirstPublicationDate: &published},
		{UID: "a", Data: []byte(`{"title":"A"}`)},
	}
	posts, err := summarizeAll(docs, time.UTC)
	if err != nil {
		t.Fatalf("summarizeAll: %v", err)
	}
	if len(posts) != 2 || posts[0].UID != "b" || posts[1].UID != "a" {
		t.Fatalf("unexpected order: %+v", posts)
	}
	if posts[0].Date != "15 mar 2021" {
		t.Fatalf("Date = %q, want %q", posts[0].Date, "15 mar 2021")
	}
	if posts[1].Date != "" {
		t.Fatalf("Date = %q, want empty", posts[1].Date)
	}
}
