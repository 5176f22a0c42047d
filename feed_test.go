package spacetraveling

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func feedPosts() []PostSummary {
	published := time.Date(2021, 3, 15, 12, 0, 0, 0, time.UTC)
	return []PostSummary{
		{UID: "como-utilizar-hooks", PublishedAt: &published, Date: "15 mar 2021", Title: "Como utilizar Hooks", Subtitle: "Pensando em sincronização", Author: "Joseph Oliveira"},
		{UID: "rascunho", Title: "Rascunho"},
	}
}

func TestFeedXMLParses(t *testing.T) {
	cfg := SiteConfig{Name: "spacetraveling", URL: "https://blog.example.com"}
	b, err := feedXML(cfg, feedPosts())
	if err != nil {
		t.Fatalf("feedXML: %v", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}
	if feed.Title != "spacetraveling" {
		t.Errorf("Title = %q", feed.Title)
	}
	if feed.Language != "pt-br" {
		t.Errorf("Language = %q", feed.Language)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(feed.Items))
	}
	item := feed.Items[0]
	if item.Link != "https://blog.example.com/post/como-utilizar-hooks/" {
		t.Errorf("Link = %q", item.Link)
	}
	if item.Description != "Pensando em sincronização" {
		t.Errorf("Description = %q", item.Description)
	}
	if item.PublishedParsed == nil || !item.PublishedParsed.Equal(*feedPosts()[0].PublishedAt) {
		t.Errorf("PublishedParsed = %v", item.PublishedParsed)
	}
	if feed.Items[1].PublishedParsed != nil {
		t.Errorf("unpublished post should have no pubDate")
	}
}

func TestSitemapXML(t *testing.T) {
	b, err := sitemapXML("https://blog.example.com", feedPosts())
	if err != nil {
		t.Fatalf("sitemapXML: %v", err)
	}
	if !strings.HasPrefix(string(b), xml.Header) {
		t.Fatalf("missing XML header")
	}
	var set sitemapURLSet
	if err := xml.Unmarshal(b, &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(set.URLs) != 3 {
		t.Fatalf("urls = %d, want 3", len(set.URLs))
	}
	if set.URLs[0].Loc != "https://blog.example.com" {
		t.Errorf("first loc = %q", set.URLs[0].Loc)
	}
	if set.URLs[1].Loc != "https://blog.example.com/post/como-utilizar-hooks/" || set.URLs[1].LastMod != "2021-03-15" {
		t.Errorf("post url = %+v", set.URLs[1])
	}
	if set.URLs[2].LastMod != "" {
		t.Errorf("unpublished lastmod = %q", set.URLs[2].LastMod)
	}
}
