package spacetraveling

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"
)

func TestBuildURL(t *testing.T) {
	cases := []struct {
		base string
		segs []string
		want string
	}{
		{"https://blog.example.com", nil, "https://blog.example.com"},
		{"https://blog.example.com", []string{"post", "hello"}, "https://blog.example.com/post/hello/"},
		{"https://blog.example.com/sub/", []string{"post", "x"}, "https://blog.example.com/sub/post/x/"},
	}
	for _, tc := range cases {
		if got := BuildURL(tc.base, tc.segs...); got != tc.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tc.base, tc.segs, got, tc.want)
		}
	}
}

func TestPostPath(t *testing.T) {
	if got := PostPath("como-utilizar-hooks"); got != "/post/como-utilizar-hooks/" {
		t.Fatalf("PostPath = %q", got)
	}
	if got := PostPath("a b"); got != "/post/a%20b/" {
		t.Fatalf("PostPath escapes = %q", got)
	}
}

func TestLoadMoreURL(t *testing.T) {
	cursor := "https://repo.cdn.prismic.io/api/v2/documents/search?ref=X&page=2&pageSize=1"
	got := LoadMoreURL(cursor, 1)
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Path != "/posts/more/" {
		t.Errorf("Path = %q", u.Path)
	}
	if u.Query().Get("cursor") != cursor {
		t.Errorf("cursor = %q, want %q", u.Query().Get("cursor"), cursor)
	}
	if u.Query().Get("page") != "1" {
		t.Errorf("page = %q", u.Query().Get("page"))
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	published := time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)
	post := PostDetail{UID: "hello", Title: "Hello", Subtitle: "Sub", Author: "Ana", PublishedAt: &published, Banner: "/public/banners/hello.jpg"}
	var data map[string]any
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(post, SiteConfig{Name: "spacetraveling", URL: "https://blog.example.com"})), &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if data["headline"] != "Hello" || data["url"] != "https://blog.example.com/post/hello/" {
		t.Errorf("unexpected data: %v", data)
	}
	if data["datePublished"] != "2021-03-15T00:00:00Z" {
		t.Errorf("datePublished = %v", data["datePublished"])
	}
	if data["image"] != "https://blog.example.com/public/banners/hello.jpg" {
		t.Errorf("image = %v", data["image"])
	}
	author, _ := data["author"].(map[string]any)
	if author["name"] != "Ana" {
		t.Errorf("author = %v", data["author"])
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("DEBUG").String() != "DEBUG" || ParseLevel("bogus").String() != "INFO" || ParseLevel("warn").String() != "WARN" {
		t.Fatal("unexpected level mapping")
	}
}
