package spacetraveling

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "pages.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestWriteAndGetPage(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	built := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	pages := []Page{
		{Path: "/", ContentType: mimeHTML, Body: []byte("<h1>home</h1>"), BuiltAt: built},
		{Path: "/post/a/", ContentType: mimeHTML, Body: []byte("<h1>a</h1>"), BuiltAt: built},
	}
	if err := s.WritePages(ctx, pages); err != nil {
		t.Fatalf("WritePages failed: %v", err)
	}

	got, err := s.GetPage(ctx, "/post/a/")
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if string(got.Body) != "<h1>a</h1>" {
		t.Errorf("Body = %q, want %q", got.Body, "<h1>a</h1>")
	}
	if got.ContentType != mimeHTML {
		t.Errorf("ContentType = %q, want %q", got.ContentType, mimeHTML)
	}
	if got.Fallback {
		t.Errorf("built page should not be a fallback")
	}
	if !got.BuiltAt.Equal(built) {
		t.Errorf("BuiltAt = %v, want %v", got.BuiltAt, built)
	}
}

func TestGetPageNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetPage(context.Background(), "/missing/")
	if !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("err = %v, want ErrPageNotFound", err)
	}
}

func TestWritePagesReplacesPreviousBuild(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.WritePages(ctx, []Page{
		{Path: "/", ContentType: mimeHTML, Body: []byte("v1")},
		{Path: "/post/old/", ContentType: mimeHTML, Body: []byte("old")},
	}); err != nil {
		t.Fatalf("first WritePages failed: %v", err)
	}
	if err := s.WritePages(ctx, []Page{
		{Path: "/", ContentType: mimeHTML, Body: []byte("v2")},
	}); err != nil {
		t.Fatalf("second WritePages failed: %v", err)
	}

	paths, err := s.ListPaths(ctx)
	if err != nil {
		t.Fatalf("ListPaths failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != "/" {
		t.Fatalf("paths = %v, want [/]", paths)
	}
	got, _ := s.GetPage(ctx, "/")
	if string(got.Body) != "v2" {
		t.Fatalf("Body = %q, want v2", got.Body)
	}
}

func TestWritePagesIsAtomic(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.WritePages(ctx, []Page{{Path: "/", ContentType: mimeHTML, Body: []byte("good")}}); err != nil {
		t.Fatalf("WritePages failed: %v", err)
	}
	// Duplicate paths violate the primary key halfway through the batch.
	err := s.WritePages(ctx, []Page{
		{Path: "/", ContentType: mimeHTML, Body: []byte("bad")},
		{Path: "/", ContentType: mimeHTML, Body: []byte("bad")},
	})
	if err == nil {
		t.Fatal("expected duplicate path to fail")
	}
	got, err := s.GetPage(ctx, "/")
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if string(got.Body) != "good" {
		t.Fatalf("failed batch changed the store: %q", got.Body)
	}
}

func TestSavePageUpserts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.SavePage(ctx, Page{Path: "/post/new/", ContentType: mimeHTML, Body: []byte("one"), Fallback: true}); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}
	if err := s.SavePage(ctx, Page{Path: "/post/new/", ContentType: mimeHTML, Body: []byte("two"), Fallback: true}); err != nil {
		t.Fatalf("SavePage failed: %v", err)
	}
	got, err := s.GetPage(ctx, "/post/new/")
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if string(got.Body) != "two" || !got.Fallback {
		t.Fatalf("got %q fallback=%v, want two fallback=true", got.Body, got.Fallback)
	}
	if got.BuiltAt.IsZero() {
		t.Fatal("BuiltAt should default to now")
	}
}
