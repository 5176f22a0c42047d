// Package prismictest provides an in-memory Prismic API for tests.
package prismictest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eringen/spacetraveling/prismic"
)

// Ref is the master ref served by every Server.
const Ref = "master-ref"

var reAt = regexp.MustCompile(`at\(([^,]+),\s*"((?:[^"\\]|\\.)*)"\)`)

// Server serves the API root and the documents/search endpoint over a fixed
// set of documents. Results keep insertion order.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	docs     []prismic.Document
	searches int
	pages    int
	failCode int
	delay    time.Duration
}

// NewServer starts a server holding docs. Call Close when done.
func NewServer(docs ...prismic.Document) *Server {
	s := &Server{docs: docs}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", s.handleRoot)
	mux.HandleFunc("/api/v2/documents/search", s.handleSearch)
	s.Server = httptest.NewServer(mux)
	return s
}

// Endpoint is the repository endpoint to hand to prismic.New.
func (s *Server) Endpoint() string {
	return s.URL + "/api/v2"
}

// SetDocuments replaces the served documents.
func (s *Server) SetDocuments(docs ...prismic.Document) {
	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
}

// Fail makes every following search respond with code. Zero restores
// normal behavior.
func (s *Server) Fail(code int) {
	s.mu.Lock()
	s.failCode = code
	s.mu.Unlock()
}

// Delay holds every search response for d.
func (s *Server) Delay(d time.Duration) {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
}

// Searches returns how many search requests were served.
func (s *Server) Searches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches
}

// PageFetches returns how many search requests asked for a page past the first.
func (s *Server) PageFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, prismic.API{Refs: []prismic.Ref{
		{ID: "master", Ref: Ref, Label: "Master", IsMasterRef: true},
	}})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	s.searches++
	page, _ := strconv.Atoi(q.Get("page"))
	if page > 1 {
		s.pages++
	}
	failCode, delay := s.failCode, s.delay
	docs := append([]prismic.Document(nil), s.docs...)
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failCode != 0 {
		writeJSON(w, failCode, map[string]string{"message": http.StatusText(failCode)})
		return
	}
	if q.Get("ref") != Ref {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "missing or invalid ref"})
		return
	}

	matched := filter(docs, q.Get("q"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize <= 0 {
		pageSize = prismic.DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (len(matched) + pageSize - 1) / pageSize
	lo := min((page-1)*pageSize, len(matched))
	hi := min(lo+pageSize, len(matched))

	resp := prismic.Response{
		Page:             page,
		ResultsPerPage:   pageSize,
		ResultsSize:      hi - lo,
		TotalResultsSize: len(matched),
		TotalPages:       totalPages,
		Results:          matched[lo:hi],
	}
	if page < totalPages {
		next := s.pageURL(r.URL, page+1)
		resp.NextPage = &next
	}
	if page > 1 {
		prev := s.pageURL(r.URL, page-1)
		resp.PrevPage = &prev
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) pageURL(u *url.URL, page int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	return s.URL + u.Path + "?" + q.Encode()
}

func filter(docs []prismic.Document, query string) []prismic.Document {
	out := make([]prismic.Document, 0, len(docs))
	matches := reAt.FindAllStringSubmatch(query, -1)
	for _, d := range docs {
		ok := true
		for _, m := range matches {
			path, value := strings.TrimSpace(m[1]), m[2]
			switch {
			case path == "document.type":
				ok = ok && d.Type == value
			case strings.HasPrefix(path, "my.") && strings.HasSuffix(path, ".uid"):
				docType := strings.TrimSuffix(strings.TrimPrefix(path, "my."), ".uid")
				ok = ok && d.Type == docType && d.UID == value
			default:
				ok = false
			}
		}
		if ok {
			out = append(out, d)
		}
	}
	return out
}

// Doc builds a document whose data field is data marshaled as JSON.
// A zero published time leaves the publication dates null.
func Doc(docType, uid string, published time.Time, data any) prismic.Document {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(fmt.Sprintf("prismictest: marshal data: %v", err))
	}
	d := prismic.Document{
		ID:   "id-" + uid,
		UID:  uid,
		Type: docType,
		Tags: []string{},
		Lang: "pt-br",
		Data: raw,
	}
	if !published.IsZero() {
		d.FirstPublicationDate = &prismic.Time{Time: published}
		d.LastPublicationDate = &prismic.Time{Time: published}
	}
	return d
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
