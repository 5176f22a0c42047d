package spacetraveling

import (
	"fmt"
	"strings"
	"time"

	"github.com/eringen/spacetraveling/prismic"
)

const (
	postType       = "post"
	wordsPerMinute = 200
)

// postFields mirrors the data of the "post" custom type.
type postFields struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
	Banner   struct {
		URL string `json:"url"`
	} `json:"banner"`
	Content []struct {
		Heading string           `json:"heading"`
		Body    prismic.RichText `json:"body"`
	} `json:"content"`
}

var ptBRMonths = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// FormatDate renders t as "dd MMM yyyy" with pt-BR month abbreviations,
// e.g. "15 mar 2021". A nil location means UTC. A nil time renders as "".
func FormatDate(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return fmt.Sprintf("%02d %s %04d", lt.Day(), ptBRMonths[lt.Month()-1], lt.Year())
}

// CountWords splits s on single spaces. Consecutive spaces yield empty
// words that still count, and "" counts as one word.
func CountWords(s string) int {
	return len(strings.Split(s, " "))
}

// ReadingTime estimates minutes to read sections at 200 words per minute,
// rounding up. Headings and every body node's text are counted.
func ReadingTime(sections []ContentSection) int {
	total := 0
	for _, s := range sections {
		total += CountWords(s.Heading)
		for _, node := range s.Body {
			total += CountWords(node.Text)
		}
	}
	return (total + wordsPerMinute - 1) / wordsPerMinute
}

func publishedAt(doc prismic.Document) *time.Time {
	if doc.FirstPublicationDate == nil || doc.FirstPublicationDate.IsZero() {
		return nil
	}
	t := doc.FirstPublicationDate.Time
	return &t
}

func summarize(doc prismic.Document, loc *time.Location) (PostSummary, error) {
	var f postFields
	if err := doc.DecodeData(&f); err != nil {
		return PostSummary{}, err
	}
	at := publishedAt(doc)
	return PostSummary{
		UID:         doc.UID,
		PublishedAt: at,
		Date:        FormatDate(at, loc),
		Title:       f.Title,
		Subtitle:    f.Subtitle,
		Author:      f.Author,
	}, nil
}

func summarizeAll(docs []prismic.Document, loc *time.Location) ([]PostSummary, error) {
	posts := make([]PostSummary, 0, len(docs))
	for _, d := range docs {
		p, err := summarize(d, loc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// detail reshapes a document into PostDetail. Section bodies are copied so
// the result never aliases the decoded response.
func detail(doc prismic.Document, loc *time.Location) (PostDetail, error) {
	var f postFields
	if err := doc.DecodeData(&f); err != nil {
		return PostDetail{}, err
	}
	at := publishedAt(doc)
	sections := make([]ContentSection, 0, len(f.Content))
	for _, c := range f.Content {
		sections = append(sections, ContentSection{
			Heading: c.Heading,
			Body:    append(prismic.RichText(nil), c.Body...),
		})
	}
	return PostDetail{
		UID:         doc.UID,
		PublishedAt: at,
		Date:        FormatDate(at, loc),
		Title:       f.Title,
		Subtitle:    f.Subtitle,
		Banner:      f.Banner.URL,
		Author:      f.Author,
		Content:     sections,
	}, nil
}
