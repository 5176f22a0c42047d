package prismic

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Block types used in structured text fields.
const (
	BlockHeading1     = "heading1"
	BlockHeading2     = "heading2"
	BlockHeading3     = "heading3"
	BlockHeading4     = "heading4"
	BlockHeading5     = "heading5"
	BlockHeading6     = "heading6"
	BlockParagraph    = "paragraph"
	BlockPreformatted = "preformatted"
	BlockListItem     = "list-item"
	BlockOListItem    = "o-list-item"
	BlockImage        = "image"
	BlockEmbed        = "embed"
)

// Span types used inside text blocks.
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
	SpanLabel     = "label"
)

// Link types carried by hyperlink spans.
const (
	LinkWeb      = "Web"
	LinkDocument = "Document"
	LinkMedia    = "Media"
)

// timeLayout is the format the API uses for publication dates.
const timeLayout = "2006-01-02T15:04:05-0700"

// Time is a timestamp as serialized by the API ("2021-03-25T19:25:28+0000").
// RFC 3339 values are accepted as well.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{timeLayout, time.RFC3339Nano} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("prismic: invalid timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(timeLayout))
}

// Ref is a content release reference. Queries are always made against a ref.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// API is the subset of the API root document the client needs.
type API struct {
	Refs []Ref `json:"refs"`
}

// Document is a single content document.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid,omitempty"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href,omitempty"`
	Tags                 []string        `json:"tags"`
	Lang                 string          `json:"lang,omitempty"`
	FirstPublicationDate *Time           `json:"first_publication_date"`
	LastPublicationDate  *Time           `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

// DecodeData unmarshals the document's custom-type fields into v.
func (d Document) DecodeData(v any) error {
	if len(d.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("prismic: decode %s %q: %w", d.Type, d.UID, err)
	}
	return nil
}

// Response is one page of search results.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Next returns the next page cursor, or "" when this is the last page.
// The access token the API echoes back is removed; FetchPage adds it again.
func (r *Response) Next() string {
	if r == nil || r.NextPage == nil {
		return ""
	}
	next := strings.TrimSpace(*r.NextPage)
	u, err := url.Parse(next)
	if err != nil {
		return next
	}
	q := u.Query()
	if !q.Has("access_token") {
		return next
	}
	q.Del("access_token")
	u.RawQuery = q.Encode()
	return u.String()
}

// RichText is an ordered sequence of structured text blocks.
type RichText []Block

// Block is one structured text node: a paragraph, heading, list item,
// image or embed.
type Block struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	Spans      []Span      `json:"spans,omitempty"`
	Label      string      `json:"label,omitempty"`
	URL        string      `json:"url,omitempty"`
	Alt        string      `json:"alt,omitempty"`
	Copyright  string      `json:"copyright,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	LinkTo     *LinkData   `json:"linkTo,omitempty"`
	Oembed     *Embed      `json:"oembed,omitempty"`
}

// Span marks a range of a block's text. Start and End are UTF-16 offsets.
type Span struct {
	Start int       `json:"start"`
	End   int       `json:"end"`
	Type  string    `json:"type"`
	Data  *LinkData `json:"data,omitempty"`
}

// LinkData is the payload of hyperlink and label spans.
type LinkData struct {
	LinkType string `json:"link_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	ID       string `json:"id,omitempty"`
	UID      string `json:"uid,omitempty"`
	Type     string `json:"type,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Dimensions of an image block.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Embed is an oEmbed payload.
type Embed struct {
	Type         string `json:"type,omitempty"`
	EmbedURL     string `json:"embed_url,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
	HTML         string `json:"html,omitempty"`
}
