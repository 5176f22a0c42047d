package spacetraveling

import (
	"html/template"
	"time"

	"github.com/eringen/spacetraveling/prismic"
)

// PostSummary is the listing representation of a post.
type PostSummary struct {
	UID         string
	PublishedAt *time.Time
	Date        string // PublishedAt formatted for display, "" when unpublished
	Title       string
	Subtitle    string
	Author      string
}

// PostDetail is the full representation of a post.
type PostDetail struct {
	UID         string
	PublishedAt *time.Time
	Date        string
	Title       string
	Subtitle    string
	Banner      string // image URL
	Author      string
	Content     []ContentSection
}

// ContentSection is one heading plus its rich-text body, in source order.
type ContentSection struct {
	Heading string
	Body    prismic.RichText
}

// ListingProps is one page of post summaries with its pagination cursor.
// NextPage is "" when there are no further results.
type ListingProps struct {
	Posts    []PostSummary
	NextPage string
	Page     int
}

// StaticPaths is the set of detail routes generated at build time.
// Fallback reports that uids outside the set are still served on demand.
type StaticPaths struct {
	UIDs     []string
	Fallback bool
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// LoadMore is the state of the listing page's "load more" control.
type LoadMore struct {
	HasMore bool
	URL     string // request that appends the next page
	Page    int
}

// HomeView is the data rendered by ViewFuncs.Home.
type HomeView struct {
	Site   SiteConfig
	Meta   PageMeta
	Posts  []PostSummary
	More   LoadMore
	JSONLD string
}

// MoreView is the data rendered by ViewFuncs.MorePosts.
type MoreView struct {
	Posts []PostSummary
	More  LoadMore
}

// RenderedSection is a content section with its body already converted to HTML.
type RenderedSection struct {
	Heading string
	Body    template.HTML
}

// PostView is the data rendered by ViewFuncs.Post and ViewFuncs.PostPartial.
type PostView struct {
	Site        SiteConfig
	Meta        PageMeta
	Post        PostDetail
	ReadingTime int
	Sections    []RenderedSection
	JSONLD      string
}

// LoadingView is the placeholder shown while a fallback post is fetched.
type LoadingView struct {
	Site       SiteConfig
	Meta       PageMeta
	UID        string
	PartialURL string
}
