package spacetraveling

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const bannersPrefix = "/public/banners/"

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PostPath returns the site path of the post with the given uid.
func PostPath(uid string) string {
	return "/post/" + PathEscape(uid) + "/"
}

// BannerPath returns the site path a localized banner is served from.
func BannerPath(uid string) string {
	return bannersPrefix + PathEscape(uid) + ".jpg"
}

// LoadMoreURL returns the htmx request that appends the page behind cursor.
// page is the number of the last page already displayed.
func LoadMoreURL(cursor string, page int) string {
	q := url.Values{}
	q.Set("cursor", cursor)
	q.Set("page", strconv.Itoa(page))
	return "/posts/more/?" + q.Encode()
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
		"inLanguage":  "pt-BR",
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post PostDetail, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "post", post.UID)
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": post.Subtitle,
		"url":         postURL,
		"inLanguage":  "pt-BR",
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.PublishedAt != nil {
		data["datePublished"] = post.PublishedAt.UTC().Format(time.RFC3339)
	}
	if post.Banner != "" {
		data["image"] = absoluteURL(cfg.URL, post.Banner)
	}
	if author := firstNonEmpty(post.Author, cfg.Author); author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// absoluteURL resolves ref against the site base, leaving absolute URLs alone.
func absoluteURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
