package spacetraveling

import (
	"context"
	"fmt"

	"github.com/eringen/spacetraveling/prismic"
)

// PostPaths lists the uid of every post. Posts published after the build
// are still served through the fallback, so Fallback is always true.
func (a *App) PostPaths(ctx context.Context) (StaticPaths, error) {
	docs, err := a.Content.QueryAll(ctx, []prismic.Predicate{prismic.DocumentType(postType)}, prismic.MaxPageSize)
	if err != nil {
		return StaticPaths{}, fmt.Errorf("spacetraveling: post paths: %w", err)
	}
	uids := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.UID == "" {
			continue
		}
		uids = append(uids, d.UID)
	}
	return StaticPaths{UIDs: uids, Fallback: true}, nil
}

// PostProps fetches a single post by uid. The returned error wraps
// prismic.ErrNotFound when no such post exists.
func (a *App) PostProps(ctx context.Context, uid string) (PostDetail, error) {
	doc, err := a.Content.GetByUID(ctx, postType, uid)
	if err != nil {
		return PostDetail{}, fmt.Errorf("spacetraveling: post %q: %w", uid, err)
	}
	post, err := detail(*doc, a.location)
	if err != nil {
		return PostDetail{}, fmt.Errorf("spacetraveling: post %q: %w", uid, err)
	}
	return post, nil
}

func (a *App) postView(post PostDetail) PostView {
	sections := make([]RenderedSection, 0, len(post.Content))
	for _, s := range post.Content {
		sections = append(sections, RenderedSection{
			Heading: s.Heading,
			Body:    a.RichText.AsHTML(s.Body),
		})
	}
	meta := PageMeta{
		Title:       post.Title + " | " + a.Config.Name,
		Description: firstNonEmpty(post.Subtitle, a.Config.Description),
		URL:         BuildURL(a.Config.URL, "post", post.UID),
		OGType:      "article",
	}
	if post.Banner != "" {
		meta.Image = absoluteURL(a.Config.URL, post.Banner)
	}
	return PostView{
		Site:        a.Config,
		Meta:        meta,
		Post:        post,
		ReadingTime: ReadingTime(post.Content),
		Sections:    sections,
		JSONLD:      BlogPostingJsonLD(post, a.Config),
	}
}

func (a *App) loadingView(uid string) LoadingView {
	return LoadingView{
		Site: a.Config,
		Meta: PageMeta{
			Title:  a.Config.Name,
			URL:    BuildURL(a.Config.URL, "post", uid),
			OGType: "article",
		},
		UID:        uid,
		PartialURL: PostPath(uid) + "?partial=post",
	}
}

func summaryOf(post PostDetail) PostSummary {
	return PostSummary{
		UID:         post.UID,
		PublishedAt: post.PublishedAt,
		Date:        post.Date,
		Title:       post.Title,
		Subtitle:    post.Subtitle,
		Author:      post.Author,
	}
}
