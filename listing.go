package spacetraveling

import (
	"context"
	"fmt"

	"github.com/eringen/spacetraveling/prismic"
)

// ListingProps fetches the first page of posts for the listing page.
func (a *App) ListingProps(ctx context.Context) (ListingProps, error) {
	resp, err := a.Content.Query(ctx, []prismic.Predicate{prismic.DocumentType(postType)}, prismic.QueryOptions{
		PageSize: a.Config.PageSize,
	})
	if err != nil {
		return ListingProps{}, fmt.Errorf("spacetraveling: listing: %w", err)
	}
	posts, err := summarizeAll(resp.Results, a.location)
	if err != nil {
		return ListingProps{}, fmt.Errorf("spacetraveling: listing: %w", err)
	}
	return ListingProps{Posts: posts, NextPage: resp.Next(), Page: max(resp.Page, 1)}, nil
}

// allPosts returns a summary of every published post, following the
// pagination cursor to the end.
func (a *App) allPosts(ctx context.Context) ([]PostSummary, error) {
	docs, err := a.Content.QueryAll(ctx, []prismic.Predicate{prismic.DocumentType(postType)}, prismic.MaxPageSize)
	if err != nil {
		return nil, err
	}
	return summarizeAll(docs, a.location)
}

func (a *App) homeView(props ListingProps) HomeView {
	state := NewPageState(props)
	return HomeView{
		Site: a.Config,
		Meta: PageMeta{
			Title:       "Home | " + a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL),
			OGType:      "website",
		},
		Posts:  state.Posts(),
		More:   loadMoreFor(state),
		JSONLD: WebsiteJsonLD(a.Config),
	}
}

func moreView(state PageState) MoreView {
	return MoreView{Posts: state.Posts(), More: loadMoreFor(state)}
}

func loadMoreFor(state PageState) LoadMore {
	m := LoadMore{HasMore: state.HasMore(), Page: state.Page()}
	if m.HasMore {
		m.URL = LoadMoreURL(state.NextPage(), state.Page())
	}
	return m
}
