package spacetraveling

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/spacetraveling/prismic"
)

// CursorFetcher fetches the page a pagination cursor points at.
type CursorFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*prismic.Response, error)
}

// PageState is the listing page's list of posts plus its pagination cursor.
// It is a value: Append returns a new state and never modifies the receiver,
// so earlier posts keep their order and position.
type PageState struct {
	posts    []PostSummary
	nextPage string
	page     int
}

// NewPageState seeds a state from build-time listing props.
func NewPageState(props ListingProps) PageState {
	page := props.Page
	if page < 1 {
		page = 1
	}
	return PageState{
		posts:    append([]PostSummary(nil), props.Posts...),
		nextPage: props.NextPage,
		page:     page,
	}
}

// Posts returns a copy of the displayed posts in display order.
func (s PageState) Posts() []PostSummary {
	return append([]PostSummary(nil), s.posts...)
}

// Len returns the number of displayed posts.
func (s PageState) Len() int { return len(s.posts) }

// NextPage returns the pagination cursor, or "" when exhausted.
func (s PageState) NextPage() string { return s.nextPage }

// HasMore reports whether a further page can be loaded.
func (s PageState) HasMore() bool { return s.nextPage != "" }

// Page returns the number of the last loaded page.
func (s PageState) Page() int { return s.page }

// Append returns the state after next has been loaded: next's posts follow
// the current ones and next's cursor replaces the current cursor.
func (s PageState) Append(next ListingProps) PageState {
	posts := make([]PostSummary, 0, len(s.posts)+len(next.Posts))
	posts = append(posts, s.posts...)
	posts = append(posts, next.Posts...)
	page := next.Page
	if page < 1 {
		page = s.page + 1
	}
	return PageState{posts: posts, nextPage: next.NextPage, page: page}
}

// Pager loads further pages into a PageState. A LoadMore call made while
// another is in flight, or after the cursor is exhausted, does nothing.
type Pager struct {
	fetch CursorFetcher
	loc   *time.Location

	mu       sync.Mutex
	state    PageState
	inFlight bool
}

// NewPager returns a Pager starting at state. Dates of loaded posts are
// formatted in loc.
func NewPager(fetch CursorFetcher, state PageState, loc *time.Location) *Pager {
	return &Pager{fetch: fetch, state: state, loc: loc}
}

// State returns the current state.
func (p *Pager) State() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LoadMore fetches the page behind the current cursor and appends it.
// It reports whether a fetch happened. On error the state is unchanged.
func (p *Pager) LoadMore(ctx context.Context) (PageState, bool, error) {
	p.mu.Lock()
	if p.inFlight || !p.state.HasMore() {
		state := p.state
		p.mu.Unlock()
		return state, false, nil
	}
	p.inFlight = true
	cursor := p.state.nextPage
	p.mu.Unlock()

	next, err := p.fetchPage(ctx, cursor)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if err != nil {
		return p.state, true, err
	}
	p.state = p.state.Append(next)
	return p.state, true, nil
}

func (p *Pager) fetchPage(ctx context.Context, cursor string) (ListingProps, error) {
	resp, err := p.fetch.FetchPage(ctx, cursor)
	if err != nil {
		return ListingProps{}, err
	}
	posts, err := summarizeAll(resp.Results, p.loc)
	if err != nil {
		return ListingProps{}, err
	}
	return ListingProps{Posts: posts, NextPage: resp.Next(), Page: resp.Page}, nil
}
