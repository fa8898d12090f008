package domain

import "time"

// Article represents a news article returned by the remote source
type Article struct {
	ID             string
	Title          string
	Description    string
	Keywords       string
	Snippet        string
	URL            string
	ImageURL       string
	Language       string
	PublishedAt    time.Time
	Source         string
	Categories     []string
	RelevanceScore *float64
}

// ArticleQuery scopes one page request
type ArticleQuery struct {
	Search string
	Page   int
}

// ArticlePage is one decoded result envelope
type ArticlePage struct {
	Articles []Article
	Found    int
}

// FetchState is the state of the article fetcher
type FetchState int

const (
	FetchIdle FetchState = iota
	FetchFetching
)

func (s FetchState) String() string {
	if s == FetchFetching {
		return "fetching"
	}
	return "idle"
}
