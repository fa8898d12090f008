// Package newsapi fetches article pages from a thenewsapi.com compatible endpoint.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"finboard/internal/domain"
)

const publishedAfterLayout = "2006-01-02"

// Options configures a Client
type Options struct {
	BaseURL    string
	Token      string
	Language   string
	Categories []string
	PageSize   int
	Lookback   time.Duration
}

// Client implements repository.ArticleSource over HTTP
type Client struct {
	opts   Options
	http   *http.Client
	logger *zap.Logger
	now    func() time.Time
}

// NewClient creates a client. A nil httpClient uses http.DefaultClient.
func NewClient(opts Options, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		opts:   opts,
		http:   httpClient,
		logger: logger,
		now:    time.Now,
	}
}

// envelope fields are pointers so a missing key can be told apart from an empty one
type envelope struct {
	Data *[]article `json:"data"`
	Meta *struct {
		Found *int `json:"found"`
	} `json:"meta"`
}

func (e envelope) validate() error {
	switch {
	case e.Data == nil:
		return errors.New(`missing key "data"`)
	case e.Meta == nil:
		return errors.New(`missing key "meta"`)
	case e.Meta.Found == nil:
		return errors.New(`missing key "meta.found"`)
	}
	return nil
}

// publishedTime is an ISO-8601 timestamp that must carry fractional seconds
type publishedTime time.Time

func (t *publishedTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	// "2006-01-02T15:04:05" is followed by the fraction
	if len(s) < 21 || s[19] != '.' {
		return fmt.Errorf("published_at %q has no fractional seconds", s)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("published_at: %w", err)
	}
	*t = publishedTime(parsed)
	return nil
}

type article struct {
	UUID           string        `json:"uuid"`
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Keywords       string        `json:"keywords"`
	Snippet        string        `json:"snippet"`
	URL            string        `json:"url"`
	ImageURL       string        `json:"image_url"`
	Language       string        `json:"language"`
	PublishedAt    publishedTime `json:"published_at"`
	Source         string        `json:"source"`
	Categories     []string      `json:"categories"`
	RelevanceScore *float64      `json:"relevance_score"`
}

func (a article) toDomain() domain.Article {
	id := a.UUID
	if id == "" {
		id = a.ID
	}
	return domain.Article{
		ID:             id,
		Title:          a.Title,
		Description:    a.Description,
		Keywords:       a.Keywords,
		Snippet:        a.Snippet,
		URL:            a.URL,
		ImageURL:       a.ImageURL,
		Language:       a.Language,
		PublishedAt:    time.Time(a.PublishedAt),
		Source:         a.Source,
		Categories:     a.Categories,
		RelevanceScore: a.RelevanceScore,
	}
}

// FetchArticles requests one page of articles published within the lookback window
func (c *Client) FetchArticles(ctx context.Context, q domain.ArticleQuery) (*domain.ArticlePage, error) {
	addr, err := c.requestURL(q)
	if err != nil {
		return nil, networkError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, networkError(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Article request completed",
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Int("page", q.Page),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, networkError(fmt.Errorf("cannot http GET %s%s: %s", req.URL.Host, req.URL.Path, resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}
	if len(body) == 0 {
		return nil, networkError(errors.New("no data received from the server"))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, decodeError(err)
	}
	if err := env.validate(); err != nil {
		c.logger.Warn("Article response has an unexpected shape",
			zap.Int("page", q.Page),
			zap.Error(err),
		)
		return nil, decodeError(err)
	}

	page := &domain.ArticlePage{
		Articles: make([]domain.Article, 0, len(*env.Data)),
		Found:    *env.Meta.Found,
	}
	for _, a := range *env.Data {
		page.Articles = append(page.Articles, a.toDomain())
	}
	return page, nil
}

func (c *Client) requestURL(q domain.ArticleQuery) (string, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	params := u.Query()
	params.Set("api_token", c.opts.Token)
	params.Set("search", q.Search)
	params.Set("categories", strings.Join(c.opts.Categories, ","))
	params.Set("published_after", c.PublishedAfter())
	params.Set("language", c.opts.Language)
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(c.opts.PageSize))
	u.RawQuery = params.Encode()

	return u.String(), nil
}

// PublishedAfter is the lower date bound sent with every request
func (c *Client) PublishedAfter() string {
	return c.now().Add(-c.opts.Lookback).Format(publishedAfterLayout)
}

func networkError(err error) error {
	return &domain.FetchError{Kind: domain.ErrArticleNetwork, Err: err}
}

func decodeError(err error) error {
	return &domain.FetchError{Kind: domain.ErrArticleDecode, Err: err}
}
