// Package reddit implements a read-only client for reddit's OAuth API.
//
// The client authenticates with the application-only client_credentials
// grant and exposes the two capabilities the analysis pipeline needs: a
// ranked top listing and per-ID hydration. It performs no retry or backoff;
// callers decide how to handle typed failures.
package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	defaultAPIURL   = "https://oauth.reddit.com"

	// maxPageSize is the largest page the listing endpoint serves.
	maxPageSize = 100
)

// Typed per-item failures. The scraper counts these instead of aborting.
var (
	ErrNotFound    = errors.New("post not found")
	ErrRateLimited = errors.New("rate limited")
)

// timeFilters are the windows accepted by the top listing.
var timeFilters = map[string]bool{
	"all": true, "hour": true, "day": true, "week": true, "month": true, "year": true,
}

// ValidTimeFilter reports whether tf is an accepted listing time window.
func ValidTimeFilter(tf string) bool {
	return timeFilters[tf]
}

// Credentials holds the reddit application credentials.
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// Client is a read-only reddit API client. It is safe for concurrent use;
// the token cache is the only guarded state.
type Client struct {
	creds    Credentials
	client   *http.Client
	apiURL   string
	tokenURL string

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewClient creates a reddit client. A zero timeout defaults to 30s.
func NewClient(creds Credentials, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		creds:    creds,
		client:   &http.Client{Timeout: timeout},
		apiURL:   defaultAPIURL,
		tokenURL: defaultTokenURL,
	}
}

// accessToken returns a cached application-only token, refreshing it when
// it is about to expire.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, "POST", c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("access token request failed: HTTP %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decoding access token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("access token response was empty")
	}

	c.token = tok.AccessToken
	// Refresh a minute early so in-flight requests never race expiry.
	c.tokenExp = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

// get performs an authenticated GET and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, path string, params url.Values, v any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	endpoint := c.apiURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", c.creds.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// topPage fetches one page of the top listing and returns its posts plus
// the pagination cursor for the next page.
func (c *Client) topPage(ctx context.Context, subreddit, timeFilter, after string, count int) ([]apiPost, string, error) {
	if count > maxPageSize {
		count = maxPageSize
	}
	params := url.Values{
		"t":        {timeFilter},
		"limit":    {strconv.Itoa(count)},
		"raw_json": {"1"},
	}
	if after != "" {
		params.Set("after", after)
	}

	var page listing
	if err := c.get(ctx, "/r/"+subreddit+"/top", params, &page); err != nil {
		return nil, "", err
	}

	posts := make([]apiPost, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		posts = append(posts, child.Data)
	}
	return posts, page.Data.After, nil
}

// TopIDs walks the ranked top listing and returns up to limit post IDs in
// ranking order, stopping early if the subreddit runs out of posts.
func (c *Client) TopIDs(ctx context.Context, subreddit, timeFilter string, limit int) ([]string, error) {
	ids := make([]string, 0, limit)
	after := ""

	for len(ids) < limit {
		posts, next, err := c.topPage(ctx, subreddit, timeFilter, after, limit-len(ids))
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			ids = append(ids, p.ID)
			if len(ids) >= limit {
				break
			}
		}
		if next == "" || len(posts) == 0 {
			break
		}
		after = next
	}

	return ids, nil
}

// TopPosts walks the ranked top listing and returns up to limit full posts.
// This is the sequential path: no separate ID collection, no re-hydration.
func (c *Client) TopPosts(ctx context.Context, subreddit, timeFilter string, limit int) ([]Post, error) {
	posts := make([]Post, 0, limit)
	after := ""

	for len(posts) < limit {
		page, next, err := c.topPage(ctx, subreddit, timeFilter, after, limit-len(posts))
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			posts = append(posts, p.toPost())
			if len(posts) >= limit {
				break
			}
		}
		if next == "" || len(page) == 0 {
			break
		}
		after = next
	}

	return posts, nil
}

// Post hydrates a single submission by ID.
func (c *Client) Post(ctx context.Context, id string) (Post, error) {
	params := url.Values{
		"id":       {"t3_" + id},
		"raw_json": {"1"},
	}

	var page listing
	if err := c.get(ctx, "/api/info", params, &page); err != nil {
		return Post{}, err
	}
	if len(page.Data.Children) == 0 {
		return Post{}, ErrNotFound
	}
	return page.Data.Children[0].Data.toPost(), nil
}

// About returns general information about a subreddit.
func (c *Client) About(ctx context.Context, subreddit string) (*Subreddit, error) {
	var about apiSubreddit
	if err := c.get(ctx, "/r/"+subreddit+"/about", url.Values{"raw_json": {"1"}}, &about); err != nil {
		return nil, err
	}

	d := about.Data
	return &Subreddit{
		DisplayName:     d.DisplayName,
		Title:           d.Title,
		Description:     d.PublicDescription,
		Subscribers:     d.Subscribers,
		ActiveUserCount: d.ActiveUserCount,
		Created:         time.Unix(int64(d.CreatedUTC), 0).UTC(),
		Over18:          d.Over18,
		URL:             d.URL,
	}, nil
}
