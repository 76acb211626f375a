package webmention

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultPerPage = 1000

// Client fetches mentions from a JF2 endpoint such as
// https://webmention.io/api.
type Client struct {
	endpoint string
	perPage  int
	http     *http.Client
}

// NewClient creates a client for the given endpoint base URL. Requests
// time out after ten seconds.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		perPage:  defaultPerPage,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type jf2Response struct {
	Children []Mention `json:"children"`
}

// Fetch retrieves mentions targeting the given absolute URL. When
// sinceID is non-nil only mentions with a higher wm-id are requested,
// which is how incremental refreshes stay cheap.
func (c *Client) Fetch(ctx context.Context, target string, sinceID *int) ([]Mention, error) {
	q := url.Values{}
	q.Set("target", target)
	q.Set("per-page", strconv.Itoa(c.perPage))
	if sinceID != nil {
		q.Set("since_id", strconv.Itoa(*sinceID))
	}
	u := c.endpoint + "/mentions.jf2?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("webmention request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webmention fetch for %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webmention fetch for %s: unexpected status %d", target, resp.StatusCode)
	}

	var body jf2Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("webmention response for %s: %w", target, err)
	}
	return body.Children, nil
}
