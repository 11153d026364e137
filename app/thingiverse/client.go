package thingiverse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxPages stops a misbehaving upstream from paginating forever.
const maxPages = 1000

type Client struct {
	httpClient *http.Client
	baseURL    string
	account    string
	token      string
	userAgent  string
	timeout    time.Duration
}

type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each request. Zero leaves it to the transport.
	Timeout time.Duration
}

func NewClient(baseURL, account, token string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		account:    account,
		token:      token,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
	}
}

// Collections returns every collection of the account, across all pages.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	endpoint := fmt.Sprintf("%s/users/%s/collections", c.baseURL, url.PathEscape(c.account))
	return fetchAll[Collection](ctx, c, endpoint, url.Values{})
}

// CollectionItems returns the things of a collection, newest first, across
// all pages. collectionURL is the collection's API url.
func (c *Client) CollectionItems(ctx context.Context, collectionURL string) ([]Thing, error) {
	endpoint := strings.TrimRight(collectionURL, "/") + "/things"
	params := url.Values{}
	params.Set("sort", "date")
	params.Set("order", "desc")
	return fetchAll[Thing](ctx, c, endpoint, params)
}

func fetchAll[T any](ctx context.Context, c *Client, endpoint string, params url.Values) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		if page > maxPages {
			return nil, &UpstreamError{URL: endpoint, Err: fmt.Errorf("gave up after %d pages", maxPages)}
		}

		params.Set("page", strconv.Itoa(page))

		var batch []T
		if err := c.getJSON(ctx, endpoint, params, &batch); err != nil {
			return nil, err
		}

		slog.Debug("Fetched page", "url", endpoint, "page", page, "size", len(batch))

		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}

	return all, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return &UpstreamError{URL: endpoint, Err: fmt.Errorf("invalid url: %w", err)}
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{URL: endpoint, StatusCode: resp.StatusCode, Err: errors.New(decodeAPIError(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
