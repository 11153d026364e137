package thingiverse

import (
	"encoding/json"
	"fmt"
)

// Collection is one entry of an account's collections list.
type Collection struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Modified string `json:"modified"`
	Count    int    `json:"count"`
}

// Thing is one item of a collection.
type Thing struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	URL       string  `json:"url"`
	PublicURL string  `json:"public_url"`
	Thumbnail string  `json:"thumbnail"`
	Creator   Creator `json:"creator"`
}

type Creator struct {
	Name      string `json:"name"`
	PublicURL string `json:"public_url"`
	Thumbnail string `json:"thumbnail"`
}

// UpstreamError reports a failed or malformed API response.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s returned HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// apiError is the body the API sends alongside error statuses.
type apiError struct {
	Error string `json:"error"`
}

func decodeAPIError(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
