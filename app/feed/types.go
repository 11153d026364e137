package feed

// JSON Feed v1 envelope and items, serialized as-is by Generator.Marshal.

const Version = "https://jsonfeed.org/version/1"

type Author struct {
	Name   string `json:"name,omitempty"`
	URL    string `json:"url,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

type Item struct {
	ID            string `json:"id"`
	URL           string `json:"url,omitempty"`
	Title         string `json:"title"`
	ContentHTML   string `json:"content_html"`
	ContentText   string `json:"content_text"`
	Image         string `json:"image,omitempty"`
	DatePublished string `json:"date_published"`
	Author        Author `json:"author"`
}

type Document struct {
	Version     string `json:"version"`
	Items       []Item `json:"items"`
	Title       string `json:"title"`
	HomePageURL string `json:"home_page_url,omitempty"`
	FeedURL     string `json:"feed_url,omitempty"`
	UserComment string `json:"user_comment,omitempty"`
	Author      Author `json:"author"`
}

// Metadata is the feed-level part of a Document.
type Metadata struct {
	Title       string
	HomePageURL string
	FeedURL     string
	UserComment string
	Author      Author
}
