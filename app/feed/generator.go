package feed

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/lysyi3m/bow-comb/app/thingiverse"
)

type Generator struct {
	policy *bluemonday.Policy
}

func NewGenerator() *Generator {
	return &Generator{
		policy: bluemonday.UGCPolicy(),
	}
}

// Item builds the feed entry for thing, found in the collection named
// collectionName and first seen at firstSeen.
func (g *Generator) Item(collectionName string, thing thingiverse.Thing, firstSeen time.Time) Item {
	byline := fmt.Sprintf("%s by %s", thing.Name, thing.Creator.Name)

	contentHTML := fmt.Sprintf(`%s by %s<br><img src="%s">`,
		html.EscapeString(thing.Name),
		html.EscapeString(thing.Creator.Name),
		html.EscapeString(thing.Thumbnail))

	return Item{
		ID:            strconv.FormatInt(thing.ID, 10),
		URL:           thing.PublicURL,
		Title:         fmt.Sprintf("%s: %s", collectionName, thing.Name),
		ContentHTML:   g.policy.Sanitize(contentHTML),
		ContentText:   byline,
		Image:         thing.Thumbnail,
		DatePublished: firstSeen.UTC().Format(time.RFC3339),
		Author: Author{
			Name:   thing.Creator.Name,
			URL:    thing.Creator.PublicURL,
			Avatar: thing.Creator.Thumbnail,
		},
	}
}

func (g *Generator) Document(items []Item, meta Metadata) Document {
	if items == nil {
		items = []Item{}
	}

	return Document{
		Version:     Version,
		Items:       items,
		Title:       meta.Title,
		HomePageURL: meta.HomePageURL,
		FeedURL:     meta.FeedURL,
		UserComment: meta.UserComment,
		Author:      meta.Author,
	}
}

func (g *Generator) Marshal(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	return data, nil
}
