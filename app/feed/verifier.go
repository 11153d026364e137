package feed

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// Verifier reads a serialized document back the way feed readers will.
type Verifier struct {
	gofeedParser *gofeed.Parser
}

func NewVerifier() *Verifier {
	return &Verifier{
		gofeedParser: gofeed.NewParser(),
	}
}

func (v *Verifier) Run(data []byte, wantItems int) error {
	parsed, err := v.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse generated feed: %w", err)
	}

	if parsed.FeedType != "json" {
		return fmt.Errorf("generated feed detected as %q, expected json", parsed.FeedType)
	}
	if len(parsed.Items) != wantItems {
		return fmt.Errorf("generated feed has %d items, expected %d", len(parsed.Items), wantItems)
	}

	return nil
}
