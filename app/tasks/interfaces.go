package tasks

import (
	"context"

	"github.com/lysyi3m/bow-comb/app/thingiverse"
)

// CollectionSource lists an account's collections and their items.
// Implemented by *thingiverse.Client.
type CollectionSource interface {
	Collections(ctx context.Context) ([]thingiverse.Collection, error)
	CollectionItems(ctx context.Context, collectionURL string) ([]thingiverse.Thing, error)
}
