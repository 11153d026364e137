package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/bow-comb/app/database"
	"github.com/lysyi3m/bow-comb/app/dates"
	"github.com/lysyi3m/bow-comb/app/feed"
	"github.com/lysyi3m/bow-comb/app/sink"
	"github.com/lysyi3m/bow-comb/app/thingiverse"
)

const feedContentType = "application/json"

// Output describes where and how the assembled feed is published.
type Output struct {
	Key          string
	CacheControl string
	ACL          string
	Metadata     feed.Metadata
}

var _ TaskInterface = (*PublishFeedTask)(nil)

// PublishFeedTask is one complete poll: list collections, record every item
// of the qualifying ones, then publish the recent items as a single document.
type PublishFeedTask struct {
	Task
	source    CollectionSource
	ledger    database.Ledger
	filterer  *feed.Filterer
	generator *feed.Generator
	verifier  *feed.Verifier
	writer    sink.Writer
	output    Output
	now       func() time.Time
}

func NewPublishFeedTask(source CollectionSource, ledger database.Ledger, filterer *feed.Filterer, generator *feed.Generator, verifier *feed.Verifier, writer sink.Writer, output Output) *PublishFeedTask {
	return &PublishFeedTask{
		Task:      NewTask(TaskTypePublishFeed),
		source:    source,
		ledger:    ledger,
		filterer:  filterer,
		generator: generator,
		verifier:  verifier,
		writer:    writer,
		output:    output,
		now:       time.Now,
	}
}

type runStats struct {
	collections int
	qualified   int
	observed    int
	skipped     int
}

func (t *PublishFeedTask) Execute(ctx context.Context) error {
	t.Start()
	log := slog.With("run", t.ID)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	now := t.now().UTC().Truncate(time.Second)
	var stats runStats

	collections, err := t.source.Collections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	stats.collections = len(collections)

	items := make([]feed.Item, 0)
	for _, collection := range collections {
		modified, err := dates.Parse(collection.Modified)
		if err != nil {
			return fmt.Errorf("collection %d (%s): %w", collection.ID, collection.Name, err)
		}

		ok, reason := t.filterer.CollectionQualifies(collection, modified, now)
		log.Debug("Collection checked",
			"collection", collection.Name,
			"url", collection.URL,
			"modified", modified,
			"qualifies", ok,
			"reason", reason)
		if !ok {
			continue
		}
		stats.qualified++

		collected, err := t.collectItems(ctx, log, collection, now, &stats)
		if err != nil {
			return err
		}
		items = append(items, collected...)
	}

	doc := t.generator.Document(items, t.output.Metadata)
	data, err := t.generator.Marshal(doc)
	if err != nil {
		return err
	}

	if err := t.verifier.Run(data, len(items)); err != nil {
		return fmt.Errorf("feed verification failed: %w", err)
	}

	err = t.writer.Put(ctx, sink.Object{
		Key:          t.output.Key,
		Body:         data,
		ContentType:  feedContentType,
		CacheControl: t.output.CacheControl,
		ACL:          t.output.ACL,
	})
	if err != nil {
		return fmt.Errorf("failed to publish feed: %w", err)
	}

	log.Info("Task completed",
		"type", t.Type,
		"duration", t.GetDuration(),
		"collections", stats.collections,
		"qualified", stats.qualified,
		"observed", stats.observed,
		"skipped", stats.skipped,
		"published", len(items))

	return nil
}

// collectItems records every item of collection in the ledger and returns
// feed entries for the ones first seen recently enough.
func (t *PublishFeedTask) collectItems(ctx context.Context, log *slog.Logger, collection thingiverse.Collection, now time.Time, stats *runStats) ([]feed.Item, error) {
	things, err := t.source.CollectionItems(ctx, collection.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to list items of collection %d: %w", collection.ID, err)
	}

	var items []feed.Item
	for _, thing := range things {
		stats.observed++

		firstSeen, err := t.ledger.RecordFirstSeen(ctx, thing.ID, thing.Name, now)
		if err != nil {
			var parseErr *dates.ParseError
			if errors.As(err, &parseErr) {
				log.Warn("Unreadable first-seen time, skipping item",
					"item", thing.ID,
					"title", thing.Name,
					"value", parseErr.Value)
				stats.skipped++
				continue
			}
			return nil, fmt.Errorf("failed to record item %d: %w", thing.ID, err)
		}

		ok, reason := t.filterer.ItemIsRecent(firstSeen, now)
		if firstSeen.IsZero() {
			log.Warn("Item has no first-seen time, skipping", "item", thing.ID, "title", thing.Name)
		}
		log.Debug("Item checked",
			"item", thing.ID,
			"title", thing.Name,
			"first_seen", firstSeen,
			"recent", ok,
			"reason", reason)
		if !ok {
			continue
		}

		items = append(items, t.generator.Item(collection.Name, thing, firstSeen))
	}

	return items, nil
}
