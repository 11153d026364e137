package feed

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/lysyi3m/bow-comb/app/thingiverse"
)

// Policy holds the aging thresholds and the collection name prefixes.
type Policy struct {
	CollectionMaxAge time.Duration
	ItemMaxAge       time.Duration
	NamePrefixes     []string
}

type Filterer struct {
	policy   Policy
	prefixes []string
}

func NewFilterer(policy Policy) *Filterer {
	fold := cases.Fold()
	prefixes := make([]string, 0, len(policy.NamePrefixes))
	for _, p := range policy.NamePrefixes {
		if p == "" {
			continue
		}
		prefixes = append(prefixes, fold.String(p))
	}

	return &Filterer{policy: policy, prefixes: prefixes}
}

// CollectionQualifies reports whether a collection's items should be fetched.
// modified is the parsed modification time of c.
func (f *Filterer) CollectionQualifies(c thingiverse.Collection, modified, now time.Time) (bool, string) {
	cutoff := now.Add(-f.policy.CollectionMaxAge)
	if modified.Before(cutoff) {
		return false, fmt.Sprintf("modified %s, older than %s", modified.Format(time.RFC3339), f.policy.CollectionMaxAge)
	}

	name := cases.Fold().String(c.Name)
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true, fmt.Sprintf("name matches prefix %q", prefix)
		}
	}

	return false, fmt.Sprintf("name does not start with any of %v", f.policy.NamePrefixes)
}

// ItemIsRecent reports whether an item first seen at firstSeen still belongs
// in the feed. A zero firstSeen cannot be compared and never qualifies.
func (f *Filterer) ItemIsRecent(firstSeen, now time.Time) (bool, string) {
	if firstSeen.IsZero() {
		return false, "first-seen time unknown"
	}

	cutoff := now.UTC().Truncate(time.Second).Add(-f.policy.ItemMaxAge)
	if firstSeen.Before(cutoff) {
		return false, fmt.Sprintf("first seen %s, older than %s", firstSeen.Format(time.RFC3339), f.policy.ItemMaxAge)
	}

	return true, ""
}
