// Package relocate is the one-off migration that moves collaborative-content
// blobs from the legacy class-scoped key layout to the flat object-scoped
// layout.
package relocate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shadowcal/internal/store"
)

// Summary reports what one run did.
type Summary struct {
	Scanned int
	Copied  int
	Skipped int
	Failed  int
}

// Runner walks every legacy record and copies it under its new key.
type Runner struct {
	Content *store.ContentStore
	DryRun  bool
	Logger  *slog.Logger
}

// Run relocates all legacy content. One bad record does not stop the run;
// failures are logged and counted. Re-running is safe: the new-layout write
// is an overwrite with identical data.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	records, err := r.Content.ListLegacy(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list legacy content: %w", err)
	}

	var sum Summary
	for _, rec := range records {
		sum.Scanned++

		newKey, err := NewKey(rec.Key)
		if err != nil {
			r.Logger.Warn("skipping malformed legacy key", "key", rec.Key, "error", err)
			sum.Skipped++
			continue
		}

		if r.DryRun {
			r.Logger.Info("would copy", "from", rec.Key, "to", newKey)
			sum.Copied++
			continue
		}

		if err := r.Content.Put(ctx, newKey, rec.Data); err != nil {
			r.Logger.Error("copy failed", "from", rec.Key, "to", newKey, "error", err)
			sum.Failed++
			continue
		}
		sum.Copied++
	}

	return sum, nil
}

// NewKey maps a legacy "{class}/{objectID}/{attribute}" key to the flat
// "{objectID}%{attribute}" layout. The class segment is dropped; object ids
// are globally unique.
func NewKey(legacy string) (string, error) {
	parts := strings.Split(legacy, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", fmt.Errorf("legacy key %q is not class/object/attribute", legacy)
	}
	return parts[1] + "%" + parts[2], nil
}
