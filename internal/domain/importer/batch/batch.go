// Package batch groups pending domain records into bounded batches and
// submits them to a store, keeping failure granularity at the row level.
// Batching bounds transactional overhead on large files; intra-batch
// isolation bounds the blast radius of one malformed row to itself.
package batch

import (
	"context"
	"fmt"

	"github.com/lifebook-app/lifebook/internal/domain/ledger"
)

// DefaultSize is the batch size used when the config leaves it zero.
const DefaultSize = 100

// Config tunes one coordinator call.
type Config struct {
	// Size is the maximum number of items per unit-of-work.
	Size int
	// FailOnError stops submitting further batches at the first item
	// failure instead of isolating it. The default import posture is
	// isolation.
	FailOnError bool
}

// Item is one pending record tagged with its originating sheet row for error
// attribution.
type Item[T any] struct {
	Row   int // 1-based sheet row, header row included
	Value T
}

// ItemError attributes one failure to its source row.
type ItemError struct {
	Row int
	Err error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// Result aggregates one coordinator call across all its batches.
type Result struct {
	Total    int
	Imported int
	Failed   int
	Skipped  int // items never submitted because an earlier failure aborted the run
	Errors   []ItemError
}

// InsertFunc submits one batch as a single unit-of-work and reports per-item
// outcomes. A non-nil error means the whole unit-of-work was rejected.
type InsertFunc[T any] func(ctx context.Context, items []T) ([]ledger.InsertOutcome, error)

// Import submits items in fixed-size batches in their original order.
//
// With FailOnError unset, a failing item is recorded against its row and
// excluded from the imported count while its batch-siblings still commit.
// With FailOnError set, no further batches are submitted after a failure;
// siblings in the already-submitted batch keep their actual outcomes, only
// genuinely unsubmitted items count as skipped.
func Import[T any](ctx context.Context, items []Item[T], insert InsertFunc[T], cfg Config) *Result {
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}

	result := &Result{Total: len(items)}
	aborted := false

	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		if aborted || ctx.Err() != nil {
			result.Skipped += len(chunk)
			continue
		}

		values := make([]T, len(chunk))
		for i, it := range chunk {
			values[i] = it.Value
		}

		outcomes, err := insert(ctx, values)
		if err != nil {
			// The store rejected the whole unit-of-work.
			for _, it := range chunk {
				result.Failed++
				result.Errors = append(result.Errors, ItemError{Row: it.Row, Err: err})
			}
			if cfg.FailOnError {
				aborted = true
			}
			continue
		}

		failedIdx := make(map[int]error, len(outcomes))
		for _, out := range outcomes {
			if out.Err != nil {
				failedIdx[out.Index] = out.Err
			}
		}

		// The whole chunk was submitted as one unit-of-work, so even under
		// FailOnError every item in it is accounted by its actual outcome;
		// the abort only stops later batches.
		for i, it := range chunk {
			if err, ok := failedIdx[i]; ok {
				result.Failed++
				result.Errors = append(result.Errors, ItemError{Row: it.Row, Err: err})
				if cfg.FailOnError {
					aborted = true
				}
				continue
			}
			result.Imported++
		}
	}

	return result
}
