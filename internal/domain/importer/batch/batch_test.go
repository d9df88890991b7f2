package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifebook-app/lifebook/internal/domain/ledger"
)

func makeItems(n int) []Item[string] {
	items := make([]Item[string], n)
	for i := range items {
		items[i] = Item[string]{Row: i + 2, Value: fmt.Sprintf("row-%d", i+2)}
	}
	return items
}

func TestImport_AllSucceed(t *testing.T) {
	var batches [][]string
	insert := func(ctx context.Context, values []string) ([]ledger.InsertOutcome, error) {
		batches = append(batches, values)
		return nil, nil
	}

	result := Import(context.Background(), makeItems(250), insert, Config{Size: 100})

	assert.Equal(t, 250, result.Total)
	assert.Equal(t, 250, result.Imported)
	assert.Zero(t, result.Failed)
	assert.Zero(t, result.Skipped)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[2], 50)
	// Order is preserved across batches.
	assert.Equal(t, "row-2", batches[0][0])
	assert.Equal(t, "row-202", batches[2][0])
}

func TestImport_SingleFailureIsolated(t *testing.T) {
	// Property: one bad item out of n fails alone, wherever it sits.
	const n = 25
	for bad := 0; bad < n; bad++ {
		t.Run(fmt.Sprintf("bad item at %d", bad), func(t *testing.T) {
			submitted := 0
			insert := func(ctx context.Context, values []string) ([]ledger.InsertOutcome, error) {
				var outcomes []ledger.InsertOutcome
				for i := range values {
					if submitted+i == bad {
						outcomes = append(outcomes, ledger.InsertOutcome{Index: i, Err: fmt.Errorf("constraint violation")})
					}
				}
				submitted += len(values)
				return outcomes, nil
			}

			result := Import(context.Background(), makeItems(n), insert, Config{Size: 10})

			assert.Equal(t, n-1, result.Imported)
			assert.Equal(t, 1, result.Failed)
			assert.Zero(t, result.Skipped)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, bad+2, result.Errors[0].Row)
		})
	}
}

func TestImport_WholeBatchRejected(t *testing.T) {
	calls := 0
	insert := func(ctx context.Context, values []string) ([]ledger.InsertOutcome, error) {
		calls++
		if calls == 2 {
			return nil, fmt.Errorf("connection reset")
		}
		return nil, nil
	}

	result := Import(context.Background(), makeItems(30), insert, Config{Size: 10})

	assert.Equal(t, 20, result.Imported)
	assert.Equal(t, 10, result.Failed)
	require.Len(t, result.Errors, 10)
	// Failed rows are the second batch, attributed individually.
	assert.Equal(t, 12, result.Errors[0].Row)
	assert.Equal(t, 21, result.Errors[9].Row)
}

func TestImport_FailOnErrorAborts(t *testing.T) {
	calls := 0
	insert := func(ctx context.Context, values []string) ([]ledger.InsertOutcome, error) {
		calls++
		return []ledger.InsertOutcome{{Index: 3, Err: fmt.Errorf("boom")}}, nil
	}

	result := Import(context.Background(), makeItems(25), insert, Config{Size: 10, FailOnError: true})

	// The failing item's batch was already submitted as a whole, so its nine
	// siblings committed and count as imported. Only the two unsubmitted
	// batches are skipped.
	assert.Equal(t, 1, calls)
	assert.Equal(t, 9, result.Imported)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 15, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 5, result.Errors[0].Row)
}

func TestImport_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	insert := func(ctx context.Context, values []string) ([]ledger.InsertOutcome, error) {
		cancel()
		return nil, nil
	}

	result := Import(ctx, makeItems(30), insert, Config{Size: 10})

	assert.Equal(t, 10, result.Imported)
	assert.Equal(t, 20, result.Skipped)
}

func TestImport_DefaultSize(t *testing.T) {
	var sizes []int
	insert := func(ctx context.Context, values []string) ([]ledger.InsertOutcome, error) {
		sizes = append(sizes, len(values))
		return nil, nil
	}

	Import(context.Background(), makeItems(DefaultSize+1), insert, Config{})
	assert.Equal(t, []int{DefaultSize, 1}, sizes)
}

func TestImport_Empty(t *testing.T) {
	insert := func(ctx context.Context, values []string) ([]ledger.InsertOutcome, error) {
		t.Fatal("insert should not be called")
		return nil, nil
	}
	result := Import(context.Background(), nil, insert, Config{})
	assert.Zero(t, result.Total)
	assert.Zero(t, result.Imported)
}
