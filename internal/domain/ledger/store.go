package ledger

import (
	"context"

	"github.com/google/uuid"
)

// InsertOutcome reports one item's fate inside a batch insert. Index refers
// to the item's position in the submitted slice.
type InsertOutcome struct {
	Index int
	Err   error
}

// AccountStore is the account module's storage API.
type AccountStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Account, error)
	InsertBatch(ctx context.Context, items []Account) ([]InsertOutcome, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balanceCents int64) error
}

// CategoryStore is the category module's storage API.
type CategoryStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Category, error)
	InsertBatch(ctx context.Context, items []Category) ([]InsertOutcome, error)
}

// TransactionStore is the transaction module's storage API.
type TransactionStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Transaction, error)
	InsertBatch(ctx context.Context, items []Transaction) ([]InsertOutcome, error)
}

// TaskStore is the task module's storage API.
type TaskStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Task, error)
	InsertBatch(ctx context.Context, items []Task) ([]InsertOutcome, error)
}

// HabitStore is the habit module's storage API.
type HabitStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Habit, error)
	InsertBatch(ctx context.Context, items []Habit) ([]InsertOutcome, error)
}

// Stores bundles the per-module storage APIs an import run writes through.
type Stores struct {
	Accounts     AccountStore
	Categories   CategoryStore
	Transactions TransactionStore
	Tasks        TaskStore
	Habits       HabitStore
}
