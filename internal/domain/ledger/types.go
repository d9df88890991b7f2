// Package ledger holds the domain records the import pipeline produces and
// the store interfaces it writes them through. The concrete storage engine
// lives in the repository subpackage; the importer only sees these
// interfaces.
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a ledger row.
type TransactionType string

const (
	TypeIncome   TransactionType = "income"
	TypeExpense  TransactionType = "expense"
	TypeTransfer TransactionType = "transfer"
	// TypeOpeningBalance marks a placeholder row carrying an account's
	// starting balance; it participates in counts but not in running
	// balance math.
	TypeOpeningBalance TransactionType = "opening_balance"
)

// Account is a money container (cash, bank card, e-wallet).
type Account struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	Type         string
	BalanceCents int64
	CurrencyCode string
	IsDefault    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Category classifies transactions; Type is "income" or "expense".
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Type      string
	Icon      string
	Color     string
	SortOrder int
	ParentID  *uuid.UUID
	CreatedAt time.Time
}

// Transaction is one ledger entry. AmountCents is always non-negative; Type
// determines the sign of its effect on the account balance.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Type        TransactionType
	AmountCents int64
	OccurredAt  time.Time
	Note        string
	Tags        []string
}

// Task is a to-do item.
type Task struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Priority    int
	DueAt       *time.Time
	Status      string
	Tags        []string
}

// Habit is a recurring tracked behavior.
type Habit struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Name        string
	Description string
	Period      string
	TargetCount int
	Color       string
	Icon        string
}
