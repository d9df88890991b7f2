// Package repository implements the ledger store interfaces on PostgreSQL.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifebook-app/lifebook/internal/domain/ledger"
)

// DB is the slice of the pgx pool API the stores use. *pgxpool.Pool satisfies
// it; tests substitute a mock.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NewStores wires every ledger store to the same pool.
func NewStores(pool *pgxpool.Pool) ledger.Stores {
	return ledger.Stores{
		Accounts:     NewPostgresAccountStore(pool),
		Categories:   NewPostgresCategoryStore(pool),
		Transactions: NewPostgresTransactionStore(pool),
		Tasks:        NewPostgresTaskStore(pool),
		Habits:       NewPostgresHabitStore(pool),
	}
}

// PostgresAccountStore implements ledger.AccountStore using PostgreSQL.
type PostgresAccountStore struct {
	db DB
}

func NewPostgresAccountStore(db DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

func (r *PostgresAccountStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error) {
	query := `
		SELECT id, user_id, name, type, balance_minor, currency_code, is_default, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var a ledger.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.BalanceCents, &a.CurrencyCode, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// InsertBatch inserts each account in its own implicit transaction so one
// rejected row cannot roll back its siblings. Only failed items appear in the
// returned outcomes.
func (r *PostgresAccountStore) InsertBatch(ctx context.Context, items []ledger.Account) ([]ledger.InsertOutcome, error) {
	query := `
		INSERT INTO accounts (id, user_id, name, type, balance_minor, currency_code, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var outcomes []ledger.InsertOutcome
	for i, a := range items {
		if _, err := r.db.Exec(ctx, query, a.ID, a.UserID, a.Name, a.Type, a.BalanceCents, a.CurrencyCode, a.IsDefault); err != nil {
			outcomes = append(outcomes, ledger.InsertOutcome{Index: i, Err: fmt.Errorf("failed to insert account: %w", err)})
		}
	}
	return outcomes, nil
}

func (r *PostgresAccountStore) UpdateBalance(ctx context.Context, id uuid.UUID, balanceCents int64) error {
	query := `UPDATE accounts SET balance_minor = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, balanceCents)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// PostgresCategoryStore implements ledger.CategoryStore using PostgreSQL.
type PostgresCategoryStore struct {
	db DB
}

func NewPostgresCategoryStore(db DB) *PostgresCategoryStore {
	return &PostgresCategoryStore{db: db}
}

func (r *PostgresCategoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]ledger.Category, error) {
	query := `
		SELECT id, user_id, name, type, icon, color, sort_order, parent_id, created_at
		FROM categories
		WHERE user_id = $1
		ORDER BY sort_order, name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []ledger.Category
	for rows.Next() {
		var c ledger.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.SortOrder, &c.ParentID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *PostgresCategoryStore) InsertBatch(ctx context.Context, items []ledger.Category) ([]ledger.InsertOutcome, error) {
	query := `
		INSERT INTO categories (id, user_id, name, type, icon, color, sort_order, parent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var outcomes []ledger.InsertOutcome
	for i, c := range items {
		if _, err := r.db.Exec(ctx, query, c.ID, c.UserID, c.Name, c.Type, c.Icon, c.Color, c.SortOrder, c.ParentID); err != nil {
			outcomes = append(outcomes, ledger.InsertOutcome{Index: i, Err: fmt.Errorf("failed to insert category: %w", err)})
		}
	}
	return outcomes, nil
}

// PostgresTransactionStore implements ledger.TransactionStore using PostgreSQL.
type PostgresTransactionStore struct {
	db DB
}

func NewPostgresTransactionStore(db DB) *PostgresTransactionStore {
	return &PostgresTransactionStore{db: db}
}

func (r *PostgresTransactionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]ledger.Transaction, error) {
	query := `
		SELECT id, user_id, account_id, category_id, type, amount_minor, occurred_at, note, tags
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Type, &t.AmountCents, &t.OccurredAt, &t.Note, &t.Tags); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

func (r *PostgresTransactionStore) InsertBatch(ctx context.Context, items []ledger.Transaction) ([]ledger.InsertOutcome, error) {
	query := `
		INSERT INTO transactions (id, user_id, account_id, category_id, type, amount_minor, occurred_at, note, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var outcomes []ledger.InsertOutcome
	for i, t := range items {
		if _, err := r.db.Exec(ctx, query, t.ID, t.UserID, t.AccountID, t.CategoryID, t.Type, t.AmountCents, t.OccurredAt, t.Note, t.Tags); err != nil {
			outcomes = append(outcomes, ledger.InsertOutcome{Index: i, Err: fmt.Errorf("failed to insert transaction: %w", err)})
		}
	}
	return outcomes, nil
}

// PostgresTaskStore implements ledger.TaskStore using PostgreSQL.
type PostgresTaskStore struct {
	db DB
}

func NewPostgresTaskStore(db DB) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

func (r *PostgresTaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]ledger.Task, error) {
	query := `
		SELECT id, user_id, title, description, priority, due_at, status, tags
		FROM tasks
		WHERE user_id = $1
		ORDER BY due_at NULLS LAST, priority DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []ledger.Task
	for rows.Next() {
		var t ledger.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.DueAt, &t.Status, &t.Tags); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresTaskStore) InsertBatch(ctx context.Context, items []ledger.Task) ([]ledger.InsertOutcome, error) {
	query := `
		INSERT INTO tasks (id, user_id, title, description, priority, due_at, status, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var outcomes []ledger.InsertOutcome
	for i, t := range items {
		if _, err := r.db.Exec(ctx, query, t.ID, t.UserID, t.Title, t.Description, t.Priority, t.DueAt, t.Status, t.Tags); err != nil {
			outcomes = append(outcomes, ledger.InsertOutcome{Index: i, Err: fmt.Errorf("failed to insert task: %w", err)})
		}
	}
	return outcomes, nil
}

// PostgresHabitStore implements ledger.HabitStore using PostgreSQL.
type PostgresHabitStore struct {
	db DB
}

func NewPostgresHabitStore(db DB) *PostgresHabitStore {
	return &PostgresHabitStore{db: db}
}

func (r *PostgresHabitStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]ledger.Habit, error) {
	query := `
		SELECT id, user_id, name, description, period, target_count, color, icon
		FROM habits
		WHERE user_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []ledger.Habit
	for rows.Next() {
		var h ledger.Habit
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Period, &h.TargetCount, &h.Color, &h.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

func (r *PostgresHabitStore) InsertBatch(ctx context.Context, items []ledger.Habit) ([]ledger.InsertOutcome, error) {
	query := `
		INSERT INTO habits (id, user_id, name, description, period, target_count, color, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var outcomes []ledger.InsertOutcome
	for i, h := range items {
		if _, err := r.db.Exec(ctx, query, h.ID, h.UserID, h.Name, h.Description, h.Period, h.TargetCount, h.Color, h.Icon); err != nil {
			outcomes = append(outcomes, ledger.InsertOutcome{Index: i, Err: fmt.Errorf("failed to insert habit: %w", err)})
		}
	}
	return outcomes, nil
}
