// Package service orchestrates a full workbook import: decode, map, validate,
// then write through the ledger stores module by module. Modules are isolated
// from each other; inside a module, failure granularity is the row.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lifebook-app/lifebook/internal/domain/importer/batch"
	"github.com/lifebook-app/lifebook/internal/domain/importer/decoder"
	"github.com/lifebook-app/lifebook/internal/domain/importer/reconcile"
	"github.com/lifebook-app/lifebook/internal/domain/ledger"
	"github.com/lifebook-app/lifebook/pkg/config"
	"github.com/lifebook-app/lifebook/pkg/money"
)

// Service runs workbook imports against the ledger stores.
type Service struct {
	stores ledger.Stores
	logger *slog.Logger
	cfg    config.ImporterConfig
}

func NewService(stores ledger.Stores, logger *slog.Logger, cfg config.ImporterConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{stores: stores, logger: logger, cfg: cfg}
}

// Import runs one import over the workbook bytes. The returned Result is
// non-nil whenever the workbook could be opened; a nil Result with an error
// means the file was rejected before any module ran.
//
// Module order is fixed: accounts, categories, transactions, tasks, habits.
// Accounts and categories are committed and re-read before transactions are
// decoded, so transaction rows can reference records created in the same run.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, filename string, data []byte, opts Options, onProgress ProgressFunc) (*Result, error) {
	onProgress.emit(ProgressEvent{State: StateAnalyzing})

	wb, err := decoder.Open(filename, data, decoder.Default()...)
	if err != nil {
		s.logger.Error("workbook rejected", "file", filename, "error", err)
		onProgress.emit(ProgressEvent{State: StateError, Err: err})
		observeRun(false)
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	opts = s.applyDefaults(opts)
	result := newResult()

	runModule := func(m Module, run func() (*ModuleResult, error)) error {
		if !opts.wantsModule(m) {
			return nil
		}
		onProgress.emit(ProgressEvent{State: StateImporting, Module: m})
		mr, err := run()
		if err != nil {
			onProgress.emit(ProgressEvent{State: StateError, Module: m, Err: err})
			observeRun(false)
			return err
		}
		observeModule(mr)
		result.merge(mr)
		onProgress.emit(ProgressEvent{State: StateModuleCompleted, Module: m, Result: mr})
		return nil
	}

	if err := runModule(ModuleAccounts, func() (*ModuleResult, error) {
		return s.importAccounts(ctx, wb, userID, opts)
	}); err != nil {
		return result, err
	}
	if err := runModule(ModuleCategories, func() (*ModuleResult, error) {
		return s.importCategories(ctx, wb, userID, opts)
	}); err != nil {
		return result, err
	}
	if err := runModule(ModuleTransactions, func() (*ModuleResult, error) {
		return s.importTransactions(ctx, wb, userID, opts)
	}); err != nil {
		return result, err
	}
	if err := runModule(ModuleTasks, func() (*ModuleResult, error) {
		return s.importTasks(ctx, wb, userID, opts)
	}); err != nil {
		return result, err
	}
	if err := runModule(ModuleHabits, func() (*ModuleResult, error) {
		return s.importHabits(ctx, wb, userID, opts)
	}); err != nil {
		return result, err
	}

	observeRun(result.Success)
	onProgress.emit(ProgressEvent{State: StateCompleted})
	s.logger.Info("import finished",
		"file", filename,
		"success", result.Success,
		"total", result.Total,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result, nil
}

// applyDefaults folds the service configuration into per-run options without
// overriding explicit caller choices.
func (s *Service) applyDefaults(opts Options) Options {
	if opts.BatchSize <= 0 {
		opts.BatchSize = s.cfg.BatchSize
	}
	if s.cfg.IgnoreBalanceErrors {
		opts.IgnoreBalanceErrors = true
	}
	if s.cfg.CheckNegativeBalance {
		opts.CheckNegativeBalance = true
	}
	if opts.Merge == "" {
		opts.Merge = MergeSkip
	}
	return opts
}

func (s *Service) batchConfig(opts Options) batch.Config {
	return batch.Config{Size: opts.BatchSize, FailOnError: opts.FailOnError}
}

// missingSheet builds the structural failure result for a module whose sheet
// is absent from the workbook.
func missingSheet(m Module) *ModuleResult {
	mr := &ModuleResult{Module: m, Success: true}
	mr.fail(Issue{Kind: IssueStructural, Message: fmt.Sprintf("no sheet found for %s", m)})
	return mr
}

// unreadableSheet builds the structural failure result for a module whose
// sheet exists but cannot be materialized. Fatal to this module only; later
// modules still run.
func unreadableSheet(m Module, name string, err error) *ModuleResult {
	mr := &ModuleResult{Module: m, Success: true}
	mr.fail(Issue{Kind: IssueStructural, Message: fmt.Sprintf("read sheet %q: %v", name, err)})
	return mr
}

// readSheet locates and materializes a module's sheet. A non-nil failed
// result means the module cannot run (sheet missing or unreadable); the
// failure stays scoped to the module.
func readSheet(wb decoder.Workbook, opts Options, m Module) (matrix *decoder.SheetMatrix, failed *ModuleResult) {
	name := findSheet(wb, opts, m)
	if name == "" {
		return nil, missingSheet(m)
	}
	matrix, err := wb.Sheet(name)
	if err != nil {
		return nil, unreadableSheet(m, name, err)
	}
	return matrix, nil
}

// applyBatch folds a coordinator result into a module result, attributing
// store failures to their source rows.
func (mr *ModuleResult) applyBatch(br *batch.Result) {
	mr.Imported += br.Imported
	mr.Skipped += br.Skipped
	for _, e := range br.Errors {
		mr.addIssue(Issue{Kind: IssueBatch, Row: e.Row, Message: e.Err.Error()})
	}
}

func (s *Service) importAccounts(ctx context.Context, wb decoder.Workbook, userID uuid.UUID, opts Options) (*ModuleResult, error) {
	matrix, failed := readSheet(wb, opts, ModuleAccounts)
	if failed != nil {
		return failed, nil
	}

	existing, err := s.accountRecordsByName(ctx, userID)
	if err != nil {
		return nil, err
	}

	decoded := decodeAccountRows(matrix, opts, userID, existing)
	mr := &ModuleResult{Module: ModuleAccounts, Success: true, Total: decoded.total, Skipped: decoded.skipped}
	for _, issue := range decoded.issues {
		mr.addIssue(issue)
	}

	br := batch.Import(ctx, decoded.items, s.stores.Accounts.InsertBatch, s.batchConfig(opts))
	mr.applyBatch(br)

	for _, upd := range decoded.updates {
		if err := s.stores.Accounts.UpdateBalance(ctx, upd.id, upd.cents); err != nil {
			mr.addIssue(Issue{Kind: IssueBatch, Message: fmt.Sprintf("update balance: %v", err)})
			continue
		}
		mr.Imported++
	}
	return mr, nil
}

func (s *Service) importCategories(ctx context.Context, wb decoder.Workbook, userID uuid.UUID, opts Options) (*ModuleResult, error) {
	matrix, failed := readSheet(wb, opts, ModuleCategories)
	if failed != nil {
		return failed, nil
	}

	existing, err := s.categoriesByName(ctx, userID)
	if err != nil {
		return nil, err
	}

	decoded := decodeCategoryRows(matrix, opts, userID, existing)
	mr := &ModuleResult{Module: ModuleCategories, Success: true, Total: decoded.total, Skipped: decoded.skipped}
	for _, issue := range decoded.issues {
		mr.addIssue(issue)
	}

	br := batch.Import(ctx, decoded.items, s.stores.Categories.InsertBatch, s.batchConfig(opts))
	mr.applyBatch(br)
	return mr, nil
}

func (s *Service) importTransactions(ctx context.Context, wb decoder.Workbook, userID uuid.UUID, opts Options) (*ModuleResult, error) {
	matrix, failed := readSheet(wb, opts, ModuleTransactions)
	if failed != nil {
		return failed, nil
	}

	// Accounts and categories created earlier in this run are already
	// committed, so a fresh read sees them.
	accounts, err := s.accountRecordsByName(ctx, userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoriesByName(ctx, userID)
	if err != nil {
		return nil, err
	}

	decoded := decodeTransactionRows(matrix, opts, userID, accounts, categories)
	mr := &ModuleResult{Module: ModuleTransactions, Success: true, Total: decoded.total}
	for _, issue := range decoded.issues {
		mr.addIssue(issue)
	}

	// Reconcile only when the sheet carries balance snapshots; without them
	// there is nothing to check against.
	if decoded.hasBalanceColumns {
		openings := make(map[string]decimal.Decimal, len(accounts))
		for accName, acct := range accounts {
			openings[accName] = money.New(acct.BalanceCents, acct.CurrencyCode).ToDecimal()
		}
		rec := reconcile.Validate(decoded.reconRows, openings, reconcile.Options{
			IgnoreBalanceErrors:  opts.IgnoreBalanceErrors,
			CheckNegativeBalance: opts.CheckNegativeBalance,
		})
		for _, be := range rec.Errors {
			mr.addIssue(Issue{Kind: IssueBalance, Row: be.RowNumber, Column: string(be.Kind), Message: be.Message})
		}
		if !rec.Valid {
			mr.Success = false
			s.logger.Warn("balance reconciliation failed, transactions not imported",
				"sheet", matrix.Name, "errors", len(rec.Errors))
			return mr, nil
		}
	}

	br := batch.Import(ctx, decoded.items, s.stores.Transactions.InsertBatch, s.batchConfig(opts))
	mr.applyBatch(br)
	return mr, nil
}

func (s *Service) importTasks(ctx context.Context, wb decoder.Workbook, userID uuid.UUID, opts Options) (*ModuleResult, error) {
	matrix, failed := readSheet(wb, opts, ModuleTasks)
	if failed != nil {
		return failed, nil
	}

	decoded := decodeTaskRows(matrix, opts, userID)
	mr := &ModuleResult{Module: ModuleTasks, Success: true, Total: decoded.total}
	for _, issue := range decoded.issues {
		mr.addIssue(issue)
	}

	br := batch.Import(ctx, decoded.items, s.stores.Tasks.InsertBatch, s.batchConfig(opts))
	mr.applyBatch(br)
	return mr, nil
}

func (s *Service) importHabits(ctx context.Context, wb decoder.Workbook, userID uuid.UUID, opts Options) (*ModuleResult, error) {
	matrix, failed := readSheet(wb, opts, ModuleHabits)
	if failed != nil {
		return failed, nil
	}

	decoded := decodeHabitRows(matrix, opts, userID)
	mr := &ModuleResult{Module: ModuleHabits, Success: true, Total: decoded.total}
	for _, issue := range decoded.issues {
		mr.addIssue(issue)
	}

	br := batch.Import(ctx, decoded.items, s.stores.Habits.InsertBatch, s.batchConfig(opts))
	mr.applyBatch(br)
	return mr, nil
}

func (s *Service) accountRecordsByName(ctx context.Context, userID uuid.UUID) (map[string]ledger.Account, error) {
	accounts, err := s.stores.Accounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	byName := make(map[string]ledger.Account, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a
	}
	return byName, nil
}

func (s *Service) categoriesByName(ctx context.Context, userID uuid.UUID) (map[string]uuid.UUID, error) {
	categories, err := s.stores.Categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	byName := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}
	return byName, nil
}
