// Package reconcile validates balance snapshots embedded in a transaction
// sheet against running balances computed from the transaction stream itself.
// It catches transcription errors and tampered exports before they corrupt
// account state. The reconciler is read-only: it never touches stored
// balances, it only decides whether the import may proceed.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lifebook-app/lifebook/internal/domain/ledger"
)

// ErrorKind identifies the class of a balance discrepancy.
type ErrorKind string

const (
	// KindAccountMismatch: a row's declared per-account balance disagrees
	// with the computed running balance. The most severe kind.
	KindAccountMismatch ErrorKind = "account_balance_mismatch"
	// KindTotalAssetsMismatch: a row's declared total-assets value
	// disagrees with the sum of all tracked running balances. Advisory.
	KindTotalAssetsMismatch ErrorKind = "total_assets_mismatch"
	// KindNegativeBalance: a running balance dipped below zero. Advisory,
	// reported only when requested.
	KindNegativeBalance ErrorKind = "negative_balance"
)

// Severity decides whether an error may abort the import.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityAdvisory Severity = "advisory"
)

// BalanceError is one discrepancy, attributed to a sheet row.
type BalanceError struct {
	Kind      ErrorKind
	Severity  Severity
	RowNumber int // 1-based sheet row, header row included
	Account   string
	Message   string
}

// Result is the outcome of one reconciliation pass. Valid is false only when
// at least one blocking error was recorded.
type Result struct {
	Valid       bool
	RowsChecked int
	Errors      []BalanceError
}

// Row is one transaction row as decoded from the sheet, reduced to what the
// balance math needs. Declared values are nil when the sheet carries no
// snapshot for that row.
type Row struct {
	RowNumber           int
	Account             string
	Type                ledger.TransactionType
	Amount              decimal.Decimal
	DeclaredBalance     *decimal.Decimal
	DeclaredTotalAssets *decimal.Decimal
}

// Options tunes the reconciliation pass.
type Options struct {
	// IgnoreBalanceErrors downgrades account mismatches to advisory so the
	// import can proceed anyway.
	IgnoreBalanceErrors bool
	// CheckNegativeBalance reports running balances that drop below zero.
	CheckNegativeBalance bool
}

// tolerance absorbs rounding noise between the composer and our arithmetic:
// anything under half a cent is considered equal.
var tolerance = decimal.New(5, -3)

// Validate walks rows in file order, maintaining a running balance per
// account seeded from the stored opening balances. Rows whose account is not
// in openingBalances are skipped from the math (the importer reports those as
// reference errors); opening-balance placeholder rows are counted but carry
// no effect. The pass is pure: running it twice over the same rows yields an
// identical Result.
func Validate(rows []Row, openingBalances map[string]decimal.Decimal, opts Options) *Result {
	result := &Result{Valid: true}

	running := make(map[string]decimal.Decimal, len(openingBalances))
	for name, bal := range openingBalances {
		running[name] = bal
	}

	mismatchSeverity := SeverityBlocking
	if opts.IgnoreBalanceErrors {
		mismatchSeverity = SeverityAdvisory
	}

	for _, row := range rows {
		result.RowsChecked++

		if row.Type == ledger.TypeOpeningBalance {
			continue
		}
		balance, tracked := running[row.Account]
		if !tracked {
			continue
		}

		switch row.Type {
		case ledger.TypeIncome:
			balance = balance.Add(row.Amount)
		case ledger.TypeExpense:
			balance = balance.Sub(row.Amount)
		case ledger.TypeTransfer:
			// From the declared account's perspective a transfer is an
			// outflow; the inflow side appears as its own row.
			balance = balance.Sub(row.Amount)
		default:
			continue
		}
		running[row.Account] = balance

		if opts.CheckNegativeBalance && balance.IsNegative() {
			result.Errors = append(result.Errors, BalanceError{
				Kind:      KindNegativeBalance,
				Severity:  SeverityAdvisory,
				RowNumber: row.RowNumber,
				Account:   row.Account,
				Message:   fmt.Sprintf("account %q balance is negative (%s) after row %d", row.Account, balance, row.RowNumber),
			})
		}

		if row.DeclaredBalance != nil && !withinTolerance(*row.DeclaredBalance, balance) {
			result.Errors = append(result.Errors, BalanceError{
				Kind:      KindAccountMismatch,
				Severity:  mismatchSeverity,
				RowNumber: row.RowNumber,
				Account:   row.Account,
				Message: fmt.Sprintf("row %d: account %q declares balance %s but computed running balance is %s",
					row.RowNumber, row.Account, row.DeclaredBalance, balance),
			})
			if mismatchSeverity == SeverityBlocking {
				result.Valid = false
			}
		}

		if row.DeclaredTotalAssets != nil {
			total := decimal.Zero
			for _, bal := range running {
				total = total.Add(bal)
			}
			if !withinTolerance(*row.DeclaredTotalAssets, total) {
				result.Errors = append(result.Errors, BalanceError{
					Kind:      KindTotalAssetsMismatch,
					Severity:  SeverityAdvisory,
					RowNumber: row.RowNumber,
					Account:   row.Account,
					Message: fmt.Sprintf("row %d: declared total assets %s but tracked accounts sum to %s",
						row.RowNumber, row.DeclaredTotalAssets, total),
				})
			}
		}
	}

	return result
}

// RunningBalances recomputes the final per-account balances for the row set.
// Used by callers that want the post-import balances without re-walking rows.
func RunningBalances(rows []Row, openingBalances map[string]decimal.Decimal) map[string]decimal.Decimal {
	running := make(map[string]decimal.Decimal, len(openingBalances))
	for name, bal := range openingBalances {
		running[name] = bal
	}
	for _, row := range rows {
		balance, tracked := running[row.Account]
		if !tracked || row.Type == ledger.TypeOpeningBalance {
			continue
		}
		switch row.Type {
		case ledger.TypeIncome:
			running[row.Account] = balance.Add(row.Amount)
		case ledger.TypeExpense, ledger.TypeTransfer:
			running[row.Account] = balance.Sub(row.Amount)
		}
	}
	return running
}

func withinTolerance(declared, computed decimal.Decimal) bool {
	return declared.Sub(computed).Abs().LessThanOrEqual(tolerance)
}
