package service

import (
	"fmt"

	"github.com/lifebook-app/lifebook/internal/domain/importer/mapping"
)

// Module names one of the five data categories the pipeline handles.
type Module string

const (
	ModuleAccounts     Module = "accounts"
	ModuleCategories   Module = "categories"
	ModuleTransactions Module = "transactions"
	ModuleTasks        Module = "tasks"
	ModuleHabits       Module = "habits"
)

// AllModules lists every module in import order: the ledger unit first
// (transactions depend on accounts and categories), then tasks, then habits.
var AllModules = []Module{ModuleAccounts, ModuleCategories, ModuleTransactions, ModuleTasks, ModuleHabits}

// MergeStrategy decides what happens when an imported record collides with an
// existing one by name.
type MergeStrategy string

const (
	MergeSkip    MergeStrategy = "skip"
	MergeReplace MergeStrategy = "replace"
	MergeMerge   MergeStrategy = "merge"
)

// Options configures one import run. Immutable for the run's duration.
type Options struct {
	// Modules selects which data modules to import. Empty means all.
	Modules []Module
	// Merge picks the duplicate handling strategy for accounts/categories.
	Merge MergeStrategy
	// IgnoreBalanceErrors downgrades blocking balance mismatches to
	// advisory so the ledger import proceeds anyway.
	IgnoreBalanceErrors bool
	// CheckNegativeBalance adds advisory errors for negative running
	// balances during reconciliation.
	CheckNegativeBalance bool
	// Sheets restricts which sheet names are considered. Empty means all.
	Sheets []string
	// Mappings are explicit header-to-field bindings with optional value
	// transforms; they take strict priority over default synonyms.
	Mappings []mapping.Mapping
	// BatchSize overrides the store batch size. Zero means the default.
	BatchSize int
	// FailOnError stops submitting a module's remaining batches at the
	// first store failure instead of isolating it.
	FailOnError bool
}

func (o Options) wantsModule(m Module) bool {
	if len(o.Modules) == 0 {
		return true
	}
	for _, sel := range o.Modules {
		if sel == m {
			return true
		}
	}
	return false
}

func (o Options) wantsSheet(name string) bool {
	if len(o.Sheets) == 0 {
		return true
	}
	for _, sel := range o.Sheets {
		if sel == name {
			return true
		}
	}
	return false
}

// IssueKind is the machine-readable class of an import error.
type IssueKind string

const (
	// IssueStructural: a module's named sheet is missing or unreadable.
	IssueStructural IssueKind = "structural"
	// IssueRow: a row's required field is missing or unparseable.
	IssueRow IssueKind = "row"
	// IssueReference: a named account/category/parent was not found.
	IssueReference IssueKind = "reference"
	// IssueBalance: reconciliation reported a discrepancy.
	IssueBalance IssueKind = "balance"
	// IssueBatch: the destination store rejected an item.
	IssueBatch IssueKind = "batch"
)

// Issue is one recoverable import error with enough context to render an
// actionable message: 1-based sheet row (header row included), optional
// column label, and kind code.
type Issue struct {
	Kind    IssueKind
	Row     int
	Column  string
	Message string
}

func (i Issue) String() string {
	switch {
	case i.Row > 0 && i.Column != "":
		return fmt.Sprintf("[%s] row %d, column %s: %s", i.Kind, i.Row, i.Column, i.Message)
	case i.Row > 0:
		return fmt.Sprintf("[%s] row %d: %s", i.Kind, i.Row, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Kind, i.Message)
}

// ModuleResult reports one module's outcome, independent of other modules.
type ModuleResult struct {
	Module   Module
	Success  bool
	Total    int
	Imported int
	Skipped  int
	Errors   []Issue
}

// addIssue records a recoverable error without failing the module; partial
// success stays observable through the counts.
func (r *ModuleResult) addIssue(issue Issue) {
	r.Errors = append(r.Errors, issue)
}

// fail records a module-fatal error (missing sheet, blocking balance
// mismatch) and flips the module's success flag.
func (r *ModuleResult) fail(issue Issue) {
	r.Errors = append(r.Errors, issue)
	r.Success = false
}

// Result is the terminal artifact of one import run. Success is the logical
// AND of every attempted module's success flag; totals and the combined
// error list are always populated so partial success stays observable.
type Result struct {
	Success  bool
	Total    int
	Imported int
	Skipped  int
	Errors   []Issue
	Modules  map[Module]*ModuleResult
}

func newResult() *Result {
	return &Result{Success: true, Modules: make(map[Module]*ModuleResult)}
}

func (r *Result) merge(mr *ModuleResult) {
	r.Modules[mr.Module] = mr
	r.Total += mr.Total
	r.Imported += mr.Imported
	r.Skipped += mr.Skipped
	r.Errors = append(r.Errors, mr.Errors...)
	r.Success = r.Success && mr.Success
}
