package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lifebook-app/lifebook/internal/domain/importer/batch"
	"github.com/lifebook-app/lifebook/internal/domain/importer/cell"
	"github.com/lifebook-app/lifebook/internal/domain/importer/decoder"
	"github.com/lifebook-app/lifebook/internal/domain/importer/mapping"
	"github.com/lifebook-app/lifebook/internal/domain/importer/reconcile"
	"github.com/lifebook-app/lifebook/internal/domain/ledger"
	"github.com/lifebook-app/lifebook/pkg/money"
)

// sheetRow converts a zero-based data-row offset to the 1-based sheet row a
// user sees, accounting for the header row.
func sheetRow(dataIdx int) int {
	return dataIdx + 2
}

// fieldValue reads one cell through the column mapper: resolve the field's
// column, read the display string, apply the field's transform if any.
// Returns "" when the field has no column in this sheet.
func fieldValue(m *decoder.SheetMatrix, row int, field mapping.Field, mappings []mapping.Mapping) string {
	col := mapping.ResolveColumn(field, m.Headers, mappings)
	if col < 0 {
		return ""
	}
	return mapping.Apply(field, mappings, m.Cell(row, col).String())
}

// fieldCell reads the typed cell for a field, or a blank cell if unmapped.
func fieldCell(m *decoder.SheetMatrix, row int, field mapping.Field, mappings []mapping.Mapping) cell.Cell {
	col := mapping.ResolveColumn(field, m.Headers, mappings)
	if col < 0 {
		return cell.Blank()
	}
	return m.Cell(row, col)
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

type balanceUpdate struct {
	id    uuid.UUID
	cents int64
}

type decodedAccounts struct {
	total   int
	skipped int
	items   []batch.Item[ledger.Account]
	updates []balanceUpdate
	issues  []Issue
}

func decodeAccountRows(m *decoder.SheetMatrix, opts Options, userID uuid.UUID, existing map[string]ledger.Account) *decodedAccounts {
	out := &decodedAccounts{}
	for i := range m.Rows {
		rowNum := sheetRow(i)
		name := strings.TrimSpace(fieldValue(m, i, mapping.FieldName, opts.Mappings))
		if name == "" {
			// Trailing blank rows are not data.
			if rowIsEmpty(m, i) {
				continue
			}
			out.total++
			out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "name", Message: "account name is required"})
			continue
		}
		out.total++

		currency := money.NormalizeCurrency(fieldValue(m, i, mapping.FieldCurrency, opts.Mappings))
		balanceCents := int64(0)
		if raw := fieldValue(m, i, mapping.FieldBalance, opts.Mappings); strings.TrimSpace(raw) != "" {
			cents, err := money.ParseCents(raw, currency)
			if err != nil {
				out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "balance", Message: err.Error()})
				continue
			}
			balanceCents = cents
		}

		if prior, ok := existing[name]; ok {
			switch opts.Merge {
			case MergeReplace:
				out.updates = append(out.updates, balanceUpdate{id: prior.ID, cents: balanceCents})
			default:
				// skip and merge behave identically for accounts.
				out.skipped++
			}
			continue
		}

		out.items = append(out.items, batch.Item[ledger.Account]{
			Row: rowNum,
			Value: ledger.Account{
				ID:           uuid.New(),
				UserID:       userID,
				Name:         name,
				Type:         strings.TrimSpace(fieldValue(m, i, mapping.FieldType, opts.Mappings)),
				BalanceCents: balanceCents,
				CurrencyCode: currency,
				IsDefault:    parseBoolLabel(fieldValue(m, i, mapping.FieldIsDefault, opts.Mappings)),
			},
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type decodedCategories struct {
	total   int
	skipped int
	items   []batch.Item[ledger.Category]
	issues  []Issue
}

func decodeCategoryRows(m *decoder.SheetMatrix, opts Options, userID uuid.UUID, existing map[string]uuid.UUID) *decodedCategories {
	out := &decodedCategories{}

	// Children may name a parent defined further down the sheet, so IDs for
	// all sheet rows are assigned before parents are resolved.
	sheetIDs := make(map[string]uuid.UUID)
	type pending struct {
		row    int
		name   string
		parent string
	}
	var rows []pending

	for i := range m.Rows {
		rowNum := sheetRow(i)
		name := strings.TrimSpace(fieldValue(m, i, mapping.FieldName, opts.Mappings))
		if name == "" {
			if rowIsEmpty(m, i) {
				continue
			}
			out.total++
			out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "name", Message: "category name is required"})
			continue
		}
		out.total++
		if _, ok := existing[name]; ok {
			// skip, replace and merge all leave existing categories alone.
			out.skipped++
			continue
		}
		sheetIDs[name] = uuid.New()
		rows = append(rows, pending{row: i, name: name, parent: strings.TrimSpace(fieldValue(m, i, mapping.FieldParent, opts.Mappings))})
	}

	for _, p := range rows {
		rowNum := sheetRow(p.row)
		var parentID *uuid.UUID
		if p.parent != "" {
			if id, ok := existing[p.parent]; ok {
				parentID = &id
			} else if id, ok := sheetIDs[p.parent]; ok {
				parentID = &id
			} else {
				out.issues = append(out.issues, Issue{Kind: IssueReference, Row: rowNum, Column: "parent", Message: fmt.Sprintf("parent category %q not found", p.parent)})
				continue
			}
		}

		sortOrder := 0
		if raw := fieldValue(m, p.row, mapping.FieldSort, opts.Mappings); raw != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				sortOrder = n
			}
		}

		out.items = append(out.items, batch.Item[ledger.Category]{
			Row: rowNum,
			Value: ledger.Category{
				ID:        sheetIDs[p.name],
				UserID:    userID,
				Name:      p.name,
				Type:      strings.TrimSpace(fieldValue(m, p.row, mapping.FieldType, opts.Mappings)),
				Icon:      strings.TrimSpace(fieldValue(m, p.row, mapping.FieldIcon, opts.Mappings)),
				Color:     strings.TrimSpace(fieldValue(m, p.row, mapping.FieldColor, opts.Mappings)),
				SortOrder: sortOrder,
				ParentID:  parentID,
			},
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

type decodedTransactions struct {
	total             int
	items             []batch.Item[ledger.Transaction]
	reconRows         []reconcile.Row
	issues            []Issue
	hasBalanceColumns bool
}

func decodeTransactionRows(m *decoder.SheetMatrix, opts Options, userID uuid.UUID, accounts map[string]ledger.Account, categories map[string]uuid.UUID) *decodedTransactions {
	out := &decodedTransactions{}

	balanceCol := mapping.ResolveColumn(mapping.FieldBalance, m.Headers, opts.Mappings)
	assetsCol := mapping.ResolveColumn(mapping.FieldTotalAssets, m.Headers, opts.Mappings)
	out.hasBalanceColumns = balanceCol >= 0 || assetsCol >= 0

	for i := range m.Rows {
		if rowIsEmpty(m, i) {
			continue
		}
		rowNum := sheetRow(i)
		out.total++

		occurredAt, err := parseDateCell(fieldCell(m, i, mapping.FieldDate, opts.Mappings))
		if err != nil {
			out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "date", Message: err.Error()})
			continue
		}
		occurredAt = combineDateTime(occurredAt, fieldValue(m, i, mapping.FieldTime, opts.Mappings))

		incomeRaw := strings.TrimSpace(fieldValue(m, i, mapping.FieldIncome, opts.Mappings))
		expenseRaw := strings.TrimSpace(fieldValue(m, i, mapping.FieldExpense, opts.Mappings))

		txType, err := resolveType(fieldValue(m, i, mapping.FieldType, opts.Mappings), incomeRaw, expenseRaw)
		if err != nil {
			out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "type", Message: err.Error()})
			continue
		}

		amount, err := resolveAmount(txType, incomeRaw, expenseRaw)
		if err != nil {
			out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "amount", Message: err.Error()})
			continue
		}

		accountName := strings.TrimSpace(fieldValue(m, i, mapping.FieldAccount, opts.Mappings))
		if accountName == "" {
			out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "account", Message: "account is required"})
			continue
		}

		reconRow := reconcile.Row{
			RowNumber: rowNum,
			Account:   accountName,
			Type:      txType,
			Amount:    amount,
		}
		if balanceCol >= 0 {
			if d, ok := parseDeclared(m.Cell(i, balanceCol)); ok {
				reconRow.DeclaredBalance = &d
			}
		}
		if assetsCol >= 0 {
			if d, ok := parseDeclared(m.Cell(i, assetsCol)); ok {
				reconRow.DeclaredTotalAssets = &d
			}
		}
		out.reconRows = append(out.reconRows, reconRow)

		account, ok := accounts[accountName]
		if !ok {
			out.issues = append(out.issues, Issue{Kind: IssueReference, Row: rowNum, Column: "account", Message: fmt.Sprintf("account %q not found", accountName)})
			continue
		}

		var categoryID *uuid.UUID
		if categoryName := strings.TrimSpace(fieldValue(m, i, mapping.FieldCategory, opts.Mappings)); categoryName != "" {
			id, ok := categories[categoryName]
			if !ok {
				out.issues = append(out.issues, Issue{Kind: IssueReference, Row: rowNum, Column: "category", Message: fmt.Sprintf("category %q not found", categoryName)})
				continue
			}
			categoryID = &id
		}

		out.items = append(out.items, batch.Item[ledger.Transaction]{
			Row: rowNum,
			Value: ledger.Transaction{
				ID:          uuid.New(),
				UserID:      userID,
				AccountID:   account.ID,
				CategoryID:  categoryID,
				Type:        txType,
				AmountCents: money.NewFromDecimal(amount, account.CurrencyCode).Amount(),
				OccurredAt:  occurredAt,
				Note:        strings.TrimSpace(fieldValue(m, i, mapping.FieldNote, opts.Mappings)),
				Tags:        splitTags(fieldValue(m, i, mapping.FieldTags, opts.Mappings)),
			},
		})
	}
	return out
}

// resolveType uses the type column when present, otherwise infers the type
// from which amount column carries a value.
func resolveType(typeRaw, incomeRaw, expenseRaw string) (ledger.TransactionType, error) {
	if strings.TrimSpace(typeRaw) != "" {
		return parseTransactionType(typeRaw)
	}
	switch {
	case incomeRaw != "" && expenseRaw == "":
		return ledger.TypeIncome, nil
	case expenseRaw != "" && incomeRaw == "":
		return ledger.TypeExpense, nil
	}
	return "", fmt.Errorf("transaction type cannot be determined")
}

// resolveAmount picks the amount for the row's type. Opening-balance
// placeholders may carry their amount in either column or none.
func resolveAmount(txType ledger.TransactionType, incomeRaw, expenseRaw string) (decimal.Decimal, error) {
	pick := func(raw string) (decimal.Decimal, error) {
		if strings.TrimSpace(raw) == "" {
			return decimal.Zero, fmt.Errorf("amount is required")
		}
		d, err := money.ParseDecimal(raw)
		if err != nil {
			return decimal.Zero, err
		}
		return d.Abs(), nil
	}

	switch txType {
	case ledger.TypeIncome:
		return pick(incomeRaw)
	case ledger.TypeExpense:
		return pick(expenseRaw)
	case ledger.TypeTransfer:
		if expenseRaw != "" {
			return pick(expenseRaw)
		}
		return pick(incomeRaw)
	case ledger.TypeOpeningBalance:
		if incomeRaw != "" {
			return pick(incomeRaw)
		}
		if expenseRaw != "" {
			return pick(expenseRaw)
		}
		return decimal.Zero, nil
	}
	return decimal.Zero, fmt.Errorf("unknown transaction type")
}

// parseDateCell accepts a typed date cell from the primary decoder or a text
// date from the fallback.
func parseDateCell(c cell.Cell) (time.Time, error) {
	switch c.Kind {
	case cell.KindDate:
		return c.Date, nil
	case cell.KindBlank:
		return time.Time{}, fmt.Errorf("date is required")
	}
	return parseDateText(c.String())
}

// parseDeclared parses a declared balance/total-assets cell; blank cells mean
// "no snapshot on this row".
func parseDeclared(c cell.Cell) (decimal.Decimal, bool) {
	if c.IsBlank() {
		return decimal.Zero, false
	}
	d, err := money.ParseDecimal(c.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// rowIsEmpty reports whether every mapped column of the row is blank.
func rowIsEmpty(m *decoder.SheetMatrix, row int) bool {
	width := m.ColumnCount()
	for col := 0; col < width; col++ {
		if !m.Cell(row, col).IsBlank() {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

type decodedTasks struct {
	total  int
	items  []batch.Item[ledger.Task]
	issues []Issue
}

func decodeTaskRows(m *decoder.SheetMatrix, opts Options, userID uuid.UUID) *decodedTasks {
	out := &decodedTasks{}
	for i := range m.Rows {
		if rowIsEmpty(m, i) {
			continue
		}
		rowNum := sheetRow(i)
		out.total++

		title := strings.TrimSpace(fieldValue(m, i, mapping.FieldTitle, opts.Mappings))
		if title == "" {
			out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "title", Message: "task title is required"})
			continue
		}

		task := ledger.Task{
			ID:          uuid.New(),
			UserID:      userID,
			Title:       title,
			Description: strings.TrimSpace(fieldValue(m, i, mapping.FieldDescription, opts.Mappings)),
			Priority:    parsePriority(fieldValue(m, i, mapping.FieldPriority, opts.Mappings)),
			Status:      parseTaskStatus(fieldValue(m, i, mapping.FieldStatus, opts.Mappings)),
			Tags:        splitTags(fieldValue(m, i, mapping.FieldTags, opts.Mappings)),
		}

		if dueCell := fieldCell(m, i, mapping.FieldDueDate, opts.Mappings); !dueCell.IsBlank() {
			due, err := parseDateCell(dueCell)
			if err != nil {
				out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "due date", Message: err.Error()})
				continue
			}
			task.DueAt = &due
		}

		out.items = append(out.items, batch.Item[ledger.Task]{Row: rowNum, Value: task})
	}
	return out
}

// ---------------------------------------------------------------------------
// Habits
// ---------------------------------------------------------------------------

type decodedHabits struct {
	total  int
	items  []batch.Item[ledger.Habit]
	issues []Issue
}

func decodeHabitRows(m *decoder.SheetMatrix, opts Options, userID uuid.UUID) *decodedHabits {
	out := &decodedHabits{}
	for i := range m.Rows {
		if rowIsEmpty(m, i) {
			continue
		}
		rowNum := sheetRow(i)
		out.total++

		name := strings.TrimSpace(fieldValue(m, i, mapping.FieldName, opts.Mappings))
		if name == "" {
			out.issues = append(out.issues, Issue{Kind: IssueRow, Row: rowNum, Column: "name", Message: "habit name is required"})
			continue
		}

		target := 0
		if raw := fieldValue(m, i, mapping.FieldTarget, opts.Mappings); raw != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				target = n
			}
		}

		out.items = append(out.items, batch.Item[ledger.Habit]{
			Row: rowNum,
			Value: ledger.Habit{
				ID:          uuid.New(),
				UserID:      userID,
				Name:        name,
				Description: strings.TrimSpace(fieldValue(m, i, mapping.FieldDescription, opts.Mappings)),
				Period:      parseHabitPeriod(fieldValue(m, i, mapping.FieldPeriod, opts.Mappings)),
				TargetCount: target,
				Color:       strings.TrimSpace(fieldValue(m, i, mapping.FieldColor, opts.Mappings)),
				Icon:        strings.TrimSpace(fieldValue(m, i, mapping.FieldIcon, opts.Mappings)),
			},
		})
	}
	return out
}
