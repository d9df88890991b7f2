package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/lifebook-app/lifebook/internal/domain/importer/decoder"
	"github.com/lifebook-app/lifebook/internal/domain/ledger"
)

// sheetSynonyms maps each module to the sheet names the paired composer and
// common third-party exports use, in priority order.
var sheetSynonyms = map[Module][]string{
	ModuleTransactions: {"交易记录", "transactions", "交易明细", "ledger", "流水"},
	ModuleAccounts:     {"账户", "accounts", "账户列表"},
	ModuleCategories:   {"分类", "categories", "分类列表"},
	ModuleTasks:        {"任务", "tasks", "待办"},
	ModuleHabits:       {"习惯", "habits"},
}

// findSheet locates the module's sheet among the workbook's sheets, honoring
// the caller's sheet selection. Returns "" when no candidate exists.
func findSheet(wb decoder.Workbook, opts Options, module Module) string {
	for _, want := range sheetSynonyms[module] {
		for _, name := range wb.Sheets() {
			if !opts.wantsSheet(name) {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(name), want) {
				return name
			}
		}
	}
	return ""
}

// dateFormats are tried in order when a date cell arrives as text (the raw
// fallback decoder never produces typed dates).
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006年01月02日",
	"2006年1月2日",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
}

var timeFormats = []string{
	"15:04:05",
	"15:04",
}

func parseDateText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// combineDateTime merges a date with an optional time-of-day string.
func combineDateTime(date time.Time, timeStr string) time.Time {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return date
	}
	for _, format := range timeFormats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, date.Location())
		}
	}
	return date
}

// parseTransactionType maps a type cell to a transaction type. Both the
// composer's Chinese labels and English labels are accepted.
func parseTransactionType(s string) (ledger.TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "收入", "income":
		return ledger.TypeIncome, nil
	case "支出", "expense":
		return ledger.TypeExpense, nil
	case "转账", "transfer":
		return ledger.TypeTransfer, nil
	case "期初余额", "opening balance", "opening_balance":
		return ledger.TypeOpeningBalance, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

func parseBoolLabel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "是", "true", "yes", "y", "1":
		return true
	}
	return false
}

// splitTags splits a tag cell on the separators seen in exports.
func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '、' || r == '，' || r == '；'
	})
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tags = append(tags, f)
		}
	}
	return tags
}

// parsePriority maps a priority label or digit to the 1..3 scale.
func parsePriority(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "高", "high", "3":
		return 3
	case "中", "medium", "2":
		return 2
	case "低", "low", "1":
		return 1
	}
	return 0
}

// parseTaskStatus normalizes a status cell; empty means pending.
func parseTaskStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "待办", "pending", "todo":
		return "pending"
	case "进行中", "in progress", "doing":
		return "in_progress"
	case "完成", "已完成", "done", "completed":
		return "done"
	}
	return "pending"
}

// parseHabitPeriod normalizes a habit period cell; empty means daily.
func parseHabitPeriod(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "日", "每日", "daily", "day":
		return "daily"
	case "周", "每周", "weekly", "week":
		return "weekly"
	case "月", "每月", "monthly", "month":
		return "monthly"
	}
	return "daily"
}
