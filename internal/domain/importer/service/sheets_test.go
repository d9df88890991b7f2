package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifebook-app/lifebook/internal/domain/ledger"
)

func TestParseDateText(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-15", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2025/3/5", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2025年3月15日", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2025-03-15 18:30", time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseDateText(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseDateText("next tuesday")
	assert.Error(t, err)
	_, err = parseDateText("")
	assert.Error(t, err)
}

func TestCombineDateTime(t *testing.T) {
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC), combineDateTime(date, "18:30"))
	assert.Equal(t, time.Date(2025, 3, 15, 8, 5, 30, 0, time.UTC), combineDateTime(date, "08:05:30"))
	assert.Equal(t, date, combineDateTime(date, ""))
	assert.Equal(t, date, combineDateTime(date, "not a time"))
}

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in   string
		want ledger.TransactionType
	}{
		{"收入", ledger.TypeIncome},
		{"Income", ledger.TypeIncome},
		{"支出", ledger.TypeExpense},
		{"转账", ledger.TypeTransfer},
		{"期初余额", ledger.TypeOpeningBalance},
	}
	for _, tt := range tests {
		got, err := parseTransactionType(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseTransactionType("红包")
	assert.Error(t, err)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"工作", "报销"}, splitTags("工作,报销"))
	assert.Equal(t, []string{"工作", "报销"}, splitTags("工作、 报销"))
	assert.Equal(t, []string{"a", "b", "c"}, splitTags("a;b；c"))
	assert.Nil(t, splitTags("  "))
}

func TestLabelParsers(t *testing.T) {
	assert.Equal(t, 3, parsePriority("高"))
	assert.Equal(t, 2, parsePriority("Medium"))
	assert.Equal(t, 0, parsePriority(""))

	assert.Equal(t, "done", parseTaskStatus("已完成"))
	assert.Equal(t, "in_progress", parseTaskStatus("doing"))
	assert.Equal(t, "pending", parseTaskStatus(""))

	assert.Equal(t, "weekly", parseHabitPeriod("每周"))
	assert.Equal(t, "daily", parseHabitPeriod(""))
	assert.Equal(t, "monthly", parseHabitPeriod("month"))

	assert.True(t, parseBoolLabel("是"))
	assert.True(t, parseBoolLabel("YES"))
	assert.False(t, parseBoolLabel("否"))
	assert.False(t, parseBoolLabel(""))
}
