package mapping

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColumn_Synonyms(t *testing.T) {
	headers := []string{"日期", "类型", "分类", "收入", "支出", "账户", "备注", "余额"}

	tests := []struct {
		name  string
		field Field
		want  int
	}{
		{"chinese date header", FieldDate, 0},
		{"chinese income header", FieldIncome, 3},
		{"chinese balance header", FieldBalance, 7},
		{"absent field resolves to -1", FieldTotalAssets, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveColumn(tt.field, headers, nil))
		})
	}
}

func TestResolveColumn_EnglishFallback(t *testing.T) {
	headers := []string{"Date", "Type", "Category", "Income", "Expense", "Account"}

	assert.Equal(t, 0, ResolveColumn(FieldDate, headers, nil))
	assert.Equal(t, 4, ResolveColumn(FieldExpense, headers, nil))
}

func TestResolveColumn_CaseAndWhitespace(t *testing.T) {
	headers := []string{" DATE ", "income "}
	assert.Equal(t, 0, ResolveColumn(FieldDate, headers, nil))
	assert.Equal(t, 1, ResolveColumn(FieldIncome, headers, nil))
}

func TestResolveColumn_ExplicitMappingWins(t *testing.T) {
	headers := []string{"日期", "金额", "收入"}

	t.Run("mapping overrides synonym", func(t *testing.T) {
		mappings := []Mapping{{SourceHeader: "金额", Field: FieldIncome}}
		// Without the mapping, 收入 at index 2 would win.
		assert.Equal(t, 1, ResolveColumn(FieldIncome, headers, mappings))
	})

	t.Run("mapping with absent header never falls back", func(t *testing.T) {
		mappings := []Mapping{{SourceHeader: "不存在的列", Field: FieldIncome}}
		assert.Equal(t, -1, ResolveColumn(FieldIncome, headers, mappings))
	})

	t.Run("mapping for another field leaves synonyms alone", func(t *testing.T) {
		mappings := []Mapping{{SourceHeader: "金额", Field: FieldExpense}}
		assert.Equal(t, 2, ResolveColumn(FieldIncome, headers, mappings))
	})
}

func TestSynonyms_ChineseFirst(t *testing.T) {
	for _, field := range []Field{FieldDate, FieldIncome, FieldAccount, FieldBalance} {
		syns := Synonyms(field)
		assert.NotEmpty(t, syns, "field %s", field)
		// The composer's localized label carries the highest priority.
		assert.True(t, strings.ContainsFunc(syns[0], func(r rune) bool { return r > 127 }),
			"field %s should lead with a localized label, got %q", field, syns[0])
	}
}

func TestApply_Transform(t *testing.T) {
	mappings := []Mapping{{SourceHeader: "收入", Field: FieldIncome, Transform: StripCurrency}}

	assert.Equal(t, "1234.56", Apply(FieldIncome, mappings, "¥1,234.56"))
	// Fields without a registered transform pass through untouched.
	assert.Equal(t, "¥100", Apply(FieldExpense, mappings, "¥100"))
}

func TestStripCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"¥1,234.56", "1234.56"},
		{"￥100", "100"},
		{"$ 45.50", "45.50"},
		{"CNY 2000", "2000"},
		{"1 234,00", "123400"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCurrency(tt.in), "input %q", tt.in)
	}
}
