package analyzer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lifebook-app/lifebook/internal/domain/importer/mapping"
)

func buildWorkbook(t *testing.T, rows int) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "交易记录"))
	require.NoError(t, f.SetSheetRow("交易记录", "A1", &[]any{"日期", "类型", "收入", "支出", "账户"}))
	for i := 0; i < rows; i++ {
		axis := fmt.Sprintf("A%d", i+2)
		require.NoError(t, f.SetSheetRow("交易记录", axis,
			&[]any{"2025-03-15", "支出", nil, 10 + i, "现金"}))
	}

	_, err := f.NewSheet("账户")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("账户", "A1", &[]any{"名称", "余额"}))
	require.NoError(t, f.SetSheetRow("账户", "A2", &[]any{"现金", 100}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestAnalyze(t *testing.T) {
	data := buildWorkbook(t, 3)

	structure, err := Analyze("ledger.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, "ledger.xlsx", structure.FileName)
	assert.Equal(t, int64(len(data)), structure.FileSize)
	assert.Equal(t, 4, structure.TotalRows)
	require.Len(t, structure.Sheets, 2)

	tx := structure.Sheets[0]
	assert.Equal(t, "交易记录", tx.Name)
	assert.Equal(t, 3, tx.RowCount)
	assert.Equal(t, 5, tx.ColumnCount)
	assert.Equal(t, []string{"日期", "类型", "收入", "支出", "账户"}, tx.Headers)
	require.Len(t, tx.Preview, 3)
	assert.Equal(t, "支出", tx.Preview[0][1])
}

func TestAnalyze_PreviewIsBounded(t *testing.T) {
	structure, err := Analyze("big.xlsx", buildWorkbook(t, MaxPreviewRows+15))
	require.NoError(t, err)

	tx := structure.Sheets[0]
	assert.Equal(t, MaxPreviewRows+15, tx.RowCount)
	assert.Len(t, tx.Preview, MaxPreviewRows)
}

func TestAnalyze_RejectsUnreadableFile(t *testing.T) {
	_, err := Analyze("notes.txt", []byte("not a spreadsheet"))
	assert.Error(t, err)
}

func TestSuggestColumns(t *testing.T) {
	fields := []mapping.Field{mapping.FieldDate, mapping.FieldIncome, mapping.FieldAccount, mapping.FieldTags}

	t.Run("exact synonyms are not fuzzy", func(t *testing.T) {
		headers := []string{"日期", "收入", "账户"}
		suggestions := SuggestColumns(headers, fields)
		require.Len(t, suggestions, 3)
		for _, s := range suggestions {
			assert.False(t, s.Fuzzy, "field %s", s.Field)
		}
		assert.Equal(t, 0, suggestions[0].Column)
		assert.Equal(t, mapping.FieldIncome, suggestions[1].Field)
		assert.Equal(t, 1, suggestions[1].Column)
	})

	t.Run("near misses come back fuzzy", func(t *testing.T) {
		headers := []string{"transaction dates", "income (CNY)", "account!"}
		suggestions := SuggestColumns(headers, fields)
		require.NotEmpty(t, suggestions)
		for _, s := range suggestions {
			assert.True(t, s.Fuzzy, "field %s header %q", s.Field, s.Header)
		}
	})

	t.Run("unrelated headers suggest nothing", func(t *testing.T) {
		suggestions := SuggestColumns([]string{"xyzzy", "qqq"}, []mapping.Field{mapping.FieldDate})
		assert.Empty(t, suggestions)
	})
}
