package decoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lifebook-app/lifebook/internal/domain/importer/cell"
)

// buildWorkbook renders a ledger-shaped workbook in memory so the tests never
// touch the filesystem.
func buildWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "交易记录"))
	require.NoError(t, f.SetSheetRow("交易记录", "A1",
		&[]any{"日期", "类型", "分类", "收入", "支出", "账户", "备注"}))

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)

	require.NoError(t, f.SetCellValue("交易记录", "A2", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellStyle("交易记录", "A2", "A2", dateStyle))
	require.NoError(t, f.SetSheetRow("交易记录", "B2", &[]any{"支出", "餐饮", nil, 45.5, "现金", "午饭"}))

	require.NoError(t, f.SetCellValue("交易记录", "A3", time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellStyle("交易记录", "A3", "A3", dateStyle))
	require.NoError(t, f.SetSheetRow("交易记录", "B3", &[]any{"收入", "工资", 8000, nil, "招商银行", ""}))

	_, err = f.NewSheet("账户")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("账户", "A1", &[]any{"名称", "类型", "余额", "币种", "默认"}))
	require.NoError(t, f.SetSheetRow("账户", "A2", &[]any{"现金", "cash", 100, "CNY", true}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExcelDecoder_Open(t *testing.T) {
	data := buildWorkbook(t)

	wb, err := NewExcelDecoder().Open(data)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"交易记录", "账户"}, wb.Sheets())
}

func TestExcelDecoder_Sheet(t *testing.T) {
	data := buildWorkbook(t)

	wb, err := NewExcelDecoder().Open(data)
	require.NoError(t, err)
	defer wb.Close()

	matrix, err := wb.Sheet("交易记录")
	require.NoError(t, err)

	assert.Equal(t, []string{"日期", "类型", "分类", "收入", "支出", "账户", "备注"}, matrix.Headers)
	require.Equal(t, 2, matrix.TotalRows)

	t.Run("date styled cell becomes typed date", func(t *testing.T) {
		c := matrix.Cell(0, 0)
		require.Equal(t, cell.KindDate, c.Kind)
		assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), c.Date)
	})

	t.Run("numbers keep full precision", func(t *testing.T) {
		c := matrix.Cell(0, 4)
		require.Equal(t, cell.KindNumber, c.Kind)
		assert.Equal(t, 45.5, c.Number)
		assert.Equal(t, "45.5", c.String())
	})

	t.Run("strings stay text", func(t *testing.T) {
		c := matrix.Cell(0, 1)
		require.Equal(t, cell.KindText, c.Kind)
		assert.Equal(t, "支出", c.Text)
	})

	t.Run("empty cells read blank", func(t *testing.T) {
		assert.True(t, matrix.Cell(0, 3).IsBlank())
		assert.True(t, matrix.Cell(1, 4).IsBlank())
	})

	t.Run("indexing past a row pads with blanks", func(t *testing.T) {
		assert.True(t, matrix.Cell(0, 99).IsBlank())
		assert.True(t, matrix.Cell(99, 0).IsBlank())
	})
}

func TestExcelDecoder_BoolCell(t *testing.T) {
	data := buildWorkbook(t)

	wb, err := NewExcelDecoder().Open(data)
	require.NoError(t, err)
	defer wb.Close()

	matrix, err := wb.Sheet("账户")
	require.NoError(t, err)

	c := matrix.Cell(0, 4)
	require.Equal(t, cell.KindBool, c.Kind)
	assert.True(t, c.Bool)
}

func TestExcelDecoder_RejectsGarbage(t *testing.T) {
	_, err := NewExcelDecoder().Open([]byte("definitely not a zip archive"))
	assert.Error(t, err)
}

func TestExcelDecoder_CanDecode(t *testing.T) {
	d := NewExcelDecoder()
	assert.True(t, d.CanDecode("book.xlsx", nil))
	assert.True(t, d.CanDecode("no-extension", nil))
	assert.False(t, d.CanDecode("legacy.xls", nil))
	assert.False(t, d.CanDecode("LEGACY.XLS", nil))
}
