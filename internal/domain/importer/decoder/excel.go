package decoder

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lifebook-app/lifebook/internal/domain/importer/cell"
)

// ExcelDecoder is the primary, full-fidelity workbook decoder built on
// excelize. It detects cell kinds, resolves number-format dates and reads
// cached formula results without re-evaluating anything.
type ExcelDecoder struct{}

// NewExcelDecoder creates the primary decoder.
func NewExcelDecoder() *ExcelDecoder {
	return &ExcelDecoder{}
}

// Name implements Decoder.
func (d *ExcelDecoder) Name() string { return "excelize" }

// CanDecode implements Decoder. The primary decoder is always worth a try
// except for the legacy binary format it is known not to support.
func (d *ExcelDecoder) CanDecode(filename string, _ []byte) bool {
	return !isLegacyXLS(filename)
}

// Open implements Decoder.
func (d *ExcelDecoder) Open(data []byte) (Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return &excelWorkbook{file: f, sheets: sheets}, nil
}

type excelWorkbook struct {
	file   *excelize.File
	sheets []string
}

func (w *excelWorkbook) Sheets() []string {
	out := make([]string, len(w.sheets))
	copy(out, w.sheets)
	return out
}

func (w *excelWorkbook) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *excelWorkbook) Sheet(name string) (*SheetMatrix, error) {
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	matrix := &SheetMatrix{Name: name}
	if len(rows) == 0 {
		return matrix, nil
	}

	matrix.Headers = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		matrix.Headers[i] = strings.TrimSpace(h)
	}

	matrix.Rows = make([][]cell.Cell, 0, len(rows)-1)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		raw := rows[rowIdx]
		decoded := make([]cell.Cell, len(raw))
		for colIdx := range raw {
			decoded[colIdx] = w.decodeCell(name, colIdx, rowIdx, raw[colIdx])
		}
		matrix.Rows = append(matrix.Rows, decoded)
	}
	matrix.TotalRows = len(matrix.Rows)
	return matrix, nil
}

// decodeCell classifies one cell. formatted is the display value excelize
// already produced for GetRows.
func (w *excelWorkbook) decodeCell(sheet string, colIdx, rowIdx int, formatted string) cell.Cell {
	axis, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
	if err != nil {
		return cell.NewText(strings.TrimSpace(formatted))
	}

	ctype, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		ctype = excelize.CellTypeUnset
	}

	raw, err := w.file.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		raw = formatted
	}

	switch ctype {
	case excelize.CellTypeBool:
		return cell.NewBool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		return cell.NewText(strings.TrimSpace(formatted))
	case excelize.CellTypeError:
		// Cached evaluation failed; surface as blank rather than the
		// error literal.
		return cell.Blank()
	case excelize.CellTypeDate:
		if serial, err := strconv.ParseFloat(raw, 64); err == nil {
			return cell.NewDate(serial)
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return cell.NewDate(cell.TimeToSerial(t))
		}
		return cell.NewText(strings.TrimSpace(formatted))
	}

	// Numeric, formula or untyped: trust the raw value.
	if raw == "" {
		return cell.Blank()
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if w.isDateStyled(sheet, axis) {
			return cell.NewDate(serial)
		}
		return cell.NewNumber(serial)
	}
	return cell.NewText(strings.TrimSpace(formatted))
}

// isDateStyled reports whether the cell's number format marks it as a date.
func (w *excelWorkbook) isDateStyled(sheet, axis string) bool {
	styleID, err := w.file.GetCellStyle(sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	style, err := w.file.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if isBuiltInDateFormat(style.NumFmt) {
		return true
	}
	if style.CustomNumFmt != nil {
		return customFormatLooksLikeDate(*style.CustomNumFmt)
	}
	return false
}

// isBuiltInDateFormat covers the OOXML built-in date/time format IDs.
func isBuiltInDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// customFormatLooksLikeDate scans a custom number format for date tokens,
// ignoring quoted literals and bracketed color/locale sections.
func customFormatLooksLikeDate(format string) bool {
	inQuote := false
	inBracket := false
	for _, r := range format {
		switch {
		case inQuote:
			if r == '"' {
				inQuote = false
			}
		case inBracket:
			if r == ']' {
				inBracket = false
			}
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == 'y' || r == 'Y' || r == 'm' || r == 'M' || r == 'd' || r == 'D' || r == 'h' || r == 'H' || r == 's' || r == 'S':
			return true
		}
	}
	return false
}
