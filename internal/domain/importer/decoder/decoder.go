// Package decoder reads packaged spreadsheet workbooks into sheet matrices.
//
// Two implementations exist: the full-fidelity excelize-backed decoder and a
// raw container decoder that re-reads the same zip/XML layout by hand. The
// fallback is a strict subset (no number formats, no date detection) and is
// only attempted after the primary decoder has fully failed.
package decoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lifebook-app/lifebook/internal/domain/importer/cell"
)

// SheetMatrix is one fully materialized sheet: a header row plus data rows of
// typed cells. Rows may be shorter than Headers; consumers use Cell() or
// PaddedRow() instead of indexing raw rows.
type SheetMatrix struct {
	Name      string
	Headers   []string
	Rows      [][]cell.Cell
	TotalRows int
}

// Cell returns the cell at the given data-row/column offset, padding short
// rows with blanks.
func (m *SheetMatrix) Cell(row, col int) cell.Cell {
	if row < 0 || row >= len(m.Rows) {
		return cell.Blank()
	}
	r := m.Rows[row]
	if col < 0 || col >= len(r) {
		return cell.Blank()
	}
	return r[col]
}

// ColumnCount returns the logical column count: the widest of the header row
// and any data row.
func (m *SheetMatrix) ColumnCount() int {
	n := len(m.Headers)
	for _, r := range m.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// Workbook exposes the sheets of one opened spreadsheet file.
type Workbook interface {
	// Sheets lists sheet names in workbook order.
	Sheets() []string
	// Sheet materializes one sheet. The first row is split off as the
	// header row; an empty sheet yields empty headers and zero rows.
	Sheet(name string) (*SheetMatrix, error)
	// Close releases decoder resources. Safe to call more than once.
	Close() error
}

// Decoder opens a workbook from an in-memory byte slice.
type Decoder interface {
	// Name identifies the decoder in diagnostics.
	Name() string
	// CanDecode is a cheap pre-flight probe (extension, container magic)
	// deciding whether Open is worth attempting at all.
	CanDecode(filename string, data []byte) bool
	// Open decodes the workbook or fails outright. A failed Open never
	// returns partial data.
	Open(data []byte) (Workbook, error)
}

// ErrNoDecoder is returned when no decoder's pre-flight probe accepts a file.
var ErrNoDecoder = errors.New("decoder: no decoder accepts this file")

// Open tries each decoder in order and returns the first successful workbook.
// When every attempt fails the first attempted decoder's error is kept as the
// diagnostic, since the primary decoder reports the most useful failure.
func Open(filename string, data []byte, decoders ...Decoder) (Workbook, error) {
	var firstErr error
	for _, d := range decoders {
		if !d.CanDecode(filename, data) {
			continue
		}
		wb, err := d.Open(data)
		if err == nil {
			return wb, nil
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", d.Name(), err)
		}
	}
	if firstErr == nil {
		return nil, ErrNoDecoder
	}
	return nil, firstErr
}

// Default returns the standard decoder chain: excelize first, raw container
// fallback second.
func Default() []Decoder {
	return []Decoder{NewExcelDecoder(), NewRawDecoder()}
}

// hasZipMagic reports whether data starts with a zip local-file signature.
func hasZipMagic(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K' && data[2] == 0x03 && data[3] == 0x04
}

// isLegacyXLS reports whether the filename names the pre-OOXML binary format,
// which neither decoder can read.
func isLegacyXLS(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xls")
}
