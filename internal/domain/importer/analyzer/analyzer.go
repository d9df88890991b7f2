// Package analyzer inventories a workbook before import: sheet names, sizes,
// header rows and bounded previews for the selection UI. It also produces
// advisory column suggestions for headers that only nearly match a known
// label.
package analyzer

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/lifebook-app/lifebook/internal/domain/importer/decoder"
	"github.com/lifebook-app/lifebook/internal/domain/importer/mapping"
)

const (
	// MaxHeaderColumns bounds the header width reported per sheet.
	MaxHeaderColumns = 50
	// MaxPreviewRows bounds the preview rows reported per sheet.
	MaxPreviewRows = 10
)

// SheetDescriptor describes one sheet without materializing it for import.
type SheetDescriptor struct {
	Name        string
	RowCount    int
	ColumnCount int
	Headers     []string
	Preview     [][]string
}

// WorkbookStructure is the one-shot inventory of an uploaded file.
type WorkbookStructure struct {
	FileName  string
	FileSize  int64
	Sheets    []SheetDescriptor
	TotalRows int
}

// Analyze opens the file with the standard decoder chain (primary first,
// raw fallback only when its probe passes) and inventories every sheet.
// When both decoders fail, the primary decoder's error is returned since it
// carries the more diagnostic message.
func Analyze(filename string, data []byte) (*WorkbookStructure, error) {
	wb, err := decoder.Open(filename, data, decoder.Default()...)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	structure := &WorkbookStructure{
		FileName: filename,
		FileSize: int64(len(data)),
	}

	for _, name := range wb.Sheets() {
		matrix, err := wb.Sheet(name)
		if err != nil {
			// A single unreadable sheet should not hide the rest of
			// the workbook from the user.
			structure.Sheets = append(structure.Sheets, SheetDescriptor{Name: name})
			continue
		}
		structure.Sheets = append(structure.Sheets, describe(matrix))
		structure.TotalRows += matrix.TotalRows
	}
	return structure, nil
}

func describe(m *decoder.SheetMatrix) SheetDescriptor {
	headers := m.Headers
	if len(headers) > MaxHeaderColumns {
		headers = headers[:MaxHeaderColumns]
	}

	previewCount := len(m.Rows)
	if previewCount > MaxPreviewRows {
		previewCount = MaxPreviewRows
	}
	preview := make([][]string, previewCount)
	for i := 0; i < previewCount; i++ {
		width := len(headers)
		if w := len(m.Rows[i]); w > width && w <= MaxHeaderColumns {
			width = w
		}
		row := make([]string, width)
		for j := 0; j < width; j++ {
			row[j] = m.Cell(i, j).String()
		}
		preview[i] = row
	}

	return SheetDescriptor{
		Name:        m.Name,
		RowCount:    m.TotalRows,
		ColumnCount: m.ColumnCount(),
		Headers:     headers,
		Preview:     preview,
	}
}

// ColumnSuggestion proposes a header for a canonical field. Fuzzy marks
// near-miss matches; those are hints for the mapping UI only and are never
// fed into the strict resolver.
type ColumnSuggestion struct {
	Field  mapping.Field
	Column int
	Header string
	Fuzzy  bool
}

// SuggestColumns matches sheet headers against the known labels of the given
// fields: exact synonym resolution first, then fuzzy ranking for headers
// that are close but not equal (trailing units, stray punctuation).
func SuggestColumns(headers []string, fields []mapping.Field) []ColumnSuggestion {
	suggestions := make([]ColumnSuggestion, 0, len(fields))
	for _, field := range fields {
		if idx := mapping.ResolveColumn(field, headers, nil); idx >= 0 {
			suggestions = append(suggestions, ColumnSuggestion{
				Field: field, Column: idx, Header: headers[idx],
			})
			continue
		}
		if idx := fuzzyMatch(field, headers); idx >= 0 {
			suggestions = append(suggestions, ColumnSuggestion{
				Field: field, Column: idx, Header: headers[idx], Fuzzy: true,
			})
		}
	}
	return suggestions
}

// fuzzyMatch finds the closest header for any of the field's synonyms.
func fuzzyMatch(field mapping.Field, headers []string) int {
	bestIdx := -1
	bestDistance := -1
	for _, syn := range mapping.Synonyms(field) {
		ranks := fuzzy.RankFindNormalizedFold(syn, headers)
		if len(ranks) == 0 {
			continue
		}
		sort.Sort(ranks)
		top := ranks[0]
		if bestIdx == -1 || top.Distance < bestDistance {
			bestIdx = top.OriginalIndex
			bestDistance = top.Distance
		}
	}
	return bestIdx
}
