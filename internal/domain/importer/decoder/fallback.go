package decoder

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/lifebook-app/lifebook/internal/domain/importer/cell"
)

// RawDecoder is the degraded fallback: it treats the file as a plain zip
// archive of XML parts and reconstructs string matrices from the shared-string
// table and each worksheet part. It recovers no number formats and no dates;
// values surface as text cells (booleans keep their kind). Rows and cells it
// cannot parse are dropped silently instead of failing the sheet.
type RawDecoder struct{}

// NewRawDecoder creates the fallback decoder.
func NewRawDecoder() *RawDecoder {
	return &RawDecoder{}
}

// Name implements Decoder.
func (d *RawDecoder) Name() string { return "raw-container" }

// CanDecode implements Decoder. The probe accepts zip containers and rejects
// the legacy binary format outright, so the orchestrator can short-circuit
// files this decoder has no chance with.
func (d *RawDecoder) CanDecode(filename string, data []byte) bool {
	if isLegacyXLS(filename) {
		return false
	}
	if hasZipMagic(data) {
		return true
	}
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") || strings.HasSuffix(lower, ".xltx")
}

// Open implements Decoder. It validates the container and indexes the sheet
// parts; individual sheets are parsed on demand.
func (d *RawDecoder) Open(data []byte) (Workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}

	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	wb := &rawWorkbook{parts: parts}
	if err := wb.loadSheetIndex(); err != nil {
		return nil, err
	}
	if err := wb.loadSharedStrings(); err != nil {
		return nil, err
	}
	return wb, nil
}

type rawWorkbook struct {
	parts     map[string]*zip.File
	order     []string          // sheet names in workbook order
	sheetPart map[string]string // sheet name -> zip part path
	shared    []string
}

func (w *rawWorkbook) Sheets() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

func (w *rawWorkbook) Close() error { return nil }

// OOXML part structures, reduced to the attributes the fallback needs.

type xmlWorkbookPart struct {
	Sheets struct {
		Sheet []struct {
			Name    string `xml:"name,attr"`
			SheetID string `xml:"sheetId,attr"`
			RelID   string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

type xmlRelationships struct {
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlSharedStrings struct {
	Items []xmlStringItem `xml:"si"`
}

type xmlStringItem struct {
	Text *string `xml:"t"`
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

type xmlWorksheet struct {
	SheetData struct {
		Rows []xmlSheetRow `xml:"row"`
	} `xml:"sheetData"`
}

type xmlSheetRow struct {
	Ref   int           `xml:"r,attr"`
	Cells []xmlSheetCol `xml:"c"`
}

type xmlSheetCol struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline *struct {
		Text string `xml:"t"`
	} `xml:"is"`
}

func (w *rawWorkbook) readPart(name string) ([]byte, error) {
	f, ok := w.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s missing", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open part %s: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// loadSheetIndex resolves sheet names to worksheet part paths via the
// workbook part and its relationships.
func (w *rawWorkbook) loadSheetIndex() error {
	data, err := w.readPart("xl/workbook.xml")
	if err != nil {
		return fmt.Errorf("container is not a workbook: %w", err)
	}
	var book xmlWorkbookPart
	if err := xml.Unmarshal(data, &book); err != nil {
		return fmt.Errorf("parse workbook part: %w", err)
	}
	if len(book.Sheets.Sheet) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}

	relTargets := map[string]string{}
	if relData, err := w.readPart("xl/_rels/workbook.xml.rels"); err == nil {
		var rels xmlRelationships
		if err := xml.Unmarshal(relData, &rels); err == nil {
			for _, r := range rels.Relationship {
				relTargets[r.ID] = r.Target
			}
		}
	}

	w.sheetPart = make(map[string]string, len(book.Sheets.Sheet))
	for i, s := range book.Sheets.Sheet {
		target := relTargets[s.RelID]
		if target == "" {
			// No usable relationship; fall back to the conventional
			// part naming.
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}
		w.order = append(w.order, s.Name)
		w.sheetPart[s.Name] = resolvePartPath(target)
	}
	return nil
}

func resolvePartPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join("xl", target)
}

// loadSharedStrings parses the shared-string table. A workbook without one is
// valid (no string cells reference it).
func (w *rawWorkbook) loadSharedStrings() error {
	data, err := w.readPart("xl/sharedStrings.xml")
	if err != nil {
		return nil
	}
	var sst xmlSharedStrings
	if err := xml.Unmarshal(data, &sst); err != nil {
		return fmt.Errorf("parse shared strings: %w", err)
	}
	w.shared = make([]string, len(sst.Items))
	for i, item := range sst.Items {
		w.shared[i] = flattenStringItem(item)
	}
	return nil
}

// flattenStringItem concatenates the plain text and rich-text runs of one
// shared-string entry.
func flattenStringItem(item xmlStringItem) string {
	if item.Text != nil && len(item.Runs) == 0 {
		return *item.Text
	}
	var b strings.Builder
	if item.Text != nil {
		b.WriteString(*item.Text)
	}
	for _, run := range item.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

func (w *rawWorkbook) Sheet(name string) (*SheetMatrix, error) {
	part, ok := w.sheetPart[name]
	if !ok {
		return nil, fmt.Errorf("sheet %q not found", name)
	}
	data, err := w.readPart(part)
	if err != nil {
		return nil, err
	}
	var ws xmlWorksheet
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parse sheet %q: %w", name, err)
	}

	// Rows land at the offset named by their 1-based r attribute, not at
	// their document position, so sparse and reordered parts still line up.
	// Gaps become empty rows.
	grid := make([][]cell.Cell, 0, len(ws.SheetData.Rows))
	maxRow := 0
	byIndex := make(map[int][]cell.Cell, len(ws.SheetData.Rows))
	docOrder := 0
	for _, row := range ws.SheetData.Rows {
		docOrder++
		idx := row.Ref
		if idx <= 0 {
			idx = docOrder
		}
		cells := w.decodeRow(row)
		if cells == nil {
			continue
		}
		byIndex[idx] = cells
		if idx > maxRow {
			maxRow = idx
		}
	}
	for i := 1; i <= maxRow; i++ {
		grid = append(grid, byIndex[i])
	}

	matrix := &SheetMatrix{Name: name}
	if len(grid) == 0 {
		return matrix, nil
	}
	matrix.Headers = make([]string, len(grid[0]))
	for i, c := range grid[0] {
		matrix.Headers[i] = strings.TrimSpace(c.String())
	}
	matrix.Rows = grid[1:]
	matrix.TotalRows = len(matrix.Rows)
	return matrix, nil
}

// decodeRow converts one row element, dropping cells it cannot place.
func (w *rawWorkbook) decodeRow(row xmlSheetRow) []cell.Cell {
	cells := make([]cell.Cell, 0, len(row.Cells))
	for docCol, c := range row.Cells {
		col := docCol
		if c.Ref != "" {
			parsed, ok := columnFromRef(c.Ref)
			if !ok {
				continue
			}
			col = parsed
		}
		for len(cells) < col {
			cells = append(cells, cell.Blank())
		}
		if col < len(cells) {
			// Out-of-order duplicate column; keep the first value.
			continue
		}
		cells = append(cells, w.decodeValue(c))
	}
	return cells
}

// decodeValue maps a cell element to a text cell. The type attribute
// distinguishes shared-string references, inline strings and raw values;
// absent type means raw numeric text.
func (w *rawWorkbook) decodeValue(c xmlSheetCol) cell.Cell {
	switch c.Type {
	case "b":
		return cell.NewBool(c.Value == "1")
	case "s":
		idx := -1
		if _, err := fmt.Sscanf(c.Value, "%d", &idx); err != nil || idx < 0 || idx >= len(w.shared) {
			return cell.Blank()
		}
		return cell.NewText(w.shared[idx])
	case "inlineStr":
		if c.Inline == nil {
			return cell.Blank()
		}
		return cell.NewText(c.Inline.Text)
	default:
		return cell.NewText(strings.TrimSpace(c.Value))
	}
}

// columnFromRef extracts the zero-based column index from an A1-style ref.
func columnFromRef(ref string) (int, bool) {
	col := 0
	seen := false
	for _, r := range ref {
		if r >= 'A' && r <= 'Z' {
			col = col*26 + int(r-'A'+1)
			seen = true
			continue
		}
		if r >= 'a' && r <= 'z' {
			col = col*26 + int(r-'a'+1)
			seen = true
			continue
		}
		break
	}
	if !seen {
		return 0, false
	}
	return col - 1, true
}
