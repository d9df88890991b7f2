// Package cell defines the typed cell model shared by the workbook decoders.
// Both the full-fidelity decoder and the raw container fallback produce the
// same Cell values, so everything downstream (analysis, mapping, row decoding)
// is decoder-agnostic.
package cell

import (
	"strconv"
	"strings"
	"time"
)

// Kind tags the value carried by a Cell.
type Kind int

const (
	KindBlank Kind = iota
	KindText
	KindNumber
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	}
	return "unknown"
}

// Cell is one decoded spreadsheet cell. Exactly one of Text/Number/Bool/Date
// is meaningful depending on Kind; Display always holds a rendered string
// usable for header matching and raw-value transforms.
type Cell struct {
	Kind    Kind
	Text    string
	Number  float64 // raw numeric value; for KindDate this is the serial
	Bool    bool
	Date    time.Time
	Display string
}

// Blank returns an empty cell. Short rows are padded with these so consumers
// never index past a row's physical length.
func Blank() Cell {
	return Cell{Kind: KindBlank}
}

// NewText builds a text cell. Empty strings collapse to blank cells so the
// two decoders agree on what "no value" means.
func NewText(s string) Cell {
	if s == "" {
		return Blank()
	}
	return Cell{Kind: KindText, Text: s, Display: s}
}

// NewNumber builds a numeric cell with a round-trippable display string.
func NewNumber(v float64) Cell {
	return Cell{Kind: KindNumber, Number: v, Display: FormatNumber(v)}
}

// NewBool builds a boolean cell.
func NewBool(b bool) Cell {
	display := "FALSE"
	if b {
		display = "TRUE"
	}
	return Cell{Kind: KindBool, Bool: b, Display: display}
}

// NewDate builds a date cell from a numeric serial whose number format marks
// it as a date. The raw serial is preserved alongside the derived time.
func NewDate(serial float64) Cell {
	t := SerialToTime(serial)
	display := t.Format("2006-01-02 15:04:05")
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		display = t.Format("2006-01-02")
	}
	return Cell{Kind: KindDate, Number: serial, Date: t, Display: display}
}

// IsBlank reports whether the cell carries no value.
func (c Cell) IsBlank() bool {
	return c.Kind == KindBlank || (c.Kind == KindText && strings.TrimSpace(c.Text) == "")
}

// String returns the display rendering. Blank cells render as "".
func (c Cell) String() string {
	return c.Display
}

// FormatNumber renders a float the way spreadsheets display general numbers:
// integers without a decimal point, everything else with minimal digits.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// excelEpoch is day zero of the 1900 date system. Serial 1 is 1900-01-01,
// but serials >= 60 are shifted by the fictitious 1900-02-29 that Lotus 1-2-3
// introduced and OOXML keeps for compatibility.
var excelEpoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

// SerialToTime converts a 1900-system date serial to a calendar time.
func SerialToTime(serial float64) time.Time {
	if serial >= 60 {
		serial--
	}
	days := int(serial)
	frac := serial - float64(days)
	t := excelEpoch.AddDate(0, 0, days)
	return t.Add(time.Duration(frac * 86400 * float64(time.Second))).Round(time.Second)
}

// TimeToSerial converts a calendar time back to a 1900-system serial.
// Inverse of SerialToTime for whole seconds.
func TimeToSerial(t time.Time) float64 {
	t = t.UTC()
	serial := t.Sub(excelEpoch).Hours() / 24
	if serial >= 60 {
		serial++
	}
	return serial
}
