package cell

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialToTime(t *testing.T) {
	tests := []struct {
		name   string
		serial float64
		want   time.Time
	}{
		{"serial 1 is 1900-01-01", 1, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"serial 59 is 1900-02-28", 59, time.Date(1900, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"serial 61 skips the fictitious leap day", 61, time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"modern date", 45731, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"fractional part carries time of day", 45731.5, time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SerialToTime(tt.serial))
		})
	}
}

func TestTimeToSerial_RoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC),
	}
	for _, d := range dates {
		assert.Equal(t, d, SerialToTime(TimeToSerial(d)), "round trip for %s", d)
	}
}

func TestNewDate_Display(t *testing.T) {
	t.Run("midnight renders date only", func(t *testing.T) {
		c := NewDate(45731)
		assert.Equal(t, "2025-03-15", c.Display)
	})
	t.Run("time of day renders full timestamp", func(t *testing.T) {
		c := NewDate(45731.5)
		assert.Equal(t, "2025-03-15 12:00:00", c.Display)
	})
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100"},
		{-3, "-3"},
		{0, "0"},
		{45.5, "45.5"},
		{0.125, "0.125"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestCell_Constructors(t *testing.T) {
	t.Run("empty text collapses to blank", func(t *testing.T) {
		c := NewText("")
		assert.Equal(t, KindBlank, c.Kind)
		assert.True(t, c.IsBlank())
	})

	t.Run("whitespace text is blank but keeps its kind", func(t *testing.T) {
		c := NewText("   ")
		assert.Equal(t, KindText, c.Kind)
		assert.True(t, c.IsBlank())
	})

	t.Run("number cell", func(t *testing.T) {
		c := NewNumber(42.5)
		require.Equal(t, KindNumber, c.Kind)
		assert.Equal(t, 42.5, c.Number)
		assert.Equal(t, "42.5", c.String())
		assert.False(t, c.IsBlank())
	})

	t.Run("bool cell", func(t *testing.T) {
		assert.Equal(t, "TRUE", NewBool(true).String())
		assert.Equal(t, "FALSE", NewBool(false).String())
	})

	t.Run("blank renders empty", func(t *testing.T) {
		assert.Equal(t, "", Blank().String())
	})
}
