package cli

import (
	"strings"
	"testing"
	"time"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0,00"},
		{12.5, "12,50"},
		{999.999, "1.000,00"},
		{1234.56, "1.234,56"},
		{1234567.8, "1.234.567,80"},
		{-42.1, "-42,10"},
		{-0.001, "0,00"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMoney_Currency(t *testing.T) {
	defer SetCurrency("EUR")

	if got := FormatMoney(1500); got != "1.500,00 €" {
		t.Fatalf("FormatMoney = %q", got)
	}
	SetCurrency("usd")
	if got := FormatMoney(3); got != "3,00 $" {
		t.Fatalf("FormatMoney after SetCurrency(usd) = %q", got)
	}
	SetCurrency("SEK")
	if got := FormatMoney(3); got != "3,00 SEK" {
		t.Fatalf("FormatMoney with unknown code = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1.000",
		-1234567: "-1.234.567",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatTrendAndDelta(t *testing.T) {
	if got := FormatTrend(12.34); got != "+12.3%" {
		t.Errorf("FormatTrend(12.34) = %q", got)
	}
	if got := FormatTrend(-5); got != "-5.0%" {
		t.Errorf("FormatTrend(-5) = %q", got)
	}
	if got := FormatDelta(80, 100); got != "-20,00 €" {
		t.Errorf("FormatDelta(80, 100) = %q", got)
	}
	if got := FormatDelta(100, 100); got != "+0,00 €" {
		t.Errorf("FormatDelta(100, 100) = %q", got)
	}
}

func TestFormatMonthAndDate(t *testing.T) {
	if got := FormatMonth(2025, 3); got != "Marzo 2025" {
		t.Errorf("FormatMonth = %q", got)
	}
	if got := FormatMonth(2025, 13); got != "2025-13" {
		t.Errorf("FormatMonth out of range = %q", got)
	}
	if got := FormatDate(time.Date(2025, 3, 7, 0, 0, 0, 0, time.Local)); got != "07/03/2025" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "-" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
	if got := FormatDayOfWeek(time.Monday); got != "Lun" {
		t.Errorf("FormatDayOfWeek(Monday) = %q", got)
	}
}

func TestRenderTable_AlignsWideCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Categoria", "Speso"},
		Rows: [][]string{
			{"🏠 Casa", "12,00 €"},
			SeparatorRow,
			{"Totale", "1.212,00 €"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	width := len([]rune(lines[0]))
	for i, l := range lines {
		if !strings.Contains(l, "🏠") && len([]rune(l)) != width {
			t.Errorf("line %d has width %d, want %d: %q", i, len([]rune(l)), width, l)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 5, 10}); got != "▁▄█" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Errorf("RenderSparkline(all zero) = %q", got)
	}
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("RenderSparkline(nil) = %q", got)
	}
}

func TestRenderSpendBar_Width(t *testing.T) {
	for _, tt := range []struct{ spent, limit float64 }{{0, 100}, {50, 100}, {250, 100}, {10, 0}} {
		bar := RenderSpendBar(tt.spent, tt.limit, 20)
		if n := len([]rune(bar)); n != 20 {
			t.Errorf("RenderSpendBar(%v, %v) has %d cells, want 20", tt.spent, tt.limit, n)
		}
	}
}
