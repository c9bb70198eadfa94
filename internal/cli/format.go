// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
	"CHF": "CHF",
	"JPY": "¥",
}

var currencySymbol = "€"

// SetCurrency selects the symbol used by FormatMoney from an ISO code.
// Unknown codes are used verbatim.
func SetCurrency(code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return
	}
	if sym, ok := currencySymbols[code]; ok {
		currencySymbol = sym
		return
	}
	currencySymbol = code
}

// FormatMoney formats an amount the Italian way, e.g. 1234.5 -> "1.234,50 €".
func FormatMoney(amount float64) string {
	return FormatAmount(amount) + " " + currencySymbol
}

// FormatAmount formats an amount with two decimals, "." thousands and ","
// as decimal separator.
func FormatAmount(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	neg := d.IsNegative()
	if neg {
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	s := groupThousands(intPart) + "," + frac
	if neg && s != "0,00" {
		return "-" + s
	}
	return s
}

// FormatNumber adds "." separators to an integer.
// e.g., 1234567 -> "1.234.567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupThousands(fmt.Sprintf("%d", n))
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte('.')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a value already expressed in percent.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

// FormatTrend formats a percent change with an explicit sign.
func FormatTrend(p float64) string {
	if p > 0 {
		return fmt.Sprintf("+%.1f%%", p)
	}
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDelta formats the difference between two amounts with a sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return "-" + FormatMoney(-delta)
}

var monthNames = [...]string{
	"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
	"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
}

// FormatMonth returns e.g. "Marzo 2025".
func FormatMonth(year, month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%04d-%02d", year, month)
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// FormatDayOfWeek returns a 3-letter Italian day abbreviation.
func FormatDayOfWeek(weekday time.Weekday) string {
	days := []string{"Dom", "Lun", "Mar", "Mer", "Gio", "Ven", "Sab"}
	if weekday >= 0 && int(weekday) < len(days) {
		return days[weekday]
	}
	return "???"
}

// FormatDate formats a calendar day as "02/01/2006", or "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

// ShortID trims a uuid to its first block for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
