package budget

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Boundary errors.
var (
	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD or RFC3339")
	ErrInvalidPercentage = errors.New("percentage must be between 0 and 100")
	ErrInvalidBudget     = errors.New("budget must be greater than 0 and at most 1,000,000")
)

// MaxBudget is the largest monthly budget accepted at onboarding.
const MaxBudget = 1_000_000

const dayLayout = "2006-01-02"

// ParseAmount parses user input into a positive amount rounded to cents.
// Both "12.50" and "12,50" are accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || f <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return f, nil
}

// SafeAmount is the calculators' leniency rule: anything that is not a
// finite, non-negative number counts as 0.
func SafeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ParseDate parses a calendar day. RFC3339 timestamps are truncated to
// their day component.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	t, err := time.ParseInLocation(dayLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseDateOr is the lenient form of ParseDate: malformed input yields
// the calendar day of fallback.
func ParseDateOr(s string, fallback time.Time) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		return Day(fallback)
	}
	return t
}

// Day truncates t to local midnight of its calendar day.
func Day(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// DayKey formats t's calendar day as "2006-01-02".
func DayKey(t time.Time) string {
	return t.Local().Format(dayLayout)
}

// DaysInMonth returns the number of days in the given month, leap years included.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidateBudgetAmount checks a monthly total.
func ValidateBudgetAmount(v float64) error {
	if math.IsNaN(v) || v <= 0 || v > MaxBudget {
		return ErrInvalidBudget
	}
	return nil
}

// ValidatePercentage checks a single category share.
func ValidatePercentage(v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return ErrInvalidPercentage
	}
	return nil
}
