// Package validate holds the pure checks and normalizers shared by the
// expense model, the store and the interactive prompts.
package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the only accepted textual date form.
const DateFormat = "2006-01-02"

// Delimiter separates fields in the storage file.
const Delimiter = "|"

const (
	minYear = 1900
	maxYear = 2100
)

var (
	amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var daysInMonth = [12]int{31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsValidAmount reports whether s is a positive amount with at most two
// decimal places, e.g. "10" or "10.50".
func IsValidAmount(s string) bool {
	_, ok := ParseAmount(s)
	return ok
}

// ParseAmount parses raw user input into a positive amount.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = Normalize(s)
	if !amountPattern.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// IsValidDate reports whether s is a YYYY-MM-DD calendar date with a year in
// [1900, 2100]. February 29 is only accepted in leap years.
func IsValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	year := atoi(s[0:4])
	month := atoi(s[5:7])
	day := atoi(s[8:10])

	if year < minYear || year > maxYear {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > daysInMonth[month-1] {
		return false
	}
	if month == 2 && day == 29 {
		return IsLeapYear(year)
	}
	return true
}

// IsLeapYear applies the Gregorian leap-year rule.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// Today formats now as a storage date.
func Today(now time.Time) string {
	return now.Format(DateFormat)
}

// Normalize trims surrounding whitespace.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}

// Storable reports whether s can be written as a single storage field:
// it must not contain the delimiter or a line break.
func Storable(s string) bool {
	return !strings.ContainsAny(s, Delimiter+"\r\n")
}

// EqualFold compares two strings case-insensitively after normalization.
func EqualFold(a, b string) bool {
	return strings.EqualFold(Normalize(a), Normalize(b))
}

// ContainsFold reports whether needle occurs in haystack, ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// FormatCurrency renders an amount with symbol and exactly two decimals.
func FormatCurrency(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}

// atoi converts a run of ASCII digits already checked by a pattern.
func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
