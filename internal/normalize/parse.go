// Package normalize turns raw laboratory spreadsheet rows into canonical records.
//
// Every parse helper here is total: bad input yields the field's empty value
// (or nil for optional numbers) and never an error.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// missingValues are cell texts that spreadsheet exports write for an empty cell.
var missingValues = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
	"n/a":  true,
}

// quantityPlaceholders are marks typed into the quantity column instead of a number.
var quantityPlaceholders = map[string]bool{
	"`": true,
	"-": true,
}

// timeOfDaySuffix matches the " 00:00:00" tail left when a CAS number was
// read as a date.
var timeOfDaySuffix = regexp.MustCompile(`\s+\d{1,2}:\d{2}(:\d{2}(\.\d+)?)?$`)

// dateLayouts are the date renderings seen in the "date open" column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"2006/1/2",
}

// IsMissing reports whether s is blank or a missing-value sentinel.
func IsMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || missingValues[strings.ToLower(s)]
}

// CleanText trims s and collapses missing-value sentinels to "".
func CleanText(s string) string {
	if IsMissing(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

// ParseQuantity converts a quantity-on-hand cell to a non-negative integer,
// truncating fractions. Anything unparseable is 0.
func ParseQuantity(s string) int {
	s = CleanText(s)
	if s == "" || quantityPlaceholders[s] {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64 {
		return 0
	}
	return int(math.Trunc(f))
}

// CleanCAS normalizes a CAS registry number: embedded line breaks, leading
// zeros and a spurious time-of-day suffix are removed. Cleaning repeats
// until nothing changes, so CleanCAS(CleanCAS(s)) == CleanCAS(s).
func CleanCAS(s string) string {
	for {
		next := cleanCASOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

// cleanCASOnce never lengthens its input.
func cleanCASOnce(s string) string {
	s = strings.NewReplacer("\r", "", "\n", "").Replace(s)
	s = CleanText(s)
	if s == "" {
		return ""
	}
	s = timeOfDaySuffix.ReplaceAllString(s, "")
	return CleanText(strings.TrimLeft(s, "0 \t"))
}

// ParseMolecularWeight parses a molecular weight cell. A trailing "k" means
// thousands ("100k" is 100000). Returns nil when the value is unknown.
func ParseMolecularWeight(s string) *float64 {
	s = CleanText(s)
	if s == "" {
		return nil
	}
	mul := 1.0
	if strings.HasSuffix(s, "k") || strings.HasSuffix(s, "K") {
		mul = 1000
		s = strings.TrimSpace(s[:len(s)-1])
	}
	f, ok := parseFloat(strings.ReplaceAll(s, ",", ""))
	if !ok {
		return nil
	}
	f *= mul
	return &f
}

// ParseCost parses a price cell, accepting a leading "$" and thousands
// separators. Negative or unparseable prices are nil.
func ParseCost(s string) *float64 {
	s = CleanText(s)
	if s == "" {
		return nil
	}
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	f, ok := parseFloat(strings.TrimSpace(s))
	if !ok || f < 0 {
		return nil
	}
	return &f
}

// ParseDate renders a recognised date as YYYY-MM-DD and returns any other
// text trimmed.
func ParseDate(s string) string {
	s = CleanText(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
