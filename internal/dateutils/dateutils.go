// Package dateutils provides the date parsing used by every statement parser.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// LayoutISO is the canonical output format for all parsed dates.
	LayoutISO = "2006-01-02"
	// LayoutUS is the MM/DD/YYYY form most US institutions export.
	LayoutUS = "01/02/2006"
)

// acceptedFormats are the layouts statement parsers accept. Order matters:
// the first layout that parses wins.
var acceptedFormats = []string{
	LayoutISO,
	LayoutUS,
	"1/2/2006",
	"2006/01/02",
	"20060102",
}

var spaceRe = regexp.MustCompile(`\s+`)

// Parse attempts to parse a date string using the accepted layouts.
func Parse(dateStr string) (time.Time, error) {
	dateStr = Clean(dateStr)
	for _, format := range acceptedFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// NormalizeISO parses a date string and reformats it as YYYY-MM-DD.
func NormalizeISO(dateStr string) (string, error) {
	t, err := Parse(dateStr)
	if err != nil {
		return "", err
	}
	return t.Format(LayoutISO), nil
}

// Clean trims and collapses whitespace in a date string before parsing.
func Clean(dateStr string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}
