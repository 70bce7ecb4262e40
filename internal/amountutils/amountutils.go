// Package amountutils parses the monetary strings found in statement exports.
package amountutils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts a raw statement amount into a decimal. It strips currency
// symbols and thousands separators, and treats parentheses as negation, so
// "$1,234.56", "(45.00)" and "-45.00" all parse. The sign convention of the
// source is preserved; institution parsers normalize it afterwards.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	replacer := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "", "'", "")
	s = replacer.Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("no numeric content in amount %q", raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// IsParsable reports whether a string looks like a statement amount. Used by
// the generic fallback parser when sniffing for amount-bearing columns.
func IsParsable(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	_, err := Parse(raw)
	return err == nil
}
