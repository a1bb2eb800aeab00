package importer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount reads both "1234.56" and European "1.234,56" styles. When both
// separators appear the last one is the decimal mark; a lone comma is always
// decimal, as is a lone dot.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '€', '+':
			return -1
		}

		return r
	}, s)

	dot := strings.LastIndex(clean, ".")
	comma := strings.LastIndex(clean, ",")

	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}

	case comma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}

	case dot >= 0 && strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}

	return decimal.NewFromString(clean)
}
