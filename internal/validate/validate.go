package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"stockledger/internal/domain"
)

const (
	maxName    = 120
	maxBarcode = 64
	maxText    = 1000
)

var reBarcode = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Name trims s and requires a non-empty value of reasonable length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > maxName {
		return "", false
	}
	return s, true
}

// Barcode trims s. Empty is accepted and means "no barcode".
func Barcode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, len(s) <= maxBarcode && reBarcode.MatchString(s)
}

// Text trims free-form optional text and bounds its length.
func Text(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= maxText
}

func Price(d decimal.Decimal) bool { return !d.IsNegative() }

func Quantity(n int) bool { return n > 0 }

// MovementType normalises s (case-insensitive) to a known movement type.
func MovementType(s string) (domain.MovementType, bool) {
	t := domain.MovementType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Term normalises a search term; blank matches everything.
func Term(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxName {
		s = string(r[:maxName])
	}
	return s
}
