// Package core provides money parsing and handling utilities.
//
// Monetary amounts are carried as integer centavos to keep arithmetic
// exact; conversion to pesos happens only at display time.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in centavos.
type Money struct {
	Cents int64
}

// ParsePriceToCents converts a decimal string to centavos with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) decimal separators. The result must be strictly positive;
// invalid formats, negative values, and zero amounts are errors.
//
// Examples:
//
//	ParsePriceToCents("120")    -> 12000, nil
//	ParsePriceToCents("12,34")  -> 1234, nil
//	ParsePriceToCents("12.345") -> 1234, nil (rounds down)
//	ParsePriceToCents("12.346") -> 1235, nil (rounds up)
func ParsePriceToCents(s string) (int64, error) {
	cents, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidPrice
	}
	return cents, nil
}

// ParseAmountToCents is ParsePriceToCents with zero allowed, for fields
// like a purchase's unit price where "not filled in" is a valid state.
func ParseAmountToCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return parseCents(s)
}

func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidPrice
	}
	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidPrice
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidPrice
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidPrice
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidPrice
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracCents++
				}
			}
		}
	}
	return iv*100 + fracCents, nil
}

// ParseQty parses a non-negative decimal quantity. Empty input is zero.
func ParseQty(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
		return 0, ErrInvalidQty
	}
	return q, nil
}

// Pesos returns the peso value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Pesos() float64 {
	return float64(m.Cents) / 100.0
}

// Mul scales the amount by a decimal quantity, rounding half-up to the
// centavo. Used for revenue resolution (price × quantity sold).
func (m Money) Mul(qty float64) Money {
	return Money{Cents: roundCents(float64(m.Cents) * qty)}
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of two amounts. Negative results are valid
// (a loss-making range).
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// MarshalJSON encodes the amount as a decimal peso number, matching the
// persisted layout of the collections.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Pesos(), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a decimal peso number.
func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return err
	}
	m.Cents = roundCents(v * 100)
	return nil
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
