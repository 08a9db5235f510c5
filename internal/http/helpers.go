package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ramenledger/internal/core"
)

// formatPesos formats centavos as a peso currency string (e.g. "₱120.00").
func formatPesos(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	pesos := cents / 100
	rem := cents % 100
	s := strconv.FormatInt(pesos, 10) + "." + fmt.Sprintf("%02d", rem)
	if neg {
		return "-₱" + s
	}
	return "₱" + s
}

// formatQty trims a decimal quantity for display ("3", "2.5").
func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// parseDateOrToday parses a form date, defaulting to today when blank.
func parseDateOrToday(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Today(), nil
	}
	return core.ParseDate(s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
