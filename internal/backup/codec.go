// Package backup serializes the full ledger state to a single JSON
// document and restores it, tolerating missing or malformed fields on a
// per-field basis.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ramenledger/internal/core"
)

// Snapshot is the complete ledger state: the business profile and the
// three collections, verbatim.
type Snapshot struct {
	Biz       core.BusinessProfile `json:"biz"`
	Menu      []core.MenuItem      `json:"menu"`
	Purchases []core.Purchase      `json:"purchases"`
	Sales     []core.Sale          `json:"sales"`
}

// ErrMalformedDocument marks a backup file that could not be parsed at
// all. State stays untouched in that case.
var ErrMalformedDocument = errors.New("malformed backup document")

const filenamePrefix = "ramen-ledger-backup-"

// Export renders the snapshot as an indented JSON document with top-level
// biz, menu, purchases, and sales fields.
func Export(s Snapshot) ([]byte, error) {
	// Collections are sequences in the document even when empty.
	if s.Menu == nil {
		s.Menu = []core.MenuItem{}
	}
	if s.Purchases == nil {
		s.Purchases = []core.Purchase{}
	}
	if s.Sales == nil {
		s.Sales = []core.Sale{}
	}
	doc, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return doc, nil
}

// Filename returns the download name for an export taken now, with the
// calendar date embedded.
func Filename(now time.Time) string {
	return filenamePrefix + now.Format(core.DateLayout) + ".json"
}

// rawDocument defers each field so malformed fields can be rejected
// one at a time instead of failing the whole import.
type rawDocument struct {
	Biz       json.RawMessage `json:"biz"`
	Menu      json.RawMessage `json:"menu"`
	Purchases json.RawMessage `json:"purchases"`
	Sales     json.RawMessage `json:"sales"`
}

// Import merges a backup document into the current snapshot. An
// unparsable document fails the whole import and returns the current
// snapshot unchanged. Otherwise the merge is field by field: a present,
// well-shaped field replaces the current value; an absent, null, or
// wrongly-shaped field keeps the current value.
func Import(doc []byte, current Snapshot) (Snapshot, error) {
	var raw rawDocument
	if err := json.Unmarshal(doc, &raw); err != nil {
		return current, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	next := current
	if biz, ok := decodeField[core.BusinessProfile](raw.Biz); ok {
		next.Biz = biz
	}
	if menu, ok := decodeField[[]core.MenuItem](raw.Menu); ok {
		next.Menu = menu
	}
	if purchases, ok := decodeField[[]core.Purchase](raw.Purchases); ok {
		next.Purchases = purchases
	}
	if sales, ok := decodeField[[]core.Sale](raw.Sales); ok {
		next.Sales = sales
	}
	return next, nil
}

// decodeField reports whether the raw field was present and decoded into
// the expected shape. JSON null counts as absent.
func decodeField[T any](raw json.RawMessage) (T, bool) {
	var value T
	if len(raw) == 0 || string(raw) == "null" {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false
	}
	return value, true
}
