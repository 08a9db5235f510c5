package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date. The wall-clock part is always midnight UTC;
	// range comparisons in the aggregator expand the end boundary to the
	// last instant of its day so that records dated exactly on the end date
	// stay included.
	Date struct {
		time.Time
	}

	// MenuItem is a sellable product. ID is opaque, unique within the menu
	// and immutable; Name and Price are validated at creation time only, so
	// later edits may leave a non-positive price in place.
	MenuItem struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Price Money  `json:"price"`
	}

	// Purchase is a recorded expense or restocking event. Purchases are
	// add-only: no edit or delete operation exists for them.
	Purchase struct {
		ID    string  `json:"id"`
		Date  Date    `json:"date"`
		Item  string  `json:"item"`
		Qty   float64 `json:"qty"`
		Unit  Money   `json:"unit"`
		Total Money   `json:"total"`
		Note  string  `json:"note"`
	}

	// Sale is one recorded sale of a menu item. ProductID is a weak
	// reference: deleting the menu item leaves it dangling, and revenue
	// resolution treats a dangling reference as price zero.
	Sale struct {
		ID        string  `json:"id"`
		Date      Date    `json:"date"`
		ProductID string  `json:"productId"`
		Qty       float64 `json:"qty"`
	}

	// BusinessProfile describes the stall. Free-form fields, no invariants.
	BusinessProfile struct {
		Name     string `json:"name"`
		Owner    string `json:"owner"`
		Location string `json:"location"`
	}
)

var (
	ErrInvalidDate    = errors.New("invalid date")
	ErrEmptyName      = errors.New("empty name")
	ErrEmptyItem      = errors.New("empty item")
	ErrInvalidPrice   = errors.New("invalid price")
	ErrInvalidTotal   = errors.New("invalid total")
	ErrInvalidQty     = errors.New("invalid quantity")
	ErrMissingProduct = errors.New("missing product selection")
)

// DateLayout is the wire and display layout for calendar dates.
const DateLayout = "2006-01-02"

// NewDate creates a Date for the given calendar day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarshalJSON encodes the date as a bare YYYY-MM-DD string, matching the
// persisted layout of the collections.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks a menu item at creation time. Validation is a call-site
// concern: the collection itself accepts any well-formed record.
func (m MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if m.Price.Cents <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Validate checks a purchase at creation time.
func (p Purchase) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Item) == "" {
		return ErrEmptyItem
	}
	if p.Qty < 0 || p.Unit.Cents < 0 {
		return ErrInvalidQty
	}
	if p.Total.Cents <= 0 {
		return ErrInvalidTotal
	}
	return nil
}

// Validate checks a sale at creation time.
func (s Sale) Validate() error {
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.ProductID) == "" {
		return ErrMissingProduct
	}
	if s.Qty <= 0 {
		return ErrInvalidQty
	}
	return nil
}

// AutoTotal derives a purchase total from quantity and unit price, rounded
// half-up to the centavo. A zero result means there is nothing to derive
// and the manually entered total should be kept.
func AutoTotal(qty float64, unit Money) Money {
	if qty <= 0 || unit.Cents <= 0 {
		return Money{}
	}
	return Money{Cents: roundCents(float64(unit.Cents) * qty)}
}
