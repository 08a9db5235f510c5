package core

import "time"

type (
	// DateRange parameterizes a report: an inclusive [Start, End] window
	// plus the grouping flag. It is transient query state, never persisted.
	DateRange struct {
		Start      Date
		End        Date
		GroupByDay bool
	}

	// Totals holds the three derived scalars for a range.
	Totals struct {
		Revenue Money
		Expense Money
		Profit  Money
	}

	// SalesGroup is one display bucket of filtered sales.
	SalesGroup struct {
		Key   string
		Sales []Sale
	}

	// Report is the derived view over the collections for one range.
	Report struct {
		FilteredPurchases []Purchase
		FilteredSales     []Sale
		Totals            Totals
		Groups            []SalesGroup
	}

	// MenuLookup resolves a sale's product reference. A missing id means
	// the item was deleted after the sale; the price contribution is zero.
	MenuLookup map[string]MenuItem
)

// UngroupedKey is the sentinel bucket key when grouping by day is off.
const UngroupedKey = "all"

// Price resolves the current price for a product id, zero on a miss.
func (l MenuLookup) Price(productID string) Money {
	return l[productID].Price
}

// NewMenuLookup indexes menu items by id.
func NewMenuLookup(menu []MenuItem) MenuLookup {
	lookup := make(MenuLookup, len(menu))
	for _, m := range menu {
		lookup[m.ID] = m
	}
	return lookup
}

// BuildReport derives the filtered subsets, totals, and grouped sales for
// a date range. It is pure: inputs are only read, and identical inputs
// always produce an identical report, so the view can be re-derived on
// every render.
func BuildReport(purchases []Purchase, sales []Sale, lookup MenuLookup, r DateRange) Report {
	report := Report{}

	for _, p := range purchases {
		if r.Contains(p.Date) {
			report.FilteredPurchases = append(report.FilteredPurchases, p)
			report.Totals.Expense = report.Totals.Expense.Add(p.Total)
		}
	}

	for _, s := range sales {
		if r.Contains(s.Date) {
			report.FilteredSales = append(report.FilteredSales, s)
			report.Totals.Revenue = report.Totals.Revenue.Add(lookup.Price(s.ProductID).Mul(s.Qty))
		}
	}

	report.Totals.Profit = report.Totals.Revenue.Sub(report.Totals.Expense)
	report.Groups = groupSales(report.FilteredSales, r.GroupByDay)
	return report
}

// Contains reports whether a date falls inside the inclusive range. The
// comparison runs on full timestamps with the end boundary extended to
// 23:59:59.999 of its day, so a record dated exactly End is included.
func (r DateRange) Contains(d Date) bool {
	start := r.Start.Time
	end := r.End.Add(24*time.Hour - time.Millisecond)
	t := d.Time
	return !t.Before(start) && !t.After(end)
}

// groupSales buckets sales by their literal date string in first-seen
// order, preserving the post-filter (most recent first) order inside each
// bucket. With grouping off, all sales land in one sentinel bucket.
func groupSales(sales []Sale, byDay bool) []SalesGroup {
	var groups []SalesGroup
	index := make(map[string]int)
	for _, s := range sales {
		key := UngroupedKey
		if byDay {
			key = s.Date.String()
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, SalesGroup{Key: key})
		}
		groups[i].Sales = append(groups[i].Sales, s)
	}
	return groups
}
