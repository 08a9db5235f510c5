package http

import (
	"strconv"

	"ramenledger/internal/core"
)

// View models for the templates. Money is pre-formatted here so the
// templates stay dumb.

type menuRowView struct {
	ID         string
	Name       string
	PriceInput string // plain decimal for the edit field
	Price      string
}

type purchaseRowView struct {
	Date  string
	Item  string
	Qty   string
	Unit  string
	Total string
	Note  string
}

type saleRowView struct {
	Date    string
	Product string
	Deleted bool
	Qty     string
	Amount  string
}

type salesGroupView struct {
	Key   string
	Rows  []saleRowView
	Total string
}

type reportView struct {
	Start      string
	End        string
	GroupByDay bool
	Revenue    string
	Expense    string
	Profit     string
	Loss       bool
	Groups     []salesGroupView
	Purchases  []purchaseRowView
}

func priceInput(m core.Money) string {
	return strconv.FormatFloat(m.Pesos(), 'f', -1, 64)
}

func menuRows(menu []core.MenuItem) []menuRowView {
	rows := make([]menuRowView, len(menu))
	for i, m := range menu {
		rows[i] = menuRowView{
			ID:         m.ID,
			Name:       m.Name,
			PriceInput: priceInput(m.Price),
			Price:      formatPesos(m.Price),
		}
	}
	return rows
}

func purchaseRows(purchases []core.Purchase) []purchaseRowView {
	rows := make([]purchaseRowView, len(purchases))
	for i, p := range purchases {
		rows[i] = purchaseRowView{
			Date:  p.Date.String(),
			Item:  p.Item,
			Qty:   formatQty(p.Qty),
			Unit:  formatPesos(p.Unit),
			Total: formatPesos(p.Total),
			Note:  p.Note,
		}
	}
	return rows
}

func saleRows(sales []core.Sale, lookup core.MenuLookup) []saleRowView {
	rows := make([]saleRowView, len(sales))
	for i, s := range sales {
		row := saleRowView{
			Date: s.Date.String(),
			Qty:  formatQty(s.Qty),
		}
		if item, ok := lookup[s.ProductID]; ok {
			row.Product = item.Name
			row.Amount = formatPesos(item.Price.Mul(s.Qty))
		} else {
			// The reference dangles; it is never repaired.
			row.Product = "Deleted item"
			row.Deleted = true
			row.Amount = formatPesos(core.Money{})
		}
		rows[i] = row
	}
	return rows
}

func buildReportView(report core.Report, lookup core.MenuLookup, r core.DateRange) reportView {
	view := reportView{
		Start:      r.Start.String(),
		End:        r.End.String(),
		GroupByDay: r.GroupByDay,
		Revenue:    formatPesos(report.Totals.Revenue),
		Expense:    formatPesos(report.Totals.Expense),
		Profit:     formatPesos(report.Totals.Profit),
		Loss:       report.Totals.Profit.Cents < 0,
		Purchases:  purchaseRows(report.FilteredPurchases),
	}
	for _, g := range report.Groups {
		groupTotal := core.Money{}
		for _, s := range g.Sales {
			groupTotal = groupTotal.Add(lookup.Price(s.ProductID).Mul(s.Qty))
		}
		view.Groups = append(view.Groups, salesGroupView{
			Key:   g.Key,
			Rows:  saleRows(g.Sales, lookup),
			Total: formatPesos(groupTotal),
		})
	}
	return view
}
