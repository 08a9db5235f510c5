package http

import (
	"net/http"

	"ramenledger/internal/core"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	s.render(w, r, "index.html", map[string]any{
		"Biz": s.ledger.Profile(),
	})
}

func (s *Server) handleMenuTab(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "menu.html", map[string]any{
		"Menu": menuRows(s.ledger.Menu()),
	})
}

func (s *Server) handlePurchasesTab(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "purchases.html", map[string]any{
		"Purchases": purchaseRows(s.ledger.Purchases()),
		"Today":     core.Today().String(),
	})
}

func (s *Server) handleSalesTab(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "sales.html", map[string]any{
		"Menu":  menuRows(s.ledger.Menu()),
		"Sales": saleRows(s.ledger.Sales(), s.ledger.MenuLookup()),
		"Today": core.Today().String(),
	})
}

func (s *Server) handleReportTab(w http.ResponseWriter, r *http.Request) {
	// Default range: today through today, grouped by day.
	today := core.Today()
	rng := core.DateRange{Start: today, End: today, GroupByDay: true}
	report := s.ledger.Report(rng)
	s.render(w, r, "report.html", buildReportView(report, s.ledger.MenuLookup(), rng))
}

func (s *Server) handleBackupTab(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "backup.html", nil)
}

func (s *Server) handleBizTab(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "biz.html", map[string]any{
		"Biz": s.ledger.Profile(),
	})
}
