package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ramenledger/internal/core"
	applog "ramenledger/internal/log"
)

func (s *Server) handleAddSale(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error",
			applog.FieldError, err,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	productID := strings.TrimSpace(r.Form.Get("product_id"))
	if productID == "" {
		UnprocessableEntityError("Pick a product").Write(w)
		return
	}
	date, err := parseDateOrToday(r.Form.Get("date"))
	if err != nil {
		UnprocessableEntityError("Enter a valid date").Write(w)
		return
	}
	qty, err := core.ParseQty(r.Form.Get("qty"))
	if err != nil || qty <= 0 {
		UnprocessableEntityError("Enter a valid quantity").Write(w)
		return
	}

	sale := core.Sale{Date: date, ProductID: productID, Qty: qty}
	if err := sale.Validate(); err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	saved, err := s.ledger.AddSale(r.Context(), sale)
	if err != nil {
		s.httpLog.LogError(r.Context(), "Failed to save sale", err,
			applog.ComponentSale, applog.OpCreate,
			applog.LogFields{
				applog.FieldItemID: sale.ProductID,
				applog.FieldQty:    sale.Qty,
				applog.FieldDate:   sale.Date.String(),
			})
		InternalServerError("Error saving sale").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Sale added",
		applog.FieldItemID, saved.ProductID,
		applog.FieldQty, saved.Qty,
		applog.FieldDate, saved.Date.String(),
		applog.FieldComponent, applog.ComponentSale,
		applog.FieldOperation, applog.OpCreate)

	NewHTMXResponse().
		TriggerSaleRecorded().
		TriggerFormReset().
		TriggerSuccessNotification("Sale added").
		Write(w)
}

// handleQuickSale is the one-tap "+1" path: one unit of the product,
// dated today.
func (s *Server) handleQuickSale(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	productID := strings.TrimSpace(r.Form.Get("product_id"))
	if productID == "" {
		UnprocessableEntityError("Pick a product").Write(w)
		return
	}

	saved, err := s.ledger.QuickSale(r.Context(), productID)
	if err != nil {
		s.httpLog.LogError(r.Context(), "Failed to save quick sale", err,
			applog.ComponentSale, applog.OpCreate,
			applog.LogFields{applog.FieldItemID: productID})
		InternalServerError("Error saving sale").Write(w)
		return
	}

	name := productID
	if item, ok := s.ledger.MenuLookup()[saved.ProductID]; ok {
		name = item.Name
	}
	NewHTMXResponse().
		TriggerSaleRecorded().
		TriggerSuccessNotification(fmt.Sprintf("+1 %s", name)).
		Write(w)
}
