package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ramenledger/internal/core"
	applog "ramenledger/internal/log"
)

func (s *Server) handleAddPurchase(w http.ResponseWriter, r *http.Request) {
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

	item := sanitizeInput(r.Form.Get("item"))
	if item == "" {
		UnprocessableEntityError("What did you buy?").Write(w)
		return
	}

	date, err := parseDateOrToday(r.Form.Get("date"))
	if err != nil {
		UnprocessableEntityError("Enter a valid date").Write(w)
		return
	}
	qty, err := core.ParseQty(r.Form.Get("qty"))
	if err != nil {
		UnprocessableEntityError("Enter a valid quantity").Write(w)
		return
	}
	unitCents, err := core.ParseAmountToCents(r.Form.Get("unit"))
	if err != nil {
		UnprocessableEntityError("Enter a valid unit price").Write(w)
		return
	}
	unit := core.Money{Cents: unitCents}

	total := core.Money{}
	if strings.TrimSpace(r.Form.Get("total")) != "" {
		totalCents, err := core.ParseAmountToCents(r.Form.Get("total"))
		if err != nil {
			UnprocessableEntityError("Enter a valid total").Write(w)
			return
		}
		total = core.Money{Cents: totalCents}
	}
	// A submitted total always wins; a blank one is derived from qty and
	// unit when both are filled in.
	if total.Cents == 0 {
		if derived := core.AutoTotal(qty, unit); derived.Cents > 0 {
			total = derived
		}
	}

	purchase := core.Purchase{
		Date:  date,
		Item:  item,
		Qty:   qty,
		Unit:  unit,
		Total: total,
		Note:  sanitizeInput(r.Form.Get("note")),
	}
	if err := purchase.Validate(); err != nil {
		UnprocessableEntityError("Enter a valid total").Write(w)
		return
	}

	saved, err := s.ledger.AddPurchase(r.Context(), purchase)
	if err != nil {
		s.httpLog.LogError(r.Context(), "Failed to save purchase", err,
			applog.ComponentPurchase, applog.OpCreate,
			applog.LogFields{
				applog.FieldItemName:   purchase.Item,
				applog.FieldTotalCents: purchase.Total.Cents,
				applog.FieldDate:       purchase.Date.String(),
			})
		InternalServerError("Error saving purchase").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Purchase saved",
		applog.FieldItemID, saved.ID,
		applog.FieldItemName, saved.Item,
		applog.FieldTotalCents, saved.Total.Cents,
		applog.FieldDate, saved.Date.String(),
		applog.FieldComponent, applog.ComponentPurchase,
		applog.FieldOperation, applog.OpCreate)

	NewHTMXResponse().
		TriggerPurchaseSaved().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Purchase saved: %s (%s)", saved.Item, formatPesos(saved.Total))).
		Write(w)
}
