package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ramenledger/internal/core"
	"ramenledger/internal/ledger"
	applog "ramenledger/internal/log"
)

func (s *Server) handleAddMenuItem(w http.ResponseWriter, r *http.Request) {
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

	name := sanitizeInput(r.Form.Get("name"))
	if name == "" {
		UnprocessableEntityError("Enter a product name").Write(w)
		return
	}
	cents, err := core.ParsePriceToCents(strings.TrimSpace(r.Form.Get("price")))
	if err != nil {
		UnprocessableEntityError("Enter a valid price").Write(w)
		return
	}

	item := core.MenuItem{Name: name, Price: core.Money{Cents: cents}}
	if err := item.Validate(); err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	saved, err := s.ledger.AddMenuItem(r.Context(), item.Name, item.Price)
	if err != nil {
		s.httpLog.LogError(r.Context(), "Failed to save menu item", err,
			applog.ComponentMenu, applog.OpCreate,
			applog.NewFields().WithMenuItem("", item.Name, item.Price.Cents))
		InternalServerError("Error saving menu item").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Menu item added",
		applog.NewFields().
			WithComponent(applog.ComponentMenu).
			WithOperation(applog.OpCreate).
			WithMenuItem(saved.ID, saved.Name, saved.Price.Cents).
			ToSlice()...)

	NewHTMXResponse().
		TriggerMenuChanged().
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("Menu item added: %s", saved.Name)).
		Write(w)
}

func (s *Server) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		UnprocessableEntityError("Missing item id").Write(w)
		return
	}

	// In-place edits are loose by contract: names and prices are applied
	// as given, including non-positive prices.
	var patch ledger.MenuItemPatch
	if _, ok := r.Form["name"]; ok {
		name := sanitizeInput(r.Form.Get("name"))
		patch.Name = &name
	}
	if raw, ok := r.Form["price"]; ok && len(raw) > 0 {
		cents, err := core.ParseAmountToCents(raw[0])
		if err != nil {
			UnprocessableEntityError("Enter a valid price").Write(w)
			return
		}
		price := core.Money{Cents: cents}
		patch.Price = &price
	}

	if err := s.ledger.UpdateMenuItem(r.Context(), id, patch); err != nil {
		if errors.Is(err, ledger.ErrMenuItemNotFound) {
			NotFoundError("Menu item not found").Write(w)
			return
		}
		s.httpLog.LogError(r.Context(), "Failed to update menu item", err,
			applog.ComponentMenu, applog.OpUpdate,
			applog.LogFields{applog.FieldItemID: id})
		InternalServerError("Error updating menu item").Write(w)
		return
	}

	NewHTMXResponse().TriggerMenuChanged().Write(w)
}

func (s *Server) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		UnprocessableEntityError("Missing item id").Write(w)
		return
	}

	if err := s.ledger.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrMenuItemNotFound) {
			NotFoundError("Menu item not found").Write(w)
			return
		}
		s.httpLog.LogError(r.Context(), "Failed to delete menu item", err,
			applog.ComponentMenu, applog.OpDelete,
			applog.LogFields{applog.FieldItemID: id})
		InternalServerError("Error deleting menu item").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Menu item deleted",
		applog.FieldItemID, id,
		applog.FieldComponent, applog.ComponentMenu,
		applog.FieldOperation, applog.OpDelete)

	// Sales referencing the item keep their dangling product id.
	NewHTMXResponse().
		TriggerMenuChanged().
		TriggerSuccessNotification("Menu item deleted").
		Write(w)
}
