package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ramenledger/internal/backup"
	"ramenledger/internal/core"
	applog "ramenledger/internal/log"
)

// maxImportBytes bounds an uploaded backup file. The whole dataset is a
// few thousand records at most.
const maxImportBytes = 8 << 20

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	doc, err := backup.Export(s.ledger.Snapshot())
	if err != nil {
		s.httpLog.LogError(r.Context(), "Failed to export backup", err,
			applog.ComponentBackup, applog.OpExport, applog.NewFields())
		InternalServerError("Error exporting backup").Write(w)
		return
	}

	name := backup.Filename(time.Now())
	slog.InfoContext(r.Context(), "Backup exported",
		"filename", name,
		"bytes", len(doc),
		applog.FieldComponent, applog.ComponentBackup,
		applog.FieldOperation, applog.OpExport)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		BadRequestError("Could not read upload").Write(w)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		UnprocessableEntityError("Choose a backup file").Write(w)
		return
	}
	defer file.Close()

	doc, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		BadRequestError("Could not read upload").Write(w)
		return
	}

	next, err := backup.Import(doc, s.ledger.Snapshot())
	if err != nil {
		// The whole import fails on an unparsable document; state is
		// untouched and the failure is user-visible.
		if errors.Is(err, backup.ErrMalformedDocument) {
			slog.WarnContext(r.Context(), "Backup import rejected",
				applog.FieldError, err,
				applog.FieldComponent, applog.ComponentBackup,
				applog.FieldOperation, applog.OpImport)
			NewHTMXResponse().
				Status(http.StatusUnprocessableEntity).
				TriggerErrorNotification("Could not import file").
				BodyHTML(`<div class="error">Could not import file</div>`).
				Write(w)
			return
		}
		InternalServerError("Error importing backup").Write(w)
		return
	}

	if err := s.ledger.Restore(r.Context(), next); err != nil {
		s.httpLog.LogError(r.Context(), "Failed to restore backup", err,
			applog.ComponentBackup, applog.OpImport, applog.NewFields())
		InternalServerError("Error importing backup").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Backup loaded",
		"menu_items", len(next.Menu),
		"purchases", len(next.Purchases),
		"sales", len(next.Sales),
		applog.FieldComponent, applog.ComponentBackup,
		applog.FieldOperation, applog.OpImport)

	NewHTMXResponse().
		TriggerStateRestored().
		TriggerSuccessNotification("Backup loaded").
		Write(w)
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	if err := s.ledger.ClearAll(r.Context()); err != nil {
		s.httpLog.LogError(r.Context(), "Failed to clear data", err,
			applog.ComponentBackup, applog.OpClear, applog.NewFields())
		InternalServerError("Error clearing data").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "All data cleared",
		applog.FieldComponent, applog.ComponentBackup,
		applog.FieldOperation, applog.OpClear)

	NewHTMXResponse().
		TriggerStateRestored().
		TriggerSuccessNotification("All data cleared on this device").
		Write(w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	biz := core.BusinessProfile{
		Name:     sanitizeInput(r.Form.Get("name")),
		Owner:    sanitizeInput(r.Form.Get("owner")),
		Location: sanitizeInput(r.Form.Get("location")),
	}
	if err := s.ledger.SetProfile(r.Context(), biz); err != nil {
		InternalServerError("Error saving business info").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerSuccessNotification("Business info saved").
		Write(w)
}
