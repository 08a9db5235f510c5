package http

import (
	"log/slog"
	"net/http"
	"strings"

	"ramenledger/internal/core"
	applog "ramenledger/internal/log"
)

// handleReport renders the report fragment for the requested range. The
// view is re-derived from the current collections on every request; there
// is no cached state that could go stale.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	rng, err := parseDateRange(r)
	if err != nil {
		UnprocessableEntityError("Enter a valid date range").Write(w)
		return
	}

	report := s.ledger.Report(rng)

	slog.DebugContext(r.Context(), "Report derived",
		applog.FieldRangeStart, rng.Start.String(),
		applog.FieldRangeEnd, rng.End.String(),
		applog.FieldGroupByDay, rng.GroupByDay,
		applog.FieldComponent, applog.ComponentReport,
		applog.FieldOperation, applog.OpReport)

	s.render(w, r, "report.html", buildReportView(report, s.ledger.MenuLookup(), rng))
}

// parseDateRange extracts the range from query parameters, defaulting to
// today through today, grouped by day.
func parseDateRange(r *http.Request) (core.DateRange, error) {
	today := core.Today()
	rng := core.DateRange{Start: today, End: today, GroupByDay: true}

	query := r.URL.Query()
	if v := strings.TrimSpace(query.Get("start")); v != "" {
		start, err := core.ParseDate(v)
		if err != nil {
			return core.DateRange{}, err
		}
		rng.Start = start
	}
	if v := strings.TrimSpace(query.Get("end")); v != "" {
		end, err := core.ParseDate(v)
		if err != nil {
			return core.DateRange{}, err
		}
		rng.End = end
	}
	// The form pairs a hidden "0" with the checkbox, so an unchecked box
	// still submits the parameter. The checkbox value arrives last when
	// checked, so the last value decides.
	if vs := query["group_by_day"]; len(vs) > 0 {
		v := strings.TrimSpace(vs[len(vs)-1])
		rng.GroupByDay = v == "on" || v == "true" || v == "1"
	}

	return rng, nil
}
