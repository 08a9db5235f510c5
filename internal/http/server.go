// Package http provides the web surface of the ledger: HTMX fragments
// rendered from embedded templates, one handler family per tab. It is
// presentation glue; all business behavior lives in core and ledger.
package http

import (
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"ramenledger/internal/ledger"
	applog "ramenledger/internal/log"
	appweb "ramenledger/web"
)

type Server struct {
	http.Server
	templates *template.Template
	ledger    *ledger.Ledger
	httpLog   *applog.StructuredLogger
}

// NewServer configures routes and templates, returning a ready-to-run
// http.Server.
func NewServer(addr string, l *ledger.Ledger) *Server {
	mux := http.NewServeMux()

	httpLogger := applog.New(applog.Config{
		Component: applog.ComponentHTTP,
		Handler:   slog.Default().Handler(),
	})

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		ledger:  l,
		httpLog: applog.NewStructuredLogger(httpLogger),
	}

	// Every request carries a context logger tagged with a request id.
	var handler http.Handler = mux
	handler = applog.RequestIDMiddleware(func(*http.Request) string { return generateRequestID() })(handler)
	handler = applog.Middleware(httpLogger)(handler)
	s.Server.Handler = handler

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Tiny cache for static assets
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)

	// Tab fragments
	mux.HandleFunc("/tabs/menu", s.withSecurityHeaders(s.handleMenuTab))
	mux.HandleFunc("/tabs/purchases", s.withSecurityHeaders(s.handlePurchasesTab))
	mux.HandleFunc("/tabs/sales", s.withSecurityHeaders(s.handleSalesTab))
	mux.HandleFunc("/tabs/report", s.withSecurityHeaders(s.handleReportTab))
	mux.HandleFunc("/tabs/backup", s.withSecurityHeaders(s.handleBackupTab))
	mux.HandleFunc("/tabs/biz", s.withSecurityHeaders(s.handleBizTab))

	// Menu CRUD
	mux.HandleFunc("/menu", s.withSecurityHeaders(s.handleAddMenuItem))
	mux.HandleFunc("/menu/update", s.withSecurityHeaders(s.handleUpdateMenuItem))
	mux.HandleFunc("/menu/delete", s.withSecurityHeaders(s.handleDeleteMenuItem))

	// Purchases and sales (add-only)
	mux.HandleFunc("/purchases", s.withSecurityHeaders(s.handleAddPurchase))
	mux.HandleFunc("/sales", s.withSecurityHeaders(s.handleAddSale))
	mux.HandleFunc("/sales/quick", s.withSecurityHeaders(s.handleQuickSale))

	// Report
	mux.HandleFunc("/report", s.withSecurityHeaders(s.handleReport))

	// Backup
	mux.HandleFunc("/backup/export", s.withSecurityHeaders(s.handleExport))
	mux.HandleFunc("/backup/import", s.withSecurityHeaders(s.handleImport))
	mux.HandleFunc("/clear", s.withSecurityHeaders(s.handleClearAll))

	// Business profile
	mux.HandleFunc("/biz", s.withSecurityHeaders(s.handleUpdateProfile))

	return s
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"pesos": formatPesos,
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// render writes one named template fragment, logging instead of failing
// the response when the template set is incomplete.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", "template", name)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template render failed",
			"template", name,
			applog.FieldError, err)
	}
}

// withSecurityHeaders applies conservative headers plus request logging.
// The app serves a single local user, so there is no proxy awareness and
// no rate limiting to configure.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.httpLog.LogHTTPEnd(r.Context(), r, rec.status, time.Since(start).Milliseconds(), r.RemoteAddr)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
