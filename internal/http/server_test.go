package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"ramenledger/internal/core"
	"ramenledger/internal/ledger"
	"ramenledger/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *ledger.Ledger) {
	t.Helper()
	l := ledger.Open(context.Background(), storage.NewMemoryStore())
	return NewServer(":0", l), l
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := get(t, srv, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "ok" {
		t.Errorf("body = %q, want %q", rr.Body.String(), "ok")
	}
}

func TestIndexUnknownPath(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := get(t, srv, "/nope")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestMenuTabShowsSeededItem(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := get(t, srv, "/tabs/menu")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Classic Ramen") {
		t.Errorf("menu tab missing seeded item:\n%s", rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "₱120.00") {
		t.Errorf("menu tab missing formatted seed price")
	}
}

func TestAddMenuItem(t *testing.T) {
	srv, l := newTestServer(t)
	rr := postForm(t, srv, "/menu", url.Values{
		"name":  {"Shoyu Ramen"},
		"price": {"150"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "menu:changed") {
		t.Errorf("HX-Trigger = %q, want menu:changed", trigger)
	}
	if !strings.Contains(trigger, "form:reset") {
		t.Errorf("HX-Trigger = %q, want form:reset", trigger)
	}

	menu := l.Menu()
	if len(menu) != 2 {
		t.Fatalf("menu has %d items, want 2", len(menu))
	}
	added := menu[1] // new items append after the seed
	if added.Name != "Shoyu Ramen" || added.Price.Cents != 15000 {
		t.Errorf("added item = %+v", added)
	}
}

func TestAddMenuItemValidation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"empty name", url.Values{"name": {"   "}, "price": {"100"}}},
		{"missing price", url.Values{"name": {"Gyoza"}}},
		{"zero price", url.Values{"name": {"Gyoza"}, "price": {"0"}}},
		{"garbage price", url.Values{"name": {"Gyoza"}, "price": {"abc"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, l := newTestServer(t)
			rr := postForm(t, srv, "/menu", tt.form)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rr.Code)
			}
			if len(l.Menu()) != 1 {
				t.Errorf("menu grew on invalid input")
			}
		})
	}
}

func TestUpdateMenuItemNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := postForm(t, srv, "/menu/update", url.Values{
		"id":   {"does-not-exist"},
		"name": {"Whatever"},
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestDeleteMenuItemKeepsSales(t *testing.T) {
	srv, l := newTestServer(t)
	seed := l.Menu()[0]
	if _, err := l.QuickSale(context.Background(), seed.ID); err != nil {
		t.Fatal(err)
	}

	rr := postForm(t, srv, "/menu/delete", url.Values{"id": {seed.ID}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if len(l.Menu()) != 0 {
		t.Errorf("menu not empty after delete")
	}
	if len(l.Sales()) != 1 {
		t.Errorf("sale referencing deleted item was removed")
	}

	// The sales tab shows the dangling reference as a deleted item.
	tab := get(t, srv, "/tabs/sales")
	if !strings.Contains(tab.Body.String(), "Deleted item") {
		t.Errorf("sales tab does not mark dangling reference")
	}
}

func TestAddPurchaseAutoTotal(t *testing.T) {
	srv, l := newTestServer(t)
	// Blank total derives from qty and unit.
	rr := postForm(t, srv, "/purchases", url.Values{
		"date": {"2024-06-01"},
		"item": {"Noodles"},
		"qty":  {"2"},
		"unit": {"45"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	purchases := l.Purchases()
	if len(purchases) != 1 {
		t.Fatalf("purchases = %d, want 1", len(purchases))
	}
	if purchases[0].Total.Cents != 9000 {
		t.Errorf("total = %d cents, want 9000", purchases[0].Total.Cents)
	}
}

func TestAddPurchaseManualTotalWins(t *testing.T) {
	srv, l := newTestServer(t)
	// An entered total is kept even when qty and unit could derive one.
	rr := postForm(t, srv, "/purchases", url.Values{
		"date":  {"2024-06-01"},
		"item":  {"Noodles"},
		"qty":   {"2"},
		"unit":  {"45"},
		"total": {"100"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	purchases := l.Purchases()
	if len(purchases) != 1 {
		t.Fatalf("purchases = %d, want 1", len(purchases))
	}
	if purchases[0].Total.Cents != 10000 {
		t.Errorf("total = %d cents, want 10000 (manual entry)", purchases[0].Total.Cents)
	}
}

func TestAddPurchaseRequiresTotal(t *testing.T) {
	srv, _ := newTestServer(t)
	// No total and nothing to derive it from.
	rr := postForm(t, srv, "/purchases", url.Values{
		"item": {"Charcoal"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestAddSaleInvalidQty(t *testing.T) {
	srv, l := newTestServer(t)
	seed := l.Menu()[0]
	rr := postForm(t, srv, "/sales", url.Values{
		"product_id": {seed.ID},
		"qty":        {"0"},
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestQuickSale(t *testing.T) {
	srv, l := newTestServer(t)
	seed := l.Menu()[0]
	rr := postForm(t, srv, "/sales/quick", url.Values{"product_id": {seed.ID}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "sale:recorded") {
		t.Errorf("HX-Trigger = %q, want sale:recorded", trigger)
	}
	if !strings.Contains(trigger, "+1 Classic Ramen") {
		t.Errorf("HX-Trigger = %q, want +1 notification", trigger)
	}

	sales := l.Sales()
	if len(sales) != 1 || sales[0].Qty != 1 {
		t.Fatalf("sales = %+v", sales)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv, l := newTestServer(t)
	seed := l.Menu()[0]
	if _, err := l.QuickSale(context.Background(), seed.ID); err != nil {
		t.Fatal(err)
	}

	rr := get(t, srv, "/report?group_by_day=0")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "₱120.00") {
		t.Errorf("report missing revenue:\n%s", rr.Body.String())
	}
}

func TestReportGroupingFromCheckbox(t *testing.T) {
	srv, l := newTestServer(t)
	seed := l.Menu()[0]
	for _, day := range []core.Date{core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 2)} {
		if _, err := l.AddSale(context.Background(), core.Sale{Date: day, ProductID: seed.ID, Qty: 1}); err != nil {
			t.Fatal(err)
		}
	}
	const query = "start=2024-06-01&end=2024-06-02"

	// Unchecked checkbox: only the hidden fallback value arrives, so the
	// report renders one bucket with no per-day headers.
	rr := get(t, srv, "/report?"+query+"&group_by_day=0")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "<h4>2024-06-01</h4>") ||
		strings.Contains(rr.Body.String(), "<h4>2024-06-02</h4>") {
		t.Errorf("ungrouped report still renders per-day headers:\n%s", rr.Body.String())
	}
	if got := strings.Count(rr.Body.String(), "Subtotal"); got != 1 {
		t.Errorf("ungrouped report has %d buckets, want 1", got)
	}

	// Checked checkbox: the hidden value and the checkbox value both
	// arrive; the checkbox wins and buckets appear per day.
	rr = get(t, srv, "/report?"+query+"&group_by_day=0&group_by_day=on")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<h4>2024-06-01</h4>") {
		t.Errorf("grouped report missing per-day header:\n%s", rr.Body.String())
	}
}

func TestReportFormCanDisableGrouping(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := get(t, srv, "/tabs/report")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	// Without the hidden fallback an unchecked checkbox submits nothing
	// and grouping can never be turned off from the form.
	if !strings.Contains(rr.Body.String(), `<input type="hidden" name="group_by_day" value="0">`) {
		t.Errorf("report form missing hidden grouping fallback:\n%s", rr.Body.String())
	}
}

func TestTabFragmentsRefreshOnChange(t *testing.T) {
	tests := []struct {
		path      string
		listeners []string
	}{
		{"/tabs/menu", []string{"menu:changed from:body"}},
		{"/tabs/purchases", []string{"purchase:saved from:body"}},
		{"/tabs/sales", []string{"sale:recorded from:body", "menu:changed from:body"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rr := get(t, srv, tt.path)
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			for _, listener := range tt.listeners {
				if !strings.Contains(rr.Body.String(), listener) {
					t.Errorf("%s fragment does not re-fetch on %q", tt.path, listener)
				}
			}
		})
	}
}

func TestReportRejectsBadDates(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := get(t, srv, "/report?start=junk")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestReportMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := postForm(t, srv, "/report", url.Values{})
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
	if rr.Header().Get("Allow") != http.MethodGet {
		t.Errorf("Allow = %q, want GET", rr.Header().Get("Allow"))
	}
}

func TestExportFilenameAndShape(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := get(t, srv, "/backup/export")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	disposition := rr.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "ramen-ledger-backup-") {
		t.Errorf("Content-Disposition = %q", disposition)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	for _, key := range []string{"biz", "menu", "purchases", "sales"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("export missing %q field", key)
		}
	}
}

func importBackup(t *testing.T, srv *Server, doc string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "backup.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/backup/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestImportPartialBackup(t *testing.T) {
	srv, l := newTestServer(t)
	seed := l.Menu()[0]
	if _, err := l.QuickSale(context.Background(), seed.ID); err != nil {
		t.Fatal(err)
	}

	// Only the menu field is present; sales survive untouched.
	rr := importBackup(t, srv, `{"menu":[{"id":"m1","name":"Tonkotsu","price":180}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "state:restored") {
		t.Errorf("HX-Trigger = %q, want state:restored", rr.Header().Get("HX-Trigger"))
	}

	menu := l.Menu()
	if len(menu) != 1 || menu[0].Name != "Tonkotsu" || menu[0].Price.Cents != 18000 {
		t.Errorf("menu after import = %+v", menu)
	}
	if len(l.Sales()) != 1 {
		t.Errorf("sales were not preserved across partial import")
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	srv, l := newTestServer(t)
	before := l.Menu()

	rr := importBackup(t, srv, `this is not json`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	if len(l.Menu()) != len(before) {
		t.Errorf("state changed on rejected import")
	}
}

func TestClearAllKeepsProfile(t *testing.T) {
	srv, l := newTestServer(t)
	rr := postForm(t, srv, "/clear", url.Values{})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if len(l.Menu()) != 0 {
		t.Errorf("menu not cleared")
	}
	if l.Profile().Name == "" {
		t.Errorf("business profile was cleared")
	}
}

func TestUpdateProfile(t *testing.T) {
	srv, l := newTestServer(t)
	rr := postForm(t, srv, "/biz", url.Values{
		"name":     {"Naijiro's"},
		"owner":    {"Santiago"},
		"location": {"Cebu"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	biz := l.Profile()
	if biz.Name != "Naijiro's" || biz.Owner != "Santiago" || biz.Location != "Cebu" {
		t.Errorf("profile = %+v", biz)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := get(t, srv, "/tabs/menu")
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
