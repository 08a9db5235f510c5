// Package ledger holds the application state: the business profile and
// the menu, purchase, and sale collections. One Ledger owns all four and
// mirrors every mutation to the persistent store as a whole-collection
// save.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"ramenledger/internal/backup"
	"ramenledger/internal/core"
	applog "ramenledger/internal/log"
	"ramenledger/internal/storage"
)

// ErrMenuItemNotFound is returned by update and delete for an unknown id.
var ErrMenuItemNotFound = errors.New("menu item not found")

// MenuItemPatch mutates a menu item in place. Nil fields are left alone.
// Patches are deliberately not re-validated: price invariants hold at
// creation time only.
type MenuItemPatch struct {
	Name  *string
	Price *core.Money
}

// Ledger is the single owner of the four persisted collections. Access is
// serialized with a mutex; accessors hand out copies.
type Ledger struct {
	mu    sync.Mutex
	store storage.Store

	biz       core.BusinessProfile
	menu      []core.MenuItem
	purchases []core.Purchase
	sales     []core.Sale
}

// Open loads the collections from the store. A missing or unparsable blob
// falls back to the seed value silently (a warning is logged, nothing is
// surfaced to the user): routine startup never blocks on bad local data.
func Open(ctx context.Context, store storage.Store) *Ledger {
	return &Ledger{
		store:     store,
		biz:       loadBlob(ctx, store, storage.KeyBusiness, seedProfile()),
		menu:      loadBlob(ctx, store, storage.KeyMenu, seedMenu()),
		purchases: loadBlob(ctx, store, storage.KeyPurchases, []core.Purchase{}),
		sales:     loadBlob(ctx, store, storage.KeySales, []core.Sale{}),
	}
}

func seedProfile() core.BusinessProfile {
	return core.BusinessProfile{
		Name:     "Ramen Naijiro",
		Owner:    "Mom",
		Location: "Santiago, Philippines",
	}
}

func seedMenu() []core.MenuItem {
	return []core.MenuItem{
		{ID: uuid.NewString(), Name: "Classic Ramen", Price: core.Money{Cents: 12000}},
	}
}

// AddMenuItem appends a new item; menu order is display order. The caller
// validates, the collection accepts any record.
func (l *Ledger) AddMenuItem(ctx context.Context, name string, price core.Money) (core.MenuItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := core.MenuItem{ID: uuid.NewString(), Name: name, Price: price}
	l.menu = append(l.menu, item)
	return item, l.saveMenu(ctx)
}

// UpdateMenuItem patches an item in place by id. The id itself is
// immutable.
func (l *Ledger) UpdateMenuItem(ctx context.Context, id string, patch MenuItemPatch) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.menu {
		if l.menu[i].ID != id {
			continue
		}
		if patch.Name != nil {
			l.menu[i].Name = *patch.Name
		}
		if patch.Price != nil {
			l.menu[i].Price = *patch.Price
		}
		return l.saveMenu(ctx)
	}
	return ErrMenuItemNotFound
}

// DeleteMenuItem removes an item. Sales referencing it keep their dangling
// product id; the reference is resolved to price zero at read time.
func (l *Ledger) DeleteMenuItem(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.menu {
		if l.menu[i].ID == id {
			l.menu = append(l.menu[:i], l.menu[i+1:]...)
			return l.saveMenu(ctx)
		}
	}
	return ErrMenuItemNotFound
}

// AddPurchase prepends a purchase (most recent first), assigning a fresh
// id. A zero date defaults to today.
func (l *Ledger) AddPurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p.ID = uuid.NewString()
	if p.Date.IsZero() {
		p.Date = core.Today()
	}
	l.purchases = append([]core.Purchase{p}, l.purchases...)
	return p, l.savePurchases(ctx)
}

// AddSale prepends a sale (most recent first), assigning a fresh id. A
// zero date defaults to today.
func (l *Ledger) AddSale(ctx context.Context, s core.Sale) (core.Sale, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.ID = uuid.NewString()
	if s.Date.IsZero() {
		s.Date = core.Today()
	}
	l.sales = append([]core.Sale{s}, l.sales...)
	return s, l.saveSales(ctx)
}

// QuickSale records one unit of a product sold today, the one-tap path.
func (l *Ledger) QuickSale(ctx context.Context, productID string) (core.Sale, error) {
	return l.AddSale(ctx, core.Sale{Date: core.Today(), ProductID: productID, Qty: 1})
}

// Profile returns the business profile.
func (l *Ledger) Profile() core.BusinessProfile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.biz
}

// SetProfile replaces the business profile.
func (l *Ledger) SetProfile(ctx context.Context, biz core.BusinessProfile) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.biz = biz
	return l.saveBiz(ctx)
}

// Menu returns a copy of the menu in display order.
func (l *Ledger) Menu() []core.MenuItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.MenuItem(nil), l.menu...)
}

// Purchases returns a copy of the purchases, most recent first.
func (l *Ledger) Purchases() []core.Purchase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Purchase(nil), l.purchases...)
}

// Sales returns a copy of the sales, most recent first.
func (l *Ledger) Sales() []core.Sale {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Sale(nil), l.sales...)
}

// MenuLookup indexes the current menu by id for revenue resolution.
func (l *Ledger) MenuLookup() core.MenuLookup {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.NewMenuLookup(l.menu)
}

// Report derives the filtered, aggregated view for a date range from the
// current collections.
func (l *Ledger) Report(r core.DateRange) core.Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.BuildReport(l.purchases, l.sales, core.NewMenuLookup(l.menu), r)
}

// Snapshot copies the full state for the backup codec.
func (l *Ledger) Snapshot() backup.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return backup.Snapshot{
		Biz:       l.biz,
		Menu:      append([]core.MenuItem(nil), l.menu...),
		Purchases: append([]core.Purchase(nil), l.purchases...),
		Sales:     append([]core.Sale(nil), l.sales...),
	}
}

// Restore replaces the full state from an imported snapshot and re-saves
// every collection.
func (l *Ledger) Restore(ctx context.Context, s backup.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.biz = s.Biz
	l.menu = append([]core.MenuItem(nil), s.Menu...)
	l.purchases = append([]core.Purchase(nil), s.Purchases...)
	l.sales = append([]core.Sale(nil), s.Sales...)
	return l.saveAll(ctx)
}

// ClearAll empties the three collections. The business profile stays.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.menu = []core.MenuItem{}
	l.purchases = []core.Purchase{}
	l.sales = []core.Sale{}
	return l.saveAll(ctx)
}

// Saves mirror the in-memory state wholesale. The mutation is already
// applied when a save fails: the error is reported, not rolled back.

func (l *Ledger) saveMenu(ctx context.Context) error {
	return saveBlob(ctx, l.store, storage.KeyMenu, l.menu)
}

func (l *Ledger) savePurchases(ctx context.Context) error {
	return saveBlob(ctx, l.store, storage.KeyPurchases, l.purchases)
}

func (l *Ledger) saveSales(ctx context.Context) error {
	return saveBlob(ctx, l.store, storage.KeySales, l.sales)
}

func (l *Ledger) saveBiz(ctx context.Context) error {
	return saveBlob(ctx, l.store, storage.KeyBusiness, l.biz)
}

func (l *Ledger) saveAll(ctx context.Context) error {
	for _, save := range []func(context.Context) error{
		l.saveBiz, l.saveMenu, l.savePurchases, l.saveSales,
	} {
		if err := save(ctx); err != nil {
			return err
		}
	}
	return nil
}

func loadBlob[T any](ctx context.Context, store storage.Store, key string, fallback T) T {
	raw, found, err := store.Load(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Blob load failed, using fallback",
			applog.FieldKey, key,
			applog.FieldError, err,
			applog.FieldComponent, applog.ComponentLedger)
		return fallback
	}
	if !found {
		return fallback
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		slog.WarnContext(ctx, "Blob parse failed, using fallback",
			applog.FieldKey, key,
			applog.FieldError, err,
			applog.FieldComponent, applog.ComponentLedger)
		return fallback
	}
	return value
}

func saveBlob[T any](ctx context.Context, store storage.Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Save(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
