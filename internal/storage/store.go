// Package storage persists the ledger's collections as whole-collection
// JSON blobs under fixed keys. The keys match the layout the application
// has always used, so existing data survives backend changes.
package storage

import "context"

// Fixed blob keys, one per collection plus the business profile.
const (
	KeyMenu      = "rn_menu"
	KeyPurchases = "rn_purchases"
	KeySales     = "rn_sales"
	KeyBusiness  = "rn_business"
)

// Store is a key-value blob store. Load reports found=false for a key
// that was never saved; Save replaces any prior value wholesale.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
	Save(ctx context.Context, key string, value []byte) error
}
