package collecting

import "context"

// Store is the persistence contract used by Service.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	// GetOrCreateCollection returns the singleton collection aggregate,
	// creating it on first use.
	GetOrCreateCollection(ctx context.Context) (Collection, error)
	UpdateSummary(ctx context.Context, collectionID string, summary Summary) error
	// RecomputeSummary aggregates counters and total value over current
	// holdings inside the calling transaction.
	RecomputeSummary(ctx context.Context, collectionID string, currency string) (Summary, error)

	InsertItem(ctx context.Context, item CollectionItem) (CollectionItem, error)
	GetItem(ctx context.Context, itemID string) (CollectionItem, error)
	UpdateItem(ctx context.Context, item CollectionItem) error
	DeleteItem(ctx context.Context, itemID string) error
	ListItems(ctx context.Context, collectionID string, filter Filter, after PageKey, limit int) ([]CollectionItem, error)

	InsertPurchase(ctx context.Context, purchase PurchaseInfo) (PurchaseInfo, error)
	// ClearCurrentPurchase demotes any current purchase record of the
	// item so a newly inserted record can take the flag.
	ClearCurrentPurchase(ctx context.Context, itemID string) error

	// Weak-reference resolution against the catalog tables.
	RailwayModelExists(ctx context.Context, modelID string) (bool, error)
	CatalogRollingStockExists(ctx context.Context, stockID string) (bool, error)
}
