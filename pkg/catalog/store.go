package catalog

import "context"

// Store is the persistence contract used by Service. Delete
// operations cascade to owned rows and null out weak references held
// by collection records in the same transaction.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	InsertManufacturer(ctx context.Context, manufacturer Manufacturer) (Manufacturer, error)
	GetManufacturer(ctx context.Context, manufacturerID string) (Manufacturer, error)
	ListManufacturers(ctx context.Context) ([]Manufacturer, error)
	DeleteManufacturer(ctx context.Context, manufacturerID string) error

	InsertRailway(ctx context.Context, railway Railway) (Railway, error)
	GetRailway(ctx context.Context, railwayID string) (Railway, error)
	ListRailways(ctx context.Context) ([]Railway, error)
	DeleteRailway(ctx context.Context, railwayID string) error

	InsertRailwayModel(ctx context.Context, model RailwayModel) (RailwayModel, error)
	GetRailwayModel(ctx context.Context, modelID string) (RailwayModel, error)
	UpdateRailwayModel(ctx context.Context, model RailwayModel) error
	DeleteRailwayModel(ctx context.Context, modelID string) error

	InsertRollingStock(ctx context.Context, stock RollingStock) (RollingStock, error)
	GetRollingStock(ctx context.Context, stockID string) (RollingStock, error)
	CountRollingStocks(ctx context.Context, modelID string) (int64, error)
	DeleteRollingStock(ctx context.Context, stockID string) error
}
