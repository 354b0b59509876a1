package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Manufacturer mirrors the manufacturers table.
type Manufacturer struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null;uniqueIndex:uniq_manufacturers_name"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Manufacturer) TableName() string { return "manufacturers" }

func (manufacturer *Manufacturer) BeforeCreate(tx *gorm.DB) error {
	if manufacturer.ID == "" {
		manufacturer.ID = uuid.NewString()
	}
	return nil
}

// RailwayCompany mirrors the railway_companies table.
type RailwayCompany struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null;uniqueIndex:uniq_railway_companies_name"`
	Abbreviation string    `gorm:""`
	Country      string    `gorm:""`
	CreatedAt    time.Time `gorm:"not null"`
}

func (RailwayCompany) TableName() string { return "railway_companies" }

func (railway *RailwayCompany) BeforeCreate(tx *gorm.DB) error {
	if railway.ID == "" {
		railway.ID = uuid.NewString()
	}
	return nil
}

// RailwayModel mirrors the railway_models table.
type RailwayModel struct {
	ID                 string    `gorm:"type:uuid;primaryKey"`
	ManufacturerID     string    `gorm:"type:uuid;not null;index:idx_railway_models_manufacturer;uniqueIndex:uniq_railway_models_manufacturer_code,priority:1"`
	ProductCode        string    `gorm:"not null;uniqueIndex:uniq_railway_models_manufacturer_code,priority:2"`
	Description        string    `gorm:"not null"`
	Scale              string    `gorm:"not null;index:idx_railway_models_scale"`
	PowerMethod        string    `gorm:"not null"`
	Epoch              string    `gorm:"index:idx_railway_models_epoch"`
	Category           string    `gorm:"not null;index:idx_railway_models_category"`
	DeliveryDate       string    `gorm:""`
	AvailabilityStatus string    `gorm:""`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (RailwayModel) TableName() string { return "railway_models" }

func (model *RailwayModel) BeforeCreate(tx *gorm.DB) error {
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	return nil
}

// RollingStock mirrors the rolling_stocks table.
type RollingStock struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	RailwayModelID string    `gorm:"type:uuid;not null;index:idx_rolling_stocks_model"`
	Category       string    `gorm:"not null"`
	RailwayID      *string   `gorm:"type:uuid;index:idx_rolling_stocks_railway"`
	RoadNumber     string    `gorm:"index:idx_rolling_stocks_road_number"`
	TypeName       string    `gorm:""`
	Series         string    `gorm:""`
	Depot          string    `gorm:""`
	LengthValue    *string   `gorm:""`
	LengthUnit     *string   `gorm:""`
	Livery         string    `gorm:""`
	ServiceLevel   string    `gorm:""`
	Control        string    `gorm:""`
	DCCInterface   string    `gorm:"column:dcc_interface"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (RollingStock) TableName() string { return "rolling_stocks" }

func (stock *RollingStock) BeforeCreate(tx *gorm.DB) error {
	if stock.ID == "" {
		stock.ID = uuid.NewString()
	}
	return nil
}

// Collection mirrors the collections table. Counter columns are the
// derived summary, recomputed inside every item-mutating transaction.
type Collection struct {
	ID                         string    `gorm:"type:uuid;primaryKey"`
	Name                       string    `gorm:"not null"`
	Currency                   string    `gorm:"not null"`
	LocomotivesCount           int64     `gorm:"not null"`
	PassengerCarsCount         int64     `gorm:"not null"`
	FreightCarsCount           int64     `gorm:"not null"`
	TrainSetsCount             int64     `gorm:"not null"`
	RailcarsCount              int64     `gorm:"not null"`
	ElectricMultipleUnitsCount int64     `gorm:"not null"`
	TotalValueAmount           int64     `gorm:"not null"`
	TotalValueCurrency         string    `gorm:"not null"`
	CreatedAt                  time.Time `gorm:"not null"`
	UpdatedAt                  time.Time `gorm:"not null"`
}

func (Collection) TableName() string { return "collections" }

func (collection *Collection) BeforeCreate(tx *gorm.DB) error {
	if collection.ID == "" {
		collection.ID = uuid.NewString()
	}
	return nil
}

// CollectionItem mirrors the collection_items table. RailwayModelID is
// a weak reference and is nulled out when the catalog row goes away.
type CollectionItem struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	CollectionID   string    `gorm:"type:uuid;not null;index:idx_collection_items_collection"`
	RailwayModelID *string   `gorm:"type:uuid;index:idx_collection_items_model"`
	Manufacturer   string    `gorm:"not null;index:idx_collection_items_manufacturer"`
	ProductCode    string    `gorm:"index:idx_collection_items_product_code"`
	Description    string    `gorm:"not null;index:idx_collection_items_description"`
	Conditions     string    `gorm:""`
	PowerMethod    string    `gorm:""`
	Scale          string    `gorm:"index:idx_collection_items_scale"`
	Epoch          string    `gorm:"index:idx_collection_items_epoch"`
	Category       string    `gorm:"not null;index:idx_collection_items_category"`
	Count          int64     `gorm:"not null;default:1"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (CollectionItem) TableName() string { return "collection_items" }

func (item *CollectionItem) BeforeCreate(tx *gorm.DB) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return nil
}

// OwnedRollingStock mirrors the owned_rolling_stocks table.
type OwnedRollingStock struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	CollectionItemID string    `gorm:"type:uuid;not null;index:idx_owned_rolling_stocks_item"`
	RollingStockID   *string   `gorm:"type:uuid;index:idx_owned_rolling_stocks_catalog"`
	Notes            string    `gorm:""`
	RailwayID        *string   `gorm:"type:uuid"`
	Epoch            string    `gorm:""`
	CreatedAt        time.Time `gorm:"not null"`
}

func (OwnedRollingStock) TableName() string { return "owned_rolling_stocks" }

func (owned *OwnedRollingStock) BeforeCreate(tx *gorm.DB) error {
	if owned.ID == "" {
		owned.ID = uuid.NewString()
	}
	return nil
}

// PurchaseInfo mirrors the purchase_infos table. Price columns are
// integer minor units paired with a currency code; both halves are
// null together.
type PurchaseInfo struct {
	ID                     string    `gorm:"type:uuid;primaryKey"`
	CollectionItemID       string    `gorm:"type:uuid;not null;index:idx_purchase_infos_item"`
	PurchaseType           string    `gorm:"not null"`
	PurchaseDate           string    `gorm:"not null"`
	SellerID               string    `gorm:""`
	BuyerID                string    `gorm:""`
	PurchasedPriceAmount   *int64    `gorm:""`
	PurchasedPriceCurrency *string   `gorm:""`
	SalePriceAmount        *int64    `gorm:""`
	SalePriceCurrency      *string   `gorm:""`
	DepositAmount          *int64    `gorm:""`
	DepositCurrency        *string   `gorm:""`
	PreorderTotalAmount    *int64    `gorm:""`
	PreorderTotalCurrency  *string   `gorm:""`
	SaleDate               string    `gorm:""`
	ExpectedDate           string    `gorm:""`
	Current                bool      `gorm:"not null;index:idx_purchase_infos_current"`
	CreatedAt              time.Time `gorm:"not null"`
}

func (PurchaseInfo) TableName() string { return "purchase_infos" }

func (purchase *PurchaseInfo) BeforeCreate(tx *gorm.DB) error {
	if purchase.ID == "" {
		purchase.ID = uuid.NewString()
	}
	return nil
}

// Wishlist mirrors the wishlists table.
type Wishlist struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	Description string    `gorm:""`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Wishlist) TableName() string { return "wishlists" }

func (list *Wishlist) BeforeCreate(tx *gorm.DB) error {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	return nil
}

// WishlistEntry mirrors the wishlist_entries table. Positions form a
// dense zero-based sequence per list after every mutation.
type WishlistEntry struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	WishlistID string    `gorm:"type:uuid;not null;index:idx_wishlist_entries_list"`
	ItemNumber string    `gorm:""`
	Note       string    `gorm:""`
	Priority   string    `gorm:"not null"`
	Position   int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (WishlistEntry) TableName() string { return "wishlist_entries" }

func (entry *WishlistEntry) BeforeCreate(tx *gorm.DB) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return nil
}

// MaintenanceEvent mirrors the maintenance_events table. Rows are
// append-only; next_due is the only column updated after insert.
type MaintenanceEvent struct {
	ID             string         `gorm:"type:uuid;primaryKey"`
	RollingStockID string         `gorm:"type:uuid;not null;index:idx_maintenance_events_stock"`
	Date           string         `gorm:"not null"`
	Description    string         `gorm:"not null"`
	CostAmount     *int64         `gorm:""`
	CostCurrency   *string        `gorm:""`
	PerformedBy    string         `gorm:""`
	NextDue        string         `gorm:""`
	Metadata       datatypes.JSON `gorm:"not null"`
	CreatedAt      time.Time      `gorm:"not null;index:idx_maintenance_events_created"`
}

func (MaintenanceEvent) TableName() string { return "maintenance_events" }

func (event *MaintenanceEvent) BeforeCreate(tx *gorm.DB) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	return nil
}

// SchemaVersion mirrors the schema_versions marker table.
type SchemaVersion struct {
	Version   int       `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaVersion) TableName() string { return "schema_versions" }
