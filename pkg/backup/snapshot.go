package backup

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors returned by the exporter.
var (
	ErrRestore = errors.New("restore failed")
	ErrExport  = errors.New("export failed")
)

// FormatVersion identifies the snapshot document layout itself,
// independent of the schema version the rows were produced under.
const FormatVersion = 1

// Snapshot is the self-describing full-store document. Rows are kept
// in wire form (validated strings and integer minor units) so a
// snapshot survives domain-type changes between releases.
type Snapshot struct {
	FormatVersion     int   `json:"format_version"`
	SchemaVersion     int   `json:"schema_version"`
	ExportedAtUnixUTC int64 `json:"exported_at_unix_utc"`

	Manufacturers      []ManufacturerRecord      `json:"manufacturers"`
	Railways           []RailwayRecord           `json:"railways"`
	RailwayModels      []RailwayModelRecord      `json:"railway_models"`
	RollingStocks      []RollingStockRecord      `json:"rolling_stocks"`
	Collections        []CollectionRecord        `json:"collections"`
	CollectionItems    []CollectionItemRecord    `json:"collection_items"`
	OwnedRollingStocks []OwnedRollingStockRecord `json:"owned_rolling_stocks"`
	PurchaseInfos      []PurchaseInfoRecord      `json:"purchase_infos"`
	Wishlists          []WishlistRecord          `json:"wishlists"`
	WishlistEntries    []WishlistEntryRecord     `json:"wishlist_entries"`
	MaintenanceEvents  []MaintenanceEventRecord  `json:"maintenance_events"`
}

// ManufacturerRecord mirrors the manufacturers table.
type ManufacturerRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RailwayRecord mirrors the railway_companies table.
type RailwayRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Country      string `json:"country,omitempty"`
}

// RailwayModelRecord mirrors the railway_models table.
type RailwayModelRecord struct {
	ID             string `json:"id"`
	ManufacturerID string `json:"manufacturer_id"`
	ProductCode    string `json:"product_code"`
	Description    string `json:"description"`
	Scale          string `json:"scale"`
	PowerMethod    string `json:"power_method"`
	Epoch          string `json:"epoch,omitempty"`
	Category       string `json:"category"`
	DeliveryDate   string `json:"delivery_date,omitempty"`
	Availability   string `json:"availability_status,omitempty"`
}

// RollingStockRecord mirrors the rolling_stocks table.
type RollingStockRecord struct {
	ID             string `json:"id"`
	RailwayModelID string `json:"railway_model_id"`
	Category       string `json:"category"`
	RailwayID      string `json:"railway_id,omitempty"`
	RoadNumber     string `json:"road_number,omitempty"`
	TypeName       string `json:"type_name,omitempty"`
	Series         string `json:"series,omitempty"`
	Depot          string `json:"depot,omitempty"`
	LengthValue    string `json:"length_value,omitempty"`
	LengthUnit     string `json:"length_unit,omitempty"`
	Livery         string `json:"livery,omitempty"`
	ServiceLevel   string `json:"service_level,omitempty"`
	Control        string `json:"control,omitempty"`
	DCCInterface   string `json:"dcc_interface,omitempty"`
}

// CollectionRecord mirrors the collections table.
type CollectionRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// CollectionItemRecord mirrors the collection_items table.
type CollectionItemRecord struct {
	ID             string `json:"id"`
	CollectionID   string `json:"collection_id"`
	RailwayModelID string `json:"railway_model_id,omitempty"`
	Manufacturer   string `json:"manufacturer"`
	ProductCode    string `json:"product_code,omitempty"`
	Description    string `json:"description"`
	Conditions     string `json:"conditions,omitempty"`
	PowerMethod    string `json:"power_method,omitempty"`
	Scale          string `json:"scale,omitempty"`
	Epoch          string `json:"epoch,omitempty"`
	Category       string `json:"category"`
	Count          int64  `json:"count"`
}

// OwnedRollingStockRecord mirrors the owned_rolling_stocks table.
type OwnedRollingStockRecord struct {
	ID                    string `json:"id"`
	ItemID                string `json:"collection_item_id"`
	CatalogRollingStockID string `json:"rolling_stock_id,omitempty"`
	Notes                 string `json:"notes,omitempty"`
	RailwayID             string `json:"railway_id,omitempty"`
	Epoch                 string `json:"epoch,omitempty"`
}

// PurchaseInfoRecord mirrors the purchase_infos table. Prices are
// integer minor units paired with a currency code.
type PurchaseInfoRecord struct {
	ID                      string `json:"id"`
	CollectionItemID        string `json:"collection_item_id"`
	PurchaseType            string `json:"purchase_type"`
	PurchaseDate            string `json:"purchase_date"`
	SellerID                string `json:"seller_id,omitempty"`
	BuyerID                 string `json:"buyer_id,omitempty"`
	PurchasedPriceAmount    *int64 `json:"purchased_price_amount,omitempty"`
	PurchasedPriceCurrency  string `json:"purchased_price_currency,omitempty"`
	SalePriceAmount         *int64 `json:"sale_price_amount,omitempty"`
	SalePriceCurrency       string `json:"sale_price_currency,omitempty"`
	DepositAmount           *int64 `json:"deposit_amount,omitempty"`
	DepositCurrency         string `json:"deposit_currency,omitempty"`
	PreorderTotalAmount     *int64 `json:"preorder_total_amount,omitempty"`
	PreorderTotalCurrency   string `json:"preorder_total_currency,omitempty"`
	SaleDate                string `json:"sale_date,omitempty"`
	ExpectedDate            string `json:"expected_date,omitempty"`
	Current                 bool   `json:"current"`
}

// WishlistRecord mirrors the wishlists table.
type WishlistRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// WishlistEntryRecord mirrors the wishlist_entries table.
type WishlistEntryRecord struct {
	ID         string `json:"id"`
	WishlistID string `json:"wishlist_id"`
	ItemNumber string `json:"item_number,omitempty"`
	Note       string `json:"note,omitempty"`
	Priority   string `json:"priority"`
	Position   int    `json:"position"`
}

// MaintenanceEventRecord mirrors the maintenance_events table.
type MaintenanceEventRecord struct {
	ID             string `json:"id"`
	RollingStockID string `json:"rolling_stock_id"`
	Date           string `json:"date"`
	Description    string `json:"description"`
	CostAmount     *int64 `json:"cost_amount,omitempty"`
	CostCurrency   string `json:"cost_currency,omitempty"`
	PerformedBy    string `json:"performed_by,omitempty"`
	NextDue        string `json:"next_due,omitempty"`
	MetadataJSON   string `json:"metadata,omitempty"`
	CreatedUnixUTC int64  `json:"created_unix_utc"`
}

// Encode serializes a snapshot to its canonical JSON document.
func Encode(snapshot Snapshot) ([]byte, error) {
	document, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	return document, nil
}

// Decode parses a snapshot document.
func Decode(document []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(document, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("%w: malformed document: %v", ErrRestore, err)
	}
	if snapshot.FormatVersion == 0 {
		return Snapshot{}, fmt.Errorf("%w: missing format version", ErrRestore)
	}
	if snapshot.FormatVersion > FormatVersion {
		return Snapshot{}, fmt.Errorf("%w: format version %d is newer than supported %d", ErrRestore, snapshot.FormatVersion, FormatVersion)
	}
	return snapshot, nil
}
