package collecting

import (
	"fmt"
	"strings"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/catalog"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

// Collection is the single per-user aggregate over all owned items.
// Its Summary counters are derived state, recomputed transactionally
// whenever items change.
type Collection struct {
	ID       string
	Name     string
	Currency values.Currency
	Summary  Summary
}

// Summary carries the denormalized per-category counters and the
// total value of current holdings in the collection currency.
type Summary struct {
	Locomotives           int64
	PassengerCars         int64
	FreightCars           int64
	TrainSets             int64
	Railcars              int64
	ElectricMultipleUnits int64
	TotalValue            values.Price
}

// CollectionItem is an owned unit. The catalog link is a weak
// reference: owners may record items absent from the catalog, and
// deleting the catalog row nulls the link rather than the item.
type CollectionItem struct {
	ID             string
	CollectionID   string
	RailwayModelID string
	Manufacturer   string
	ProductCode    string
	Description    string
	Conditions     string
	PowerMethod    catalog.PowerMethod
	Scale          catalog.Scale
	Epoch          catalog.Epoch
	Category       catalog.Category
	Count          int64
	RollingStocks  []OwnedRollingStock
	Purchases      []PurchaseInfo
}

// CurrentPurchase returns the purchase record representing the current
// holding state, if any.
func (item CollectionItem) CurrentPurchase() (PurchaseInfo, bool) {
	for _, purchase := range item.Purchases {
		if purchase.Current {
			return purchase, true
		}
	}
	return PurchaseInfo{}, false
}

// OwnedRollingStock is the user's record of one physical unit within
// an owned item, optionally linked to a catalog rolling stock.
type OwnedRollingStock struct {
	ID                    string
	ItemID                string
	CatalogRollingStockID string
	Notes                 string
	RailwayID             string
	Epoch                 catalog.Epoch
}

// PurchaseType enumerates how an item entered or left the collection.
type PurchaseType string

const (
	PurchaseBought   PurchaseType = "BOUGHT"
	PurchasePreorder PurchaseType = "PREORDER"
	PurchaseGift     PurchaseType = "GIFT"
	PurchaseSold     PurchaseType = "SOLD"
)

var purchaseTypes = map[PurchaseType]struct{}{
	PurchaseBought:   {},
	PurchasePreorder: {},
	PurchaseGift:     {},
	PurchaseSold:     {},
}

// ParsePurchaseType validates a raw purchase type, case-insensitively.
func ParsePurchaseType(raw string) (PurchaseType, error) {
	candidate := PurchaseType(strings.ToUpper(strings.TrimSpace(raw)))
	if _, known := purchaseTypes[candidate]; !known {
		return "", fmt.Errorf("%w: purchase type %q", ErrValidation, raw)
	}
	return candidate, nil
}

// String returns the canonical purchase type.
func (purchaseType PurchaseType) String() string {
	return string(purchaseType)
}

// PurchaseInfo is one dated record in an item's purchase-and-resale
// lineage. At most one record per item is the current holding state;
// the repository enforces that on write.
type PurchaseInfo struct {
	ID               string
	CollectionItemID string
	PurchaseType     PurchaseType
	PurchaseDate     values.Date
	SellerID         string
	BuyerID          string
	PurchasedPrice   values.Price
	SalePrice        values.Price
	Deposit          values.Price
	PreorderTotal    values.Price
	SaleDate         values.Date
	ExpectedDate     values.Date
	Current          bool
}

// OwnedRollingStockInput describes an owned unit to record.
type OwnedRollingStockInput struct {
	CatalogRollingStockID string
	Notes                 string
	RailwayID             string
	Epoch                 catalog.Epoch
}

// PurchaseInput describes a purchase record to append to an item.
type PurchaseInput struct {
	PurchaseType   PurchaseType
	PurchaseDate   values.Date
	SellerID       string
	BuyerID        string
	PurchasedPrice values.Price
	SalePrice      values.Price
	Deposit        values.Price
	PreorderTotal  values.Price
	SaleDate       values.Date
	ExpectedDate   values.Date
}

// Validate checks the required purchase fields.
func (input PurchaseInput) Validate() error {
	if _, known := purchaseTypes[input.PurchaseType]; !known {
		return fmt.Errorf("%w: purchase type %q", ErrValidation, input.PurchaseType)
	}
	if input.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: purchase date is required", ErrValidation)
	}
	if input.PurchaseType == PurchasePreorder && input.ExpectedDate.IsZero() {
		return fmt.Errorf("%w: preorder requires an expected date", ErrValidation)
	}
	if input.PurchaseType == PurchaseSold && input.SalePrice.IsZero() {
		return fmt.Errorf("%w: sale requires a sale price", ErrValidation)
	}
	return nil
}

// ItemInput describes a composite item create: the item row, its
// owned rolling stocks, and optionally the opening purchase record.
type ItemInput struct {
	RailwayModelID string
	Manufacturer   string
	ProductCode    string
	Description    string
	Conditions     string
	PowerMethod    catalog.PowerMethod
	Scale          catalog.Scale
	Epoch          catalog.Epoch
	Category       catalog.Category
	Count          int64
	RollingStocks  []OwnedRollingStockInput
	Purchase       *PurchaseInput
}

// Validate checks the required item fields. Count defaults to one.
func (input ItemInput) Validate() error {
	if strings.TrimSpace(input.Manufacturer) == "" {
		return fmt.Errorf("%w: manufacturer is required", ErrValidation)
	}
	if strings.TrimSpace(input.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if _, err := catalog.ParseCategory(string(input.Category)); err != nil {
		return fmt.Errorf("%w: category %q", ErrValidation, input.Category)
	}
	if input.Scale != "" {
		if _, err := catalog.ParseScale(string(input.Scale)); err != nil {
			return fmt.Errorf("%w: scale %q", ErrValidation, input.Scale)
		}
	}
	if input.PowerMethod != "" {
		if _, err := catalog.ParsePowerMethod(string(input.PowerMethod)); err != nil {
			return fmt.Errorf("%w: power method %q", ErrValidation, input.PowerMethod)
		}
	}
	if input.Count < 0 {
		return fmt.Errorf("%w: count must not be negative", ErrValidation)
	}
	if input.Purchase != nil {
		if err := input.Purchase.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ItemUpdate carries the mutable fields of a collection item. The item
// id, owning collection, and catalog link are not changed here; the
// catalog link only changes by cataloguing (set) or catalog deletion
// (nulled by cascade handling).
type ItemUpdate struct {
	Manufacturer string
	ProductCode  string
	Description  string
	Conditions   string
	PowerMethod  catalog.PowerMethod
	Scale        catalog.Scale
	Epoch        catalog.Epoch
	Category     catalog.Category
	Count        int64
}

// Validate checks the mutable item fields.
func (update ItemUpdate) Validate() error {
	probe := ItemInput{
		Manufacturer: update.Manufacturer,
		Description:  update.Description,
		PowerMethod:  update.PowerMethod,
		Scale:        update.Scale,
		Epoch:        update.Epoch,
		Category:     update.Category,
		Count:        update.Count,
	}
	return probe.Validate()
}
