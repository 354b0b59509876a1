package backup

import (
	"fmt"
	"sort"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/catalog"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/collecting"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

// validateSnapshot re-runs every boundary validation over a decoded
// snapshot: enum dictionaries, currency codes, referential integrity,
// the one-stock-per-model minimum, the one-current-purchase rule, and
// dense wishlist positions. A snapshot that fails here is rejected
// before any row touches the store.
func validateSnapshot(snapshot Snapshot) error {
	manufacturerIDs := make(map[string]struct{}, len(snapshot.Manufacturers))
	for _, manufacturer := range snapshot.Manufacturers {
		if manufacturer.ID == "" || manufacturer.Name == "" {
			return fmt.Errorf("%w: manufacturer row missing id or name", ErrRestore)
		}
		manufacturerIDs[manufacturer.ID] = struct{}{}
	}
	railwayIDs := make(map[string]struct{}, len(snapshot.Railways))
	for _, railway := range snapshot.Railways {
		if railway.ID == "" || railway.Name == "" {
			return fmt.Errorf("%w: railway row missing id or name", ErrRestore)
		}
		railwayIDs[railway.ID] = struct{}{}
	}

	modelIDs := make(map[string]struct{}, len(snapshot.RailwayModels))
	for _, model := range snapshot.RailwayModels {
		if model.ID == "" {
			return fmt.Errorf("%w: railway model row missing id", ErrRestore)
		}
		if _, known := manufacturerIDs[model.ManufacturerID]; !known {
			return fmt.Errorf("%w: railway model %s references unknown manufacturer %s", ErrRestore, model.ID, model.ManufacturerID)
		}
		if _, err := catalog.ParseScale(model.Scale); err != nil {
			return fmt.Errorf("%w: railway model %s: %v", ErrRestore, model.ID, err)
		}
		if _, err := catalog.ParseCategory(model.Category); err != nil {
			return fmt.Errorf("%w: railway model %s: %v", ErrRestore, model.ID, err)
		}
		if _, err := catalog.ParsePowerMethod(model.PowerMethod); err != nil {
			return fmt.Errorf("%w: railway model %s: %v", ErrRestore, model.ID, err)
		}
		if model.Epoch != "" {
			if _, err := catalog.ParseEpoch(model.Epoch); err != nil {
				return fmt.Errorf("%w: railway model %s: %v", ErrRestore, model.ID, err)
			}
		}
		if model.DeliveryDate != "" {
			if _, err := values.NewDeliveryDate(model.DeliveryDate); err != nil {
				return fmt.Errorf("%w: railway model %s: %v", ErrRestore, model.ID, err)
			}
		}
		modelIDs[model.ID] = struct{}{}
	}

	stocksPerModel := make(map[string]int, len(snapshot.RailwayModels))
	stockIDs := make(map[string]struct{}, len(snapshot.RollingStocks))
	for _, stock := range snapshot.RollingStocks {
		if stock.ID == "" {
			return fmt.Errorf("%w: rolling stock row missing id", ErrRestore)
		}
		if _, known := modelIDs[stock.RailwayModelID]; !known {
			return fmt.Errorf("%w: rolling stock %s references unknown model %s", ErrRestore, stock.ID, stock.RailwayModelID)
		}
		if stock.RailwayID != "" {
			if _, known := railwayIDs[stock.RailwayID]; !known {
				return fmt.Errorf("%w: rolling stock %s references unknown railway %s", ErrRestore, stock.ID, stock.RailwayID)
			}
		}
		if _, err := catalog.ParseCategory(stock.Category); err != nil {
			return fmt.Errorf("%w: rolling stock %s: %v", ErrRestore, stock.ID, err)
		}
		if stock.Control != "" {
			if _, err := catalog.ParseControl(stock.Control); err != nil {
				return fmt.Errorf("%w: rolling stock %s: %v", ErrRestore, stock.ID, err)
			}
		}
		if stock.LengthValue != "" {
			if _, err := values.MeasureFromString(stock.LengthValue, stock.LengthUnit); err != nil {
				return fmt.Errorf("%w: rolling stock %s: %v", ErrRestore, stock.ID, err)
			}
		}
		stocksPerModel[stock.RailwayModelID]++
		stockIDs[stock.ID] = struct{}{}
	}
	for modelID := range modelIDs {
		if stocksPerModel[modelID] == 0 {
			return fmt.Errorf("%w: railway model %s has no rolling stock", ErrRestore, modelID)
		}
	}

	collectionIDs := make(map[string]struct{}, len(snapshot.Collections))
	for _, collection := range snapshot.Collections {
		if collection.ID == "" {
			return fmt.Errorf("%w: collection row missing id", ErrRestore)
		}
		if _, err := values.NewCurrency(collection.Currency); err != nil {
			return fmt.Errorf("%w: collection %s: %v", ErrRestore, collection.ID, err)
		}
		collectionIDs[collection.ID] = struct{}{}
	}

	itemIDs := make(map[string]struct{}, len(snapshot.CollectionItems))
	for _, item := range snapshot.CollectionItems {
		if item.ID == "" {
			return fmt.Errorf("%w: collection item row missing id", ErrRestore)
		}
		if _, known := collectionIDs[item.CollectionID]; !known {
			return fmt.Errorf("%w: item %s references unknown collection %s", ErrRestore, item.ID, item.CollectionID)
		}
		if item.RailwayModelID != "" {
			if _, known := modelIDs[item.RailwayModelID]; !known {
				return fmt.Errorf("%w: item %s references unknown model %s", ErrRestore, item.ID, item.RailwayModelID)
			}
		}
		if _, err := catalog.ParseCategory(item.Category); err != nil {
			return fmt.Errorf("%w: item %s: %v", ErrRestore, item.ID, err)
		}
		if item.Count < 0 {
			return fmt.Errorf("%w: item %s has negative count", ErrRestore, item.ID)
		}
		itemIDs[item.ID] = struct{}{}
	}

	ownedIDs := make(map[string]struct{}, len(snapshot.OwnedRollingStocks))
	for _, owned := range snapshot.OwnedRollingStocks {
		if owned.ID == "" {
			return fmt.Errorf("%w: owned rolling stock row missing id", ErrRestore)
		}
		if _, known := itemIDs[owned.ItemID]; !known {
			return fmt.Errorf("%w: owned stock %s references unknown item %s", ErrRestore, owned.ID, owned.ItemID)
		}
		if owned.CatalogRollingStockID != "" {
			if _, known := stockIDs[owned.CatalogRollingStockID]; !known {
				return fmt.Errorf("%w: owned stock %s references unknown catalog stock %s", ErrRestore, owned.ID, owned.CatalogRollingStockID)
			}
		}
		ownedIDs[owned.ID] = struct{}{}
	}

	currentPerItem := make(map[string]int)
	for _, purchase := range snapshot.PurchaseInfos {
		if purchase.ID == "" {
			return fmt.Errorf("%w: purchase row missing id", ErrRestore)
		}
		if _, known := itemIDs[purchase.CollectionItemID]; !known {
			return fmt.Errorf("%w: purchase %s references unknown item %s", ErrRestore, purchase.ID, purchase.CollectionItemID)
		}
		if _, err := collecting.ParsePurchaseType(purchase.PurchaseType); err != nil {
			return fmt.Errorf("%w: purchase %s: %v", ErrRestore, purchase.ID, err)
		}
		if _, err := values.NewDate(purchase.PurchaseDate); err != nil {
			return fmt.Errorf("%w: purchase %s: %v", ErrRestore, purchase.ID, err)
		}
		for _, pair := range []struct {
			amount   *int64
			currency string
		}{
			{purchase.PurchasedPriceAmount, purchase.PurchasedPriceCurrency},
			{purchase.SalePriceAmount, purchase.SalePriceCurrency},
			{purchase.DepositAmount, purchase.DepositCurrency},
			{purchase.PreorderTotalAmount, purchase.PreorderTotalCurrency},
		} {
			if pair.amount == nil {
				continue
			}
			if _, err := values.NewPrice(*pair.amount, pair.currency); err != nil {
				return fmt.Errorf("%w: purchase %s: %v", ErrRestore, purchase.ID, err)
			}
		}
		if purchase.Current {
			currentPerItem[purchase.CollectionItemID]++
		}
	}
	for itemID, currentCount := range currentPerItem {
		if currentCount > 1 {
			return fmt.Errorf("%w: item %s has %d current purchase records", ErrRestore, itemID, currentCount)
		}
	}

	wishlistIDs := make(map[string]struct{}, len(snapshot.Wishlists))
	for _, list := range snapshot.Wishlists {
		if list.ID == "" || list.Name == "" {
			return fmt.Errorf("%w: wishlist row missing id or name", ErrRestore)
		}
		wishlistIDs[list.ID] = struct{}{}
	}
	positionsPerList := make(map[string][]int)
	for _, entry := range snapshot.WishlistEntries {
		if entry.ID == "" {
			return fmt.Errorf("%w: wishlist entry row missing id", ErrRestore)
		}
		if _, known := wishlistIDs[entry.WishlistID]; !known {
			return fmt.Errorf("%w: entry %s references unknown wishlist %s", ErrRestore, entry.ID, entry.WishlistID)
		}
		positionsPerList[entry.WishlistID] = append(positionsPerList[entry.WishlistID], entry.Position)
	}
	for wishlistID, positions := range positionsPerList {
		sort.Ints(positions)
		for index, position := range positions {
			if position != index {
				return fmt.Errorf("%w: wishlist %s positions are not dense", ErrRestore, wishlistID)
			}
		}
	}

	for _, event := range snapshot.MaintenanceEvents {
		if event.ID == "" {
			return fmt.Errorf("%w: maintenance event row missing id", ErrRestore)
		}
		if _, known := ownedIDs[event.RollingStockID]; !known {
			return fmt.Errorf("%w: maintenance event %s references unknown owned stock %s", ErrRestore, event.ID, event.RollingStockID)
		}
		if _, err := values.NewDate(event.Date); err != nil {
			return fmt.Errorf("%w: maintenance event %s: %v", ErrRestore, event.ID, err)
		}
		if event.CostAmount != nil {
			if _, err := values.NewPrice(*event.CostAmount, event.CostCurrency); err != nil {
				return fmt.Errorf("%w: maintenance event %s: %v", ErrRestore, event.ID, err)
			}
		}
	}
	return nil
}
