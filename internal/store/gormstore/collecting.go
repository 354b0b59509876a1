package gormstore

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/catalog"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/collecting"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

const (
	defaultCollectionName     = "My Collection"
	defaultCollectionCurrency = "EUR"
)

// CollectingStore implements collecting.Store using GORM.
type CollectingStore struct {
	db *gorm.DB
}

// NewCollectingStore returns a CollectingStore backed by gorm.DB.
func NewCollectingStore(db *gorm.DB) *CollectingStore {
	return &CollectingStore{db: db}
}

// WithTx executes fn within a transaction.
func (store *CollectingStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore collecting.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &CollectingStore{db: transaction})
	})
}

// GetOrCreateCollection returns the singleton collection row, creating
// it with defaults on first use.
func (store *CollectingStore) GetOrCreateCollection(ctx context.Context) (collecting.Collection, error) {
	var row Collection
	err := store.db.WithContext(ctx).Order("created_at asc").Limit(1).Find(&row).Error
	if err != nil {
		return collecting.Collection{}, wrapStoreError(errorSubjectCollection, errorCodeGet, err)
	}
	if row.ID == "" {
		now := time.Now().UTC()
		row = Collection{
			Name:               defaultCollectionName,
			Currency:           defaultCollectionCurrency,
			TotalValueCurrency: defaultCollectionCurrency,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
			return collecting.Collection{}, wrapStoreError(errorSubjectCollection, errorCodeInsert, err)
		}
	}
	return mapCollection(row)
}

func (store *CollectingStore) UpdateSummary(ctx context.Context, collectionID string, summary collecting.Summary) error {
	totalAmount := int64(0)
	totalCurrency := defaultCollectionCurrency
	if !summary.TotalValue.IsZero() {
		totalAmount = summary.TotalValue.AmountMinorUnits()
		totalCurrency = summary.TotalValue.Currency().Code()
	}
	result := store.db.WithContext(ctx).
		Model(&Collection{}).
		Where("id = ?", collectionID).
		Updates(map[string]interface{}{
			"locomotives_count":             summary.Locomotives,
			"passenger_cars_count":          summary.PassengerCars,
			"freight_cars_count":            summary.FreightCars,
			"train_sets_count":              summary.TrainSets,
			"railcars_count":                summary.Railcars,
			"electric_multiple_units_count": summary.ElectricMultipleUnits,
			"total_value_amount":            totalAmount,
			"total_value_currency":          totalCurrency,
			"updated_at":                    time.Now().UTC(),
		})
	if result.Error != nil {
		return wrapStoreError(errorSubjectCollection, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectCollection, errorCodeUpdate, collecting.ErrNotFound)
	}
	return nil
}

// RecomputeSummary aggregates per-category counts over all items and
// the total purchase value of current non-sold holdings recorded in
// the collection currency. Purchases in other currencies are left out
// of the total rather than converted.
func (store *CollectingStore) RecomputeSummary(ctx context.Context, collectionID string, currency string) (collecting.Summary, error) {
	var countRows []struct {
		Category string
		Total    int64
	}
	err := store.db.WithContext(ctx).
		Model(&CollectionItem{}).
		Select("category, coalesce(sum(count),0) as total").
		Where("collection_id = ?", collectionID).
		Group("category").
		Scan(&countRows).Error
	if err != nil {
		return collecting.Summary{}, wrapStoreError(errorSubjectCollection, errorCodeSummary, err)
	}
	summary := collecting.Summary{}
	for _, countRow := range countRows {
		switch catalog.Category(countRow.Category) {
		case catalog.CategoryLocomotive:
			summary.Locomotives = countRow.Total
		case catalog.CategoryPassengerCar:
			summary.PassengerCars = countRow.Total
		case catalog.CategoryFreightCar:
			summary.FreightCars = countRow.Total
		case catalog.CategoryTrainSet:
			summary.TrainSets = countRow.Total
		case catalog.CategoryRailcar:
			summary.Railcars = countRow.Total
		case catalog.CategoryElectricMultipleUnit:
			summary.ElectricMultipleUnits = countRow.Total
		}
	}
	var sum struct{ Total int64 }
	err = store.db.WithContext(ctx).
		Model(&PurchaseInfo{}).
		Select("coalesce(sum(purchase_infos.purchased_price_amount),0) as total").
		Joins("JOIN collection_items ON collection_items.id = purchase_infos.collection_item_id").
		Where("collection_items.collection_id = ?", collectionID).
		Where("purchase_infos.current = ?", true).
		Where("purchase_infos.purchase_type <> ?", collecting.PurchaseSold.String()).
		Where("purchase_infos.purchased_price_currency = ?", currency).
		Scan(&sum).Error
	if err != nil {
		return collecting.Summary{}, wrapStoreError(errorSubjectCollection, errorCodeSummary, err)
	}
	totalValue, err := values.NewPrice(sum.Total, currency)
	if err != nil {
		return collecting.Summary{}, wrapStoreError(errorSubjectCollection, errorCodeInvalid, err)
	}
	summary.TotalValue = totalValue
	return summary, nil
}

func (store *CollectingStore) InsertItem(ctx context.Context, item collecting.CollectionItem) (collecting.CollectionItem, error) {
	now := time.Now().UTC()
	row := CollectionItem{
		ID:             item.ID,
		CollectionID:   item.CollectionID,
		RailwayModelID: stringOrNil(item.RailwayModelID),
		Manufacturer:   item.Manufacturer,
		ProductCode:    item.ProductCode,
		Description:    item.Description,
		Conditions:     item.Conditions,
		PowerMethod:    item.PowerMethod.String(),
		Scale:          item.Scale.String(),
		Epoch:          item.Epoch.String(),
		Category:       item.Category.String(),
		Count:          item.Count,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return collecting.CollectionItem{}, wrapStoreError(errorSubjectItem, errorCodeInsert, err)
	}
	for _, ownedStock := range item.RollingStocks {
		ownedRow := OwnedRollingStock{
			ID:               ownedStock.ID,
			CollectionItemID: row.ID,
			RollingStockID:   stringOrNil(ownedStock.CatalogRollingStockID),
			Notes:            ownedStock.Notes,
			RailwayID:        stringOrNil(ownedStock.RailwayID),
			Epoch:            ownedStock.Epoch.String(),
			CreatedAt:        now,
		}
		if err := store.db.WithContext(ctx).Create(&ownedRow).Error; err != nil {
			return collecting.CollectionItem{}, wrapStoreError(errorSubjectOwnedStock, errorCodeInsert, err)
		}
	}
	for _, purchase := range item.Purchases {
		purchase.CollectionItemID = row.ID
		if _, err := store.InsertPurchase(ctx, purchase); err != nil {
			return collecting.CollectionItem{}, err
		}
	}
	return store.GetItem(ctx, row.ID)
}

func (store *CollectingStore) GetItem(ctx context.Context, itemID string) (collecting.CollectionItem, error) {
	var row CollectionItem
	err := store.db.WithContext(ctx).Where("id = ?", itemID).Take(&row).Error
	if isNotFound(err) {
		return collecting.CollectionItem{}, wrapStoreError(errorSubjectItem, errorCodeGet, collecting.ErrNotFound)
	}
	if err != nil {
		return collecting.CollectionItem{}, wrapStoreError(errorSubjectItem, errorCodeGet, err)
	}
	item, err := mapCollectionItem(row)
	if err != nil {
		return collecting.CollectionItem{}, wrapStoreError(errorSubjectItem, errorCodeInvalid, err)
	}

	var ownedRows []OwnedRollingStock
	err = store.db.WithContext(ctx).
		Where("collection_item_id = ?", itemID).
		Order("created_at asc, id asc").
		Find(&ownedRows).Error
	if err != nil {
		return collecting.CollectionItem{}, wrapStoreError(errorSubjectOwnedStock, errorCodeList, err)
	}
	for _, ownedRow := range ownedRows {
		ownedStock, err := mapOwnedRollingStock(ownedRow)
		if err != nil {
			return collecting.CollectionItem{}, wrapStoreError(errorSubjectOwnedStock, errorCodeInvalid, err)
		}
		item.RollingStocks = append(item.RollingStocks, ownedStock)
	}

	var purchaseRows []PurchaseInfo
	err = store.db.WithContext(ctx).
		Where("collection_item_id = ?", itemID).
		Order("purchase_date asc, created_at asc").
		Find(&purchaseRows).Error
	if err != nil {
		return collecting.CollectionItem{}, wrapStoreError(errorSubjectPurchase, errorCodeList, err)
	}
	for _, purchaseRow := range purchaseRows {
		purchase, err := mapPurchaseInfo(purchaseRow)
		if err != nil {
			return collecting.CollectionItem{}, wrapStoreError(errorSubjectPurchase, errorCodeInvalid, err)
		}
		item.Purchases = append(item.Purchases, purchase)
	}
	return item, nil
}

func (store *CollectingStore) UpdateItem(ctx context.Context, item collecting.CollectionItem) error {
	result := store.db.WithContext(ctx).
		Model(&CollectionItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"manufacturer": item.Manufacturer,
			"product_code": item.ProductCode,
			"description":  item.Description,
			"conditions":   item.Conditions,
			"power_method": item.PowerMethod.String(),
			"scale":        item.Scale.String(),
			"epoch":        item.Epoch.String(),
			"category":     item.Category.String(),
			"count":        item.Count,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return wrapStoreError(errorSubjectItem, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectItem, errorCodeUpdate, collecting.ErrNotFound)
	}
	return nil
}

// DeleteItem removes an item together with its owned rolling stocks,
// their maintenance history, and the purchase lineage.
func (store *CollectingStore) DeleteItem(ctx context.Context, itemID string) error {
	ownedIDs := store.db.Model(&OwnedRollingStock{}).Select("id").Where("collection_item_id = ?", itemID)
	err := store.db.WithContext(ctx).
		Where("rolling_stock_id IN (?)", ownedIDs).
		Delete(&MaintenanceEvent{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectItem, errorCodeCascade, err)
	}
	err = store.db.WithContext(ctx).Where("collection_item_id = ?", itemID).Delete(&OwnedRollingStock{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectItem, errorCodeCascade, err)
	}
	err = store.db.WithContext(ctx).Where("collection_item_id = ?", itemID).Delete(&PurchaseInfo{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectItem, errorCodeCascade, err)
	}
	err = store.db.WithContext(ctx).Where("id = ?", itemID).Delete(&CollectionItem{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectItem, errorCodeDelete, err)
	}
	return nil
}

// ListItems returns one keyset window ordered by (description, id).
// Brand, scale, epoch, and category hit item columns directly; livery,
// depot, road number, and DCC capability resolve through the linked
// catalog rolling stocks.
func (store *CollectingStore) ListItems(ctx context.Context, collectionID string, filter collecting.Filter, after collecting.PageKey, limit int) ([]collecting.CollectionItem, error) {
	query := store.db.WithContext(ctx).
		Model(&CollectionItem{}).
		Where("collection_id = ?", collectionID)
	if filter.Brand != "" {
		query = query.Where("manufacturer = ?", filter.Brand)
	}
	if filter.Scale != "" {
		query = query.Where("scale = ?", filter.Scale.String())
	}
	if filter.Epoch != "" {
		query = query.Where("epoch = ?", filter.Epoch)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category.String())
	}
	if filter.Text != "" {
		pattern := "%" + strings.ToLower(filter.Text) + "%"
		query = query.Where("lower(description) LIKE ? OR lower(product_code) LIKE ?", pattern, pattern)
	}
	if filter.RoadNumber != "" {
		query = query.Where("EXISTS (?)", store.linkedStockQuery().
			Where("rolling_stocks.road_number = ?", filter.RoadNumber))
	}
	if filter.Livery != "" {
		query = query.Where("EXISTS (?)", store.linkedStockQuery().
			Where("rolling_stocks.livery = ?", filter.Livery))
	}
	if filter.Depot != "" {
		query = query.Where("EXISTS (?)", store.linkedStockQuery().
			Where("rolling_stocks.depot = ?", filter.Depot))
	}
	if filter.DCCCapable != nil {
		withDecoder := store.linkedStockQuery().
			Where("rolling_stocks.control IN ?", []string{
				catalog.ControlDCCFitted.String(),
				catalog.ControlDCCSound.String(),
			})
		if *filter.DCCCapable {
			query = query.Where("EXISTS (?)", withDecoder)
		} else {
			query = query.Where("NOT EXISTS (?)", withDecoder)
		}
	}
	if !after.IsZero() {
		query = query.Where("(description > ? OR (description = ? AND id > ?))", after.Description, after.Description, after.ID)
	}

	var rows []CollectionItem
	err := query.Order("description asc, id asc").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectItem, errorCodeList, err)
	}
	items := make([]collecting.CollectionItem, 0, len(rows))
	for _, row := range rows {
		item, err := mapCollectionItem(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectItem, errorCodeInvalid, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// linkedStockQuery is the owned-to-catalog join correlated with the
// outer collection_items row.
func (store *CollectingStore) linkedStockQuery() *gorm.DB {
	return store.db.Model(&OwnedRollingStock{}).
		Select("1").
		Joins("JOIN rolling_stocks ON rolling_stocks.id = owned_rolling_stocks.rolling_stock_id").
		Where("owned_rolling_stocks.collection_item_id = collection_items.id")
}

func (store *CollectingStore) InsertPurchase(ctx context.Context, purchase collecting.PurchaseInfo) (collecting.PurchaseInfo, error) {
	purchasedAmount, purchasedCurrency := priceColumns(purchase.PurchasedPrice)
	saleAmount, saleCurrency := priceColumns(purchase.SalePrice)
	depositAmount, depositCurrency := priceColumns(purchase.Deposit)
	preorderAmount, preorderCurrency := priceColumns(purchase.PreorderTotal)
	row := PurchaseInfo{
		ID:                     purchase.ID,
		CollectionItemID:       purchase.CollectionItemID,
		PurchaseType:           purchase.PurchaseType.String(),
		PurchaseDate:           dateColumn(purchase.PurchaseDate),
		SellerID:               purchase.SellerID,
		BuyerID:                purchase.BuyerID,
		PurchasedPriceAmount:   purchasedAmount,
		PurchasedPriceCurrency: purchasedCurrency,
		SalePriceAmount:        saleAmount,
		SalePriceCurrency:      saleCurrency,
		DepositAmount:          depositAmount,
		DepositCurrency:        depositCurrency,
		PreorderTotalAmount:    preorderAmount,
		PreorderTotalCurrency:  preorderCurrency,
		SaleDate:               dateColumn(purchase.SaleDate),
		ExpectedDate:           dateColumn(purchase.ExpectedDate),
		Current:                purchase.Current,
		CreatedAt:              time.Now().UTC(),
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return collecting.PurchaseInfo{}, wrapStoreError(errorSubjectPurchase, errorCodeInsert, err)
	}
	inserted, err := mapPurchaseInfo(row)
	if err != nil {
		return collecting.PurchaseInfo{}, wrapStoreError(errorSubjectPurchase, errorCodeInvalid, err)
	}
	return inserted, nil
}

func (store *CollectingStore) ClearCurrentPurchase(ctx context.Context, itemID string) error {
	err := store.db.WithContext(ctx).
		Model(&PurchaseInfo{}).
		Where("collection_item_id = ? AND current = ?", itemID, true).
		Update("current", false).Error
	if err != nil {
		return wrapStoreError(errorSubjectPurchase, errorCodeUpdate, err)
	}
	return nil
}

func (store *CollectingStore) RailwayModelExists(ctx context.Context, modelID string) (bool, error) {
	var count int64
	err := store.db.WithContext(ctx).
		Model(&RailwayModel{}).
		Where("id = ?", modelID).
		Count(&count).Error
	if err != nil {
		return false, wrapStoreError(errorSubjectRailwayModel, errorCodeLookup, err)
	}
	return count > 0, nil
}

func (store *CollectingStore) CatalogRollingStockExists(ctx context.Context, stockID string) (bool, error) {
	var count int64
	err := store.db.WithContext(ctx).
		Model(&RollingStock{}).
		Where("id = ?", stockID).
		Count(&count).Error
	if err != nil {
		return false, wrapStoreError(errorSubjectRollingStock, errorCodeLookup, err)
	}
	return count > 0, nil
}

func mapCollection(row Collection) (collecting.Collection, error) {
	currency, err := values.NewCurrency(row.Currency)
	if err != nil {
		return collecting.Collection{}, wrapStoreError(errorSubjectCollection, errorCodeInvalid, err)
	}
	totalValue, err := values.NewPrice(row.TotalValueAmount, row.TotalValueCurrency)
	if err != nil {
		return collecting.Collection{}, wrapStoreError(errorSubjectCollection, errorCodeInvalid, err)
	}
	return collecting.Collection{
		ID:       row.ID,
		Name:     row.Name,
		Currency: currency,
		Summary: collecting.Summary{
			Locomotives:           row.LocomotivesCount,
			PassengerCars:         row.PassengerCarsCount,
			FreightCars:           row.FreightCarsCount,
			TrainSets:             row.TrainSetsCount,
			Railcars:              row.RailcarsCount,
			ElectricMultipleUnits: row.ElectricMultipleUnitsCount,
			TotalValue:            totalValue,
		},
	}, nil
}

func mapCollectionItem(row CollectionItem) (collecting.CollectionItem, error) {
	category, err := catalog.ParseCategory(row.Category)
	if err != nil {
		return collecting.CollectionItem{}, err
	}
	item := collecting.CollectionItem{
		ID:             row.ID,
		CollectionID:   row.CollectionID,
		RailwayModelID: derefString(row.RailwayModelID),
		Manufacturer:   row.Manufacturer,
		ProductCode:    row.ProductCode,
		Description:    row.Description,
		Conditions:     row.Conditions,
		Category:       category,
		Count:          row.Count,
	}
	if row.PowerMethod != "" {
		item.PowerMethod, err = catalog.ParsePowerMethod(row.PowerMethod)
		if err != nil {
			return collecting.CollectionItem{}, err
		}
	}
	if row.Scale != "" {
		item.Scale, err = catalog.ParseScale(row.Scale)
		if err != nil {
			return collecting.CollectionItem{}, err
		}
	}
	if row.Epoch != "" {
		item.Epoch, err = catalog.ParseEpoch(row.Epoch)
		if err != nil {
			return collecting.CollectionItem{}, err
		}
	}
	return item, nil
}

func mapOwnedRollingStock(row OwnedRollingStock) (collecting.OwnedRollingStock, error) {
	ownedStock := collecting.OwnedRollingStock{
		ID:                    row.ID,
		ItemID:                row.CollectionItemID,
		CatalogRollingStockID: derefString(row.RollingStockID),
		Notes:                 row.Notes,
		RailwayID:             derefString(row.RailwayID),
	}
	if row.Epoch != "" {
		epoch, err := catalog.ParseEpoch(row.Epoch)
		if err != nil {
			return collecting.OwnedRollingStock{}, err
		}
		ownedStock.Epoch = epoch
	}
	return ownedStock, nil
}

func mapPurchaseInfo(row PurchaseInfo) (collecting.PurchaseInfo, error) {
	purchaseType, err := collecting.ParsePurchaseType(row.PurchaseType)
	if err != nil {
		return collecting.PurchaseInfo{}, err
	}
	purchaseDate, err := dateFromColumn(row.PurchaseDate)
	if err != nil {
		return collecting.PurchaseInfo{}, err
	}
	saleDate, err := dateFromColumn(row.SaleDate)
	if err != nil {
		return collecting.PurchaseInfo{}, err
	}
	expectedDate, err := dateFromColumn(row.ExpectedDate)
	if err != nil {
		return collecting.PurchaseInfo{}, err
	}
	purchasedPrice, err := priceFromColumns(row.PurchasedPriceAmount, row.PurchasedPriceCurrency)
	if err != nil {
		return collecting.PurchaseInfo{}, err
	}
	salePrice, err := priceFromColumns(row.SalePriceAmount, row.SalePriceCurrency)
	if err != nil {
		return collecting.PurchaseInfo{}, err
	}
	deposit, err := priceFromColumns(row.DepositAmount, row.DepositCurrency)
	if err != nil {
		return collecting.PurchaseInfo{}, err
	}
	preorderTotal, err := priceFromColumns(row.PreorderTotalAmount, row.PreorderTotalCurrency)
	if err != nil {
		return collecting.PurchaseInfo{}, err
	}
	return collecting.PurchaseInfo{
		ID:               row.ID,
		CollectionItemID: row.CollectionItemID,
		PurchaseType:     purchaseType,
		PurchaseDate:     purchaseDate,
		SellerID:         row.SellerID,
		BuyerID:          row.BuyerID,
		PurchasedPrice:   purchasedPrice,
		SalePrice:        salePrice,
		Deposit:          deposit,
		PreorderTotal:    preorderTotal,
		SaleDate:         saleDate,
		ExpectedDate:     expectedDate,
		Current:          row.Current,
	}, nil
}
