package collecting

import (
	"context"
	"fmt"
	"strings"
)

const (
	operationAddItem     = "add_item"
	operationUpdateItem  = "update_item"
	operationRemoveItem  = "remove_item"
	operationAddPurchase = "add_purchase"

	operationStatusOK    = "ok"
	operationStatusError = "error"
)

// Service contains the owned-collection domain logic over a Store.
type Service struct {
	store  Store
	logger OperationLogger
}

// NewService wires a Service.
func NewService(store Store, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrValidation)
	}
	service := &Service{store: store}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// Collection returns the singleton collection aggregate, creating it
// on first use.
func (service *Service) Collection(ctx context.Context) (Collection, error) {
	return service.store.GetOrCreateCollection(ctx)
}

// AddItem writes an item, its owned rolling stocks, and the opening
// purchase record atomically, then recomputes the summary counters in
// the same transaction.
func (service *Service) AddItem(ctx context.Context, input ItemInput) (CollectionItem, error) {
	if err := input.Validate(); err != nil {
		return CollectionItem{}, err
	}
	var created CollectionItem
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		collection, err := transactionStore.GetOrCreateCollection(ctx)
		if err != nil {
			return err
		}
		if input.RailwayModelID != "" {
			if err := requireRailwayModel(ctx, transactionStore, input.RailwayModelID); err != nil {
				return err
			}
		}
		item := CollectionItem{
			CollectionID:   collection.ID,
			RailwayModelID: input.RailwayModelID,
			Manufacturer:   strings.TrimSpace(input.Manufacturer),
			ProductCode:    strings.TrimSpace(input.ProductCode),
			Description:    strings.TrimSpace(input.Description),
			Conditions:     strings.TrimSpace(input.Conditions),
			PowerMethod:    input.PowerMethod,
			Scale:          input.Scale,
			Epoch:          input.Epoch,
			Category:       input.Category,
			Count:          input.Count,
		}
		if item.Count == 0 {
			item.Count = 1
		}
		for _, stockInput := range input.RollingStocks {
			if stockInput.CatalogRollingStockID != "" {
				if err := requireCatalogRollingStock(ctx, transactionStore, stockInput.CatalogRollingStockID); err != nil {
					return err
				}
			}
			item.RollingStocks = append(item.RollingStocks, OwnedRollingStock{
				CatalogRollingStockID: stockInput.CatalogRollingStockID,
				Notes:                 strings.TrimSpace(stockInput.Notes),
				RailwayID:             stockInput.RailwayID,
				Epoch:                 stockInput.Epoch,
			})
		}
		if input.Purchase != nil {
			item.Purchases = append(item.Purchases, purchaseFromInput(*input.Purchase, true))
		}
		inserted, err := transactionStore.InsertItem(ctx, item)
		if err != nil {
			return err
		}
		created = inserted
		return service.refreshSummary(ctx, transactionStore, collection)
	})
	service.logOperation(ctx, OperationLog{Operation: operationAddItem, ItemID: created.ID, Error: operationError})
	return created, operationError
}

// GetItem reads one item with its owned stocks and purchase lineage.
func (service *Service) GetItem(ctx context.Context, itemID string) (CollectionItem, error) {
	return service.store.GetItem(ctx, itemID)
}

// UpdateItem rewrites the mutable fields of an item and recomputes the
// summary. The item id, owning collection, and catalog link stay put.
func (service *Service) UpdateItem(ctx context.Context, itemID string, update ItemUpdate) (CollectionItem, error) {
	if err := update.Validate(); err != nil {
		return CollectionItem{}, err
	}
	var updated CollectionItem
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		item, err := transactionStore.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		item.Manufacturer = strings.TrimSpace(update.Manufacturer)
		item.ProductCode = strings.TrimSpace(update.ProductCode)
		item.Description = strings.TrimSpace(update.Description)
		item.Conditions = strings.TrimSpace(update.Conditions)
		item.PowerMethod = update.PowerMethod
		item.Scale = update.Scale
		item.Epoch = update.Epoch
		item.Category = update.Category
		item.Count = update.Count
		if item.Count == 0 {
			item.Count = 1
		}
		if err := transactionStore.UpdateItem(ctx, item); err != nil {
			return err
		}
		updated = item
		collection, err := transactionStore.GetOrCreateCollection(ctx)
		if err != nil {
			return err
		}
		return service.refreshSummary(ctx, transactionStore, collection)
	})
	service.logOperation(ctx, OperationLog{Operation: operationUpdateItem, ItemID: itemID, Error: operationError})
	return updated, operationError
}

// RemoveItem deletes an item; its owned rolling stocks and purchase
// lineage go with it, and the summary is recomputed.
func (service *Service) RemoveItem(ctx context.Context, itemID string) error {
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetItem(ctx, itemID); err != nil {
			return err
		}
		if err := transactionStore.DeleteItem(ctx, itemID); err != nil {
			return err
		}
		collection, err := transactionStore.GetOrCreateCollection(ctx)
		if err != nil {
			return err
		}
		return service.refreshSummary(ctx, transactionStore, collection)
	})
	service.logOperation(ctx, OperationLog{Operation: operationRemoveItem, ItemID: itemID, Error: operationError})
	return operationError
}

// AddPurchase appends a record to the item's purchase lineage and
// makes it the current holding state, demoting the previous current
// record in the same transaction.
func (service *Service) AddPurchase(ctx context.Context, itemID string, input PurchaseInput) (PurchaseInfo, error) {
	if err := input.Validate(); err != nil {
		return PurchaseInfo{}, err
	}
	var created PurchaseInfo
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetItem(ctx, itemID); err != nil {
			return err
		}
		if err := transactionStore.ClearCurrentPurchase(ctx, itemID); err != nil {
			return err
		}
		purchase := purchaseFromInput(input, true)
		purchase.CollectionItemID = itemID
		inserted, err := transactionStore.InsertPurchase(ctx, purchase)
		if err != nil {
			return err
		}
		created = inserted
		collection, err := transactionStore.GetOrCreateCollection(ctx)
		if err != nil {
			return err
		}
		return service.refreshSummary(ctx, transactionStore, collection)
	})
	service.logOperation(ctx, OperationLog{Operation: operationAddPurchase, ItemID: itemID, Error: operationError})
	return created, operationError
}

// List returns one page of items matching the filter, ordered by
// (description, id) so cursors stay stable across calls.
func (service *Service) List(ctx context.Context, filter Filter, page Page) (ItemPage, error) {
	if err := filter.Validate(); err != nil {
		return ItemPage{}, err
	}
	after, err := DecodeCursor(page.Cursor)
	if err != nil {
		return ItemPage{}, err
	}
	collection, err := service.store.GetOrCreateCollection(ctx)
	if err != nil {
		return ItemPage{}, err
	}
	limit := normalizeLimit(page.Limit)
	items, err := service.store.ListItems(ctx, collection.ID, filter, after, limit+1)
	if err != nil {
		return ItemPage{}, err
	}
	result := ItemPage{Items: items}
	if len(items) > limit {
		result.Items = items[:limit]
		last := result.Items[limit-1]
		result.NextCursor = EncodeCursor(PageKey{Description: last.Description, ID: last.ID})
	}
	return result, nil
}

// Search is a substring match over description and product code.
func (service *Service) Search(ctx context.Context, text string, page Page) (ItemPage, error) {
	return service.List(ctx, Filter{Text: strings.TrimSpace(text)}, page)
}

func (service *Service) refreshSummary(ctx context.Context, transactionStore Store, collection Collection) error {
	summary, err := transactionStore.RecomputeSummary(ctx, collection.ID, collection.Currency.Code())
	if err != nil {
		return err
	}
	return transactionStore.UpdateSummary(ctx, collection.ID, summary)
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}

func purchaseFromInput(input PurchaseInput, current bool) PurchaseInfo {
	return PurchaseInfo{
		PurchaseType:   input.PurchaseType,
		PurchaseDate:   input.PurchaseDate,
		SellerID:       strings.TrimSpace(input.SellerID),
		BuyerID:        strings.TrimSpace(input.BuyerID),
		PurchasedPrice: input.PurchasedPrice,
		SalePrice:      input.SalePrice,
		Deposit:        input.Deposit,
		PreorderTotal:  input.PreorderTotal,
		SaleDate:       input.SaleDate,
		ExpectedDate:   input.ExpectedDate,
		Current:        current,
	}
}

func requireRailwayModel(ctx context.Context, transactionStore Store, modelID string) error {
	exists, err := transactionStore.RailwayModelExists(ctx, modelID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: railway_model %s", ErrNotFound, modelID)
	}
	return nil
}

func requireCatalogRollingStock(ctx context.Context, transactionStore Store, stockID string) error {
	exists, err := transactionStore.CatalogRollingStockExists(ctx, stockID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: rolling_stock %s", ErrNotFound, stockID)
	}
	return nil
}
