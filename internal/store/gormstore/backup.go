package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/backup"
)

// BackupStore implements backup.Store using GORM. Export reads the
// whole database in one transaction; ReplaceAll swaps the contents
// atomically and leaves the prior rows untouched on any failure.
type BackupStore struct {
	db *gorm.DB
}

// NewBackupStore returns a BackupStore backed by gorm.DB.
func NewBackupStore(db *gorm.DB) *BackupStore {
	return &BackupStore{db: db}
}

func (store *BackupStore) SchemaVersion(ctx context.Context) (int, error) {
	return CurrentSchemaVersion(ctx, store.db)
}

func (store *BackupStore) ExportAll(ctx context.Context) (backup.Snapshot, error) {
	var snapshot backup.Snapshot
	err := store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := CurrentSchemaVersion(ctx, tx)
		if err != nil {
			return err
		}
		snapshot.SchemaVersion = version

		var manufacturers []Manufacturer
		if err := tx.Order("name asc").Find(&manufacturers).Error; err != nil {
			return err
		}
		for _, row := range manufacturers {
			snapshot.Manufacturers = append(snapshot.Manufacturers, backup.ManufacturerRecord{ID: row.ID, Name: row.Name})
		}

		var railways []RailwayCompany
		if err := tx.Order("name asc").Find(&railways).Error; err != nil {
			return err
		}
		for _, row := range railways {
			snapshot.Railways = append(snapshot.Railways, backup.RailwayRecord{
				ID:           row.ID,
				Name:         row.Name,
				Abbreviation: row.Abbreviation,
				Country:      row.Country,
			})
		}

		var models []RailwayModel
		if err := tx.Order("created_at asc, id asc").Find(&models).Error; err != nil {
			return err
		}
		for _, row := range models {
			snapshot.RailwayModels = append(snapshot.RailwayModels, backup.RailwayModelRecord{
				ID:             row.ID,
				ManufacturerID: row.ManufacturerID,
				ProductCode:    row.ProductCode,
				Description:    row.Description,
				Scale:          row.Scale,
				PowerMethod:    row.PowerMethod,
				Epoch:          row.Epoch,
				Category:       row.Category,
				DeliveryDate:   row.DeliveryDate,
				Availability:   row.AvailabilityStatus,
			})
		}

		var stocks []RollingStock
		if err := tx.Order("created_at asc, id asc").Find(&stocks).Error; err != nil {
			return err
		}
		for _, row := range stocks {
			snapshot.RollingStocks = append(snapshot.RollingStocks, backup.RollingStockRecord{
				ID:             row.ID,
				RailwayModelID: row.RailwayModelID,
				Category:       row.Category,
				RailwayID:      derefString(row.RailwayID),
				RoadNumber:     row.RoadNumber,
				TypeName:       row.TypeName,
				Series:         row.Series,
				Depot:          row.Depot,
				LengthValue:    derefString(row.LengthValue),
				LengthUnit:     derefString(row.LengthUnit),
				Livery:         row.Livery,
				ServiceLevel:   row.ServiceLevel,
				Control:        row.Control,
				DCCInterface:   row.DCCInterface,
			})
		}

		var collections []Collection
		if err := tx.Order("created_at asc").Find(&collections).Error; err != nil {
			return err
		}
		for _, row := range collections {
			snapshot.Collections = append(snapshot.Collections, backup.CollectionRecord{
				ID:       row.ID,
				Name:     row.Name,
				Currency: row.Currency,
			})
		}

		var items []CollectionItem
		if err := tx.Order("created_at asc, id asc").Find(&items).Error; err != nil {
			return err
		}
		for _, row := range items {
			snapshot.CollectionItems = append(snapshot.CollectionItems, backup.CollectionItemRecord{
				ID:             row.ID,
				CollectionID:   row.CollectionID,
				RailwayModelID: derefString(row.RailwayModelID),
				Manufacturer:   row.Manufacturer,
				ProductCode:    row.ProductCode,
				Description:    row.Description,
				Conditions:     row.Conditions,
				PowerMethod:    row.PowerMethod,
				Scale:          row.Scale,
				Epoch:          row.Epoch,
				Category:       row.Category,
				Count:          row.Count,
			})
		}

		var ownedStocks []OwnedRollingStock
		if err := tx.Order("created_at asc, id asc").Find(&ownedStocks).Error; err != nil {
			return err
		}
		for _, row := range ownedStocks {
			snapshot.OwnedRollingStocks = append(snapshot.OwnedRollingStocks, backup.OwnedRollingStockRecord{
				ID:                    row.ID,
				ItemID:                row.CollectionItemID,
				CatalogRollingStockID: derefString(row.RollingStockID),
				Notes:                 row.Notes,
				RailwayID:             derefString(row.RailwayID),
				Epoch:                 row.Epoch,
			})
		}

		var purchases []PurchaseInfo
		if err := tx.Order("created_at asc, id asc").Find(&purchases).Error; err != nil {
			return err
		}
		for _, row := range purchases {
			snapshot.PurchaseInfos = append(snapshot.PurchaseInfos, backup.PurchaseInfoRecord{
				ID:                     row.ID,
				CollectionItemID:       row.CollectionItemID,
				PurchaseType:           row.PurchaseType,
				PurchaseDate:           row.PurchaseDate,
				SellerID:               row.SellerID,
				BuyerID:                row.BuyerID,
				PurchasedPriceAmount:   row.PurchasedPriceAmount,
				PurchasedPriceCurrency: derefString(row.PurchasedPriceCurrency),
				SalePriceAmount:        row.SalePriceAmount,
				SalePriceCurrency:      derefString(row.SalePriceCurrency),
				DepositAmount:          row.DepositAmount,
				DepositCurrency:        derefString(row.DepositCurrency),
				PreorderTotalAmount:    row.PreorderTotalAmount,
				PreorderTotalCurrency:  derefString(row.PreorderTotalCurrency),
				SaleDate:               row.SaleDate,
				ExpectedDate:           row.ExpectedDate,
				Current:                row.Current,
			})
		}

		var wishlists []Wishlist
		if err := tx.Order("created_at asc, id asc").Find(&wishlists).Error; err != nil {
			return err
		}
		for _, row := range wishlists {
			snapshot.Wishlists = append(snapshot.Wishlists, backup.WishlistRecord{
				ID:          row.ID,
				Name:        row.Name,
				Description: row.Description,
			})
		}

		var entries []WishlistEntry
		if err := tx.Order("wishlist_id asc, position asc").Find(&entries).Error; err != nil {
			return err
		}
		for _, row := range entries {
			snapshot.WishlistEntries = append(snapshot.WishlistEntries, backup.WishlistEntryRecord{
				ID:         row.ID,
				WishlistID: row.WishlistID,
				ItemNumber: row.ItemNumber,
				Note:       row.Note,
				Priority:   row.Priority,
				Position:   row.Position,
			})
		}

		var events []MaintenanceEvent
		if err := tx.Order("created_at asc, id asc").Find(&events).Error; err != nil {
			return err
		}
		for _, row := range events {
			snapshot.MaintenanceEvents = append(snapshot.MaintenanceEvents, backup.MaintenanceEventRecord{
				ID:             row.ID,
				RollingStockID: row.RollingStockID,
				Date:           row.Date,
				Description:    row.Description,
				CostAmount:     row.CostAmount,
				CostCurrency:   derefString(row.CostCurrency),
				PerformedBy:    row.PerformedBy,
				NextDue:        row.NextDue,
				MetadataJSON:   string(row.Metadata),
				CreatedUnixUTC: row.CreatedAt.Unix(),
			})
		}
		return nil
	})
	if err != nil {
		return backup.Snapshot{}, wrapStoreError(errorSubjectSnapshot, errorCodeList, err)
	}
	return snapshot, nil
}

// ReplaceAll swaps the database contents for the snapshot rows in one
// transaction, children removed first, parents inserted first. Summary
// counters are recomputed from the restored rows rather than trusted
// from the document.
func (store *BackupStore) ReplaceAll(ctx context.Context, snapshot backup.Snapshot) error {
	err := store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		emptyAll := []interface{}{
			&MaintenanceEvent{},
			&PurchaseInfo{},
			&OwnedRollingStock{},
			&WishlistEntry{},
			&Wishlist{},
			&CollectionItem{},
			&Collection{},
			&RollingStock{},
			&RailwayModel{},
			&RailwayCompany{},
			&Manufacturer{},
		}
		for _, model := range emptyAll {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for _, record := range snapshot.Manufacturers {
			row := Manufacturer{ID: record.ID, Name: record.Name, CreatedAt: now}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.Railways {
			row := RailwayCompany{
				ID:           record.ID,
				Name:         record.Name,
				Abbreviation: record.Abbreviation,
				Country:      record.Country,
				CreatedAt:    now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.RailwayModels {
			row := RailwayModel{
				ID:                 record.ID,
				ManufacturerID:     record.ManufacturerID,
				ProductCode:        record.ProductCode,
				Description:        record.Description,
				Scale:              record.Scale,
				PowerMethod:        record.PowerMethod,
				Epoch:              record.Epoch,
				Category:           record.Category,
				DeliveryDate:       record.DeliveryDate,
				AvailabilityStatus: record.Availability,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.RollingStocks {
			row := RollingStock{
				ID:             record.ID,
				RailwayModelID: record.RailwayModelID,
				Category:       record.Category,
				RailwayID:      stringOrNil(record.RailwayID),
				RoadNumber:     record.RoadNumber,
				TypeName:       record.TypeName,
				Series:         record.Series,
				Depot:          record.Depot,
				LengthValue:    stringOrNil(record.LengthValue),
				LengthUnit:     stringOrNil(record.LengthUnit),
				Livery:         record.Livery,
				ServiceLevel:   record.ServiceLevel,
				Control:        record.Control,
				DCCInterface:   record.DCCInterface,
				CreatedAt:      now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.Collections {
			row := Collection{
				ID:                 record.ID,
				Name:               record.Name,
				Currency:           record.Currency,
				TotalValueCurrency: record.Currency,
				CreatedAt:          now,
				UpdatedAt:          now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.CollectionItems {
			row := CollectionItem{
				ID:             record.ID,
				CollectionID:   record.CollectionID,
				RailwayModelID: stringOrNil(record.RailwayModelID),
				Manufacturer:   record.Manufacturer,
				ProductCode:    record.ProductCode,
				Description:    record.Description,
				Conditions:     record.Conditions,
				PowerMethod:    record.PowerMethod,
				Scale:          record.Scale,
				Epoch:          record.Epoch,
				Category:       record.Category,
				Count:          record.Count,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.OwnedRollingStocks {
			row := OwnedRollingStock{
				ID:               record.ID,
				CollectionItemID: record.ItemID,
				RollingStockID:   stringOrNil(record.CatalogRollingStockID),
				Notes:            record.Notes,
				RailwayID:        stringOrNil(record.RailwayID),
				Epoch:            record.Epoch,
				CreatedAt:        now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.PurchaseInfos {
			row := PurchaseInfo{
				ID:                     record.ID,
				CollectionItemID:       record.CollectionItemID,
				PurchaseType:           record.PurchaseType,
				PurchaseDate:           record.PurchaseDate,
				SellerID:               record.SellerID,
				BuyerID:                record.BuyerID,
				PurchasedPriceAmount:   record.PurchasedPriceAmount,
				PurchasedPriceCurrency: stringOrNil(record.PurchasedPriceCurrency),
				SalePriceAmount:        record.SalePriceAmount,
				SalePriceCurrency:      stringOrNil(record.SalePriceCurrency),
				DepositAmount:          record.DepositAmount,
				DepositCurrency:        stringOrNil(record.DepositCurrency),
				PreorderTotalAmount:    record.PreorderTotalAmount,
				PreorderTotalCurrency:  stringOrNil(record.PreorderTotalCurrency),
				SaleDate:               record.SaleDate,
				ExpectedDate:           record.ExpectedDate,
				Current:                record.Current,
				CreatedAt:              now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.Wishlists {
			row := Wishlist{
				ID:          record.ID,
				Name:        record.Name,
				Description: record.Description,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.WishlistEntries {
			row := WishlistEntry{
				ID:         record.ID,
				WishlistID: record.WishlistID,
				ItemNumber: record.ItemNumber,
				Note:       record.Note,
				Priority:   record.Priority,
				Position:   record.Position,
				CreatedAt:  now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, record := range snapshot.MaintenanceEvents {
			createdAt := time.Unix(record.CreatedUnixUTC, 0).UTC()
			if record.CreatedUnixUTC == 0 {
				createdAt = now
			}
			row := MaintenanceEvent{
				ID:             record.ID,
				RollingStockID: record.RollingStockID,
				Date:           record.Date,
				Description:    record.Description,
				CostAmount:     record.CostAmount,
				CostCurrency:   stringOrNil(record.CostCurrency),
				PerformedBy:    record.PerformedBy,
				NextDue:        record.NextDue,
				Metadata:       metadataJSON(record.MetadataJSON),
				CreatedAt:      createdAt,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		collectingStore := NewCollectingStore(tx)
		for _, record := range snapshot.Collections {
			summary, err := collectingStore.RecomputeSummary(ctx, record.ID, record.Currency)
			if err != nil {
				return err
			}
			if err := collectingStore.UpdateSummary(ctx, record.ID, summary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrapStoreError(errorSubjectSnapshot, errorCodeReplace, err)
	}
	return nil
}
