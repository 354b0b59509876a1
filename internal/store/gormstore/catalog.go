package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/catalog"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

// CatalogStore implements catalog.Store using GORM.
type CatalogStore struct {
	db *gorm.DB
}

// NewCatalogStore returns a CatalogStore backed by gorm.DB.
func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// WithTx executes fn within a transaction.
func (store *CatalogStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore catalog.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &CatalogStore{db: transaction})
	})
}

func (store *CatalogStore) InsertManufacturer(ctx context.Context, manufacturer catalog.Manufacturer) (catalog.Manufacturer, error) {
	row := Manufacturer{ID: manufacturer.ID, Name: manufacturer.Name, CreatedAt: time.Now().UTC()}
	err := store.db.WithContext(ctx).Create(&row).Error
	if isUniqueConflict(err) {
		return catalog.Manufacturer{}, wrapStoreError(errorSubjectManufacturer, errorCodeDuplicate, catalog.ErrDuplicateName)
	}
	if err != nil {
		return catalog.Manufacturer{}, wrapStoreError(errorSubjectManufacturer, errorCodeInsert, err)
	}
	return catalog.Manufacturer{ID: row.ID, Name: row.Name}, nil
}

func (store *CatalogStore) GetManufacturer(ctx context.Context, manufacturerID string) (catalog.Manufacturer, error) {
	var row Manufacturer
	err := store.db.WithContext(ctx).Where("id = ?", manufacturerID).Take(&row).Error
	if isNotFound(err) {
		return catalog.Manufacturer{}, wrapStoreError(errorSubjectManufacturer, errorCodeGet, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Manufacturer{}, wrapStoreError(errorSubjectManufacturer, errorCodeGet, err)
	}
	return catalog.Manufacturer{ID: row.ID, Name: row.Name}, nil
}

func (store *CatalogStore) ListManufacturers(ctx context.Context) ([]catalog.Manufacturer, error) {
	var rows []Manufacturer
	err := store.db.WithContext(ctx).Order("name asc").Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectManufacturer, errorCodeList, err)
	}
	manufacturers := make([]catalog.Manufacturer, 0, len(rows))
	for _, row := range rows {
		manufacturers = append(manufacturers, catalog.Manufacturer{ID: row.ID, Name: row.Name})
	}
	return manufacturers, nil
}

// DeleteManufacturer cascades to the manufacturer's models and their
// rolling stocks, nulling weak references held by owned records first.
func (store *CatalogStore) DeleteManufacturer(ctx context.Context, manufacturerID string) error {
	modelIDs := store.db.Model(&RailwayModel{}).Select("id").Where("manufacturer_id = ?", manufacturerID)
	if err := store.cascadeModelDeletion(ctx, modelIDs); err != nil {
		return err
	}
	err := store.db.WithContext(ctx).Where("manufacturer_id = ?", manufacturerID).Delete(&RailwayModel{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectManufacturer, errorCodeCascade, err)
	}
	err = store.db.WithContext(ctx).Where("id = ?", manufacturerID).Delete(&Manufacturer{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectManufacturer, errorCodeDelete, err)
	}
	return nil
}

func (store *CatalogStore) InsertRailway(ctx context.Context, railway catalog.Railway) (catalog.Railway, error) {
	row := RailwayCompany{
		ID:           railway.ID,
		Name:         railway.Name,
		Abbreviation: railway.Abbreviation,
		Country:      railway.Country,
		CreatedAt:    time.Now().UTC(),
	}
	err := store.db.WithContext(ctx).Create(&row).Error
	if isUniqueConflict(err) {
		return catalog.Railway{}, wrapStoreError(errorSubjectRailway, errorCodeDuplicate, catalog.ErrDuplicateName)
	}
	if err != nil {
		return catalog.Railway{}, wrapStoreError(errorSubjectRailway, errorCodeInsert, err)
	}
	return mapRailway(row), nil
}

func (store *CatalogStore) GetRailway(ctx context.Context, railwayID string) (catalog.Railway, error) {
	var row RailwayCompany
	err := store.db.WithContext(ctx).Where("id = ?", railwayID).Take(&row).Error
	if isNotFound(err) {
		return catalog.Railway{}, wrapStoreError(errorSubjectRailway, errorCodeGet, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.Railway{}, wrapStoreError(errorSubjectRailway, errorCodeGet, err)
	}
	return mapRailway(row), nil
}

func (store *CatalogStore) ListRailways(ctx context.Context) ([]catalog.Railway, error) {
	var rows []RailwayCompany
	err := store.db.WithContext(ctx).Order("name asc").Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectRailway, errorCodeList, err)
	}
	railways := make([]catalog.Railway, 0, len(rows))
	for _, row := range rows {
		railways = append(railways, mapRailway(row))
	}
	return railways, nil
}

// DeleteRailway nulls the references rolling stocks and owned records
// hold before removing the row.
func (store *CatalogStore) DeleteRailway(ctx context.Context, railwayID string) error {
	err := store.db.WithContext(ctx).
		Model(&RollingStock{}).
		Where("railway_id = ?", railwayID).
		Update("railway_id", gorm.Expr("NULL")).Error
	if err != nil {
		return wrapStoreError(errorSubjectRailway, errorCodeCascade, err)
	}
	err = store.db.WithContext(ctx).
		Model(&OwnedRollingStock{}).
		Where("railway_id = ?", railwayID).
		Update("railway_id", gorm.Expr("NULL")).Error
	if err != nil {
		return wrapStoreError(errorSubjectRailway, errorCodeCascade, err)
	}
	err = store.db.WithContext(ctx).Where("id = ?", railwayID).Delete(&RailwayCompany{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectRailway, errorCodeDelete, err)
	}
	return nil
}

func (store *CatalogStore) InsertRailwayModel(ctx context.Context, model catalog.RailwayModel) (catalog.RailwayModel, error) {
	now := time.Now().UTC()
	row := RailwayModel{
		ID:                 model.ID,
		ManufacturerID:     model.ManufacturerID,
		ProductCode:        model.ProductCode.String(),
		Description:        model.Description,
		Scale:              model.Scale.String(),
		PowerMethod:        model.PowerMethod.String(),
		Epoch:              model.Epoch.String(),
		Category:           model.Category.String(),
		DeliveryDate:       model.DeliveryDate.String(),
		AvailabilityStatus: model.Availability.String(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err := store.db.WithContext(ctx).Create(&row).Error
	if isUniqueConflict(err) {
		return catalog.RailwayModel{}, wrapStoreError(errorSubjectRailwayModel, errorCodeDuplicate, catalog.ErrDuplicateName)
	}
	if err != nil {
		return catalog.RailwayModel{}, wrapStoreError(errorSubjectRailwayModel, errorCodeInsert, err)
	}
	stocks := make([]catalog.RollingStock, 0, len(model.RollingStocks))
	for _, stock := range model.RollingStocks {
		stock.RailwayModelID = row.ID
		inserted, err := store.InsertRollingStock(ctx, stock)
		if err != nil {
			return catalog.RailwayModel{}, err
		}
		stocks = append(stocks, inserted)
	}
	result, err := mapRailwayModel(row)
	if err != nil {
		return catalog.RailwayModel{}, wrapStoreError(errorSubjectRailwayModel, errorCodeInvalid, err)
	}
	result.RollingStocks = stocks
	return result, nil
}

func (store *CatalogStore) GetRailwayModel(ctx context.Context, modelID string) (catalog.RailwayModel, error) {
	var row RailwayModel
	err := store.db.WithContext(ctx).Where("id = ?", modelID).Take(&row).Error
	if isNotFound(err) {
		return catalog.RailwayModel{}, wrapStoreError(errorSubjectRailwayModel, errorCodeGet, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.RailwayModel{}, wrapStoreError(errorSubjectRailwayModel, errorCodeGet, err)
	}
	model, err := mapRailwayModel(row)
	if err != nil {
		return catalog.RailwayModel{}, wrapStoreError(errorSubjectRailwayModel, errorCodeInvalid, err)
	}
	var stockRows []RollingStock
	err = store.db.WithContext(ctx).
		Where("railway_model_id = ?", modelID).
		Order("created_at asc, id asc").
		Find(&stockRows).Error
	if err != nil {
		return catalog.RailwayModel{}, wrapStoreError(errorSubjectRollingStock, errorCodeList, err)
	}
	for _, stockRow := range stockRows {
		stock, err := mapRollingStock(stockRow)
		if err != nil {
			return catalog.RailwayModel{}, wrapStoreError(errorSubjectRollingStock, errorCodeInvalid, err)
		}
		model.RollingStocks = append(model.RollingStocks, stock)
	}
	return model, nil
}

func (store *CatalogStore) UpdateRailwayModel(ctx context.Context, model catalog.RailwayModel) error {
	result := store.db.WithContext(ctx).
		Model(&RailwayModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"product_code":        model.ProductCode.String(),
			"description":         model.Description,
			"scale":               model.Scale.String(),
			"power_method":        model.PowerMethod.String(),
			"epoch":               model.Epoch.String(),
			"category":            model.Category.String(),
			"delivery_date":       model.DeliveryDate.String(),
			"availability_status": model.Availability.String(),
			"updated_at":          time.Now().UTC(),
		})
	if isUniqueConflict(result.Error) {
		return wrapStoreError(errorSubjectRailwayModel, errorCodeDuplicate, catalog.ErrDuplicateName)
	}
	if result.Error != nil {
		return wrapStoreError(errorSubjectRailwayModel, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectRailwayModel, errorCodeUpdate, catalog.ErrNotFound)
	}
	return nil
}

// DeleteRailwayModel cascades to the model's rolling stocks and nulls
// the weak references owned records hold.
func (store *CatalogStore) DeleteRailwayModel(ctx context.Context, modelID string) error {
	modelIDs := store.db.Model(&RailwayModel{}).Select("id").Where("id = ?", modelID)
	if err := store.cascadeModelDeletion(ctx, modelIDs); err != nil {
		return err
	}
	err := store.db.WithContext(ctx).Where("id = ?", modelID).Delete(&RailwayModel{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectRailwayModel, errorCodeDelete, err)
	}
	return nil
}

func (store *CatalogStore) InsertRollingStock(ctx context.Context, stock catalog.RollingStock) (catalog.RollingStock, error) {
	lengthValue, lengthUnit := measureColumns(stock.Length)
	row := RollingStock{
		ID:             stock.ID,
		RailwayModelID: stock.RailwayModelID,
		Category:       stock.Category.String(),
		RailwayID:      stringOrNil(stock.RailwayID),
		RoadNumber:     stock.RoadNumber,
		TypeName:       stock.TypeName,
		Series:         stock.Series,
		Depot:          stock.Depot,
		LengthValue:    lengthValue,
		LengthUnit:     lengthUnit,
		Livery:         stock.Livery,
		ServiceLevel:   stock.ServiceLevel.String(),
		Control:        stock.Control.String(),
		DCCInterface:   stock.DCCInterface.String(),
		CreatedAt:      time.Now().UTC(),
	}
	err := store.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		return catalog.RollingStock{}, wrapStoreError(errorSubjectRollingStock, errorCodeInsert, err)
	}
	inserted, err := mapRollingStock(row)
	if err != nil {
		return catalog.RollingStock{}, wrapStoreError(errorSubjectRollingStock, errorCodeInvalid, err)
	}
	return inserted, nil
}

func (store *CatalogStore) GetRollingStock(ctx context.Context, stockID string) (catalog.RollingStock, error) {
	var row RollingStock
	err := store.db.WithContext(ctx).Where("id = ?", stockID).Take(&row).Error
	if isNotFound(err) {
		return catalog.RollingStock{}, wrapStoreError(errorSubjectRollingStock, errorCodeGet, catalog.ErrNotFound)
	}
	if err != nil {
		return catalog.RollingStock{}, wrapStoreError(errorSubjectRollingStock, errorCodeGet, err)
	}
	stock, err := mapRollingStock(row)
	if err != nil {
		return catalog.RollingStock{}, wrapStoreError(errorSubjectRollingStock, errorCodeInvalid, err)
	}
	return stock, nil
}

func (store *CatalogStore) CountRollingStocks(ctx context.Context, modelID string) (int64, error) {
	var count int64
	err := store.db.WithContext(ctx).
		Model(&RollingStock{}).
		Where("railway_model_id = ?", modelID).
		Count(&count).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectRollingStock, errorCodeCount, err)
	}
	return count, nil
}

func (store *CatalogStore) DeleteRollingStock(ctx context.Context, stockID string) error {
	err := store.db.WithContext(ctx).
		Model(&OwnedRollingStock{}).
		Where("rolling_stock_id = ?", stockID).
		Update("rolling_stock_id", gorm.Expr("NULL")).Error
	if err != nil {
		return wrapStoreError(errorSubjectRollingStock, errorCodeCascade, err)
	}
	err = store.db.WithContext(ctx).Where("id = ?", stockID).Delete(&RollingStock{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectRollingStock, errorCodeDelete, err)
	}
	return nil
}

// cascadeModelDeletion nulls weak references pointing at the given
// models and removes their rolling stocks. modelIDs is a subquery.
func (store *CatalogStore) cascadeModelDeletion(ctx context.Context, modelIDs *gorm.DB) error {
	err := store.db.WithContext(ctx).
		Model(&CollectionItem{}).
		Where("railway_model_id IN (?)", modelIDs).
		Update("railway_model_id", gorm.Expr("NULL")).Error
	if err != nil {
		return wrapStoreError(errorSubjectRailwayModel, errorCodeCascade, err)
	}
	stockIDs := store.db.Model(&RollingStock{}).Select("id").Where("railway_model_id IN (?)", modelIDs)
	err = store.db.WithContext(ctx).
		Model(&OwnedRollingStock{}).
		Where("rolling_stock_id IN (?)", stockIDs).
		Update("rolling_stock_id", gorm.Expr("NULL")).Error
	if err != nil {
		return wrapStoreError(errorSubjectRailwayModel, errorCodeCascade, err)
	}
	err = store.db.WithContext(ctx).
		Where("railway_model_id IN (?)", modelIDs).
		Delete(&RollingStock{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectRailwayModel, errorCodeCascade, err)
	}
	return nil
}

func mapRailway(row RailwayCompany) catalog.Railway {
	return catalog.Railway{
		ID:           row.ID,
		Name:         row.Name,
		Abbreviation: row.Abbreviation,
		Country:      row.Country,
	}
}

func mapRailwayModel(row RailwayModel) (catalog.RailwayModel, error) {
	productCode, err := catalog.NewProductCode(row.ProductCode)
	if err != nil {
		return catalog.RailwayModel{}, err
	}
	scale, err := catalog.ParseScale(row.Scale)
	if err != nil {
		return catalog.RailwayModel{}, err
	}
	powerMethod, err := catalog.ParsePowerMethod(row.PowerMethod)
	if err != nil {
		return catalog.RailwayModel{}, err
	}
	category, err := catalog.ParseCategory(row.Category)
	if err != nil {
		return catalog.RailwayModel{}, err
	}
	var epoch catalog.Epoch
	if row.Epoch != "" {
		epoch, err = catalog.ParseEpoch(row.Epoch)
		if err != nil {
			return catalog.RailwayModel{}, err
		}
	}
	var deliveryDate values.DeliveryDate
	if row.DeliveryDate != "" {
		deliveryDate, err = values.NewDeliveryDate(row.DeliveryDate)
		if err != nil {
			return catalog.RailwayModel{}, err
		}
	}
	var availability catalog.AvailabilityStatus
	if row.AvailabilityStatus != "" {
		availability, err = catalog.ParseAvailabilityStatus(row.AvailabilityStatus)
		if err != nil {
			return catalog.RailwayModel{}, err
		}
	}
	return catalog.RailwayModel{
		ID:             row.ID,
		ManufacturerID: row.ManufacturerID,
		ProductCode:    productCode,
		Description:    row.Description,
		Scale:          scale,
		PowerMethod:    powerMethod,
		Epoch:          epoch,
		Category:       category,
		DeliveryDate:   deliveryDate,
		Availability:   availability,
	}, nil
}

func mapRollingStock(row RollingStock) (catalog.RollingStock, error) {
	category, err := catalog.ParseCategory(row.Category)
	if err != nil {
		return catalog.RollingStock{}, err
	}
	length, err := measureFromColumns(row.LengthValue, row.LengthUnit)
	if err != nil {
		return catalog.RollingStock{}, err
	}
	var serviceLevel catalog.ServiceLevel
	if row.ServiceLevel != "" {
		serviceLevel, err = catalog.ParseServiceLevel(row.ServiceLevel)
		if err != nil {
			return catalog.RollingStock{}, err
		}
	}
	var control catalog.Control
	if row.Control != "" {
		control, err = catalog.ParseControl(row.Control)
		if err != nil {
			return catalog.RollingStock{}, err
		}
	}
	var dccInterface catalog.DCCInterface
	if row.DCCInterface != "" {
		dccInterface, err = catalog.ParseDCCInterface(row.DCCInterface)
		if err != nil {
			return catalog.RollingStock{}, err
		}
	}
	return catalog.RollingStock{
		ID:             row.ID,
		RailwayModelID: row.RailwayModelID,
		Category:       category,
		RailwayID:      derefString(row.RailwayID),
		RoadNumber:     row.RoadNumber,
		TypeName:       row.TypeName,
		Series:         row.Series,
		Depot:          row.Depot,
		Length:         length,
		Livery:         row.Livery,
		ServiceLevel:   serviceLevel,
		Control:        control,
		DCCInterface:   dccInterface,
	}, nil
}
