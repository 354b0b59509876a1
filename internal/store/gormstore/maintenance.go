package gormstore

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/maintenance"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

const defaultMetadataJSON = "{}"

// MaintenanceStore implements maintenance.Store using GORM.
type MaintenanceStore struct {
	db *gorm.DB
}

// NewMaintenanceStore returns a MaintenanceStore backed by gorm.DB.
func NewMaintenanceStore(db *gorm.DB) *MaintenanceStore {
	return &MaintenanceStore{db: db}
}

// WithTx executes fn within a transaction.
func (store *MaintenanceStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore maintenance.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &MaintenanceStore{db: transaction})
	})
}

func (store *MaintenanceStore) OwnedRollingStockExists(ctx context.Context, rollingStockID string) (bool, error) {
	var count int64
	err := store.db.WithContext(ctx).
		Model(&OwnedRollingStock{}).
		Where("id = ?", rollingStockID).
		Count(&count).Error
	if err != nil {
		return false, wrapStoreError(errorSubjectOwnedStock, errorCodeLookup, err)
	}
	return count > 0, nil
}

func (store *MaintenanceStore) InsertEvent(ctx context.Context, event maintenance.Event) (maintenance.Event, error) {
	costAmount, costCurrency := priceColumns(event.Cost)
	createdAt := time.Unix(event.CreatedUnixUTC, 0).UTC()
	if event.CreatedUnixUTC == 0 {
		createdAt = time.Now().UTC()
	}
	row := MaintenanceEvent{
		ID:             event.ID,
		RollingStockID: event.RollingStockID,
		Date:           dateColumn(event.Date),
		Description:    event.Description,
		CostAmount:     costAmount,
		CostCurrency:   costCurrency,
		PerformedBy:    event.PerformedBy,
		NextDue:        dateColumn(event.NextDue),
		Metadata:       metadataJSON(event.MetadataJSON),
		CreatedAt:      createdAt,
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return maintenance.Event{}, wrapStoreError(errorSubjectEvent, errorCodeInsert, err)
	}
	inserted, err := mapMaintenanceEvent(row)
	if err != nil {
		return maintenance.Event{}, wrapStoreError(errorSubjectEvent, errorCodeInvalid, err)
	}
	return inserted, nil
}

func (store *MaintenanceStore) GetEvent(ctx context.Context, eventID string) (maintenance.Event, error) {
	var row MaintenanceEvent
	err := store.db.WithContext(ctx).Where("id = ?", eventID).Take(&row).Error
	if isNotFound(err) {
		return maintenance.Event{}, wrapStoreError(errorSubjectEvent, errorCodeGet, maintenance.ErrNotFound)
	}
	if err != nil {
		return maintenance.Event{}, wrapStoreError(errorSubjectEvent, errorCodeGet, err)
	}
	event, err := mapMaintenanceEvent(row)
	if err != nil {
		return maintenance.Event{}, wrapStoreError(errorSubjectEvent, errorCodeInvalid, err)
	}
	return event, nil
}

func (store *MaintenanceStore) UpdateNextDue(ctx context.Context, eventID string, nextDue values.Date) error {
	result := store.db.WithContext(ctx).
		Model(&MaintenanceEvent{}).
		Where("id = ?", eventID).
		Update("next_due", dateColumn(nextDue))
	if result.Error != nil {
		return wrapStoreError(errorSubjectEvent, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectEvent, errorCodeUpdate, maintenance.ErrNotFound)
	}
	return nil
}

func (store *MaintenanceStore) ListEvents(ctx context.Context, rollingStockID string) ([]maintenance.Event, error) {
	var rows []MaintenanceEvent
	err := store.db.WithContext(ctx).
		Where("rolling_stock_id = ?", rollingStockID).
		Order("date asc, created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectEvent, errorCodeList, err)
	}
	events := make([]maintenance.Event, 0, len(rows))
	for _, row := range rows {
		event, err := mapMaintenanceEvent(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectEvent, errorCodeInvalid, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func mapMaintenanceEvent(row MaintenanceEvent) (maintenance.Event, error) {
	date, err := dateFromColumn(row.Date)
	if err != nil {
		return maintenance.Event{}, err
	}
	nextDue, err := dateFromColumn(row.NextDue)
	if err != nil {
		return maintenance.Event{}, err
	}
	cost, err := priceFromColumns(row.CostAmount, row.CostCurrency)
	if err != nil {
		return maintenance.Event{}, err
	}
	return maintenance.Event{
		ID:             row.ID,
		RollingStockID: row.RollingStockID,
		Date:           date,
		Description:    row.Description,
		Cost:           cost,
		PerformedBy:    row.PerformedBy,
		NextDue:        nextDue,
		MetadataJSON:   string(row.Metadata),
		CreatedUnixUTC: row.CreatedAt.Unix(),
	}, nil
}

func metadataJSON(raw string) datatypes.JSON {
	if raw == "" {
		return datatypes.JSON([]byte(defaultMetadataJSON))
	}
	return datatypes.JSON([]byte(raw))
}
