package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Service contains the catalog domain logic over a Store.
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

// CreateManufacturer inserts a manufacturer unique by name.
func (service *Service) CreateManufacturer(ctx context.Context, name string) (Manufacturer, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Manufacturer{}, fmt.Errorf("%w: manufacturer name is required", ErrValidation)
	}
	var created Manufacturer
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		inserted, err := transactionStore.InsertManufacturer(ctx, Manufacturer{Name: trimmed})
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	service.logOperation(ctx, OperationLog{Operation: operationCreateManufacturer, Subject: subjectManufacturer, EntityID: created.ID, Error: operationError})
	return created, operationError
}

// DeleteManufacturer removes a manufacturer and cascades to its
// catalog models and their rolling stocks.
func (service *Service) DeleteManufacturer(ctx context.Context, manufacturerID string) error {
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetManufacturer(ctx, manufacturerID); err != nil {
			return err
		}
		return transactionStore.DeleteManufacturer(ctx, manufacturerID)
	})
	service.logOperation(ctx, OperationLog{Operation: operationDeleteManufacturer, Subject: subjectManufacturer, EntityID: manufacturerID, Error: operationError})
	return operationError
}

// CreateRailway inserts a railway company unique by name.
func (service *Service) CreateRailway(ctx context.Context, railway Railway) (Railway, error) {
	railway.Name = strings.TrimSpace(railway.Name)
	if railway.Name == "" {
		return Railway{}, fmt.Errorf("%w: railway name is required", ErrValidation)
	}
	var created Railway
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		railway.ID = ""
		inserted, err := transactionStore.InsertRailway(ctx, railway)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	service.logOperation(ctx, OperationLog{Operation: operationCreateRailway, Subject: subjectRailway, EntityID: created.ID, Error: operationError})
	return created, operationError
}

// DeleteRailway removes a railway company. Rolling stocks that
// reference it keep their rows with the reference nulled out; models
// left without stocks would violate the one-stock minimum, so the
// reference is weak here rather than cascading.
func (service *Service) DeleteRailway(ctx context.Context, railwayID string) error {
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetRailway(ctx, railwayID); err != nil {
			return err
		}
		return transactionStore.DeleteRailway(ctx, railwayID)
	})
	service.logOperation(ctx, OperationLog{Operation: operationDeleteRailway, Subject: subjectRailway, EntityID: railwayID, Error: operationError})
	return operationError
}

// CreateRailwayModel writes a model and its rolling stocks atomically.
func (service *Service) CreateRailwayModel(ctx context.Context, input RailwayModelInput) (RailwayModel, error) {
	if err := input.Validate(); err != nil {
		return RailwayModel{}, err
	}
	var created RailwayModel
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetManufacturer(ctx, input.ManufacturerID); err != nil {
			return err
		}
		model := RailwayModel{
			ManufacturerID: input.ManufacturerID,
			ProductCode:    input.ProductCode,
			Description:    strings.TrimSpace(input.Description),
			Scale:          input.Scale,
			PowerMethod:    input.PowerMethod,
			Epoch:          input.Epoch,
			Category:       input.Category,
			DeliveryDate:   input.DeliveryDate,
			Availability:   input.Availability,
		}
		for _, stockInput := range input.RollingStocks {
			if stockInput.RailwayID != "" {
				if _, err := transactionStore.GetRailway(ctx, stockInput.RailwayID); err != nil {
					return err
				}
			}
			model.RollingStocks = append(model.RollingStocks, rollingStockFromInput(stockInput))
		}
		inserted, err := transactionStore.InsertRailwayModel(ctx, model)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	service.logOperation(ctx, OperationLog{Operation: operationCreateModel, Subject: subjectRailwayModel, EntityID: created.ID, Error: operationError})
	return created, operationError
}

// GetRailwayModel reads a model with its rolling stocks.
func (service *Service) GetRailwayModel(ctx context.Context, modelID string) (RailwayModel, error) {
	return service.store.GetRailwayModel(ctx, modelID)
}

// ListManufacturers reads all manufacturers ordered by name.
func (service *Service) ListManufacturers(ctx context.Context) ([]Manufacturer, error) {
	return service.store.ListManufacturers(ctx)
}

// ListRailways reads all railway companies ordered by name.
func (service *Service) ListRailways(ctx context.Context) ([]Railway, error) {
	return service.store.ListRailways(ctx)
}

// UpdateRailwayModel rewrites the mutable fields of a model. The model
// id and owning manufacturer are immutable after creation.
func (service *Service) UpdateRailwayModel(ctx context.Context, modelID string, update RailwayModelUpdate) (RailwayModel, error) {
	var updated RailwayModel
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		model, err := transactionStore.GetRailwayModel(ctx, modelID)
		if err != nil {
			return err
		}
		if err := update.Validate(); err != nil {
			return err
		}
		model.ProductCode = update.ProductCode
		model.Description = strings.TrimSpace(update.Description)
		model.Scale = update.Scale
		model.PowerMethod = update.PowerMethod
		model.Epoch = update.Epoch
		model.Category = update.Category
		model.DeliveryDate = update.DeliveryDate
		model.Availability = update.Availability
		if err := transactionStore.UpdateRailwayModel(ctx, model); err != nil {
			return err
		}
		updated = model
		return nil
	})
	service.logOperation(ctx, OperationLog{Operation: operationUpdateModel, Subject: subjectRailwayModel, EntityID: modelID, Error: operationError})
	return updated, operationError
}

// DeleteRailwayModel removes a model and cascades to its rolling
// stocks; weak references held by owned records are nulled out.
func (service *Service) DeleteRailwayModel(ctx context.Context, modelID string) error {
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetRailwayModel(ctx, modelID); err != nil {
			return err
		}
		return transactionStore.DeleteRailwayModel(ctx, modelID)
	})
	service.logOperation(ctx, OperationLog{Operation: operationDeleteModel, Subject: subjectRailwayModel, EntityID: modelID, Error: operationError})
	return operationError
}

// AddRollingStock appends a component to an existing model.
func (service *Service) AddRollingStock(ctx context.Context, modelID string, input RollingStockInput) (RollingStock, error) {
	if err := input.Validate(); err != nil {
		return RollingStock{}, err
	}
	var created RollingStock
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetRailwayModel(ctx, modelID); err != nil {
			return err
		}
		if input.RailwayID != "" {
			if _, err := transactionStore.GetRailway(ctx, input.RailwayID); err != nil {
				return err
			}
		}
		stock := rollingStockFromInput(input)
		stock.RailwayModelID = modelID
		inserted, err := transactionStore.InsertRollingStock(ctx, stock)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	service.logOperation(ctx, OperationLog{Operation: operationAddRollingStock, Subject: subjectRollingStock, EntityID: created.ID, Error: operationError})
	return created, operationError
}

// RemoveRollingStock deletes a component. The last component of a
// model cannot be removed; delete the model instead.
func (service *Service) RemoveRollingStock(ctx context.Context, stockID string) error {
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		stock, err := transactionStore.GetRollingStock(ctx, stockID)
		if err != nil {
			return err
		}
		remaining, err := transactionStore.CountRollingStocks(ctx, stock.RailwayModelID)
		if err != nil {
			return err
		}
		if remaining <= 1 {
			return ErrNoRollingStock
		}
		return transactionStore.DeleteRollingStock(ctx, stockID)
	})
	service.logOperation(ctx, OperationLog{Operation: operationRemoveRollingStock, Subject: subjectRollingStock, EntityID: stockID, Error: operationError})
	return operationError
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

func rollingStockFromInput(input RollingStockInput) RollingStock {
	return RollingStock{
		Category:     input.Category,
		RailwayID:    input.RailwayID,
		RoadNumber:   strings.TrimSpace(input.RoadNumber),
		TypeName:     strings.TrimSpace(input.TypeName),
		Series:       strings.TrimSpace(input.Series),
		Depot:        strings.TrimSpace(input.Depot),
		Length:       input.Length,
		Livery:       strings.TrimSpace(input.Livery),
		ServiceLevel: input.ServiceLevel,
		Control:      input.Control,
		DCCInterface: input.DCCInterface,
	}
}
