package maintenance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

// Store is the persistence contract used by Service.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	// OwnedRollingStockExists resolves the owning reference.
	OwnedRollingStockExists(ctx context.Context, rollingStockID string) (bool, error)
	InsertEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, eventID string) (Event, error)
	// UpdateNextDue is the only write permitted against a stored event.
	UpdateNextDue(ctx context.Context, eventID string, nextDue values.Date) error
	// ListEvents returns events for a unit ordered by date ascending,
	// ties broken by creation order.
	ListEvents(ctx context.Context, rollingStockID string) ([]Event, error)
}

// Service is the append-only maintenance ledger over a Store.
type Service struct {
	store Store
	nowFn func() int64
}

// NewService wires a Service.
func NewService(store Store, now func() int64) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrValidation)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrValidation)
	}
	return &Service{store: store, nowFn: now}, nil
}

// Record appends a service event to a unit's history.
func (service *Service) Record(ctx context.Context, rollingStockID string, input EventInput) (Event, error) {
	if err := input.Validate(); err != nil {
		return Event{}, err
	}
	metadata := strings.TrimSpace(input.MetadataJSON)
	if metadata == "" {
		metadata = "{}"
	}
	if !json.Valid([]byte(metadata)) {
		return Event{}, fmt.Errorf("%w: metadata must be valid json", ErrValidation)
	}
	var created Event
	err := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		exists, err := transactionStore.OwnedRollingStockExists(ctx, rollingStockID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: owned_rolling_stock %s", ErrNotFound, rollingStockID)
		}
		event := Event{
			RollingStockID: rollingStockID,
			Date:           input.Date,
			Description:    strings.TrimSpace(input.Description),
			Cost:           input.Cost,
			PerformedBy:    strings.TrimSpace(input.PerformedBy),
			NextDue:        input.NextDue,
			MetadataJSON:   metadata,
			CreatedUnixUTC: service.nowFn(),
		}
		inserted, err := transactionStore.InsertEvent(ctx, event)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	return created, err
}

// CorrectNextDue adjusts the follow-up date of a recorded event. All
// other fields are fixed at creation.
func (service *Service) CorrectNextDue(ctx context.Context, eventID string, nextDue values.Date) error {
	return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		event, err := transactionStore.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if !nextDue.IsZero() && nextDue.Before(event.Date) {
			return fmt.Errorf("%w: next due precedes the event date", ErrValidation)
		}
		return transactionStore.UpdateNextDue(ctx, eventID, nextDue)
	})
}

// List returns a unit's history ordered by date, oldest first.
func (service *Service) List(ctx context.Context, rollingStockID string) ([]Event, error) {
	return service.store.ListEvents(ctx, rollingStockID)
}
