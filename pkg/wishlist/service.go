package wishlist

import (
	"context"
	"fmt"
	"strings"
)

// Store is the persistence contract used by Service.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	InsertWishlist(ctx context.Context, list WishList) (WishList, error)
	GetWishlist(ctx context.Context, wishlistID string) (WishList, error)
	ListWishlists(ctx context.Context) ([]WishList, error)
	DeleteWishlist(ctx context.Context, wishlistID string) error

	InsertEntry(ctx context.Context, entry Entry) (Entry, error)
	GetEntry(ctx context.Context, entryID string) (Entry, error)
	DeleteEntry(ctx context.Context, entryID string) error
	// ListEntries returns entries ordered by position ascending.
	ListEntries(ctx context.Context, wishlistID string) ([]Entry, error)
	// UpdatePositions rewrites the position of every given entry.
	UpdatePositions(ctx context.Context, wishlistID string, positions map[string]int) error
}

// Service contains the wish-list domain logic over a Store.
type Service struct {
	store Store
}

// NewService wires a Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrValidation)
	}
	return &Service{store: store}, nil
}

// Create inserts an empty wish list.
func (service *Service) Create(ctx context.Context, name string, description string) (WishList, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return WishList{}, fmt.Errorf("%w: wishlist name is required", ErrValidation)
	}
	var created WishList
	err := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		inserted, err := transactionStore.InsertWishlist(ctx, WishList{Name: trimmed, Description: strings.TrimSpace(description)})
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	return created, err
}

// Get reads a wish list with its entries in position order.
func (service *Service) Get(ctx context.Context, wishlistID string) (WishList, error) {
	return service.store.GetWishlist(ctx, wishlistID)
}

// List reads all wish lists.
func (service *Service) List(ctx context.Context) ([]WishList, error) {
	return service.store.ListWishlists(ctx)
}

// Delete removes a wish list and its entries.
func (service *Service) Delete(ctx context.Context, wishlistID string) error {
	return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetWishlist(ctx, wishlistID); err != nil {
			return err
		}
		return transactionStore.DeleteWishlist(ctx, wishlistID)
	})
}

// AddEntry appends an entry at the tail of the list.
func (service *Service) AddEntry(ctx context.Context, wishlistID string, input EntryInput) (Entry, error) {
	if err := input.Validate(); err != nil {
		return Entry{}, err
	}
	var created Entry
	err := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetWishlist(ctx, wishlistID); err != nil {
			return err
		}
		entries, err := transactionStore.ListEntries(ctx, wishlistID)
		if err != nil {
			return err
		}
		priority := input.Priority
		if priority == "" {
			priority = PriorityNormal
		}
		entry := Entry{
			WishlistID: wishlistID,
			ItemNumber: strings.TrimSpace(input.ItemNumber),
			Note:       strings.TrimSpace(input.Note),
			Priority:   priority,
			Position:   len(entries),
		}
		inserted, err := transactionStore.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	return created, err
}

// RemoveEntry deletes an entry and renumbers the survivors so their
// positions stay a dense zero-based sequence.
func (service *Service) RemoveEntry(ctx context.Context, entryID string) error {
	return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		entry, err := transactionStore.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if err := transactionStore.DeleteEntry(ctx, entryID); err != nil {
			return err
		}
		survivors, err := transactionStore.ListEntries(ctx, entry.WishlistID)
		if err != nil {
			return err
		}
		positions := make(map[string]int, len(survivors))
		for index, survivor := range survivors {
			positions[survivor.ID] = index
		}
		return transactionStore.UpdatePositions(ctx, entry.WishlistID, positions)
	})
}

// Reorder atomically rewrites all positions to match the given entry
// id sequence. The id set must exactly match the current entry set.
func (service *Service) Reorder(ctx context.Context, wishlistID string, orderedEntryIDs []string) error {
	return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		if _, err := transactionStore.GetWishlist(ctx, wishlistID); err != nil {
			return err
		}
		entries, err := transactionStore.ListEntries(ctx, wishlistID)
		if err != nil {
			return err
		}
		if len(orderedEntryIDs) != len(entries) {
			return fmt.Errorf("%w: reorder lists %d ids, wishlist has %d entries", ErrInvariant, len(orderedEntryIDs), len(entries))
		}
		current := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			current[entry.ID] = struct{}{}
		}
		positions := make(map[string]int, len(orderedEntryIDs))
		for index, entryID := range orderedEntryIDs {
			if _, known := current[entryID]; !known {
				return fmt.Errorf("%w: unknown entry id %s", ErrInvariant, entryID)
			}
			if _, duplicate := positions[entryID]; duplicate {
				return fmt.Errorf("%w: duplicate entry id %s", ErrInvariant, entryID)
			}
			positions[entryID] = index
		}
		return transactionStore.UpdatePositions(ctx, wishlistID, positions)
	})
}
