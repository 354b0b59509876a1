package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/wishlist"
)

// WishlistStore implements wishlist.Store using GORM.
type WishlistStore struct {
	db *gorm.DB
}

// NewWishlistStore returns a WishlistStore backed by gorm.DB.
func NewWishlistStore(db *gorm.DB) *WishlistStore {
	return &WishlistStore{db: db}
}

// WithTx executes fn within a transaction.
func (store *WishlistStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore wishlist.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &WishlistStore{db: transaction})
	})
}

func (store *WishlistStore) InsertWishlist(ctx context.Context, list wishlist.WishList) (wishlist.WishList, error) {
	now := time.Now().UTC()
	row := Wishlist{
		ID:          list.ID,
		Name:        list.Name,
		Description: list.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wishlist.WishList{}, wrapStoreError(errorSubjectWishlist, errorCodeInsert, err)
	}
	return wishlist.WishList{ID: row.ID, Name: row.Name, Description: row.Description}, nil
}

func (store *WishlistStore) GetWishlist(ctx context.Context, wishlistID string) (wishlist.WishList, error) {
	var row Wishlist
	err := store.db.WithContext(ctx).Where("id = ?", wishlistID).Take(&row).Error
	if isNotFound(err) {
		return wishlist.WishList{}, wrapStoreError(errorSubjectWishlist, errorCodeGet, wishlist.ErrNotFound)
	}
	if err != nil {
		return wishlist.WishList{}, wrapStoreError(errorSubjectWishlist, errorCodeGet, err)
	}
	entries, err := store.ListEntries(ctx, wishlistID)
	if err != nil {
		return wishlist.WishList{}, err
	}
	return wishlist.WishList{ID: row.ID, Name: row.Name, Description: row.Description, Entries: entries}, nil
}

func (store *WishlistStore) ListWishlists(ctx context.Context) ([]wishlist.WishList, error) {
	var rows []Wishlist
	err := store.db.WithContext(ctx).Order("name asc").Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectWishlist, errorCodeList, err)
	}
	lists := make([]wishlist.WishList, 0, len(rows))
	for _, row := range rows {
		lists = append(lists, wishlist.WishList{ID: row.ID, Name: row.Name, Description: row.Description})
	}
	return lists, nil
}

func (store *WishlistStore) DeleteWishlist(ctx context.Context, wishlistID string) error {
	err := store.db.WithContext(ctx).Where("wishlist_id = ?", wishlistID).Delete(&WishlistEntry{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectWishlist, errorCodeCascade, err)
	}
	err = store.db.WithContext(ctx).Where("id = ?", wishlistID).Delete(&Wishlist{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectWishlist, errorCodeDelete, err)
	}
	return nil
}

func (store *WishlistStore) InsertEntry(ctx context.Context, entry wishlist.Entry) (wishlist.Entry, error) {
	row := WishlistEntry{
		ID:         entry.ID,
		WishlistID: entry.WishlistID,
		ItemNumber: entry.ItemNumber,
		Note:       entry.Note,
		Priority:   entry.Priority.String(),
		Position:   entry.Position,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return wishlist.Entry{}, wrapStoreError(errorSubjectEntry, errorCodeInsert, err)
	}
	inserted, err := mapWishlistEntry(row)
	if err != nil {
		return wishlist.Entry{}, wrapStoreError(errorSubjectEntry, errorCodeInvalid, err)
	}
	return inserted, nil
}

func (store *WishlistStore) GetEntry(ctx context.Context, entryID string) (wishlist.Entry, error) {
	var row WishlistEntry
	err := store.db.WithContext(ctx).Where("id = ?", entryID).Take(&row).Error
	if isNotFound(err) {
		return wishlist.Entry{}, wrapStoreError(errorSubjectEntry, errorCodeGet, wishlist.ErrNotFound)
	}
	if err != nil {
		return wishlist.Entry{}, wrapStoreError(errorSubjectEntry, errorCodeGet, err)
	}
	entry, err := mapWishlistEntry(row)
	if err != nil {
		return wishlist.Entry{}, wrapStoreError(errorSubjectEntry, errorCodeInvalid, err)
	}
	return entry, nil
}

func (store *WishlistStore) DeleteEntry(ctx context.Context, entryID string) error {
	err := store.db.WithContext(ctx).Where("id = ?", entryID).Delete(&WishlistEntry{}).Error
	if err != nil {
		return wrapStoreError(errorSubjectEntry, errorCodeDelete, err)
	}
	return nil
}

func (store *WishlistStore) ListEntries(ctx context.Context, wishlistID string) ([]wishlist.Entry, error) {
	var rows []WishlistEntry
	err := store.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Order("position asc").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectEntry, errorCodeList, err)
	}
	entries := make([]wishlist.Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := mapWishlistEntry(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectEntry, errorCodeInvalid, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (store *WishlistStore) UpdatePositions(ctx context.Context, wishlistID string, positions map[string]int) error {
	for entryID, position := range positions {
		result := store.db.WithContext(ctx).
			Model(&WishlistEntry{}).
			Where("id = ? AND wishlist_id = ?", entryID, wishlistID).
			Update("position", position)
		if result.Error != nil {
			return wrapStoreError(errorSubjectEntry, errorCodeUpdate, result.Error)
		}
		if result.RowsAffected == 0 {
			return wrapStoreError(errorSubjectEntry, errorCodeUpdate, wishlist.ErrNotFound)
		}
	}
	return nil
}

func mapWishlistEntry(row WishlistEntry) (wishlist.Entry, error) {
	priority, err := wishlist.ParsePriority(row.Priority)
	if err != nil {
		return wishlist.Entry{}, err
	}
	return wishlist.Entry{
		ID:         row.ID,
		WishlistID: row.WishlistID,
		ItemNumber: row.ItemNumber,
		Note:       row.Note,
		Priority:   priority,
		Position:   row.Position,
	}, nil
}
