package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
)

type stubStore struct {
	lists    map[string]WishList
	entries  map[string]Entry
	sequence int
}

func newStubStore() *stubStore {
	return &stubStore{lists: map[string]WishList{}, entries: map[string]Entry{}}
}

func (store *stubStore) nextID(prefix string) string {
	store.sequence++
	return fmt.Sprintf("%s-%d", prefix, store.sequence)
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	return fn(ctx, store)
}

func (store *stubStore) InsertWishlist(ctx context.Context, list WishList) (WishList, error) {
	list.ID = store.nextID("list")
	store.lists[list.ID] = list
	return list, nil
}

func (store *stubStore) GetWishlist(ctx context.Context, wishlistID string) (WishList, error) {
	list, known := store.lists[wishlistID]
	if !known {
		return WishList{}, ErrNotFound
	}
	entries, _ := store.ListEntries(ctx, wishlistID)
	list.Entries = entries
	return list, nil
}

func (store *stubStore) ListWishlists(ctx context.Context) ([]WishList, error) {
	lists := make([]WishList, 0, len(store.lists))
	for _, list := range store.lists {
		lists = append(lists, list)
	}
	return lists, nil
}

func (store *stubStore) DeleteWishlist(ctx context.Context, wishlistID string) error {
	for entryID, entry := range store.entries {
		if entry.WishlistID == wishlistID {
			delete(store.entries, entryID)
		}
	}
	delete(store.lists, wishlistID)
	return nil
}

func (store *stubStore) InsertEntry(ctx context.Context, entry Entry) (Entry, error) {
	entry.ID = store.nextID("entry")
	store.entries[entry.ID] = entry
	return entry, nil
}

func (store *stubStore) GetEntry(ctx context.Context, entryID string) (Entry, error) {
	entry, known := store.entries[entryID]
	if !known {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (store *stubStore) DeleteEntry(ctx context.Context, entryID string) error {
	delete(store.entries, entryID)
	return nil
}

func (store *stubStore) ListEntries(ctx context.Context, wishlistID string) ([]Entry, error) {
	entries := make([]Entry, 0)
	for _, entry := range store.entries {
		if entry.WishlistID == wishlistID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(left, right int) bool {
		return entries[left].Position < entries[right].Position
	})
	return entries, nil
}

func (store *stubStore) UpdatePositions(ctx context.Context, wishlistID string, positions map[string]int) error {
	for entryID, position := range positions {
		entry, known := store.entries[entryID]
		if !known {
			return ErrNotFound
		}
		entry.Position = position
		store.entries[entryID] = entry
	}
	return nil
}

func mustNewService(test *testing.T, store Store) *Service {
	test.Helper()
	service, err := NewService(store)
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func mustCreateList(test *testing.T, service *Service) WishList {
	test.Helper()
	list, err := service.Create(context.Background(), "Next purchases", "")
	if err != nil {
		test.Fatalf("create list: %v", err)
	}
	return list
}

func mustAddEntry(test *testing.T, service *Service, wishlistID string, itemNumber string) Entry {
	test.Helper()
	entry, err := service.AddEntry(context.Background(), wishlistID, EntryInput{ItemNumber: itemNumber})
	if err != nil {
		test.Fatalf("add entry %s: %v", itemNumber, err)
	}
	return entry
}

func assertPositions(test *testing.T, service *Service, wishlistID string, orderedIDs []string) {
	test.Helper()
	list, err := service.Get(context.Background(), wishlistID)
	if err != nil {
		test.Fatalf("get list: %v", err)
	}
	if len(list.Entries) != len(orderedIDs) {
		test.Fatalf("expected %d entries, got %d", len(orderedIDs), len(list.Entries))
	}
	for index, entry := range list.Entries {
		if entry.Position != index {
			test.Fatalf("expected dense positions, entry %s has %d at index %d", entry.ID, entry.Position, index)
		}
		if entry.ID != orderedIDs[index] {
			test.Fatalf("expected %s at index %d, got %s", orderedIDs[index], index, entry.ID)
		}
	}
}

func TestAddEntryAppendsAtTail(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())
	list := mustCreateList(test, service)

	first := mustAddEntry(test, service, list.ID, "60657")
	second := mustAddEntry(test, service, list.ID, "7560001")
	if first.Position != 0 || second.Position != 1 {
		test.Fatalf("expected tail append, got %d and %d", first.Position, second.Position)
	}
	if second.Priority != PriorityNormal {
		test.Fatalf("expected default priority, got %s", second.Priority)
	}
}

func TestAddEntryNeedsItemNumberOrNote(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())
	list := mustCreateList(test, service)
	if _, err := service.AddEntry(context.Background(), list.ID, EntryInput{}); !errors.Is(err, ErrValidation) {
		test.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRemoveEntryRenumbersSurvivors(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())
	list := mustCreateList(test, service)
	first := mustAddEntry(test, service, list.ID, "a")
	second := mustAddEntry(test, service, list.ID, "b")
	third := mustAddEntry(test, service, list.ID, "c")

	if err := service.RemoveEntry(context.Background(), second.ID); err != nil {
		test.Fatalf("remove middle entry: %v", err)
	}
	assertPositions(test, service, list.ID, []string{first.ID, third.ID})
}

func TestReorderRewritesPositions(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())
	list := mustCreateList(test, service)
	first := mustAddEntry(test, service, list.ID, "a")
	second := mustAddEntry(test, service, list.ID, "b")
	third := mustAddEntry(test, service, list.ID, "c")

	if err := service.Reorder(context.Background(), list.ID, []string{third.ID, first.ID, second.ID}); err != nil {
		test.Fatalf("reorder: %v", err)
	}
	assertPositions(test, service, list.ID, []string{third.ID, first.ID, second.ID})
}

func TestReorderRequiresExactEntrySet(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())
	list := mustCreateList(test, service)
	first := mustAddEntry(test, service, list.ID, "a")
	second := mustAddEntry(test, service, list.ID, "b")

	err := service.Reorder(context.Background(), list.ID, []string{first.ID})
	if !errors.Is(err, ErrInvariant) {
		test.Fatalf("expected ErrInvariant for missing id, got %v", err)
	}
	err = service.Reorder(context.Background(), list.ID, []string{second.ID, "stranger"})
	if !errors.Is(err, ErrInvariant) {
		test.Fatalf("expected ErrInvariant for unknown id, got %v", err)
	}
	err = service.Reorder(context.Background(), list.ID, []string{first.ID, first.ID})
	if !errors.Is(err, ErrInvariant) {
		test.Fatalf("expected ErrInvariant for duplicate id, got %v", err)
	}
}
