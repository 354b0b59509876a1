package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

type stubStore struct {
	ownedStocks map[string]struct{}
	events      map[string]Event
	sequence    int
}

func newStubStore(ownedStockIDs ...string) *stubStore {
	store := &stubStore{ownedStocks: map[string]struct{}{}, events: map[string]Event{}}
	for _, stockID := range ownedStockIDs {
		store.ownedStocks[stockID] = struct{}{}
	}
	return store
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	return fn(ctx, store)
}

func (store *stubStore) OwnedRollingStockExists(ctx context.Context, rollingStockID string) (bool, error) {
	_, known := store.ownedStocks[rollingStockID]
	return known, nil
}

func (store *stubStore) InsertEvent(ctx context.Context, event Event) (Event, error) {
	store.sequence++
	event.ID = fmt.Sprintf("event-%d", store.sequence)
	store.events[event.ID] = event
	return event, nil
}

func (store *stubStore) GetEvent(ctx context.Context, eventID string) (Event, error) {
	event, known := store.events[eventID]
	if !known {
		return Event{}, ErrNotFound
	}
	return event, nil
}

func (store *stubStore) UpdateNextDue(ctx context.Context, eventID string, nextDue values.Date) error {
	event, known := store.events[eventID]
	if !known {
		return ErrNotFound
	}
	event.NextDue = nextDue
	store.events[eventID] = event
	return nil
}

func (store *stubStore) ListEvents(ctx context.Context, rollingStockID string) ([]Event, error) {
	events := make([]Event, 0)
	for _, event := range store.events {
		if event.RollingStockID == rollingStockID {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(left, right int) bool {
		if !events[left].Date.Time().Equal(events[right].Date.Time()) {
			return events[left].Date.Before(events[right].Date)
		}
		return events[left].CreatedUnixUTC < events[right].CreatedUnixUTC
	})
	return events, nil
}

func mustNewService(test *testing.T, store Store) *Service {
	test.Helper()
	service, err := NewService(store, func() int64 { return 1700000000 })
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func mustDate(test *testing.T, raw string) values.Date {
	test.Helper()
	date, err := values.NewDate(raw)
	if err != nil {
		test.Fatalf("date %q: %v", raw, err)
	}
	return date
}

func TestRecordAppendsEvent(test *testing.T) {
	test.Parallel()
	store := newStubStore("owned-1")
	service := mustNewService(test, store)

	event, err := service.Record(context.Background(), "owned-1", EventInput{
		Date:        mustDate(test, "2024-03-10"),
		Description: "decoder install",
		NextDue:     mustDate(test, "2025-03-10"),
	})
	if err != nil {
		test.Fatalf("record: %v", err)
	}
	if event.MetadataJSON != "{}" {
		test.Fatalf("expected empty metadata default, got %q", event.MetadataJSON)
	}
	if event.CreatedUnixUTC != 1700000000 {
		test.Fatalf("expected stamped clock, got %d", event.CreatedUnixUTC)
	}
}

func TestRecordRejectsUnknownUnit(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())
	_, err := service.Record(context.Background(), "ghost", EventInput{
		Date:        mustDate(test, "2024-03-10"),
		Description: "wheel cleaning",
	})
	if !errors.Is(err, ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordValidatesInput(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore("owned-1"))

	_, err := service.Record(context.Background(), "owned-1", EventInput{Description: "no date"})
	if !errors.Is(err, ErrValidation) {
		test.Fatalf("expected ErrValidation for missing date, got %v", err)
	}
	_, err = service.Record(context.Background(), "owned-1", EventInput{
		Date:        mustDate(test, "2024-03-10"),
		Description: "bad follow-up",
		NextDue:     mustDate(test, "2024-01-01"),
	})
	if !errors.Is(err, ErrValidation) {
		test.Fatalf("expected ErrValidation for early next due, got %v", err)
	}
	_, err = service.Record(context.Background(), "owned-1", EventInput{
		Date:         mustDate(test, "2024-03-10"),
		Description:  "bad metadata",
		MetadataJSON: "{broken",
	})
	if !errors.Is(err, ErrValidation) {
		test.Fatalf("expected ErrValidation for malformed metadata, got %v", err)
	}
}

func TestCorrectNextDueOnlyTouchesFollowUp(test *testing.T) {
	test.Parallel()
	store := newStubStore("owned-1")
	service := mustNewService(test, store)
	event, err := service.Record(context.Background(), "owned-1", EventInput{
		Date:        mustDate(test, "2024-03-10"),
		Description: "gearbox service",
	})
	if err != nil {
		test.Fatalf("record: %v", err)
	}

	if err := service.CorrectNextDue(context.Background(), event.ID, mustDate(test, "2025-09-01")); err != nil {
		test.Fatalf("correct next due: %v", err)
	}
	stored := store.events[event.ID]
	if stored.NextDue.String() != "2025-09-01" {
		test.Fatalf("expected updated next due, got %s", stored.NextDue)
	}
	if stored.Description != "gearbox service" || !stored.Date.Time().Equal(event.Date.Time()) {
		test.Fatalf("immutable fields changed: %+v", stored)
	}

	err = service.CorrectNextDue(context.Background(), event.ID, mustDate(test, "2023-01-01"))
	if !errors.Is(err, ErrValidation) {
		test.Fatalf("expected ErrValidation for next due before event, got %v", err)
	}
}

func TestListOrdersByDateThenCreation(test *testing.T) {
	test.Parallel()
	store := newStubStore("owned-1")
	service := mustNewService(test, store)
	for _, date := range []string{"2024-05-01", "2024-01-15", "2024-05-01"} {
		if _, err := service.Record(context.Background(), "owned-1", EventInput{
			Date:        mustDate(test, date),
			Description: "service visit",
		}); err != nil {
			test.Fatalf("record %s: %v", date, err)
		}
	}

	events, err := service.List(context.Background(), "owned-1")
	if err != nil {
		test.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		test.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Date.String() != "2024-01-15" {
		test.Fatalf("expected oldest first, got %s", events[0].Date)
	}
}
