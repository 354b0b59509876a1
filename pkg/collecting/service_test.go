package collecting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/catalog"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

type stubStore struct {
	collection    Collection
	items         map[string]CollectionItem
	purchases     map[string][]PurchaseInfo
	models        map[string]struct{}
	catalogStocks map[string]struct{}
	sequence      int
}

func newStubStore() *stubStore {
	currency, _ := values.NewCurrency("EUR")
	return &stubStore{
		collection:    Collection{ID: "col-1", Name: "My Collection", Currency: currency},
		items:         map[string]CollectionItem{},
		purchases:     map[string][]PurchaseInfo{},
		models:        map[string]struct{}{},
		catalogStocks: map[string]struct{}{},
	}
}

func (store *stubStore) nextID(prefix string) string {
	store.sequence++
	return fmt.Sprintf("%s-%d", prefix, store.sequence)
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	return fn(ctx, store)
}

func (store *stubStore) GetOrCreateCollection(ctx context.Context) (Collection, error) {
	return store.collection, nil
}

func (store *stubStore) UpdateSummary(ctx context.Context, collectionID string, summary Summary) error {
	store.collection.Summary = summary
	return nil
}

func (store *stubStore) RecomputeSummary(ctx context.Context, collectionID string, currency string) (Summary, error) {
	summary := Summary{}
	for _, item := range store.items {
		switch item.Category {
		case catalog.CategoryLocomotive:
			summary.Locomotives += item.Count
		case catalog.CategoryPassengerCar:
			summary.PassengerCars += item.Count
		case catalog.CategoryFreightCar:
			summary.FreightCars += item.Count
		case catalog.CategoryTrainSet:
			summary.TrainSets += item.Count
		case catalog.CategoryRailcar:
			summary.Railcars += item.Count
		case catalog.CategoryElectricMultipleUnit:
			summary.ElectricMultipleUnits += item.Count
		}
	}
	var total int64
	for _, lineage := range store.purchases {
		for _, purchase := range lineage {
			if !purchase.Current || purchase.PurchaseType == PurchaseSold {
				continue
			}
			if purchase.PurchasedPrice.IsZero() || purchase.PurchasedPrice.Currency().Code() != currency {
				continue
			}
			total += purchase.PurchasedPrice.AmountMinorUnits()
		}
	}
	totalValue, err := values.NewPrice(total, currency)
	if err != nil {
		return Summary{}, err
	}
	summary.TotalValue = totalValue
	return summary, nil
}

func (store *stubStore) InsertItem(ctx context.Context, item CollectionItem) (CollectionItem, error) {
	item.ID = store.nextID("item")
	for index := range item.RollingStocks {
		item.RollingStocks[index].ID = store.nextID("owned")
		item.RollingStocks[index].ItemID = item.ID
	}
	for _, purchase := range item.Purchases {
		purchase.ID = store.nextID("purchase")
		purchase.CollectionItemID = item.ID
		store.purchases[item.ID] = append(store.purchases[item.ID], purchase)
	}
	item.Purchases = nil
	store.items[item.ID] = item
	return store.GetItem(ctx, item.ID)
}

func (store *stubStore) GetItem(ctx context.Context, itemID string) (CollectionItem, error) {
	item, known := store.items[itemID]
	if !known {
		return CollectionItem{}, ErrNotFound
	}
	item.Purchases = append([]PurchaseInfo(nil), store.purchases[itemID]...)
	return item, nil
}

func (store *stubStore) UpdateItem(ctx context.Context, item CollectionItem) error {
	if _, known := store.items[item.ID]; !known {
		return ErrNotFound
	}
	item.Purchases = nil
	store.items[item.ID] = item
	return nil
}

func (store *stubStore) DeleteItem(ctx context.Context, itemID string) error {
	delete(store.items, itemID)
	delete(store.purchases, itemID)
	return nil
}

func (store *stubStore) ListItems(ctx context.Context, collectionID string, filter Filter, after PageKey, limit int) ([]CollectionItem, error) {
	matches := make([]CollectionItem, 0, len(store.items))
	for _, item := range store.items {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Brand != "" && item.Manufacturer != filter.Brand {
			continue
		}
		if filter.Text != "" {
			needle := strings.ToLower(filter.Text)
			if !strings.Contains(strings.ToLower(item.Description), needle) &&
				!strings.Contains(strings.ToLower(item.ProductCode), needle) {
				continue
			}
		}
		matches = append(matches, item)
	}
	sort.Slice(matches, func(left, right int) bool {
		if matches[left].Description != matches[right].Description {
			return matches[left].Description < matches[right].Description
		}
		return matches[left].ID < matches[right].ID
	})
	if !after.IsZero() {
		filtered := matches[:0]
		for _, item := range matches {
			if item.Description > after.Description ||
				(item.Description == after.Description && item.ID > after.ID) {
				filtered = append(filtered, item)
			}
		}
		matches = filtered
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (store *stubStore) InsertPurchase(ctx context.Context, purchase PurchaseInfo) (PurchaseInfo, error) {
	purchase.ID = store.nextID("purchase")
	store.purchases[purchase.CollectionItemID] = append(store.purchases[purchase.CollectionItemID], purchase)
	return purchase, nil
}

func (store *stubStore) ClearCurrentPurchase(ctx context.Context, itemID string) error {
	lineage := store.purchases[itemID]
	for index := range lineage {
		lineage[index].Current = false
	}
	return nil
}

func (store *stubStore) RailwayModelExists(ctx context.Context, modelID string) (bool, error) {
	_, known := store.models[modelID]
	return known, nil
}

func (store *stubStore) CatalogRollingStockExists(ctx context.Context, stockID string) (bool, error) {
	_, known := store.catalogStocks[stockID]
	return known, nil
}

func mustNewService(test *testing.T, store Store) *Service {
	test.Helper()
	service, err := NewService(store)
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

func mustPrice(test *testing.T, amount int64, currency string) values.Price {
	test.Helper()
	price, err := values.NewPrice(amount, currency)
	if err != nil {
		test.Fatalf("price %d %s: %v", amount, currency, err)
	}
	return price
}

func locomotiveItemInput() ItemInput {
	return ItemInput{
		Manufacturer: "Roco",
		Description:  "BR 101 electric locomotive",
		Category:     catalog.CategoryLocomotive,
	}
}

func TestAddItemDefaultsCountToOne(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)

	item, err := service.AddItem(context.Background(), locomotiveItemInput())
	if err != nil {
		test.Fatalf("add item: %v", err)
	}
	if item.Count != 1 {
		test.Fatalf("expected count 1, got %d", item.Count)
	}
	if store.collection.Summary.Locomotives != 1 {
		test.Fatalf("expected summary recompute, got %+v", store.collection.Summary)
	}
}

func TestAddItemRejectsUnknownCatalogLink(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())
	input := locomotiveItemInput()
	input.RailwayModelID = "missing-model"
	if _, err := service.AddItem(context.Background(), input); !errors.Is(err, ErrNotFound) {
		test.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddPurchaseDemotesPreviousCurrent(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	input := locomotiveItemInput()
	input.Purchase = &PurchaseInput{
		PurchaseType:   PurchaseBought,
		PurchaseDate:   mustDate(test, "2023-04-12"),
		PurchasedPrice: mustPrice(test, 24900, "EUR"),
	}
	item, err := service.AddItem(context.Background(), input)
	if err != nil {
		test.Fatalf("add item: %v", err)
	}

	_, err = service.AddPurchase(context.Background(), item.ID, PurchaseInput{
		PurchaseType: PurchaseSold,
		PurchaseDate: mustDate(test, "2024-06-01"),
		SalePrice:    mustPrice(test, 21000, "EUR"),
		SaleDate:     mustDate(test, "2024-06-01"),
	})
	if err != nil {
		test.Fatalf("add sale record: %v", err)
	}

	reloaded, err := service.GetItem(context.Background(), item.ID)
	if err != nil {
		test.Fatalf("get item: %v", err)
	}
	if len(reloaded.Purchases) != 2 {
		test.Fatalf("expected full lineage of 2 records, got %d", len(reloaded.Purchases))
	}
	currentCount := 0
	for _, purchase := range reloaded.Purchases {
		if purchase.Current {
			currentCount++
			if purchase.PurchaseType != PurchaseSold {
				test.Fatalf("expected sale record to be current, got %s", purchase.PurchaseType)
			}
		}
	}
	if currentCount != 1 {
		test.Fatalf("expected exactly one current record, got %d", currentCount)
	}
}

func TestPurchaseInputValidation(test *testing.T) {
	test.Parallel()
	preorder := PurchaseInput{PurchaseType: PurchasePreorder, PurchaseDate: mustDate(test, "2026-01-10")}
	if err := preorder.Validate(); !errors.Is(err, ErrValidation) {
		test.Fatalf("preorder without expected date: %v", err)
	}
	sale := PurchaseInput{PurchaseType: PurchaseSold, PurchaseDate: mustDate(test, "2026-01-10")}
	if err := sale.Validate(); !errors.Is(err, ErrValidation) {
		test.Fatalf("sale without sale price: %v", err)
	}
}

func TestSummaryExcludesForeignCurrencyPurchases(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)

	euroInput := locomotiveItemInput()
	euroInput.Purchase = &PurchaseInput{
		PurchaseType:   PurchaseBought,
		PurchaseDate:   mustDate(test, "2023-04-12"),
		PurchasedPrice: mustPrice(test, 24900, "EUR"),
	}
	if _, err := service.AddItem(context.Background(), euroInput); err != nil {
		test.Fatalf("add euro item: %v", err)
	}

	dollarInput := locomotiveItemInput()
	dollarInput.Description = "Big Boy 4014"
	dollarInput.Purchase = &PurchaseInput{
		PurchaseType:   PurchaseBought,
		PurchaseDate:   mustDate(test, "2023-09-30"),
		PurchasedPrice: mustPrice(test, 49999, "USD"),
	}
	if _, err := service.AddItem(context.Background(), dollarInput); err != nil {
		test.Fatalf("add dollar item: %v", err)
	}

	if store.collection.Summary.TotalValue.AmountMinorUnits() != 24900 {
		test.Fatalf("expected total of 24900 euro cents, got %s", store.collection.Summary.TotalValue)
	}
}

func TestListPaginatesWithStableCursor(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	for _, description := range []string{"A unit", "B unit", "C unit"} {
		input := locomotiveItemInput()
		input.Description = description
		if _, err := service.AddItem(context.Background(), input); err != nil {
			test.Fatalf("add %q: %v", description, err)
		}
	}

	firstPage, err := service.List(context.Background(), Filter{}, Page{Limit: 2})
	if err != nil {
		test.Fatalf("first page: %v", err)
	}
	if len(firstPage.Items) != 2 || firstPage.NextCursor == "" {
		test.Fatalf("expected 2 items and a cursor, got %d items", len(firstPage.Items))
	}
	if firstPage.Items[0].Description != "A unit" || firstPage.Items[1].Description != "B unit" {
		test.Fatalf("unexpected ordering: %q, %q", firstPage.Items[0].Description, firstPage.Items[1].Description)
	}

	secondPage, err := service.List(context.Background(), Filter{}, Page{Limit: 2, Cursor: firstPage.NextCursor})
	if err != nil {
		test.Fatalf("second page: %v", err)
	}
	if len(secondPage.Items) != 1 || secondPage.NextCursor != "" {
		test.Fatalf("expected final page of 1 item, got %d with cursor %q", len(secondPage.Items), secondPage.NextCursor)
	}
	if secondPage.Items[0].Description != "C unit" {
		test.Fatalf("unexpected tail item %q", secondPage.Items[0].Description)
	}
}

func TestListRejectsMalformedCursor(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, newStubStore())
	if _, err := service.List(context.Background(), Filter{}, Page{Cursor: "not-base64!!"}); !errors.Is(err, ErrBadCursor) {
		test.Fatalf("expected ErrBadCursor, got %v", err)
	}
}

func TestSearchMatchesProductCode(test *testing.T) {
	test.Parallel()
	store := newStubStore()
	service := mustNewService(test, store)
	input := locomotiveItemInput()
	input.ProductCode = "60657"
	if _, err := service.AddItem(context.Background(), input); err != nil {
		test.Fatalf("add item: %v", err)
	}

	page, err := service.Search(context.Background(), "606", Page{})
	if err != nil {
		test.Fatalf("search: %v", err)
	}
	if len(page.Items) != 1 {
		test.Fatalf("expected 1 match, got %d", len(page.Items))
	}
}
