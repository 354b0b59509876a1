package backup

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubStore struct {
	schemaVersion int
	snapshot      Snapshot
	replaced      *Snapshot
}

func (store *stubStore) SchemaVersion(ctx context.Context) (int, error) {
	return store.schemaVersion, nil
}

func (store *stubStore) ExportAll(ctx context.Context) (Snapshot, error) {
	return store.snapshot, nil
}

func (store *stubStore) ReplaceAll(ctx context.Context, snapshot Snapshot) error {
	store.replaced = &snapshot
	return nil
}

func mustNewService(test *testing.T, store Store) *Service {
	test.Helper()
	service, err := NewService(store, func() int64 { return 1700000000 })
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func amount(value int64) *int64 {
	return &value
}

func validSnapshot() Snapshot {
	return Snapshot{
		SchemaVersion: 5,
		Manufacturers: []ManufacturerRecord{{ID: "man-1", Name: "Roco"}},
		Railways:      []RailwayRecord{{ID: "rw-1", Name: "FS", Country: "Italy"}},
		RailwayModels: []RailwayModelRecord{{
			ID:             "model-1",
			ManufacturerID: "man-1",
			ProductCode:    "60657",
			Description:    "BR 101",
			Scale:          "H0",
			PowerMethod:    "DC",
			Epoch:          "V",
			Category:       "LOCOMOTIVE",
			DeliveryDate:   "2024/Q1",
		}},
		RollingStocks: []RollingStockRecord{{
			ID:             "stock-1",
			RailwayModelID: "model-1",
			Category:       "LOCOMOTIVE",
			RailwayID:      "rw-1",
			Control:        "DCC_SOUND",
			LengthValue:    "210",
			LengthUnit:     "mm",
		}},
		Collections: []CollectionRecord{{ID: "col-1", Name: "My Collection", Currency: "EUR"}},
		CollectionItems: []CollectionItemRecord{{
			ID:             "item-1",
			CollectionID:   "col-1",
			RailwayModelID: "model-1",
			Manufacturer:   "Roco",
			Description:    "BR 101",
			Category:       "LOCOMOTIVE",
			Count:          1,
		}},
		OwnedRollingStocks: []OwnedRollingStockRecord{{
			ID:                    "owned-1",
			ItemID:                "item-1",
			CatalogRollingStockID: "stock-1",
		}},
		PurchaseInfos: []PurchaseInfoRecord{{
			ID:                     "purchase-1",
			CollectionItemID:       "item-1",
			PurchaseType:           "BOUGHT",
			PurchaseDate:           "2023-04-12",
			PurchasedPriceAmount:   amount(24900),
			PurchasedPriceCurrency: "EUR",
			Current:                true,
		}},
		Wishlists: []WishlistRecord{{ID: "list-1", Name: "Next purchases"}},
		WishlistEntries: []WishlistEntryRecord{
			{ID: "entry-1", WishlistID: "list-1", ItemNumber: "7560001", Priority: "NORMAL", Position: 0},
			{ID: "entry-2", WishlistID: "list-1", ItemNumber: "60658", Priority: "HIGH", Position: 1},
		},
		MaintenanceEvents: []MaintenanceEventRecord{{
			ID:             "event-1",
			RollingStockID: "owned-1",
			Date:           "2024-03-10",
			Description:    "decoder install",
			CostAmount:     amount(9900),
			CostCurrency:   "EUR",
		}},
	}
}

func TestExportStampsEnvelope(test *testing.T) {
	test.Parallel()
	store := &stubStore{schemaVersion: 5, snapshot: validSnapshot()}
	service := mustNewService(test, store)

	document, err := service.Export(context.Background())
	if err != nil {
		test.Fatalf("export: %v", err)
	}
	decoded, err := Decode(document)
	if err != nil {
		test.Fatalf("decode: %v", err)
	}
	if decoded.FormatVersion != FormatVersion {
		test.Fatalf("expected format version %d, got %d", FormatVersion, decoded.FormatVersion)
	}
	if decoded.ExportedAtUnixUTC != 1700000000 {
		test.Fatalf("expected export stamp, got %d", decoded.ExportedAtUnixUTC)
	}
}

func TestRestoreRoundTrip(test *testing.T) {
	test.Parallel()
	store := &stubStore{schemaVersion: 5, snapshot: validSnapshot()}
	service := mustNewService(test, store)

	document, err := service.Export(context.Background())
	if err != nil {
		test.Fatalf("export: %v", err)
	}
	if err := service.Restore(context.Background(), document); err != nil {
		test.Fatalf("restore: %v", err)
	}
	if store.replaced == nil {
		test.Fatal("expected ReplaceAll call")
	}
	if len(store.replaced.CollectionItems) != 1 || store.replaced.CollectionItems[0].ID != "item-1" {
		test.Fatalf("unexpected restored items: %+v", store.replaced.CollectionItems)
	}
}

func TestRestoreRejectsMalformedDocument(test *testing.T) {
	test.Parallel()
	service := mustNewService(test, &stubStore{schemaVersion: 5})
	if err := service.Restore(context.Background(), []byte("{not json")); !errors.Is(err, ErrRestore) {
		test.Fatalf("expected ErrRestore, got %v", err)
	}
	if err := service.Restore(context.Background(), []byte(`{"schema_version":1}`)); !errors.Is(err, ErrRestore) {
		test.Fatalf("expected ErrRestore for missing format version, got %v", err)
	}
}

func TestRestoreRejectsNewerSchema(test *testing.T) {
	test.Parallel()
	store := &stubStore{schemaVersion: 4, snapshot: validSnapshot()}
	exportService := mustNewService(test, &stubStore{schemaVersion: 5, snapshot: validSnapshot()})
	document, err := exportService.Export(context.Background())
	if err != nil {
		test.Fatalf("export: %v", err)
	}

	service := mustNewService(test, store)
	err = service.Restore(context.Background(), document)
	if !errors.Is(err, ErrRestore) || !strings.Contains(err.Error(), "newer") {
		test.Fatalf("expected newer-schema rejection, got %v", err)
	}
	if store.replaced != nil {
		test.Fatal("store must stay untouched on rejection")
	}
}

func restoreMutated(test *testing.T, mutate func(snapshot *Snapshot)) error {
	test.Helper()
	snapshot := validSnapshot()
	mutate(&snapshot)
	store := &stubStore{schemaVersion: 5, snapshot: snapshot}
	service := mustNewService(test, store)
	document, err := service.Export(context.Background())
	if err != nil {
		test.Fatalf("export: %v", err)
	}
	store.replaced = nil
	restoreErr := service.Restore(context.Background(), document)
	if restoreErr != nil && store.replaced != nil {
		test.Fatal("store must stay untouched on rejection")
	}
	return restoreErr
}

func TestRestoreValidatesSnapshot(test *testing.T) {
	test.Parallel()
	cases := []struct {
		name   string
		mutate func(snapshot *Snapshot)
	}{
		{
			name: "invalid purchase currency",
			mutate: func(snapshot *Snapshot) {
				snapshot.PurchaseInfos[0].PurchasedPriceCurrency = "EURO"
			},
		},
		{
			name: "unknown manufacturer reference",
			mutate: func(snapshot *Snapshot) {
				snapshot.RailwayModels[0].ManufacturerID = "ghost"
			},
		},
		{
			name: "model without rolling stock",
			mutate: func(snapshot *Snapshot) {
				snapshot.RollingStocks = nil
				snapshot.OwnedRollingStocks[0].CatalogRollingStockID = ""
			},
		},
		{
			name: "two current purchase records",
			mutate: func(snapshot *Snapshot) {
				duplicate := snapshot.PurchaseInfos[0]
				duplicate.ID = "purchase-2"
				snapshot.PurchaseInfos = append(snapshot.PurchaseInfos, duplicate)
			},
		},
		{
			name: "sparse wishlist positions",
			mutate: func(snapshot *Snapshot) {
				snapshot.WishlistEntries[1].Position = 5
			},
		},
		{
			name: "maintenance event for unknown unit",
			mutate: func(snapshot *Snapshot) {
				snapshot.MaintenanceEvents[0].RollingStockID = "ghost"
			},
		},
		{
			name: "invalid epoch",
			mutate: func(snapshot *Snapshot) {
				snapshot.RailwayModels[0].Epoch = "VII"
			},
		},
	}
	for _, testCase := range cases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			if err := restoreMutated(test, testCase.mutate); !errors.Is(err, ErrRestore) {
				test.Fatalf("expected ErrRestore, got %v", err)
			}
		})
	}
}
