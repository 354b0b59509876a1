package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrMigrationFailed marks a schema migration that could not complete.
var ErrMigrationFailed = errors.New("schema migration failed")

type migration struct {
	version int
	name    string
	apply   func(tx *gorm.DB) error
}

// migrations is the ordered schema history. Entries are append-only;
// every step is idempotent so a crashed run can be replayed.
var migrations = []migration{
	{
		version: 1,
		name:    "catalog tables",
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&Manufacturer{}, &RailwayCompany{}, &RailwayModel{}, &RollingStock{})
		},
	},
	{
		version: 2,
		name:    "collection tables",
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&Collection{}, &CollectionItem{}, &OwnedRollingStock{}, &PurchaseInfo{})
		},
	},
	{
		version: 3,
		name:    "wishlist tables",
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&Wishlist{}, &WishlistEntry{})
		},
	},
	{
		version: 4,
		name:    "maintenance events",
		apply: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&MaintenanceEvent{})
		},
	},
	{
		version: 5,
		name:    "purchase resale columns",
		apply: func(tx *gorm.DB) error {
			columns := []string{
				"SalePriceAmount",
				"SalePriceCurrency",
				"DepositAmount",
				"DepositCurrency",
				"PreorderTotalAmount",
				"PreorderTotalCurrency",
				"SaleDate",
				"ExpectedDate",
			}
			for _, column := range columns {
				if tx.Migrator().HasColumn(&PurchaseInfo{}, column) {
					continue
				}
				if err := tx.Migrator().AddColumn(&PurchaseInfo{}, column); err != nil {
					return err
				}
			}
			return nil
		},
	},
}

// Migrate applies every pending migration in version order, each in
// its own transaction together with its schema_versions marker. An
// interrupted run resumes at the first unapplied version.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return fmt.Errorf("%w: schema_versions: %v", ErrMigrationFailed, err)
	}
	for _, step := range migrations {
		var applied int64
		err := db.WithContext(ctx).Model(&SchemaVersion{}).Where("version = ?", step.version).Count(&applied).Error
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, step.version, err)
		}
		if applied > 0 {
			continue
		}
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := step.apply(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaVersion{Version: step.version, Name: step.name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("%w: version %d (%s): %v", ErrMigrationFailed, step.version, step.name, err)
		}
	}
	return nil
}

// CurrentSchemaVersion returns the highest applied migration version,
// zero for a fresh database.
func CurrentSchemaVersion(ctx context.Context, db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(&SchemaVersion{}) {
		return 0, nil
	}
	var row struct{ Version int }
	err := db.WithContext(ctx).
		Model(&SchemaVersion{}).
		Select("coalesce(max(version),0) as version").
		Scan(&row).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectSchema, errorCodeLookup, err)
	}
	return row.Version, nil
}
