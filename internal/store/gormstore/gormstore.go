// Package gormstore persists the catalog, collection, wishlist, and
// maintenance domains through GORM against SQLite or PostgreSQL.
package gormstore

import (
	"errors"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

const (
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19

	errorOperationStore = "store"

	errorSubjectManufacturer = "manufacturer"
	errorSubjectRailway      = "railway"
	errorSubjectRailwayModel = "railway_model"
	errorSubjectRollingStock = "rolling_stock"
	errorSubjectCollection   = "collection"
	errorSubjectItem         = "item"
	errorSubjectOwnedStock   = "owned_rolling_stock"
	errorSubjectPurchase     = "purchase"
	errorSubjectWishlist     = "wishlist"
	errorSubjectEntry        = "entry"
	errorSubjectEvent        = "maintenance_event"
	errorSubjectSnapshot     = "snapshot"
	errorSubjectSchema       = "schema"

	errorCodeInsert    = "insert"
	errorCodeGet       = "get"
	errorCodeList      = "list"
	errorCodeUpdate    = "update"
	errorCodeDelete    = "delete"
	errorCodeDuplicate = "duplicate"
	errorCodeInvalid   = "invalid"
	errorCodeCascade   = "cascade"
	errorCodeCount     = "count"
	errorCodeLookup    = "lookup"
	errorCodeSummary   = "summary"
	errorCodeReplace   = "replace"
)

func wrapStoreError(subject string, code string, err error) error {
	return values.WrapError(errorOperationStore, subject, code, err)
}

func isUniqueConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func stringOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// priceColumns splits a price into its nullable column pair. The zero
// price maps to a null pair, never to a zero amount.
func priceColumns(price values.Price) (*int64, *string) {
	if price.IsZero() {
		return nil, nil
	}
	amount := price.AmountMinorUnits()
	code := price.Currency().Code()
	return &amount, &code
}

func priceFromColumns(amount *int64, currencyCode *string) (values.Price, error) {
	if amount == nil || currencyCode == nil {
		return values.Price{}, nil
	}
	return values.NewPrice(*amount, *currencyCode)
}

func measureColumns(measure values.Measure) (*string, *string) {
	if measure.IsZero() {
		return nil, nil
	}
	value := measure.Value().String()
	unit := measure.Unit().String()
	return &value, &unit
}

func measureFromColumns(value *string, unit *string) (values.Measure, error) {
	if value == nil {
		return values.Measure{}, nil
	}
	return values.MeasureFromString(*value, derefString(unit))
}

func dateColumn(date values.Date) string {
	if date.IsZero() {
		return ""
	}
	return date.String()
}

func dateFromColumn(raw string) (values.Date, error) {
	if raw == "" {
		return values.Date{}, nil
	}
	return values.NewDate(raw)
}
