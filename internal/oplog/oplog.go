// Package oplog adapts domain operation callbacks onto zap.
package oplog

import (
	"context"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/catalog"
	"github.com/MarkoPoloResearchLab/trainshed/pkg/collecting"
)

// CatalogLogger forwards catalog operation logs to a zap logger.
type CatalogLogger struct {
	logger *zap.Logger
}

// NewCatalogLogger wires a CatalogLogger.
func NewCatalogLogger(logger *zap.Logger) *CatalogLogger {
	return &CatalogLogger{logger: logger}
}

// LogOperation implements catalog.OperationLogger.
func (catalogLogger *CatalogLogger) LogOperation(ctx context.Context, entry catalog.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("subject", entry.Subject),
		zap.String("entity_id", entry.EntityID),
		zap.String("status", entry.Status),
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		catalogLogger.logger.Warn("catalog operation", fields...)
		return
	}
	catalogLogger.logger.Info("catalog operation", fields...)
}

// CollectingLogger forwards collecting operation logs to a zap logger.
type CollectingLogger struct {
	logger *zap.Logger
}

// NewCollectingLogger wires a CollectingLogger.
func NewCollectingLogger(logger *zap.Logger) *CollectingLogger {
	return &CollectingLogger{logger: logger}
}

// LogOperation implements collecting.OperationLogger.
func (collectingLogger *CollectingLogger) LogOperation(ctx context.Context, entry collecting.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("item_id", entry.ItemID),
		zap.String("status", entry.Status),
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		collectingLogger.logger.Warn("collection operation", fields...)
		return
	}
	collectingLogger.logger.Info("collection operation", fields...)
}
