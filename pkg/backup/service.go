package backup

import (
	"context"
	"fmt"
)

// Store is the persistence contract used by the exporter. Both calls
// run as one transaction each: Export is a consistent read of the
// whole store, ReplaceAll is an all-or-nothing swap of its contents.
type Store interface {
	SchemaVersion(ctx context.Context) (int, error)
	ExportAll(ctx context.Context) (Snapshot, error)
	ReplaceAll(ctx context.Context, snapshot Snapshot) error
}

// Service exports and restores full-store snapshots.
type Service struct {
	store Store
	nowFn func() int64
}

// NewService wires a Service.
func NewService(store Store, now func() int64) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrExport)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrExport)
	}
	return &Service{store: store, nowFn: now}, nil
}

// Export serializes the entire store into a versioned document.
func (service *Service) Export(ctx context.Context) ([]byte, error) {
	snapshot, err := service.store.ExportAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	snapshot.FormatVersion = FormatVersion
	snapshot.ExportedAtUnixUTC = service.nowFn()
	return Encode(snapshot)
}

// Restore replaces the live store contents with the snapshot,
// all-or-nothing. The snapshot must validate fully and must not come
// from a schema newer than the running binary; on any failure the
// prior store is left untouched.
func (service *Service) Restore(ctx context.Context, document []byte) error {
	snapshot, err := Decode(document)
	if err != nil {
		return err
	}
	currentVersion, err := service.store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRestore, err)
	}
	if snapshot.SchemaVersion > currentVersion {
		return fmt.Errorf("%w: snapshot schema version %d is newer than current %d", ErrRestore, snapshot.SchemaVersion, currentVersion)
	}
	if err := validateSnapshot(snapshot); err != nil {
		return err
	}
	if err := service.store.ReplaceAll(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: %v", ErrRestore, err)
	}
	return nil
}
