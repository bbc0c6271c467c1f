package ops

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/maaackz/folio/internal/errors"
	"github.com/maaackz/folio/internal/storage"
)

// CopyOutput contains the result of the Copy operation.
type CopyOutput struct {
	Copied int `json:"copied"`
}

// Copy copies every content document from src to dst, for example from the
// file backend into PostgreSQL. Documents only in dst are left alone.
func Copy(ctx context.Context, src, dst *Store, mode ImportMode) (*CopyOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	mode, err := checkImportMode(mode)
	if err != nil {
		return nil, err
	}

	keys, err := src.backend.ListKeys(ctx, "")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	records := make([]ExportRecord, 0, len(keys))
	for _, key := range keys {
		if !isContentKey(key) {
			continue
		}
		data, err := src.backend.Read(ctx, key)
		if stderrors.Is(err, storage.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		rec := ExportRecord{Key: key, Doc: data}
		if err := checkRecord(rec); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("%s: %v", key, err))
		}
		records = append(records, rec)
	}

	if mode == ImportModeError {
		if err := checkNoExisting(ctx, dst.backend, records); err != nil {
			return nil, err
		}
	}
	if err := checkProjectSlugs(ctx, dst.backend, records); err != nil {
		return nil, err
	}

	batch := make([]storage.Op, 0, len(records))
	for _, rec := range records {
		batch = append(batch, storage.WriteOp(rec.Key, rec.Doc))
	}
	if err := apply(ctx, dst.backend, batch); err != nil {
		return nil, err
	}
	return &CopyOutput{Copied: len(records)}, nil
}
