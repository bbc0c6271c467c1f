package ops

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/maaackz/folio/internal/errors"
	"github.com/maaackz/folio/internal/storage"
)

// ExportSchemaVersion is written in the header line of every export.
const ExportSchemaVersion = "1.0"

// ExportHeader represents the header line in a JSONL export.
type ExportHeader struct {
	FolioExport   bool   `json:"_folio_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportRecord is one stored document in an export.
type ExportRecord struct {
	Key string          `json:"key"`
	Doc json.RawMessage `json:"doc"`
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Count      int   `json:"count"`
	ExportedAt int64 `json:"exported_at"`
}

// Export writes every content document as JSONL: a header line, then one
// record per document in key order.
func Export(ctx context.Context, st *Store, w io.Writer) (*ExportOutput, error) {
	exportedAt := time.Now().Unix()

	keys, err := st.backend.ListKeys(ctx, "")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	if err := enc.Encode(ExportHeader{
		FolioExport:   true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    exportedAt,
	}); err != nil {
		return nil, errors.NewInternal(err)
	}

	count := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewInternal(err)
		}
		if !isContentKey(key) {
			continue
		}

		data, err := st.backend.Read(ctx, key)
		if stderrors.Is(err, storage.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if !json.Valid(data) {
			return nil, errors.NewInternal(fmt.Errorf("%s is not valid JSON", key))
		}

		if err := enc.Encode(ExportRecord{Key: key, Doc: data}); err != nil {
			return nil, errors.NewInternal(err)
		}
		count++
	}

	if err := bw.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ExportOutput{Count: count, ExportedAt: exportedAt}, nil
}
