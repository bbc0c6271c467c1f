package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
	"github.com/maaackz/folio/internal/storage"
)

// ImportMode controls collision behavior during import and copy.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on any existing key; nothing is written
	ImportModeReplace ImportMode = "replace" // overwrite existing keys
)

// maxImportLine bounds one JSONL line; project documents with long case
// studies can exceed bufio's 64KiB default.
const maxImportLine = 16 << 20

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError represents a line that could not be imported.
type ImportError struct {
	Line    int    `json:"line"`
	Key     string `json:"key,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import reads an export produced by Export and writes its documents.
//
// In error mode any parse error or existing key aborts the import before
// anything is written. In replace mode bad lines are reported and skipped.
// The documents are written in one batch.
func Import(ctx context.Context, st *Store, r io.Reader, mode ImportMode) (*ImportOutput, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	mode, err := checkImportMode(mode)
	if err != nil {
		return nil, err
	}

	records, parseErrors, err := parseExport(r)
	if err != nil {
		return nil, err
	}

	if mode == ImportModeError {
		if len(parseErrors) > 0 {
			return &ImportOutput{Errors: parseErrors}, nil
		}
		if err := checkNoExisting(ctx, st.backend, records); err != nil {
			return nil, err
		}
	}
	if err := checkProjectSlugs(ctx, st.backend, records); err != nil {
		return nil, err
	}

	batch := make([]storage.Op, 0, len(records))
	for _, rec := range records {
		batch = append(batch, storage.WriteOp(rec.Key, rec.Doc))
	}
	if err := apply(ctx, st.backend, batch); err != nil {
		return nil, err
	}

	if parseErrors == nil {
		parseErrors = []ImportError{}
	}
	return &ImportOutput{
		Imported: len(records),
		Skipped:  len(parseErrors),
		Errors:   parseErrors,
	}, nil
}

// parseExport parses JSONL export lines into records, skipping the header.
func parseExport(r io.Reader) ([]ExportRecord, []ImportError, error) {
	var records []ExportRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry struct {
			ExportHeader
			ExportRecord
		}
		if err := json.Unmarshal(line, &entry); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if entry.FolioExport {
			continue
		}

		rec := entry.ExportRecord
		switch {
		case !isContentKey(rec.Key) || storage.ValidateKey(rec.Key) != nil:
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Key:     rec.Key,
				Code:    "INVALID_RECORD",
				Message: "unknown or invalid key",
			})
		case len(rec.Doc) == 0 || string(rec.Doc) == "null":
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Key:     rec.Key,
				Code:    "INVALID_RECORD",
				Message: "missing doc field",
			})
		default:
			if err := checkRecord(rec); err != nil {
				parseErrors = append(parseErrors, ImportError{
					Line:    lineNum,
					Key:     rec.Key,
					Code:    "INVALID_RECORD",
					Message: err.Error(),
				})
				continue
			}
			records = append(records, rec)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("failed to read import: %v", err))
	}
	return records, parseErrors, nil
}

// checkRecord decodes rec.Doc as the document its key names and checks
// that identity fields in the body agree with the key. Field values are
// otherwise restored as they were exported.
func checkRecord(rec ExportRecord) error {
	decode := func(v any) error {
		if err := json.Unmarshal(rec.Doc, v); err != nil {
			return fmt.Errorf("doc does not decode: %v", err)
		}
		return nil
	}
	mismatch := func(field, got, want string) error {
		if got != "" && got != want {
			return fmt.Errorf("%s %q does not match key %q", field, got, rec.Key)
		}
		return nil
	}

	switch rec.Key {
	case structureKey:
		return decode(&content.Structure{})
	case availabilityKey:
		return decode(&content.Availability{})
	case tagsKey:
		return decode(&[]string{})
	}

	if id := leafName(sectionsPrefix, rec.Key); id != "" {
		var s content.Section
		if err := decode(&s); err != nil {
			return err
		}
		return mismatch("id", s.ID, id)
	}
	if id := leafName(projectsPrefix, rec.Key); id != "" {
		var p content.Project
		if err := decode(&p); err != nil {
			return err
		}
		if err := mismatch("id", p.ID, id); err != nil {
			return err
		}
		if err := content.ValidateKeySegment("slug", p.Slug); err != nil {
			return err
		}
		return nil
	}

	var pg content.Page
	if err := decode(&pg); err != nil {
		return err
	}
	category, file, _ := strings.Cut(strings.TrimPrefix(rec.Key, pagesPrefix), "/")
	if err := mismatch("category", pg.Category, category); err != nil {
		return err
	}
	return mismatch("slug", pg.Slug, leafName("", file))
}

// checkProjectSlugs fails with CONFLICT when writing records would leave
// two projects sharing a slug and at least one of them comes from records.
func checkProjectSlugs(ctx context.Context, b storage.Backend, records []ExportRecord) error {
	slugs := make(map[string]string) // project id -> slug
	existing, err := listDocs(ctx, b, projectsPrefix, setProjectID)
	if err != nil {
		return err
	}
	for _, p := range existing {
		slugs[p.ID] = p.Slug
	}

	incoming := make(map[string]bool)
	for _, rec := range records {
		id := leafName(projectsPrefix, rec.Key)
		if id == "" {
			continue
		}
		var p content.Project
		if err := json.Unmarshal(rec.Doc, &p); err != nil {
			return errors.NewInvalidRequest(fmt.Sprintf("%s: doc does not decode: %v", rec.Key, err))
		}
		slugs[id] = p.Slug
		incoming[id] = true
	}
	if len(incoming) == 0 {
		return nil
	}

	owners := make(map[string][]string) // slug -> project ids
	for id, slug := range slugs {
		owners[slug] = append(owners[slug], id)
	}
	for slug, ids := range owners {
		if len(ids) < 2 {
			continue
		}
		if slices.ContainsFunc(ids, func(id string) bool { return incoming[id] }) {
			return errors.NewConflict("project", "slug", slug)
		}
	}
	return nil
}

func checkImportMode(mode ImportMode) (ImportMode, error) {
	if mode == "" {
		return ImportModeError, nil
	}
	if mode != ImportModeError && mode != ImportModeReplace {
		return "", errors.NewInvalidRequest("mode must be one of: error, replace")
	}
	return mode, nil
}

func checkNoExisting(ctx context.Context, b storage.Backend, records []ExportRecord) error {
	for _, rec := range records {
		found, err := exists(ctx, b, rec.Key)
		if err != nil {
			return err
		}
		if found {
			return errors.NewConflict("document", "key", rec.Key)
		}
	}
	return nil
}
