package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/maaackz/folio/internal/errors"
)

// maxBodyBytes bounds request bodies; sections and case studies are markdown.
const maxBodyBytes = 4 << 20

// goldmark's default renderer omits raw HTML found in markdown.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError writes err as {"error": {code, message, status}}. Errors that
// are not FolioErrors become INTERNAL and are logged.
func renderError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var fErr *errors.FolioError
	if !stderrors.As(err, &fErr) {
		fErr = errors.NewInternal(err)
	}
	if fErr.Code == errors.ErrInternal {
		log.WithError(err).Error("internal error")
	}

	body := map[string]any{
		"code":    string(fErr.Code),
		"message": fErr.Message,
		"status":  fErr.Status,
	}
	// Internal details carry storage paths and driver messages; they are
	// logged above and never sent to the client.
	if len(fErr.Details) > 0 && fErr.Code != errors.ErrInternal {
		body["details"] = fErr.Details
	}
	renderJSON(w, fErr.Status, map[string]any{"error": body})
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case stderrors.As(err, &maxErr):
			return errors.NewInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		case stderrors.Is(err, io.EOF):
			return errors.NewInvalidRequest("request body is required")
		default:
			return errors.NewInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err))
		}
	}
	return nil
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// wantsHTML reports whether ?format=html was requested.
func wantsHTML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "html"
}
