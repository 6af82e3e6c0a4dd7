package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/papyrusworks/papyrus/internal/server"
	"github.com/papyrusworks/papyrus/pkg/docpath"
	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/store"
)

// decodeRequest decodes the JSON request body into v.
func decodeRequest(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("error decoding request body: %w", err)
	}
	return nil
}

// respondJSON writes v as the JSON response body with the given status
// code. Encoding errors are logged and the connection is left to the
// client; headers have already been written at that point.
func respondJSON(
	srv server.Server, w http.ResponseWriter, r *http.Request,
	httpCode int, v interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)

	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		srv.Logger.Error("error encoding response",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
}

// storeErrorStatus maps storage errors onto HTTP status codes. Anything
// unrecognized is an internal error.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrPathConflict):
		return http.StatusConflict
	case errors.Is(err, docpath.ErrInvalidPath):
		return http.StatusUnprocessableEntity
	case errors.Is(err, docref.ErrInvalidReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondStoreError logs err and writes the translated status with a
// user-facing message. Internal errors get a generic body so storage
// details never leak to clients.
func respondStoreError(
	srv server.Server, w http.ResponseWriter, r *http.Request,
	userErrMsg string, err error,
) {
	httpCode := storeErrorStatus(err)

	srv.Logger.Error(userErrMsg,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)

	if httpCode == http.StatusInternalServerError {
		http.Error(w, userErrMsg, httpCode)
		return
	}
	http.Error(w, fmt.Sprintf("%s: %s", userErrMsg, err), httpCode)
}

// parseDocumentURL splits a URL path of the form
// "/api/v1/documents/{id}[/{subresource}]" into the document reference
// and the optional subresource name. Path lookups go through the pages
// endpoint; here the id segment must be numeric.
func parseDocumentURL(url string) (docref.Reference, string, error) {
	url = strings.TrimPrefix(url, "/api/v1/documents")

	var segments []string
	for _, v := range strings.Split(url, "/") {
		if v != "" {
			segments = append(segments, v)
		}
	}
	if len(segments) == 0 {
		return docref.Reference{}, "", fmt.Errorf("no document ID set in URL path")
	}
	if len(segments) > 2 {
		return docref.Reference{}, "", fmt.Errorf("invalid URL path")
	}

	id, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil || id == 0 {
		return docref.Reference{}, "", fmt.Errorf("invalid document id: %q", segments[0])
	}

	subresource := ""
	if len(segments) == 2 {
		subresource = segments[1]
	}
	return docref.ByID(uint(id)), subresource, nil
}
