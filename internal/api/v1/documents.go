package api

import (
	"fmt"
	"net/http"

	"github.com/papyrusworks/papyrus/internal/server"
	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/store"
)

// DocumentsRequest is the upsert envelope for the documents collection.
// Document optionally references an existing document to update; when it
// is absent or resolves to nothing, a new document is created.
type DocumentsRequest struct {
	Document  docref.Reference `json:"document"`
	Path      string           `json:"path,omitempty"`
	Title     string           `json:"title"`
	Content   string           `json:"content,omitempty"`
	Published bool             `json:"published,omitempty"`
}

// RedirectsRequest adds an alias path to a document.
type RedirectsRequest struct {
	Path string `json:"path"`
}

// DocumentsHandler handles the documents collection resource.
func DocumentsHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "POST":
			var req DocumentsRequest
			if err := decodeRequest(r, &req); err != nil {
				srv.Logger.Error("error decoding documents request",
					"method", r.Method,
					"path", r.URL.Path,
					"error", err,
				)
				http.Error(w, fmt.Sprintf("Bad request: %q", err),
					http.StatusBadRequest)
				return
			}

			if req.Title == "" {
				http.Error(w, "Bad request: title is required",
					http.StatusBadRequest)
				return
			}

			doc, err := srv.Store.Upsert(r.Context(), req.Document, store.UpsertInput{
				Path:      req.Path,
				Title:     req.Title,
				Content:   req.Content,
				Published: req.Published,
			})
			if err != nil {
				respondStoreError(srv, w, r, "error upserting document", err)
				return
			}

			respondJSON(srv, w, r, http.StatusOK, doc)

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// DocumentHandler handles a single document resource and its
// subresources: redirects and unpublish.
func DocumentHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errResp := func(httpCode int, userErrMsg, logErrMsg string, err error) {
			srv.Logger.Error(logErrMsg,
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			http.Error(w, userErrMsg, httpCode)
		}

		ref, subresource, err := parseDocumentURL(r.URL.Path)
		if err != nil {
			errResp(
				http.StatusBadRequest,
				"Bad request: invalid document URL",
				"error parsing document URL",
				err,
			)
			return
		}

		switch subresource {
		case "":
			documentResource(srv, w, r, ref)
		case "redirects":
			redirectsResource(srv, w, r, ref)
		case "unpublish":
			unpublishResource(srv, w, r, ref)
		default:
			errResp(
				http.StatusNotFound,
				"Not found",
				"unknown document subresource",
				fmt.Errorf("subresource %q", subresource),
			)
		}
	})
}

func documentResource(
	srv server.Server, w http.ResponseWriter, r *http.Request,
	ref docref.Reference,
) {
	switch r.Method {
	case "GET":
		res, err := srv.Store.FetchByReference(r.Context(), ref)
		if err != nil {
			respondStoreError(srv, w, r, "error fetching document", err)
			return
		}
		respondJSON(srv, w, r, http.StatusOK, res.Document)

	case "DELETE":
		if err := srv.Store.Delete(r.Context(), ref); err != nil {
			respondStoreError(srv, w, r, "error deleting document", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func redirectsResource(
	srv server.Server, w http.ResponseWriter, r *http.Request,
	ref docref.Reference,
) {
	switch r.Method {
	case "GET":
		redirects, err := srv.Store.ListRedirects(r.Context(), ref)
		if err != nil {
			respondStoreError(srv, w, r, "error listing redirects", err)
			return
		}
		respondJSON(srv, w, r, http.StatusOK, redirects)

	case "POST":
		var req RedirectsRequest
		if err := decodeRequest(r, &req); err != nil {
			srv.Logger.Error("error decoding redirects request",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			http.Error(w, fmt.Sprintf("Bad request: %q", err),
				http.StatusBadRequest)
			return
		}

		redirect, err := srv.Store.AddRedirect(r.Context(), ref, req.Path)
		if err != nil {
			respondStoreError(srv, w, r, "error adding redirect", err)
			return
		}
		respondJSON(srv, w, r, http.StatusOK, redirect)

	case "DELETE":
		path := r.URL.Query().Get("path")
		if path == "" {
			http.Error(w, "Bad request: path query parameter is required",
				http.StatusBadRequest)
			return
		}

		if err := srv.Store.RemoveRedirect(r.Context(), ref, path); err != nil {
			respondStoreError(srv, w, r, "error removing redirect", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func unpublishResource(
	srv server.Server, w http.ResponseWriter, r *http.Request,
	ref docref.Reference,
) {
	switch r.Method {
	case "POST":
		doc, err := srv.Store.Unpublish(r.Context(), ref)
		if err != nil {
			respondStoreError(srv, w, r, "error unpublishing document", err)
			return
		}
		respondJSON(srv, w, r, http.StatusOK, doc)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
