package api

import (
	"net/http"
	"time"

	"github.com/papyrusworks/papyrus/internal/server"
	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
	"github.com/papyrusworks/papyrus/pkg/store"
)

// Page is the rendering view of a resolved document: one title/content
// pair, drawn from the record the resolve selected.
type Page struct {
	ID        uint      `json:"id"`
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageRedirect tells the caller to issue a redirect response instead of
// rendering.
type PageRedirect struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PagesResponse carries either a renderable page or a redirect.
type PagesResponse struct {
	Page     *Page         `json:"page,omitempty"`
	Redirect *PageRedirect `json:"redirect,omitempty"`
}

// PagesHandler resolves a path to renderable content the way an
// anonymous reader would: live documents render, redirect paths return
// a redirect envelope, and draft-only documents stay invisible unless
// drafts are requested.
func PagesHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errResp := func(httpCode int, userErrMsg, logErrMsg string, err error) {
			srv.Logger.Error(logErrMsg,
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
			http.Error(w, userErrMsg, httpCode)
		}

		if r.Method != "GET" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		path := r.URL.Query().Get("path")
		if path == "" {
			http.Error(w, "Bad request: path query parameter is required",
				http.StatusBadRequest)
			return
		}
		withDrafts := r.URL.Query().Get("drafts") == "true"

		res, err := srv.Store.FetchByReference(r.Context(), docref.ByPath(path))
		if err != nil {
			respondStoreError(srv, w, r, "error resolving page", err)
			return
		}

		if res.IsRedirect() {
			respondJSON(srv, w, r, http.StatusOK, &PagesResponse{
				Redirect: &PageRedirect{
					From: res.Redirect.Path,
					To:   res.Document.Path,
				},
			})
			return
		}

		record := pageRecord(res, withDrafts)
		if record == nil {
			// Draft-only documents are invisible to anonymous readers.
			errResp(
				http.StatusNotFound,
				"Not found",
				"page has no published content",
				nil,
			)
			return
		}

		respondJSON(srv, w, r, http.StatusOK, &PagesResponse{
			Page: &Page{
				ID:        res.Document.ID,
				Path:      res.Document.Path,
				Title:     record.Title,
				Content:   record.Content,
				Published: record.Published,
				UpdatedAt: res.Document.UpdatedAt,
			},
		})
	})
}

// pageRecord selects the record a resolve renders: the published record
// for anonymous readers, the freshest content when drafts are requested.
func pageRecord(res *store.Result, withDrafts bool) *models.DocumentRecord {
	if withDrafts && res.Document.DraftRecord != nil {
		return res.Document.DraftRecord
	}
	return res.Document.CurrentRecord
}
