package handlers

import (
	"net/http"

	"github.com/soberstay/marketplace/pkg/response"
)

func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ids, err := h.tenantService.Favorites(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, ids)
}

func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	if err := h.tenantService.AddFavorite(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	if err := h.tenantService.RemoveFavorite(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handlers) ListViewedHomes(w http.ResponseWriter, r *http.Request) {
	views, err := h.tenantService.ViewedHomes(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, views)
}

func (h *Handlers) RecordView(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	if err := h.tenantService.RecordView(r.Context(), CurrentUser(r.Context()).ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}
