package handlers

import (
	"net/http"

	"github.com/soberstay/marketplace/pkg/response"
	"github.com/soberstay/marketplace/pkg/search"
	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
)

// AdminListings lists listings by ?status=, pending by default.
func (h *Handlers) AdminListings(w http.ResponseWriter, r *http.Request) {
	status := search.StatusPending
	if v := r.URL.Query().Get("status"); v != "" {
		s, ok := search.ParseListingStatus(v)
		if !ok {
			response.BadRequest(w, "status must be pending, approved or rejected")
			return
		}
		status = s
	}

	listings, err := h.adminService.ListByStatus(r.Context(), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, listings)
}

func (h *Handlers) ReviewListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	var req domain.ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	l, err := h.adminService.Review(r.Context(), CurrentUser(r.Context()).ID, id, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, l)
}

func (h *Handlers) CreateFeatured(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFeaturedRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.adminService.CreateFeatured(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, rec)
}

func (h *Handlers) DeleteFeatured(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "Featured listing not found")
	if !ok {
		return
	}
	if err := h.adminService.DeleteFeatured(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.NoContent(w)
}
