package handlers

import (
	"net/http"

	"github.com/soberstay/marketplace/pkg/response"
	"github.com/soberstay/marketplace/pkg/search"
	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
)

// Public catalog

func (h *Handlers) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.ListApproved(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, listings)
}

func (h *Handlers) SearchListings(w http.ResponseWriter, r *http.Request) {
	criteria, err := search.CriteriaFromQuery(r.URL.Query())
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	results, err := h.listingService.Search(r.Context(), criteria)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, results)
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	l, err := h.listingService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, l)
}

func (h *Handlers) ListFeatured(w http.ResponseWriter, r *http.Request) {
	records, err := h.listingService.ListFeatured(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, records)
}

// Provider

func (h *Handlers) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateListingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sub, err := h.listingService.Submit(r.Context(), CurrentUser(r.Context()).ID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, sub)
}

func (h *Handlers) ProviderListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.ProviderListings(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, listings)
}

func (h *Handlers) ListingChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}
	cl, err := h.listingService.Checklist(r.Context(), *CurrentUser(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, cl)
}
