package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soberstay/marketplace/pkg/auth"
	"github.com/soberstay/marketplace/pkg/config"
	"github.com/soberstay/marketplace/pkg/logger"
	"github.com/soberstay/marketplace/pkg/response"
	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
	"github.com/soberstay/marketplace/services/marketplace/internal/service"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	authService    service.AuthService
	listingService service.ListingService
	tenantService  service.TenantService
	adminService   service.AdminService
	config         *config.Config
}

func New(
	authService service.AuthService,
	listingService service.ListingService,
	tenantService service.TenantService,
	adminService service.AdminService,
	config *config.Config,
) *Handlers {
	return &Handlers{
		authService:    authService,
		listingService: listingService,
		tenantService:  tenantService,
		adminService:   adminService,
		config:         config,
	}
}

// Mount registers every /api route on r. authLimit wraps the login and
// register endpoints.
func (h *Handlers) Mount(r chi.Router, authLimit ...func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(h.Authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit...).Post("/register", h.Register)
			r.With(authLimit...).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.With(h.RequireRole()).Get("/me", h.Me)
		})

		r.Get("/listings", h.ListListings)
		r.Get("/listings/search", h.SearchListings)
		r.Get("/listings/{id}", h.GetListing)
		r.Get("/featured-listings", h.ListFeatured)

		r.Route("/tenant", func(r chi.Router) {
			r.Use(h.RequireRole(auth.RoleTenant))
			r.Get("/favorites", h.ListFavorites)
			r.Post("/favorites/{id}", h.AddFavorite)
			r.Delete("/favorites/{id}", h.RemoveFavorite)
			r.Get("/viewed-homes", h.ListViewedHomes)
			r.Post("/viewed-homes/{id}", h.RecordView)
		})

		r.Route("/provider", func(r chi.Router) {
			r.Use(h.RequireRole(auth.RoleProvider, auth.RoleAdmin))
			r.Post("/listings", h.CreateListing)
			r.Get("/listings", h.ProviderListings)
			r.Get("/listings/{id}/checklist", h.ListingChecklist)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireRole(auth.RoleAdmin))
			r.Get("/listings", h.AdminListings)
			r.Post("/listings/{id}/review", h.ReviewListing)
			r.Post("/featured-listings", h.CreateFeatured)
			r.Delete("/featured-listings/{id}", h.DeleteFeatured)
		})
	})
}

type ctxKey int

const (
	userKey ctxKey = iota
	badTokenKey
)

// Authenticate attaches the session user when the request carries a valid
// token. Everything else passes through as anonymous so public routes and
// logout keep working with a stale cookie; RequireRole gates the rest.
func (h *Handlers) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
		if err != nil {
			logger.DebugContext(r.Context(), "Rejected session token", "error", err)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), badTokenKey, true)))
			return
		}
		user := claims.User()
		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, logger.UserIDKey, user.ID)
		ctx = context.WithValue(ctx, logger.RoleKey, string(user.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects anonymous requests, and when roles are given, users
// holding none of them.
func (h *Handlers) RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				if bad, _ := r.Context().Value(badTokenKey).(bool); bad {
					response.WriteError(w, http.StatusUnauthorized, "Invalid or expired session", response.CodeInvalidToken)
					return
				}
				response.Unauthorized(w, "Authentication required")
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, user.Role) {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(ctx context.Context) *auth.User {
	u, _ := ctx.Value(userKey).(*auth.User)
	return u
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(auth.SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return false
	}
	return true
}

func listingID(w http.ResponseWriter, r *http.Request) (string, bool) {
	return uuidParam(w, r, "Listing not found")
}

// uuidParam reads {id}. Anything that is not a UUID cannot exist, so it 404s.
func uuidParam(w http.ResponseWriter, r *http.Request, notFound string) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		response.NotFound(w, notFound)
		return "", false
	}
	return id, true
}

// writeServiceError maps service errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		response.WriteErrorWithDetails(w, http.StatusBadRequest, "Validation failed", response.CodeInvalidInput, verr.Error())
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		response.WriteError(w, http.StatusUnauthorized, "Invalid email or password", response.CodeInvalidCredentials)
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(w, "Email already registered", response.CodeEmailExists)
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(w, "Not found")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(w, "Insufficient permissions")
	case errors.Is(err, service.ErrAlreadyReviewed):
		response.Conflict(w, "Listing already reviewed", response.CodeAlreadyReviewed)
	case errors.Is(err, service.ErrChecklistIncomplete):
		response.WriteErrorWithDetails(w, http.StatusUnprocessableEntity, "Approval checklist incomplete", response.CodeChecklistIncomplete, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		response.InternalError(w, "Internal server error")
	}
}
