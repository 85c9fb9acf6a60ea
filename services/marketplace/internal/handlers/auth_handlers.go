package handlers

import (
	"net/http"
	"time"

	"github.com/soberstay/marketplace/pkg/auth"
	"github.com/soberstay/marketplace/pkg/response"
	"github.com/soberstay/marketplace/services/marketplace/internal/domain"
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	response.JSON(w, http.StatusCreated, sess)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	response.JSON(w, http.StatusOK, sess)
}

// Logout clears the cookie. Tokens are stateless so nothing else is revoked.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", time.Unix(0, 0))
	response.NoContent(w)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Me(r.Context(), CurrentUser(r.Context()).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"user": user.Principal()})
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	c := &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.config.Auth.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.config.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
