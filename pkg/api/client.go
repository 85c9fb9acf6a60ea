// Package api is the HTTP client for the marketplace REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/soberstay/marketplace/pkg/auth"
	"github.com/soberstay/marketplace/pkg/search"
)

// Error is a non-2xx response from the API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *Error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ViewedHome is one entry of a tenant's viewing history.
type ViewedHome struct {
	PropertyID string    `json:"propertyId"`
	ViewedAt   time.Time `json:"viewedAt"`
}

type RegisterRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Name     string    `json:"name"`
	Role     auth.Role `json:"role"`
}

type sessionResponse struct {
	User  *auth.User `json:"user"`
	Token string     `json:"token,omitempty"`
}

type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Client{http: c}
}

// SetSession sets the session token sent as the session cookie.
func (c *Client) SetSession(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx)
	if tok := c.Session(); tok != "" {
		r.SetCookie(&http.Cookie{Name: auth.SessionCookie, Value: tok})
	}
	return r
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (*resty.Response, error) {
	var eb errorBody
	r := c.request(ctx).SetError(&eb)
	if body != nil {
		r.SetBody(body)
	}
	if out != nil {
		r.SetResult(out)
	}
	resp, err := r.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		return resp, &Error{Status: resp.StatusCode(), Code: eb.Code, Message: eb.Error}
	}
	return resp, nil
}

func (c *Client) ListFavorites(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := c.do(ctx, http.MethodGet, "/api/tenant/favorites", nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) AddFavorite(ctx context.Context, listingID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/tenant/favorites/"+url.PathEscape(listingID), nil, nil)
	return err
}

func (c *Client) RemoveFavorite(ctx context.Context, listingID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/tenant/favorites/"+url.PathEscape(listingID), nil, nil)
	return err
}

func (c *Client) ListViewedHomes(ctx context.Context) ([]ViewedHome, error) {
	var views []ViewedHome
	if _, err := c.do(ctx, http.MethodGet, "/api/tenant/viewed-homes", nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

func (c *Client) RecordView(ctx context.Context, listingID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/tenant/viewed-homes/"+url.PathEscape(listingID), nil, nil)
	return err
}

// ListListings returns every approved listing.
func (c *Client) ListListings(ctx context.Context) ([]search.Listing, error) {
	var listings []search.Listing
	if _, err := c.do(ctx, http.MethodGet, "/api/listings", nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (c *Client) GetListing(ctx context.Context, id string) (*search.Listing, error) {
	var l search.Listing
	if _, err := c.do(ctx, http.MethodGet, "/api/listings/"+url.PathEscape(id), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// SearchListings runs the query engine server side.
func (c *Client) SearchListings(ctx context.Context, criteria search.Criteria) ([]search.Result, error) {
	q, err := criteria.Query()
	if err != nil {
		return nil, fmt.Errorf("encode criteria: %w", err)
	}
	var results []search.Result
	var eb errorBody
	resp, err := c.request(ctx).
		SetQueryParamsFromValues(q).
		SetResult(&results).
		SetError(&eb).
		Get("/api/listings/search")
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &Error{Status: resp.StatusCode(), Code: eb.Code, Message: eb.Error}
	}
	return results, nil
}

// ListFeatured returns all featured records, active or not.
func (c *Client) ListFeatured(ctx context.Context) ([]search.FeaturedRecord, error) {
	var records []search.FeaturedRecord
	if _, err := c.do(ctx, http.MethodGet, "/api/featured-listings", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Login authenticates and keeps the returned session for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.User, error) {
	body := map[string]string{"email": email, "password": password}
	return c.startSession(ctx, "/api/auth/login", body)
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*auth.User, error) {
	return c.startSession(ctx, "/api/auth/register", req)
}

func (c *Client) startSession(ctx context.Context, path string, body any) (*auth.User, error) {
	var out sessionResponse
	resp, err := c.do(ctx, http.MethodPost, path, body, &out)
	if err != nil {
		return nil, err
	}
	token := out.Token
	for _, ck := range resp.Cookies() {
		if ck.Name == auth.SessionCookie && ck.Value != "" {
			token = ck.Value
		}
	}
	if token == "" || out.User == nil {
		return nil, errors.New("api: login response carried no session")
	}
	c.SetSession(token)
	return out.User, nil
}

// Logout ends the server session. The local token is dropped even if the
// call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.SetSession("")
	return err
}

func (c *Client) Me(ctx context.Context) (*auth.User, error) {
	var out sessionResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}
