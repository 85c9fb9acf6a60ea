package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/soberstay/marketplace/pkg/api"
	"github.com/soberstay/marketplace/pkg/auth"
	"github.com/soberstay/marketplace/pkg/localstore"
	"github.com/soberstay/marketplace/pkg/logger"
	"github.com/soberstay/marketplace/pkg/tenantstate"
)

// Config is read from SOBERSTAY_* environment variables.
type Config struct {
	APIURL    string        `envconfig:"API_URL" default:"http://localhost:8080"`
	StatePath string        `envconfig:"STATE_PATH"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"15s"`
	LogLevel  string        `envconfig:"LOG_LEVEL" default:"warn"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("SOBERSTAY", &cfg); err != nil {
		return cfg, fmt.Errorf("read environment: %w", err)
	}
	if cfg.StatePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return cfg, fmt.Errorf("locate config dir: %w", err)
		}
		cfg.StatePath = filepath.Join(dir, "soberstay", "state.db")
	}
	return cfg, nil
}

// storedSession is what survives between invocations.
type storedSession struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

// app is one CLI invocation: a local store, a server client and the
// tenant collections layered over both.
type app struct {
	out    io.Writer
	store  localstore.Store
	client *api.Client
	state  *tenantstate.State

	mu   sync.RWMutex
	user *auth.User
}

func newApp(cfg Config, store localstore.Store, out io.Writer) *app {
	a := &app{
		out:    out,
		store:  store,
		client: api.New(cfg.APIURL, cfg.Timeout),
	}
	if s := localstore.LoadJSON[storedSession](store, localstore.KeySession); s.Token != "" && s.User != nil {
		a.client.SetSession(s.Token)
		a.user = s.User
	}
	a.state = tenantstate.New(tenantstate.Config{
		Local:        store,
		Remote:       a.client,
		Session:      tenantstate.SessionFunc(a.currentUser),
		WriteTimeout: cfg.Timeout,
	})
	return a
}

func (a *app) currentUser() *auth.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.user
}

// signIn records the session and drops remote snapshots taken for the
// previous user.
func (a *app) signIn(u *auth.User) error {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
	a.state.ResetAll()
	return localstore.SaveJSON(a.store, localstore.KeySession, storedSession{Token: a.client.Session(), User: u})
}

func (a *app) signOut(ctx context.Context) error {
	if a.currentUser() != nil {
		if err := a.client.Logout(ctx); err != nil {
			logger.WarnContext(ctx, "server logout failed", "error", err)
		}
	}
	a.client.SetSession("")
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()
	a.state.ResetAll()
	return a.store.Delete(localstore.KeySession)
}

// printf writes to the command output; write errors on a terminal are not
// actionable.
func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
