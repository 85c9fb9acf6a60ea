// Command soberstayctl is a terminal client for the Sober Stay marketplace.
// Tenant collections live in a local SQLite file and follow the signed-in
// account to the server when one is present.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/soberstay/marketplace/pkg/localstore"
	"github.com/soberstay/marketplace/pkg/logger"
)

func main() {
	root, finish := newRootCmd(os.Stdout, openApp)
	err := root.Execute()
	finish()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// opener builds the app for one invocation and returns its cleanup.
type opener func(out io.Writer) (*app, func(), error)

func openApp(out io.Writer) (*app, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.SetDefault(logger.New(os.Stderr, cfg.LogLevel, true))

	store, err := localstore.OpenSQLite(cfg.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open local state %s: %w", cfg.StatePath, err)
	}
	return newApp(cfg, store, out), func() { _ = store.Close() }, nil
}

// newRootCmd returns the command tree and a finish func that must run after
// Execute, whether or not the command failed.
func newRootCmd(out io.Writer, open opener) (*cobra.Command, func()) {
	var (
		a       *app
		cleanup func()
	)
	finish := func() {
		if a == nil {
			return
		}
		// let queued server writes land before the process exits
		a.state.Wait()
		cleanup()
		a = nil
	}
	root := &cobra.Command{
		Use:           "soberstayctl",
		Short:         "Browse sober-living listings and manage your tenant lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opened, done, err := open(out)
			if err != nil {
				return err
			}
			a, cleanup = opened, done
			return nil
		},
	}
	root.SetOut(out)

	get := func() *app { return a }
	root.AddCommand(
		newLoginCmd(get),
		newRegisterCmd(get),
		newLogoutCmd(get),
		newWhoamiCmd(get),
		newBrowseCmd(get),
		newFavoritesCmd(get),
		newViewedCmd(get),
		newToursCmd(get),
		newStatsCmd(get),
	)
	return root, finish
}
