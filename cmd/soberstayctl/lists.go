package main

import (
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/soberstay/marketplace/pkg/tenantstate"
)

func newFavoritesCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Saved homes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:  "list",
			Args: cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				a := get()
				for _, id := range a.state.Favorites.Fetch(cmd.Context()) {
					a.printf("%s\n", id)
				}
			},
		},
		&cobra.Command{
			Use:  "add <listing-id>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := get()
				if slices.Contains(a.state.Favorites.Fetch(cmd.Context()), args[0]) {
					a.printf("already saved\n")
					return nil
				}
				a.state.Favorites.Add(cmd.Context(), args[0])
				_, err := a.state.Engagement.Increment(tenantstate.SavedHomes)
				return err
			},
		},
		&cobra.Command{
			Use:  "remove <listing-id>",
			Args: cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				get().state.Favorites.Remove(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:  "toggle <listing-id>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := get()
				if !a.state.Favorites.Toggle(cmd.Context(), args[0]) {
					a.printf("removed\n")
					return nil
				}
				a.printf("saved\n")
				_, err := a.state.Engagement.Increment(tenantstate.SavedHomes)
				return err
			},
		},
	)
	return cmd
}

func newViewedCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewed",
		Short: "Recently viewed homes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:  "list",
			Args: cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				a := get()
				for _, v := range a.state.Viewed.Fetch(cmd.Context()) {
					a.printf("%s\t%s\n", v.PropertyID, v.ViewedAt.Local().Format(time.DateTime))
				}
			},
		},
		&cobra.Command{
			Use:  "record <listing-id>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := get()
				seen := slices.ContainsFunc(a.state.Viewed.Fetch(cmd.Context()), func(v tenantstate.ViewedHome) bool {
					return v.PropertyID == args[0]
				})
				a.state.Viewed.Record(cmd.Context(), args[0])
				if seen {
					return nil
				}
				_, err := a.state.Engagement.Increment(tenantstate.HomesViewed)
				return err
			},
		},
	)
	return cmd
}
