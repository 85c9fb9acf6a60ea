package main

import (
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/soberstay/marketplace/pkg/search"
)

func newBrowseCmd(get func() *app) *cobra.Command {
	var (
		c        search.Criteria
		maxPrice float64
		remote   bool
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Search approved listings, featured first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if cmd.Flags().Changed("max-price") {
				c.MaxPrice = &maxPrice
			}

			var results []search.Result
			if remote {
				var err error
				if results, err = a.client.SearchListings(cmd.Context(), c); err != nil {
					return err
				}
			} else {
				listings, err := a.client.ListListings(cmd.Context())
				if err != nil {
					return err
				}
				featured, err := a.client.ListFeatured(cmd.Context())
				if err != nil {
					return err
				}
				results = search.Run(listings, featured, c, time.Now())
			}

			favorites := a.state.Favorites.Fetch(cmd.Context())
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLOCATION\tPRICE\t")
			for _, r := range results {
				badge := ""
				if r.Featured {
					badge = "featured"
				}
				if slices.Contains(favorites, r.ID) {
					badge += " *"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s, %s\t%s\t%s\n", r.ID, r.PropertyName, r.City, r.State, formatPrice(r.MonthlyPrice), badge)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			a.printf("%d listing(s)\n", len(results))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&c.Location, "location", "l", "", "city, state or property name")
	f.Float64Var(&maxPrice, "max-price", 0, "monthly price ceiling")
	f.StringSliceVar(&c.Genders, "gender", nil, "allowed genders")
	f.StringSliceVar(&c.SupervisionTypes, "supervision", nil, "allowed supervision types")
	f.StringSliceVar(&c.RoomTypes, "room-type", nil, "allowed room types")
	f.BoolVar(&c.MATFriendlyOnly, "mat-friendly", false, "only MAT-friendly homes")
	f.BoolVar(&c.AcceptsCouplesOnly, "accepts-couples", false, "only homes that accept couples")
	f.BoolVar(&remote, "remote", false, "rank on the server instead of locally")
	return cmd
}

func formatPrice(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("$%.0f/mo", *p)
}
