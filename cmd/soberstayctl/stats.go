package main

import (
	"github.com/spf13/cobra"

	"github.com/soberstay/marketplace/pkg/tenantstate"
)

func newStatsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Engagement counters on this device",
	}
	show := func(a *app, s tenantstate.EngagementStats) {
		a.printf("applications submitted: %d\n", s.ApplicationsSubmitted)
		a.printf("homes viewed:           %d\n", s.HomesViewed)
		a.printf("approvals received:     %d\n", s.ApprovalsReceived)
		a.printf("saved homes:            %d\n", s.SavedHomes)
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:  "show",
			Args: cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				a := get()
				show(a, a.state.Engagement.Get())
			},
		},
		&cobra.Command{
			Use:       "incr <field>",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{string(tenantstate.ApplicationsSubmitted), string(tenantstate.HomesViewed), string(tenantstate.ApprovalsReceived), string(tenantstate.SavedHomes)},
			RunE: func(cmd *cobra.Command, args []string) error {
				field, err := tenantstate.ParseEngagementField(args[0])
				if err != nil {
					return err
				}
				a := get()
				s, err := a.state.Engagement.Increment(field)
				if err != nil {
					return err
				}
				show(a, s)
				return nil
			},
		},
		&cobra.Command{
			Use:  "reset",
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return get().state.Engagement.Reset()
			},
		},
	)
	return cmd
}
