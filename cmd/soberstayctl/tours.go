package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/soberstay/marketplace/pkg/tenantstate"
)

func newToursCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tours",
		Short: "Tour requests kept on this device",
	}
	cmd.AddCommand(newTourRequestCmd(get), newTourListCmd(get), newTourRespondCmd(get), newTourNotesCmd(get))
	return cmd
}

func newTourRequestCmd(get func() *app) *cobra.Command {
	var d tenantstate.TourDraft
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Ask for a tour of a listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := time.Parse(time.DateOnly, d.Date); err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}
			a := get()
			r := a.state.Tours.Create(cmd.Context(), d)
			if _, err := a.state.Engagement.Increment(tenantstate.ApplicationsSubmitted); err != nil {
				return err
			}
			a.printf("Requested %s (%s)\n", r.ID, r.Status)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.PropertyID, "property", "", "listing id")
	f.StringVar(&d.PropertyName, "property-name", "", "listing name")
	f.StringVar(&d.Date, "date", "", "tour date, YYYY-MM-DD")
	f.StringVar(&d.Time, "time", "", "tour time, e.g. 14:00")
	f.StringVar(&d.TenantName, "name", "", "your name")
	f.StringVar(&d.TenantEmail, "email", "", "your email")
	f.StringVar(&d.TourType, "type", "in-person", "in-person or virtual")
	_ = cmd.MarkFlagRequired("property")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func newTourListCmd(get func() *app) *cobra.Command {
	var property string
	cmd := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			tours := a.state.Tours.List()
			if property != "" {
				tours = a.state.Tours.ForProperty(property)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPROPERTY\tWHEN\tSTATUS\tMESSAGE")
			for _, r := range tours {
				fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\n", r.ID, r.PropertyName, r.Date, r.Time, r.Status, r.ProviderMessage)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&property, "property", "", "only requests for this listing")
	return cmd
}

func newTourRespondCmd(get func() *app) *cobra.Command {
	var status, message string
	cmd := &cobra.Command{
		Use:   "respond <tour-id>",
		Short: "Approve or deny a tour request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := tenantstate.ParseTourStatus(status)
			if err != nil {
				return err
			}
			a := get()
			r, err := a.state.Tours.UpdateStatus(cmd.Context(), args[0], st, message)
			if err != nil {
				return err
			}
			if st == tenantstate.TourApproved {
				if _, err := a.state.Engagement.Increment(tenantstate.ApprovalsReceived); err != nil {
					return err
				}
			}
			a.printf("%s is now %s\n", r.ID, r.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "approved or denied")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message for the tenant")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func newTourNotesCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <tour-id> <text>",
		Short: "Attach private provider notes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := get().state.Tours.SetProviderNotes(cmd.Context(), args[0], args[1])
			return err
		},
	}
}
