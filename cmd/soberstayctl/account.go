package main

import (
	"github.com/spf13/cobra"

	"github.com/soberstay/marketplace/pkg/api"
	"github.com/soberstay/marketplace/pkg/auth"
)

func newLoginCmd(get func() *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			u, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := a.signIn(u); err != nil {
				return err
			}
			a.printf("Signed in as %s (%s)\n", u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(get func() *app) *cobra.Command {
	var req api.RegisterRequest
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			req.Role = auth.Role(role)
			u, err := a.client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.signIn(u); err != nil {
				return err
			}
			a.printf("Registered %s (%s)\n", u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "account password")
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(auth.RoleTenant), "tenant or provider")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newLogoutCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session; local lists stay on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.signOut(cmd.Context()); err != nil {
				return err
			}
			a.printf("Signed out\n")
			return nil
		},
	}
}

func newWhoamiCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a := get()
			if u := a.currentUser(); u != nil {
				a.printf("%s (%s)\n", u.Email, u.Role)
				return
			}
			a.printf("anonymous\n")
		},
	}
}
