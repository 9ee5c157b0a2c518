package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/inovacc/labctl/internal/labapi"
	"github.com/inovacc/labctl/internal/session"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign out and manage your account credentials",
	Long: `Manage the session token labctl stores in secure storage.

Available Commands:
  login            Sign in with email and password
  register         Create an account and sign in
  logout           Sign out and forget the token
  status           Show the stored session without contacting the backend
  verify           Check the stored token with the backend
  forgot-password  Request a password reset mail
  reset-password   Set a new password with a reset token

Examples:
  labctl auth login --email me@lab.org
  echo "$PASSWORD" | labctl auth login --email me@lab.org
  labctl auth status`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var (
	authEmail      string
	authName       string
	authPhone      string
	authDepartment string
	authClientType string
)

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in and store the returned token.

The password is read from the terminal without echo, or from stdin when it
is piped.`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runAuthRegister,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored token",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the stored token with the backend",
	Long: `Verify the stored token with the backend and print the signed-in user.
A token the backend rejects is removed.`,
	Args: cobra.NoArgs,
	RunE: runAuthVerify,
}

var authForgotCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset mail",
	Args:  cobra.NoArgs,
	RunE: runAPI(func(ctx context.Context, api *labapi.API, _ []string) (json.RawMessage, error) {
		return api.Auth.ForgotPassword(ctx, authEmail, authClientType)
	}),
}

var authResetCmd = &cobra.Command{
	Use:   "reset-password <reset-token>",
	Short: "Set a new password using the token from the reset mail",
	Args:  cobra.ExactArgs(1),
	RunE: runAPI(func(ctx context.Context, api *labapi.API, args []string) (json.RawMessage, error) {
		password, err := readSecret("New password: ")
		if err != nil {
			return nil, err
		}

		return api.Auth.ResetPassword(ctx, args[0], password)
	}),
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authRegisterCmd, authLogoutCmd, authStatusCmd, authVerifyCmd, authForgotCmd, authResetCmd)

	for _, c := range []*cobra.Command{authLoginCmd, authRegisterCmd, authForgotCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "Account email (required)")
		_ = c.MarkFlagRequired("email")
	}

	authRegisterCmd.Flags().StringVar(&authName, "name", "", "Full name (required)")
	authRegisterCmd.Flags().StringVar(&authPhone, "phone", "", "Phone number")
	authRegisterCmd.Flags().StringVar(&authDepartment, "department", "", "Department")
	_ = authRegisterCmd.MarkFlagRequired("name")

	authForgotCmd.Flags().StringVar(&authClientType, "client", labapi.ClientMobile, "Reset link target (mobile or web)")
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	password, err := readSecret("Password: ")
	if err != nil {
		return err
	}

	b, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	user, err := b.session.Login(cmd.Context(), authEmail, password)
	if err != nil {
		return err
	}

	printUser(cmd.OutOrStdout(), "Signed in", user)

	return nil
}

func runAuthRegister(cmd *cobra.Command, _ []string) error {
	password, err := readSecret("Password: ")
	if err != nil {
		return err
	}

	b, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	user, err := b.session.Register(cmd.Context(), labapi.RegisterRequest{
		Name:       authName,
		Email:      authEmail,
		Password:   password,
		Phone:      authPhone,
		Department: authDepartment,
	})
	if err != nil {
		return err
	}

	printUser(cmd.OutOrStdout(), "Registered", user)

	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	b, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	if err := b.session.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Signed out."))

	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	b, err := openStorage()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := b.session.Status(cmd.Context())

	if !st.SignedIn {
		_, _ = fmt.Fprintln(out, warnStyle.Render("Not signed in."))
		return nil
	}

	printField(out, "Session", okStyle.Render("token stored"))

	if st.Claims == nil {
		printField(out, "Token", dimStyle.Render("opaque"))
		return nil
	}

	c := st.Claims
	if c.Email != "" {
		printField(out, "Email", c.Email)
	}

	if c.Role != "" {
		printField(out, "Role", c.Role)
	}

	if c.IssuedAt != nil {
		printField(out, "Issued", c.IssuedAt.Local().Format(time.RFC1123))
	}

	if c.ExpiresAt != nil {
		exp := c.ExpiresAt.Local().Format(time.RFC1123)
		if c.Expired(time.Now()) {
			exp = errStyle.Render(exp + " (expired)")
		}

		printField(out, "Expires", exp)
	}

	return nil
}

func runAuthVerify(cmd *cobra.Command, _ []string) error {
	b, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	user, err := b.session.Check(cmd.Context())
	if errors.Is(err, session.ErrNoToken) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("Not signed in."))
		return nil
	}

	if err != nil {
		return err
	}

	printUser(cmd.OutOrStdout(), "Verified", user)

	return nil
}

func printUser(w io.Writer, title string, u *session.User) {
	_, _ = fmt.Fprintln(w, headerStyle.Render(title))
	printField(w, "Name", u.Name)
	printField(w, "Email", u.Email)
	printField(w, "Role", u.Role)

	if u.Department != "" {
		printField(w, "Department", u.Department)
	}
}
