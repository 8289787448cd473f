package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devtracker/devtracker-cli/internal/onboarding"
	"github.com/devtracker/devtracker-cli/internal/session"
	"github.com/devtracker/devtracker-cli/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Sign up, log in, log out, and inspect the current session.`,
}

// authSignupCmd registers a new account
var authSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new user account",
	Long: `Register a new user account with the DevTracker service.

Signing up does not log you in. Run 'devtracker auth login' afterwards,
or use 'devtracker setup' for the full guided flow.

Examples:
  devtracker auth signup --name "Ada Lovelace" --email ada@example.com --password secret
  devtracker auth signup --name Ada --email ada@example.com --password secret --position MANAGER`,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := onboarding.SignupForm{}
		form.Name, _ = cmd.Flags().GetString("name")
		form.Email, _ = cmd.Flags().GetString("email")
		form.Password, _ = cmd.Flags().GetString("password")
		form.ExternalID, _ = cmd.Flags().GetString("user-id")
		form.Position, _ = cmd.Flags().GetString("position")

		if form.Name == "" || form.Email == "" || form.Password == "" {
			if !tui.IsInteractive() {
				return fmt.Errorf("--name, --email and --password are required")
			}
			if err := tui.RunSignupForm(&form); err != nil {
				return err
			}
		}

		flow := onboarding.NewFlow(onboarding.Wrap(appClient), appSessions, appLogger)
		if err := flow.SubmitSignup(cmd.Context(), form); err != nil {
			return err
		}

		fmt.Println("Account created.")
		fmt.Println("Run 'devtracker auth login' to log in.")
		return nil
	},
}

// authLoginCmd authenticates and persists the session
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to DevTracker",
	Long: `Authenticate with the DevTracker service and save the session.

If your account does not belong to an organization yet, login leads into
organization resolution: join an existing organization or create one. The
session is saved only once membership is settled.

Examples:
  devtracker auth login --email ada@example.com --password secret
  devtracker auth login`,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" || password == "" {
			if !tui.IsInteractive() {
				return fmt.Errorf("--email and --password are required")
			}
			if err := tui.RunLoginForm(&email, &password); err != nil {
				return err
			}
		}

		flow := onboarding.NewLoginFlow(onboarding.Wrap(appClient), appSessions, appLogger)
		if err := flow.SubmitLogin(cmd.Context(), email, password); err != nil {
			return err
		}

		if flow.Authenticated() {
			fmt.Println("Logged in.")
			return nil
		}

		// NO_ORG: membership has to be resolved before the session persists.
		if !tui.IsInteractive() {
			return fmt.Errorf("your account belongs to no organization; run 'devtracker setup' in a terminal to join or create one")
		}
		return resolveOrganization(cmd, flow)
	},
}

// resolveOrganization drives the join-or-create loop after a NO_ORG login.
func resolveOrganization(cmd *cobra.Command, flow *onboarding.Flow) error {
	ctx := cmd.Context()
	for flow.Stage() == onboarding.StageResolveOrg {
		if org := flow.CreatedOrg(); org != nil {
			fmt.Printf("Organization %d was created but the join did not complete.\n", org.OrgID)
			fmt.Printf("Retry joining with passcode %q.\n", org.JoinPasscode)
		}

		join, err := tui.RunOrgChoice()
		if err != nil {
			return err
		}

		if join {
			var orgID int64
			var passcode string
			if err := tui.RunJoinOrgForm(&orgID, &passcode); err != nil {
				return err
			}
			if err := flow.SubmitJoin(ctx, orgID, passcode); err != nil {
				fmt.Printf("Join failed: %v\n", err)
				continue
			}
		} else {
			var name, description string
			if err := tui.RunCreateOrgForm(&name, &description); err != nil {
				return err
			}
			if err := flow.SubmitCreate(ctx, name, description); err != nil {
				fmt.Printf("Create failed: %v\n", err)
				continue
			}
		}
	}

	fmt.Println("Organization joined. Logged in.")
	return nil
}

// authLogoutCmd clears the stored session
var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	Long: `Remove the saved session token from disk.

Examples:
  devtracker auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := appSessions.Token(); !ok {
			fmt.Println("Not logged in.")
			return nil
		}
		if err := appSessions.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

// authStatusCmd shows current auth status
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Long: `Show whether a session is stored and which user it belongs to.

Examples:
  devtracker auth status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, ok := appSessions.Token()
		if !ok {
			fmt.Println("Not logged in.")
			fmt.Println("Use 'devtracker auth login' to authenticate.")
			return nil
		}

		userID, ok := session.DecodeUserID(token)
		if !ok {
			fmt.Println("Logged in (token present, user id not readable).")
			return nil
		}

		user, err := appClient.GetUser(cmd.Context(), userID)
		if err != nil {
			fmt.Println("Token may be expired or invalid.")
			fmt.Println("Use 'devtracker auth login' to re-authenticate.")
			return nil
		}

		fmt.Println("Logged in")
		fmt.Printf("User ID:  %d\n", user.UserID)
		fmt.Printf("Name:     %s\n", user.UserName)
		fmt.Printf("Email:    %s\n", user.Email)
		fmt.Printf("Position: %s\n", user.Position)
		return nil
	},
}

func init() {
	authSignupCmd.Flags().String("name", "", "full name")
	authSignupCmd.Flags().String("email", "", "email address")
	authSignupCmd.Flags().String("password", "", "password")
	authSignupCmd.Flags().String("user-id", "", "external user id (generated when omitted)")
	authSignupCmd.Flags().String("position", "", "position (MANAGER, DEVELOPER, TESTER, CLIENT, LEAD)")

	authLoginCmd.Flags().String("email", "", "email address")
	authLoginCmd.Flags().String("password", "", "password")

	authCmd.AddCommand(authSignupCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
