package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devtracker/devtracker-cli/internal/onboarding"
	"github.com/devtracker/devtracker-cli/internal/tui"
)

// setupCmd walks a new user through signup, login and organization
// resolution in one sitting.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-run wizard",
	Long: `Walk through account creation, login and organization membership.

The wizard registers an account, logs in, and then either joins an
existing organization or creates a new one. Your session is saved only
once the whole flow succeeds.

Examples:
  devtracker setup`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsInteractive() {
			return fmt.Errorf("setup requires an interactive terminal; use 'devtracker auth' subcommands with flags instead")
		}

		if _, ok := appSessions.Token(); ok {
			fmt.Println("You are already logged in.")
			fmt.Println("Run 'devtracker auth logout' first to start over.")
			return nil
		}

		ctx := cmd.Context()

		hasAccount, err := tui.RunAccountChoice()
		if err != nil {
			return err
		}

		var flow *onboarding.Flow
		if hasAccount {
			flow = onboarding.NewLoginFlow(onboarding.Wrap(appClient), appSessions, appLogger)
		} else {
			flow = onboarding.NewFlow(onboarding.Wrap(appClient), appSessions, appLogger)
		}

		var form onboarding.SignupForm
		if flow.Stage() == onboarding.StageSignup {
			for {
				if err := tui.RunSignupForm(&form); err != nil {
					return err
				}
				if err := flow.SubmitSignup(ctx, form); err != nil {
					fmt.Printf("Signup failed: %v\n", err)
					continue
				}
				fmt.Println("Account created.")
				break
			}
		}

		for flow.Stage() == onboarding.StageLogin {
			email, password := form.Email, form.Password
			if email == "" || password == "" {
				if err := tui.RunLoginForm(&email, &password); err != nil {
					return err
				}
			}
			if err := flow.SubmitLogin(ctx, email, password); err != nil {
				fmt.Printf("Login failed: %v\n", err)
				form.Email, form.Password = "", ""
				continue
			}
			if flow.Authenticated() {
				fmt.Println("Logged in. You are all set.")
				return nil
			}
		}

		return resolveOrganization(cmd, flow)
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
