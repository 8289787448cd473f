package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devtracker/devtracker-cli/internal/onboarding"
	"github.com/devtracker/devtracker-cli/internal/tui"
)

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Join or create an organization",
	Long: `Resolve organization membership for an account that has none.

Both subcommands log in first, because the service only issues the
short-lived token these calls need at login time. Accounts that already
belong to an organization are logged in directly and need neither.`,
}

// orgLogin logs in and returns a flow parked at organization resolution.
func orgLogin(cmd *cobra.Command) (*onboarding.Flow, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if email == "" || password == "" {
		if !tui.IsInteractive() {
			return nil, fmt.Errorf("--email and --password are required")
		}
		if err := tui.RunLoginForm(&email, &password); err != nil {
			return nil, err
		}
	}

	flow := onboarding.NewLoginFlow(onboarding.Wrap(appClient), appSessions, appLogger)
	if err := flow.SubmitLogin(cmd.Context(), email, password); err != nil {
		return nil, err
	}
	if flow.Authenticated() {
		return nil, fmt.Errorf("this account already belongs to an organization; you are now logged in")
	}
	return flow, nil
}

// orgJoinCmd joins an existing organization
var orgJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join an existing organization",
	Long: `Log in and join an existing organization by id and passcode.

Examples:
  devtracker org join --email ada@example.com --password secret --org-id 42 --passcode s3cret
  devtracker org join`,
	RunE: func(cmd *cobra.Command, args []string) error {
		orgID, _ := cmd.Flags().GetInt64("org-id")
		passcode, _ := cmd.Flags().GetString("passcode")

		if orgID == 0 || passcode == "" {
			if !tui.IsInteractive() {
				return fmt.Errorf("--org-id and --passcode are required")
			}
			if err := tui.RunJoinOrgForm(&orgID, &passcode); err != nil {
				return err
			}
		}

		flow, err := orgLogin(cmd)
		if err != nil {
			return err
		}

		if err := flow.SubmitJoin(cmd.Context(), orgID, passcode); err != nil {
			return err
		}

		fmt.Printf("Joined organization %d. Logged in.\n", orgID)
		return nil
	},
}

// orgCreateCmd creates an organization and joins it
var orgCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new organization",
	Long: `Log in, create a new organization, and join it as its first member.

If the create succeeds but the automatic join fails, the organization id
and passcode are printed so the join can be retried with 'devtracker org join'.

Examples:
  devtracker org create --email ada@example.com --password secret --name Acme --description "Road runner catching"
  devtracker org create`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")

		if name == "" || description == "" {
			if !tui.IsInteractive() {
				return fmt.Errorf("--name and --description are required")
			}
			if err := tui.RunCreateOrgForm(&name, &description); err != nil {
				return err
			}
		}

		flow, err := orgLogin(cmd)
		if err != nil {
			return err
		}

		if err := flow.SubmitCreate(cmd.Context(), name, description); err != nil {
			if org := flow.CreatedOrg(); org != nil {
				fmt.Printf("Organization %d was created but the join did not complete.\n", org.OrgID)
				fmt.Printf("Retry with: devtracker org join --org-id %d --passcode %q\n", org.OrgID, org.JoinPasscode)
			}
			return err
		}

		org := flow.LastCreatedOrg()
		fmt.Println("Organization created and joined. Logged in.")
		if org != nil {
			fmt.Printf("Organization ID: %d\n", org.OrgID)
			fmt.Printf("Join passcode:   %s\n", org.JoinPasscode)
		}
		return nil
	},
}

func init() {
	orgJoinCmd.Flags().String("email", "", "email address")
	orgJoinCmd.Flags().String("password", "", "password")
	orgJoinCmd.Flags().Int64("org-id", 0, "organization id")
	orgJoinCmd.Flags().String("passcode", "", "organization join passcode")

	orgCreateCmd.Flags().String("email", "", "email address")
	orgCreateCmd.Flags().String("password", "", "password")
	orgCreateCmd.Flags().String("name", "", "organization name")
	orgCreateCmd.Flags().String("description", "", "organization description")

	orgCmd.AddCommand(orgJoinCmd)
	orgCmd.AddCommand(orgCreateCmd)
	rootCmd.AddCommand(orgCmd)
}
