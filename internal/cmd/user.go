package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Inspect user profiles",
}

// userShowCmd shows a user profile
var userShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a user profile",
	Long: `Show a user profile by id. Without an id, shows your own profile.

Examples:
  devtracker user show
  devtracker user show 12`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if len(args) == 1 {
			parsed, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			id = parsed
		}

		return newGuard().Protect(func() error {
			if id == 0 {
				own, ok := appSessions.CurrentUserID()
				if !ok {
					return fmt.Errorf("cannot determine your user id from the session; pass an id explicitly")
				}
				id = own
			}

			user, err := appClient.GetUser(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("User ID:  %d\n", user.UserID)
			fmt.Printf("Name:     %s\n", user.UserName)
			fmt.Printf("Email:    %s\n", user.Email)
			fmt.Printf("Position: %s\n", user.Position)
			if user.UUID != "" {
				fmt.Printf("External: %s\n", user.UUID)
			}
			return nil
		})
	},
}

func init() {
	userCmd.AddCommand(userShowCmd)
	rootCmd.AddCommand(userCmd)
}
