package cmd

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/devtracker/devtracker-cli/internal/api"
	"github.com/devtracker/devtracker-cli/internal/guard"
	"github.com/devtracker/devtracker-cli/internal/tui"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Browse and search projects",
	Long:  `List, search, and inspect the projects of your organization.`,
}

// newGuard returns the route guard for protected commands.
func newGuard() *guard.Guard {
	return guard.New(appSessions, func() {
		fmt.Println("You need to log in first.")
		fmt.Println("Run 'devtracker auth login' or 'devtracker setup'.")
	})
}

// printProjects renders a project table to stdout.
func printProjects(projects []api.Project) {
	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return
	}

	fmt.Printf("%-6s %-30s %-12s %s\n", "ID", "NAME", "STATUS", "DEADLINE")
	for _, p := range projects {
		fmt.Printf("%-6d %-30s %-12s %s\n", p.ProjectID, truncate(p.ProjectName, 30), p.Status, p.Deadline)
	}
}

// truncate shortens s to at most max runes, marking the cut with an
// ellipsis. Cutting on runes keeps multi-byte names intact.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// projectsListCmd lists all projects
var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Long: `List every project of your organization.

An organization with no projects prints an empty result; that is not an
error and not the same as being logged out.

Examples:
  devtracker projects list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return newGuard().Protect(func() error {
			projects, err := appClient.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			printProjects(projects)
			return nil
		})
	},
}

// projectsSearchCmd searches projects by keyword
var projectsSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search projects by keyword",
	Long: `Search projects whose name matches the keyword.

Examples:
  devtracker projects search billing
  devtracker projects search "mobile app"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := strings.Join(args, " ")
		return newGuard().Protect(func() error {
			projects, err := appClient.SearchProjects(cmd.Context(), keyword)
			if err != nil {
				return err
			}
			printProjects(projects)
			return nil
		})
	},
}

// projectsViewCmd shows one project in detail
var projectsViewCmd = &cobra.Command{
	Use:   "view [id]",
	Short: "Show a project in detail",
	Long: `Show one project in detail.

Without an id, the last project selected in 'devtracker projects browse'
is shown.

Examples:
  devtracker projects view 7
  devtracker projects view`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int64
		if len(args) == 1 {
			parsed, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			id = parsed
		} else {
			last, ok := appSessions.LastProjectID()
			if !ok {
				return fmt.Errorf("no project id given and no project selected yet; run 'devtracker projects browse'")
			}
			id = last
		}

		return newGuard().Protect(func() error {
			project, err := appClient.GetProject(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("Project:     %s (#%d)\n", project.ProjectName, project.ProjectID)
			fmt.Printf("Status:      %s\n", project.Status)
			fmt.Printf("Deadline:    %s\n", project.Deadline)
			fmt.Printf("Team lead:   %d\n", project.TeamLeadID)
			fmt.Printf("Team size:   %d\n", len(project.TeamMemberIDs))
			if project.ProjectDesc != "" {
				fmt.Printf("Description: %s\n", project.ProjectDesc)
			}

			if err := appSessions.SetLastProjectID(project.ProjectID); err != nil {
				appLogger.WithError(err).Warn("could not record last viewed project")
			}
			return nil
		})
	},
}

// projectsBrowseCmd opens the interactive project browser
var projectsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse projects interactively",
	Long: `Open an interactive browser with incremental search.

Typing filters projects by keyword with a short debounce; results of a
superseded keystroke never overwrite newer ones. Selecting a project
records it as the last viewed project for 'devtracker projects view'.

Examples:
  devtracker projects browse`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsInteractive() {
			return fmt.Errorf("browse requires an interactive terminal; use 'devtracker projects list' or 'search' instead")
		}

		return newGuard().Protect(func() error {
			model := tui.NewBrowseModel(appClient, appSessions)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return err
			}

			browse, ok := final.(tui.BrowseModel)
			if !ok {
				return nil
			}
			if msg := browse.Err(); msg != "" {
				return fmt.Errorf("%s", msg)
			}
			if chosen := browse.Chosen(); chosen != nil {
				fmt.Printf("Last viewed project set to %s (#%d).\n", chosen.ProjectName, chosen.ProjectID)
				fmt.Println("Run 'devtracker projects view' to see its details.")
			}
			return nil
		})
	},
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsSearchCmd)
	projectsCmd.AddCommand(projectsViewCmd)
	projectsCmd.AddCommand(projectsBrowseCmd)
	rootCmd.AddCommand(projectsCmd)
}
