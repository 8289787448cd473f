package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/devtracker/devtracker-cli/internal/onboarding"
)

// Positions offered on the signup form.
var positions = []string{"MANAGER", "DEVELOPER", "TESTER", "CLIENT", "LEAD"}

// RunSignupForm collects the signup stage inputs interactively.
func RunSignupForm(form *onboarding.SignupForm) error {
	var confirm string

	positionOptions := make([]huh.Option[string], len(positions))
	for i, p := range positions {
		label := p[:1] + strings.ToLower(p[1:])
		positionOptions[i] = huh.NewOption(label, p)
	}

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full Name").
				Value(&form.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("Email Address").
				Placeholder("you@example.com").
				Value(&form.Email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&form.Password).
				Validate(required("password")),
			huh.NewInput().
				Title("Confirm Password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm),
			huh.NewInput().
				Title("User ID (optional)").
				Description("Leave blank to generate one").
				Value(&form.ExternalID),
			huh.NewSelect[string]().
				Title("Position").
				Options(positionOptions...).
				Value(&form.Position),
		),
	)

	if err := f.Run(); err != nil {
		return fmt.Errorf("signup form: %w", err)
	}

	if form.Password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

// RunLoginForm collects login credentials interactively.
func RunLoginForm(email, password *string) error {
	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email Address").
				Value(email).
				Validate(required("email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(password).
				Validate(required("password")),
		),
	)

	if err := f.Run(); err != nil {
		return fmt.Errorf("login form: %w", err)
	}
	return nil
}

// RunAccountChoice asks whether the user already has an account.
func RunAccountChoice() (hasAccount bool, err error) {
	choice := "signup"
	f := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Welcome to DevTracker").
				Options(
					huh.NewOption("Create a new account", "signup"),
					huh.NewOption("Log in to an existing account", "login"),
				).
				Value(&choice),
		),
	)

	if err := f.Run(); err != nil {
		return false, fmt.Errorf("account choice: %w", err)
	}
	return choice == "login", nil
}

// RunOrgChoice asks whether to join an existing organization or create one.
func RunOrgChoice() (join bool, err error) {
	choice := "join"
	f := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("You are not a member of any organization yet").
				Options(
					huh.NewOption("Join an existing organization", "join"),
					huh.NewOption("Create a new organization", "create"),
				).
				Value(&choice),
		),
	)

	if err := f.Run(); err != nil {
		return false, fmt.Errorf("organization choice: %w", err)
	}
	return choice == "join", nil
}

// RunJoinOrgForm collects the join stage inputs interactively.
func RunJoinOrgForm(orgID *int64, passcode *string) error {
	var rawID string

	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Organization ID").
				Value(&rawID).
				Validate(func(s string) error {
					if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
						return fmt.Errorf("enter a numeric organization ID")
					}
					return nil
				}),
			huh.NewInput().
				Title("Organization Passcode").
				EchoMode(huh.EchoModePassword).
				Value(passcode).
				Validate(required("passcode")),
		),
	)

	if err := f.Run(); err != nil {
		return fmt.Errorf("join form: %w", err)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid organization ID: %w", err)
	}
	*orgID = id
	return nil
}

// RunCreateOrgForm collects the create stage inputs interactively.
func RunCreateOrgForm(name, description *string) error {
	f := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Organization Name").
				Value(name).
				Validate(required("organization name")),
			huh.NewText().
				Title("Organization Description").
				Value(description).
				Validate(required("organization description")),
		),
	)

	if err := f.Run(); err != nil {
		return fmt.Errorf("create form: %w", err)
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
