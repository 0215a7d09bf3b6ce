package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/whistledesk/internal/service"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the portal admin",
		Long:  "The portal has exactly one admin. Create it here when the signup endpoint is not exposed.",
	}

	cmd.AddCommand(newAdminCreateCmd())

	return cmd
}

func newAdminCreateCmd() *cobra.Command {
	var (
		email    string
		name     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the admin account",
		Example: `  portalctl admin create --email admin@example.com --name "Portal Admin"
  portalctl admin create --email admin@example.com --name Ops --password secret123`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(cmd, email, name, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "Admin full name (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runAdminCreate(cmd *cobra.Command, email, name, password string) error {
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}

	container, err := openContainer()
	if err != nil {
		return err
	}
	defer closeContainer(container)

	admin, err := container.AuthService.Signup(service.SignupInput{
		Email:    strings.TrimSpace(email),
		FullName: strings.TrimSpace(name),
		Password: password,
	}, cliMeta("admin create"))
	if err != nil {
		if errors.Is(err, service.ErrAdminExists) {
			return fmt.Errorf("an admin account already exists")
		}
		return fmt.Errorf("create admin: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created admin %q (%s)\n", admin.Email, admin.FullName)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	fmt.Print("Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Println()

	if string(pwBytes) != string(confirmBytes) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwBytes), nil
}
