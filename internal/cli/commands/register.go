package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var username, password, email, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd, username, password, email, name)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runRegister(cmd *cobra.Command, username, password, email, name string) error {
	if password == "" && term.IsTerminal(int(syscall.Stdin)) {
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Println()
	}

	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}

	user, err := rt.provider.Register(cmd.Context(), username, password, email, name)
	if err != nil {
		return fmt.Errorf("registration failed: %s", rt.provider.State().Err)
	}

	fmt.Println("✓ Account created!")
	fmt.Printf("  User: %s (%s)\n", user.Name, user.Email)
	if rt.provider.State().Authenticated {
		fmt.Println("  You are now logged in.")
	} else {
		fmt.Fprintln(os.Stderr, "  Run 'blogctl login' to start a session.")
	}

	return nil
}
