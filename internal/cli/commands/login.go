package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var username, password string
	var withGoogle bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the blog backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if withGoogle {
				return runGoogleLogin(cmd)
			}
			return runLogin(cmd, username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (or set BLOG_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BLOG_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&withGoogle, "google", false, "Sign in with Google instead of a password")

	return cmd
}

func runLogin(cmd *cobra.Command, username, password string) error {
	// Environment fallbacks, useful for CI
	if username == "" {
		username = os.Getenv("BLOG_USERNAME")
	}
	if password == "" {
		password = os.Getenv("BLOG_PASSWORD")
	}

	if username == "" {
		return fmt.Errorf("username is required (use --username flag or BLOG_USERNAME env var)")
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or BLOG_PASSWORD env var)")
		}
	}

	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Logging in to %s...\n", rt.cfg.APIBaseURL)

	user, err := rt.provider.LoginWithCredentials(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", rt.provider.State().Err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.Name, user.Email)
	if user.IsAdmin() {
		fmt.Println("  Role: Admin")
	}

	return nil
}

func runGoogleLogin(cmd *cobra.Command) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}

	user, err := rt.provider.LoginWithGoogle(cmd.Context())
	if err != nil {
		return fmt.Errorf("google sign-in failed: %s", rt.provider.State().Err)
	}
	if user == nil {
		return fmt.Errorf("google sign-in did not produce a session, try again")
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.Name, user.Email)
	if user.IsAdmin() {
		fmt.Println("  Role: Admin")
	}

	return nil
}
