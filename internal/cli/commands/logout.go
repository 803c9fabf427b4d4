package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			if err := rt.provider.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear stored credentials: %w", err)
			}

			fmt.Println("✓ Logged out.")
			return nil
		},
	}
}
