package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			state := rt.provider.State()
			if !state.Authenticated {
				fmt.Println("Not logged in.")
				return nil
			}

			u := state.User
			fmt.Printf("User:  %s (%s)\n", u.Name, u.Email)
			fmt.Printf("Login: %s via %s\n", u.Username, rt.creds.Method())
			if state.IsAdmin {
				fmt.Println("Role:  Admin")
			} else {
				fmt.Printf("Role:  %s\n", u.Role)
			}
			return nil
		},
	}
}
