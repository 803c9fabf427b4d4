package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeanytime/blogctl/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "blogctl - Command-line client for the blog platform",
	Long: `blogctl - Read, search and manage blog content from the terminal.

Readers can browse and search published posts. Admins can log in (with a
password or via Google), create and edit posts with cover images, tags
and categories, and upload images.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("blogctl version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewPostsCmd())
	rootCmd.AddCommand(commands.NewCategoriesCmd())
	rootCmd.AddCommand(commands.NewMenuCmd())
	rootCmd.AddCommand(commands.NewUploadCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
