package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/codeanytime/blogctl/internal/cli/blog"
	"github.com/codeanytime/blogctl/internal/cli/guard"
	"github.com/codeanytime/blogctl/internal/models"
)

// NewCategoriesCmd creates the categories command group
func NewCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "Browse and manage categories",
	}

	cmd.AddCommand(newCategoriesListCmd())
	cmd.AddCommand(newCategoriesGetCmd())
	cmd.AddCommand(newCategoriesCreateCmd())
	cmd.AddCommand(newCategoriesUpdateCmd())
	cmd.AddCommand(newCategoriesDeleteCmd())
	cmd.AddCommand(newCategoriesPostsCmd())

	return cmd
}

func newCategoriesListCmd() *cobra.Command {
	var menuOnly bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			var cats []models.Category
			if menuOnly {
				cats, err = rt.blog.MenuCategories(cmd.Context())
			} else {
				cats, err = rt.blog.ListCategories(cmd.Context())
			}
			if err != nil {
				return err
			}

			if len(cats) == 0 {
				fmt.Println("No categories found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSLUG\tIN MENU\tORDER")
			fmt.Fprintln(w, "──\t────\t────\t───────\t─────")
			for _, c := range cats {
				inMenu := ""
				if c.DisplayInMenu {
					inMenu = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Slug, inMenu, c.MenuOrder)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().BoolVar(&menuOnly, "menu", false, "Only categories shown in the site menu")

	return cmd
}

func newCategoriesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <category-id-or-slug>",
		Short: "Show a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			var cat *models.Category
			if id, err := parseID(args[0]); err == nil {
				cat, err = rt.blog.GetCategory(cmd.Context(), id)
				if err != nil {
					return err
				}
			} else {
				cat, err = rt.blog.GetCategoryBySlug(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}

			fmt.Printf("ID:          %d\n", cat.ID)
			fmt.Printf("Name:        %s\n", cat.Name)
			fmt.Printf("Slug:        %s\n", cat.Slug)
			if cat.Description != "" {
				fmt.Printf("Description: %s\n", cat.Description)
			}
			if cat.DisplayInMenu {
				fmt.Printf("In menu:     yes (position %d)\n", cat.MenuOrder)
			}
			return nil
		},
	}
}

func newCategoriesCreateCmd() *cobra.Command {
	var in blog.CategoryInput

	cmd := &cobra.Command{
		Use:   "create --name <name>",
		Short: "Create a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			if err := guard.RequireAdmin(rt.provider, "categories create"); err != nil {
				return err
			}

			if in.Name == "" {
				return fmt.Errorf("a category name is required")
			}

			cat, err := rt.blog.CreateCategory(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Created category %d (%s)\n", cat.ID, cat.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Category name")
	cmd.Flags().StringVar(&in.Slug, "slug", "", "URL slug (derived from the name if empty)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Category description")
	cmd.Flags().BoolVar(&in.DisplayInMenu, "menu", false, "Show this category in the site menu")
	cmd.Flags().IntVar(&in.MenuOrder, "order", 0, "Position within the menu")

	return cmd
}

func newCategoriesUpdateCmd() *cobra.Command {
	var in blog.CategoryInput

	cmd := &cobra.Command{
		Use:   "update <category-id>",
		Short: "Update a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			if err := guard.RequireAdmin(rt.provider, "categories update"); err != nil {
				return err
			}

			cat, err := rt.blog.UpdateCategory(cmd.Context(), id, in)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Updated category %d (%s)\n", cat.ID, cat.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Category name")
	cmd.Flags().StringVar(&in.Slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&in.Description, "description", "", "Category description")
	cmd.Flags().BoolVar(&in.DisplayInMenu, "menu", false, "Show this category in the site menu")
	cmd.Flags().IntVar(&in.MenuOrder, "order", 0, "Position within the menu")

	return cmd
}

func newCategoriesDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			if err := guard.RequireAdmin(rt.provider, "categories delete"); err != nil {
				return err
			}

			if !yes {
				prompt := promptui.Prompt{
					Label:     fmt.Sprintf("Delete category %d", id),
					IsConfirm: true,
				}
				if _, err := prompt.Run(); err != nil {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := rt.blog.DeleteCategory(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Printf("✓ Deleted category %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}

func newCategoriesPostsCmd() *cobra.Command {
	var page, size int

	cmd := &cobra.Command{
		Use:   "posts <category-id>",
		Short: "List the posts in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := rt.blog.PostsByCategory(cmd.Context(), id, page, size)
			if err != nil {
				return err
			}

			if resp.Empty {
				fmt.Println("No posts in this category.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSLUG\tUPDATED")
			fmt.Fprintln(w, "──\t─────\t────\t───────")
			for _, p := range resp.Content {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Title, p.Slug, p.UpdatedAt.Format("2006-01-02"))
			}
			w.Flush()

			fmt.Printf("\nPage %d of %d (%d posts total)\n", resp.Number+1, resp.TotalPages, resp.TotalElements)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number (zero-based)")
	cmd.Flags().IntVar(&size, "size", 10, "Page size")

	return cmd
}
