package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/codeanytime/blogctl/internal/cli/blog"
	"github.com/codeanytime/blogctl/internal/cli/frontmatter"
	"github.com/codeanytime/blogctl/internal/cli/guard"
	"github.com/codeanytime/blogctl/internal/models"
)

// NewPostsCmd creates the posts command group
func NewPostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse and manage posts",
	}

	cmd.AddCommand(newPostsListCmd())
	cmd.AddCommand(newPostsGetCmd())
	cmd.AddCommand(newPostsCreateCmd())
	cmd.AddCommand(newPostsUpdateCmd())
	cmd.AddCommand(newPostsDeleteCmd())

	return cmd
}

func newPostsListCmd() *cobra.Command {
	var page, size int
	var search string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := rt.blog.ListPosts(cmd.Context(), page, size, search)
			if err != nil {
				return err
			}

			if resp.Empty {
				if search != "" {
					fmt.Printf("No posts matched %q.\n", search)
				} else {
					fmt.Println("No posts found.")
				}
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSLUG\tPUBLISHED\tUPDATED")
			fmt.Fprintln(w, "──\t─────\t────\t─────────\t───────")
			for _, p := range resp.Content {
				published := "draft"
				if p.Published {
					published = "yes"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					p.ID, p.Title, p.Slug, published, p.UpdatedAt.Format("2006-01-02"))
			}
			w.Flush()

			fmt.Printf("\nPage %d of %d (%d posts total)\n", resp.Number+1, resp.TotalPages, resp.TotalElements)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Page number (zero-based)")
	cmd.Flags().IntVar(&size, "size", 10, "Page size")
	cmd.Flags().StringVar(&search, "search", "", "Full-text search term")

	return cmd
}

func newPostsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <post-id-or-slug>",
		Short: "Print a post, front matter first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			var post *models.Post
			if id, err := parseID(args[0]); err == nil {
				post, err = rt.blog.GetPost(cmd.Context(), id)
				if err != nil {
					return err
				}
			} else {
				post, err = rt.blog.GetPostBySlug(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}

			fmt.Println("---")
			fmt.Printf("title: %q\n", post.Title)
			if post.CoverImage != "" {
				fmt.Printf("coverImage: %q\n", post.CoverImage)
			}
			fmt.Printf("published: %v\n", post.Published)
			if len(post.Tags) > 0 {
				fmt.Printf("tags: %v\n", post.Tags)
			}
			if len(post.Categories) > 0 {
				fmt.Print("categoryIds: [")
				for i, c := range post.Categories {
					if i > 0 {
						fmt.Print(", ")
					}
					fmt.Print(c.ID)
				}
				fmt.Println("]")
			}
			fmt.Println("---")
			fmt.Println(post.Content)
			return nil
		},
	}
}

func newPostsCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create --file <post-file>",
		Short: "Create a post from a file with YAML front matter",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			if err := guard.RequireAdmin(rt.provider, "posts create"); err != nil {
				return err
			}

			in, err := postInputFromFile(file)
			if err != nil {
				return err
			}
			if in.Title == "" {
				return fmt.Errorf("the front matter must set a title")
			}

			post, err := rt.blog.CreatePost(cmd.Context(), *in)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Created post %d (%s)\n", post.ID, post.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Post file (YAML front matter + HTML/Markdown body)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newPostsUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <post-id> --file <post-file>",
		Short: "Update a post from a file with YAML front matter",
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
			if err := guard.RequireAdmin(rt.provider, "posts update"); err != nil {
				return err
			}

			in, err := postInputFromFile(file)
			if err != nil {
				return err
			}

			post, err := rt.blog.UpdatePost(cmd.Context(), id, *in)
			if err != nil {
				return err
			}

			fmt.Printf("✓ Updated post %d (%s)\n", post.ID, post.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Post file (YAML front matter + HTML/Markdown body)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newPostsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <post-id>",
		Short: "Delete a post",
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
			if err := guard.RequireAdmin(rt.provider, "posts delete"); err != nil {
				return err
			}

			if !yes {
				prompt := promptui.Prompt{
					Label:     fmt.Sprintf("Delete post %d", id),
					IsConfirm: true,
				}
				if _, err := prompt.Run(); err != nil {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := rt.blog.DeletePost(cmd.Context(), id); err != nil {
				return err
			}

			fmt.Printf("✓ Deleted post %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")

	return cmd
}

// postInputFromFile reads a post file and folds its front matter into
// the API payload.
func postInputFromFile(path string) (*blog.PostInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &blog.PostInput{
		Title:             meta.Title,
		Content:           body,
		CoverImage:        meta.CoverImage,
		Published:         meta.Published,
		Tags:              meta.Tags,
		CategoryIDs:       meta.CategoryIDs,
		PrimaryCategoryID: meta.PrimaryCategoryID,
	}, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a numeric ID", arg)
	}
	return id, nil
}
