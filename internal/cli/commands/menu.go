package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewMenuCmd creates the menu command
func NewMenuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Show the site navigation menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}

			items, err := rt.blog.Menu(cmd.Context())
			if err != nil {
				return err
			}

			sort.Slice(items, func(i, j int) bool { return items[i].Order < items[j].Order })

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LABEL\tURL\tTYPE")
			fmt.Fprintln(w, "─────\t───\t────")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", item.Label, item.URL, item.Type)
			}
			w.Flush()
			return nil
		},
	}
}
