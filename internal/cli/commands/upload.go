package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeanytime/blogctl/internal/cli/guard"
	"github.com/codeanytime/blogctl/internal/cli/upload"
)

// NewUploadCmd creates the upload command
func NewUploadCmd() *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "upload <image-file>",
		Short: "Upload a cover image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			if err := guard.RequireAdmin(rt.provider, "upload"); err != nil {
				return err
			}

			if direct {
				s3up, err := upload.NewDirectS3(cmd.Context(), rt.cfg.S3)
				if err != nil {
					return err
				}
				url, err := s3up.Upload(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Println(url)
				return nil
			}

			up := upload.New(rt.client)

			configured, err := up.Configured(cmd.Context())
			if err != nil {
				return err
			}
			if !configured {
				return fmt.Errorf("the backend has no object storage configured (try --direct with an s3 block in blog.json)")
			}

			url, err := up.Upload(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Println(url)
			return nil
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "Upload straight to S3 using local AWS credentials")

	return cmd
}
