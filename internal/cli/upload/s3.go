package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"

	cliconfig "github.com/codeanytime/blogctl/internal/cli/config"
)

// DirectS3 uploads straight to the bucket, bypassing the backend. Used
// when the operator has granted the CLI its own AWS credentials.
type DirectS3 struct {
	client        *s3.Client
	bucket        string
	prefix        string
	region        string
	publicBaseURL string
}

// NewDirectS3 builds a direct uploader from the blog.json s3 block and
// the ambient AWS credential chain.
func NewDirectS3(ctx context.Context, cfg *cliconfig.S3Config) (*DirectS3, error) {
	if cfg == nil || cfg.Bucket == "" {
		return nil, fmt.Errorf("direct upload requires an s3 block in %s", cliconfig.ConfigFileName)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &DirectS3{
		client:        s3.NewFromConfig(awsCfg),
		bucket:        cfg.Bucket,
		prefix:        cfg.Prefix,
		region:        cfg.Region,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload puts the image into the bucket under a fresh ULID key and
// returns its public URL.
func (d *DirectS3) Upload(ctx context.Context, path string) (string, error) {
	contentType, err := imageContentType(path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	key := d.prefix + ulid.Make().String() + strings.ToLower(filepath.Ext(path))

	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": filepath.Base(path),
		},
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	if d.publicBaseURL != "" {
		return d.publicBaseURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", d.bucket, d.region, key), nil
}
