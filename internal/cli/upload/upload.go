// Package upload puts cover images into object storage. The default path
// hands the file to the backend, which owns the bucket credentials; the
// direct path talks to S3 itself for deployments that grant the CLI
// access.
package upload

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeanytime/blogctl/internal/cli/api"
)

// Uploader sends images through the backend's upload endpoint.
type Uploader struct {
	client *api.Client
}

// New creates an uploader on top of the shared request client.
func New(client *api.Client) *Uploader {
	return &Uploader{client: client}
}

// Configured asks the backend whether object storage is set up.
func (u *Uploader) Configured(ctx context.Context) (bool, error) {
	var resp struct {
		Configured bool `json:"configured"`
	}
	if err := u.client.Get(ctx, "/s3/status", &resp); err != nil {
		return false, err
	}
	return resp.Configured, nil
}

// Upload posts the image at path as multipart form data and returns the
// public URL the backend assigned.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	if _, err := imageContentType(path); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var resp struct {
		URL string `json:"url"`
	}
	if err := u.client.PostMultipart(ctx, "/s3/upload", "file", filepath.Base(path), f, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// imageContentType rejects anything that is not an image before any
// bytes leave the machine.
func imageContentType(path string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(path)); strings.HasPrefix(ct, "image/") {
		return ct, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	ct := http.DetectContentType(head[:n])
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("only image files are allowed, %s looks like %s", filepath.Base(path), ct)
	}
	return ct, nil
}
