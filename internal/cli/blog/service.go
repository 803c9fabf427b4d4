// Package blog exposes the content API: posts, categories and the site
// menu. All calls go through the shared request client, which owns
// authorization headers, retries and failure interception.
package blog

import (
	"github.com/codeanytime/blogctl/internal/cli/api"
)

// Service is the typed surface over the content endpoints.
type Service struct {
	client *api.Client
}

// NewService creates a content service on top of the shared client.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}
