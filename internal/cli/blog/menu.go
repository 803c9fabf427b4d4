package blog

import (
	"context"

	"github.com/codeanytime/blogctl/internal/cli/api"
	"github.com/codeanytime/blogctl/internal/models"
)

// fallbackMenu keeps navigation usable when the backend is unreachable.
var fallbackMenu = []models.MenuItem{
	{ID: 0, Label: "Home", URL: "/", Order: 0, Type: "home"},
	{ID: 1, Label: "Blog", URL: "/blog", Order: 1, Type: "page"},
	{ID: 2, Label: "Admin", URL: "/admin", Order: 2, Type: "admin"},
}

// Menu returns the site navigation. On a network failure it degrades to
// the static fallback instead of erroring.
func (s *Service) Menu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := s.client.Get(ctx, "/menu", &items); err != nil {
		if api.IsNetworkError(err) {
			return fallbackMenu, nil
		}
		return nil, err
	}
	return items, nil
}
