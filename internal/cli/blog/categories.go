package blog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/codeanytime/blogctl/internal/models"
)

// CategoryInput is the create/update payload for a category.
type CategoryInput struct {
	Name          string `json:"name"`
	Slug          string `json:"slug,omitempty"`
	Description   string `json:"description,omitempty"`
	DisplayInMenu bool   `json:"displayInMenu"`
	MenuOrder     int    `json:"menuOrder"`
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.client.Get(ctx, "/categories", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// MenuCategories returns the categories flagged for the site menu.
func (s *Service) MenuCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.client.Get(ctx, "/categories/menu", &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// GetCategory fetches a category by ID.
func (s *Service) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var cat models.Category
	if err := s.client.Get(ctx, fmt.Sprintf("/categories/%d", id), &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// GetCategoryBySlug fetches a category by slug.
func (s *Service) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var cat models.Category
	if err := s.client.Get(ctx, "/categories/slug/"+url.PathEscape(slug), &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory creates a category.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	if err := s.client.Post(ctx, "/categories", in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory updates a category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*models.Category, error) {
	var cat models.Category
	if err := s.client.Put(ctx, fmt.Sprintf("/categories/%d", id), in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory deletes a category by ID.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/categories/%d", id))
}

// PostsByCategory returns one page of the posts in a category.
func (s *Service) PostsByCategory(ctx context.Context, id int64, page, size int) (*models.PageResponse[models.Post], error) {
	var resp models.PageResponse[models.Post]
	path := fmt.Sprintf("/categories/%d/posts?page=%d&size=%d", id, page, size)
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
