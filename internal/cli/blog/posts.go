package blog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/codeanytime/blogctl/internal/models"
)

// PostInput is the create/update payload for a post. Nil optional
// fields are omitted so updates stay partial.
type PostInput struct {
	Title             string   `json:"title"`
	Content           string   `json:"content"`
	CoverImage        string   `json:"coverImage,omitempty"`
	Published         *bool    `json:"published,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	CategoryIDs       []int64  `json:"categoryIds,omitempty"`
	PrimaryCategoryID *int64   `json:"primaryCategoryId,omitempty"`
}

// ListPosts returns one page of posts. A non-empty search term runs the
// backend's full-text search.
func (s *Service) ListPosts(ctx context.Context, page, size int, search string) (*models.PageResponse[models.Post], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	if search != "" {
		params.Set("search", search)
	}

	var resp models.PageResponse[models.Post]
	if err := s.client.Get(ctx, "/posts?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPost fetches a single post by ID.
func (s *Service) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := s.client.Get(ctx, fmt.Sprintf("/posts/%d", id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPostBySlug fetches a single post by slug. The backend serves IDs
// and slugs from the same endpoint.
func (s *Service) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := s.client.Get(ctx, "/posts/"+url.PathEscape(slug), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// CreatePost creates a post.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	var post models.Post
	if err := s.client.Post(ctx, "/posts", in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost replaces the given fields of an existing post.
func (s *Service) UpdatePost(ctx context.Context, id int64, in PostInput) (*models.Post, error) {
	var post models.Post
	if err := s.client.Put(ctx, fmt.Sprintf("/posts/%d", id), in, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost deletes a post by ID.
func (s *Service) DeletePost(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/posts/%d", id))
}
