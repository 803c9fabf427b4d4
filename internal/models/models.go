package models

import "time"

// Role values returned by the backend for User.Role
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents an account as returned by the backend.
// It is replaced wholesale on every successful identity operation,
// never patched field-by-field.
type User struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	PictureURL string    `json:"pictureUrl,omitempty"`
	GoogleID   string    `json:"googleId,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AuthResponse is the body returned by the login, register and
// federated-exchange endpoints.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Category groups posts and optionally appears in the site menu.
type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description,omitempty"`
	DisplayInMenu bool       `json:"displayInMenu"`
	MenuOrder     int        `json:"menuOrder"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// Post is a published or draft article with rich-text HTML content.
type Post struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	Slug            string     `json:"slug"`
	CoverImage      string     `json:"coverImage,omitempty"`
	Published       bool       `json:"published"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	AuthorID        int64      `json:"authorId"`
	Author          *User      `json:"author,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	Categories      []Category `json:"categories,omitempty"`
	PrimaryCategory *Category  `json:"primaryCategory,omitempty"`
}

// PageResponse is the backend's paginated envelope.
type PageResponse[T any] struct {
	Content       []T  `json:"content"`
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Size          int  `json:"size"`
	Number        int  `json:"number"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
	Empty         bool `json:"empty"`
}

// MenuItem is a single navigation entry served by GET /menu.
type MenuItem struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
	Order int    `json:"order"`
	Type  string `json:"type"`
}
