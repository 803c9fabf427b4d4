package blog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeanytime/blogctl/internal/cli/api"
	"github.com/codeanytime/blogctl/internal/cli/credstore"
	"github.com/codeanytime/blogctl/internal/logger"
	"github.com/codeanytime/blogctl/internal/models"
)

type memStore struct {
	token  string
	method credstore.Method
}

func (m *memStore) Token() (string, error)                         { return m.token, nil }
func (m *memStore) Set(token string, method credstore.Method) error { m.token, m.method = token, method; return nil }
func (m *memStore) SetMethod(method credstore.Method) error        { m.method = method; return nil }
func (m *memStore) Clear() error                                   { m.token, m.method = "", ""; return nil }
func (m *memStore) ClearToken() error                              { m.token = ""; return nil }
func (m *memStore) Method() credstore.Method {
	if m.method == "" {
		return credstore.MethodUnknown
	}
	return m.method
}

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	logger.Init("error", "console")

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewService(api.New(srv.URL, &memStore{}))
}

func TestListPosts_SendsPaginationAndSearch(t *testing.T) {
	var gotQuery map[string][]string
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/posts", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(models.PageResponse[models.Post]{
			Content:       []models.Post{{ID: 1, Title: "Hello"}},
			TotalElements: 1, TotalPages: 1, Size: 10, First: true, Last: true,
		})
	}))

	page, err := svc.ListPosts(context.Background(), 2, 10, "golang")
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"10"}, gotQuery["size"])
	assert.Equal(t, []string{"golang"}, gotQuery["search"])
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Hello", page.Content[0].Title)
}

func TestListPosts_OmitsEmptySearch(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["search"]
		assert.False(t, present)
		json.NewEncoder(w).Encode(models.PageResponse[models.Post]{})
	}))

	_, err := svc.ListPosts(context.Background(), 0, 10, "")
	require.NoError(t, err)
}

func TestGetPostBySlug_UsesSamePathAsIDs(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/my-first-post", r.URL.Path)
		json.NewEncoder(w).Encode(models.Post{ID: 4, Slug: "my-first-post", Title: "Hello"})
	}))

	post, err := svc.GetPostBySlug(context.Background(), "my-first-post")
	require.NoError(t, err)
	assert.EqualValues(t, 4, post.ID)
}

func TestGetCategoryBySlug_EscapesSlug(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories/slug/caf%C3%A9%20notes", r.URL.EscapedPath())
		json.NewEncoder(w).Encode(models.Category{ID: 7, Slug: "café notes"})
	}))

	cat, err := svc.GetCategoryBySlug(context.Background(), "café notes")
	require.NoError(t, err)
	assert.EqualValues(t, 7, cat.ID)
}

func TestMenu_FallsBackOnNetworkFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("backoff delays")
	}
	logger.Init("error", "console")

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listens any more

	svc := NewService(api.New(url, &memStore{}))

	items, err := svc.Menu(context.Background())
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, "Home", items[0].Label)
}

func TestMenu_ServerErrorIsNotMaskedByFallback(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	}))

	_, err := svc.Menu(context.Background())
	assert.True(t, api.IsServerError(err))
}
