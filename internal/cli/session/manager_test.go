package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeanytime/blogctl/internal/cli/api"
	"github.com/codeanytime/blogctl/internal/cli/credstore"
	"github.com/codeanytime/blogctl/internal/logger"
)

// memStore is an in-memory credential store for tests
type memStore struct {
	token  string
	method credstore.Method
}

func (m *memStore) Token() (string, error) { return m.token, nil }

func (m *memStore) Set(token string, method credstore.Method) error {
	m.token = token
	m.method = method
	return nil
}

func (m *memStore) SetMethod(method credstore.Method) error {
	m.method = method
	return nil
}

func (m *memStore) Clear() error {
	m.token = ""
	m.method = ""
	return nil
}

func (m *memStore) ClearToken() error {
	m.token = ""
	return nil
}

func (m *memStore) Method() credstore.Method {
	if m.method == "" {
		return credstore.MethodUnknown
	}
	return m.method
}

// fakeIdentityProvider stands in for the Google consent flow
type fakeIdentityProvider struct {
	credential string
	err        error
	calls      int
}

func (f *fakeIdentityProvider) Credential(ctx context.Context) (string, error) {
	f.calls++
	return f.credential, f.err
}

func newTestManager(t *testing.T, handler http.Handler, provider FederatedProvider) (*Manager, *memStore) {
	t.Helper()
	logger.Init("error", "console")

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := &memStore{}
	client := api.New(srv.URL, store)
	return NewManager(client, store, provider), store
}

// authBackend is a mock backend covering the identity endpoints
func authBackend(t *testing.T) (http.Handler, *atomic.Int32, *atomic.Int32) {
	t.Helper()

	var meCalls, exchangeCalls atomic.Int32
	mux := http.NewServeMux()

	adminUser := map[string]any{
		"id": 1, "name": "Admin", "email": "admin@example.com",
		"username": "admin", "role": "ADMIN",
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Username != "admin" || req.Password != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"token": "abc", "user": adminUser})
	})

	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Username == "taken" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"Username already exists"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"token": "fresh",
			"user": map[string]any{
				"id": 2, "name": "New User", "email": "new@example.com",
				"username": req.Username, "role": "USER",
			},
		})
	})

	mux.HandleFunc("POST /auth/google", func(w http.ResponseWriter, r *http.Request) {
		exchangeCalls.Add(1)
		var req struct {
			IDToken string `json:"idToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.IDToken != "good-id-token" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid Google token"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"token": "google-token", "user": adminUser})
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Token expired"}`))
			return
		}
		json.NewEncoder(w).Encode(adminUser)
	})

	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux, &meCalls, &exchangeCalls
}

func TestLoginWithCredentials_Success(t *testing.T) {
	handler, _, _ := authBackend(t)
	m, store := newTestManager(t, handler, &fakeIdentityProvider{})

	user, err := m.LoginWithCredentials(context.Background(), "admin", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin())
	assert.Equal(t, "abc", store.token)
	assert.Equal(t, credstore.MethodCredentials, store.Method())
}

func TestLoginWithCredentials_WrongPassword(t *testing.T) {
	handler, _, _ := authBackend(t)
	m, store := newTestManager(t, handler, &fakeIdentityProvider{})

	user, err := m.LoginWithCredentials(context.Background(), "admin", "wrong")

	assert.ErrorIs(t, err, api.ErrInvalidCredentials)
	assert.Nil(t, user)
	assert.Empty(t, store.token)
}

func TestLoginWithCredentials_EmptyFieldsNeverHitNetwork(t *testing.T) {
	var hits atomic.Int32
	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}), &fakeIdentityProvider{})

	_, err := m.LoginWithCredentials(context.Background(), "", "")

	var verr *api.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.EqualValues(t, 0, hits.Load())
}

func TestRegister_Success(t *testing.T) {
	handler, _, _ := authBackend(t)
	m, store := newTestManager(t, handler, &fakeIdentityProvider{})

	user, err := m.Register(context.Background(), "newuser", "longenough", "new@example.com", "New User")
	require.NoError(t, err)

	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, "fresh", store.token)
}

func TestRegister_ShortPasswordRejectedLocally(t *testing.T) {
	var hits atomic.Int32
	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}), &fakeIdentityProvider{})

	_, err := m.Register(context.Background(), "user", "short", "u@example.com", "User")

	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password must be at least 6 characters", verr.Message)
	assert.EqualValues(t, 0, hits.Load())
}

func TestRegister_DuplicateAccount(t *testing.T) {
	handler, _, _ := authBackend(t)
	m, _ := newTestManager(t, handler, &fakeIdentityProvider{})

	_, err := m.Register(context.Background(), "taken", "longenough", "t@example.com", "Taken")

	assert.ErrorIs(t, err, api.ErrDuplicateAccount)
}

func TestLoginWithGoogle_ExistingTokenShortCircuits(t *testing.T) {
	handler, meCalls, exchangeCalls := authBackend(t)
	provider := &fakeIdentityProvider{credential: "good-id-token"}
	m, store := newTestManager(t, handler, provider)
	require.NoError(t, store.Set("abc", credstore.MethodCredentials))

	user, err := m.LoginWithGoogle(context.Background())
	require.NoError(t, err)

	// Resolved via the who-am-I endpoint, no federated round trip
	assert.Equal(t, "admin", user.Username)
	assert.EqualValues(t, 1, meCalls.Load())
	assert.EqualValues(t, 0, exchangeCalls.Load())
	assert.Equal(t, 0, provider.calls)
	assert.Equal(t, credstore.MethodCredentials, store.Method())
}

func TestLoginWithGoogle_FullFlow(t *testing.T) {
	handler, _, exchangeCalls := authBackend(t)
	provider := &fakeIdentityProvider{credential: "good-id-token"}
	m, store := newTestManager(t, handler, provider)

	user, err := m.LoginWithGoogle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "admin", user.Username)
	assert.EqualValues(t, 1, exchangeCalls.Load())
	assert.Equal(t, "google-token", store.token)
	assert.Equal(t, credstore.MethodFederated, store.Method())
	// The reentrancy guard is back to idle after the flow
	assert.Equal(t, api.FlowIdle, m.Client().FederatedFlow())
}

func TestLoginWithGoogle_ProviderUnavailable(t *testing.T) {
	handler, _, exchangeCalls := authBackend(t)
	provider := &fakeIdentityProvider{err: api.ErrProviderUnavailable}
	m, _ := newTestManager(t, handler, provider)

	_, err := m.LoginWithGoogle(context.Background())

	assert.ErrorIs(t, err, api.ErrProviderUnavailable)
	assert.EqualValues(t, 0, exchangeCalls.Load())
	assert.Equal(t, api.FlowIdle, m.Client().FederatedFlow())
}

func TestLoginWithGoogle_BackendRejectsCredential(t *testing.T) {
	handler, _, _ := authBackend(t)
	provider := &fakeIdentityProvider{credential: "bad-id-token"}
	m, store := newTestManager(t, handler, provider)

	_, err := m.LoginWithGoogle(context.Background())

	assert.ErrorIs(t, err, api.ErrExchangeFailed)
	assert.Empty(t, store.token)
	assert.Equal(t, api.FlowIdle, m.Client().FederatedFlow())
}

func TestLoginWithGoogle_NetworkFailureDoesNotReenterFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("backoff delays")
	}
	logger.Init("error", "console")

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listens any more

	store := &memStore{}
	require.NoError(t, store.Set("abc", credstore.MethodCredentials))
	provider := &fakeIdentityProvider{credential: "good-id-token"}
	m := NewManager(api.New(url, store), store, provider)

	_, err := m.LoginWithGoogle(context.Background())

	// The stored session may still be valid, so an unreachable backend
	// surfaces as an error instead of a fresh consent round trip.
	assert.True(t, api.IsNetworkError(err))
	assert.Equal(t, 0, provider.calls)
	assert.Equal(t, "abc", store.token)
}

func TestLogout_ClearsCredentialsEvenWhenBackendFails(t *testing.T) {
	m, store := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}), &fakeIdentityProvider{})
	require.NoError(t, store.Set("abc", credstore.MethodCredentials))

	err := m.Logout(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.token)
	assert.Equal(t, credstore.MethodUnknown, store.Method())
}

func TestLogout_Twice(t *testing.T) {
	handler, _, _ := authBackend(t)
	m, store := newTestManager(t, handler, &fakeIdentityProvider{})
	require.NoError(t, store.Set("abc", credstore.MethodCredentials))

	require.NoError(t, m.Logout(context.Background()))
	require.NoError(t, m.Logout(context.Background()))

	assert.Empty(t, store.token)
}

func TestCurrentUser_NoTokenMeansNoNetworkCall(t *testing.T) {
	var hits atomic.Int32
	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}), &fakeIdentityProvider{})

	user, err := m.CurrentUser(context.Background())

	require.NoError(t, err)
	assert.Nil(t, user)
	assert.EqualValues(t, 0, hits.Load())
}

func TestCurrentUser_DeadTokenIsClearedAndAbsent(t *testing.T) {
	handler, _, _ := authBackend(t)
	m, store := newTestManager(t, handler, &fakeIdentityProvider{})
	require.NoError(t, store.Set("expired", credstore.MethodCredentials))

	user, err := m.CurrentUser(context.Background())

	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Empty(t, store.token)
}

func TestCurrentUser_NetworkFailureKeepsToken(t *testing.T) {
	if testing.Short() {
		t.Skip("backoff delays")
	}
	logger.Init("error", "console")

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listens any more

	store := &memStore{}
	require.NoError(t, store.Set("abc", credstore.MethodCredentials))
	m := NewManager(api.New(url, store), store, &fakeIdentityProvider{})

	user, err := m.CurrentUser(context.Background())

	require.NoError(t, err)
	assert.Nil(t, user)
	// A dropped connection must not log the user out
	assert.Equal(t, "abc", store.token)
}
