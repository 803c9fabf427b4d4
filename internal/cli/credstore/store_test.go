package credstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newTestStore(t *testing.T) *Keyring {
	t.Helper()
	keyring.MockInit()
	return NewKeyring("blog.example.com")
}

func TestKeyring_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, MethodUnknown, s.Method())
}

func TestKeyring_SetAndGet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Set("abc", MethodCredentials))

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.Equal(t, MethodCredentials, s.Method())
}

func TestKeyring_SetOverwrites(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Set("first", MethodCredentials))
	require.NoError(t, s.Set("second", MethodFederated))

	token, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "second", token)
	assert.Equal(t, MethodFederated, s.Method())
}

func TestKeyring_ClearTokenKeepsMethod(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("abc", MethodFederated))

	require.NoError(t, s.ClearToken())

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
	// The method survives so the next login can favour the same flow
	assert.Equal(t, MethodFederated, s.Method())
}

func TestKeyring_ClearRemovesBoth(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("abc", MethodCredentials))

	require.NoError(t, s.Clear())

	token, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Equal(t, MethodUnknown, s.Method())
}

func TestKeyring_ClearIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())
}

func TestKeyring_HostsAreIsolated(t *testing.T) {
	keyring.MockInit()
	a := NewKeyring("a.example.com")
	b := NewKeyring("b.example.com")

	require.NoError(t, a.Set("token-a", MethodCredentials))

	token, err := b.Token()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestParseMethod(t *testing.T) {
	assert.Equal(t, MethodCredentials, ParseMethod("CREDENTIALS"))
	assert.Equal(t, MethodFederated, ParseMethod("FEDERATED"))
	assert.Equal(t, MethodUnknown, ParseMethod("UNKNOWN"))
	assert.Equal(t, MethodUnknown, ParseMethod("garbage"))
	assert.Equal(t, MethodUnknown, ParseMethod(""))
}
