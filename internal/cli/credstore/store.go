package credstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const service = "blogctl"

// Method identifies which flow produced the stored token. The request
// client sends it on every call and the redirect guard branches on it.
type Method string

const (
	MethodCredentials Method = "CREDENTIALS"
	MethodFederated   Method = "FEDERATED"
	MethodUnknown     Method = "UNKNOWN"
)

// ParseMethod maps a stored string onto the closed enum, defaulting to
// MethodUnknown for anything unrecognised.
func ParseMethod(s string) Method {
	switch Method(s) {
	case MethodCredentials:
		return MethodCredentials
	case MethodFederated:
		return MethodFederated
	default:
		return MethodUnknown
	}
}

// Store holds the session token and auth-method tag for one API host.
// It performs no validation; it is pure storage.
type Store interface {
	// Token returns the stored token, or "" when none is stored.
	Token() (string, error)
	// Set overwrites the token and method together.
	Set(token string, method Method) error
	// SetMethod overwrites the method alone. Login flows record their
	// method before the first call so the request headers are right
	// from the start.
	SetMethod(method Method) error
	// Clear removes token and method. Clearing an empty store is not
	// an error.
	Clear() error
	// ClearToken removes only the token, keeping the method so the
	// next login attempt can favour the user's preferred flow.
	ClearToken() error
	// Method returns the stored auth method, MethodUnknown if unset.
	Method() Method
}

// Keyring stores credentials in the OS keychain/credential manager,
// keyed per API host so tokens never leak across backends.
type Keyring struct {
	host string
}

// NewKeyring creates a keyring-backed store for the given API host.
func NewKeyring(host string) *Keyring {
	return &Keyring{host: host}
}

func (k *Keyring) tokenKey() string {
	return fmt.Sprintf("token-%s", k.host)
}

func (k *Keyring) methodKey() string {
	return fmt.Sprintf("method-%s", k.host)
}

// Token implements Store.
func (k *Keyring) Token() (string, error) {
	token, err := keyring.Get(service, k.tokenKey())
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// Set implements Store.
func (k *Keyring) Set(token string, method Method) error {
	if err := keyring.Set(service, k.tokenKey(), token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if err := keyring.Set(service, k.methodKey(), string(method)); err != nil {
		// Roll the token back so the pair stays consistent
		_ = keyring.Delete(service, k.tokenKey())
		return fmt.Errorf("failed to save auth method: %w", err)
	}
	return nil
}

// SetMethod implements Store.
func (k *Keyring) SetMethod(method Method) error {
	if err := keyring.Set(service, k.methodKey(), string(method)); err != nil {
		return fmt.Errorf("failed to save auth method: %w", err)
	}
	return nil
}

// Clear implements Store.
func (k *Keyring) Clear() error {
	if err := k.ClearToken(); err != nil {
		return err
	}
	if err := keyring.Delete(service, k.methodKey()); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete auth method: %w", err)
	}
	return nil
}

// ClearToken implements Store.
func (k *Keyring) ClearToken() error {
	if err := keyring.Delete(service, k.tokenKey()); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Method implements Store.
func (k *Keyring) Method() Method {
	m, err := keyring.Get(service, k.methodKey())
	if err != nil {
		return MethodUnknown
	}
	return ParseMethod(m)
}
