// Package session owns the client-side session: establishing identity,
// persisting proof of it, and the process-wide state every command reads.
package session

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/codeanytime/blogctl/internal/cli/api"
	"github.com/codeanytime/blogctl/internal/cli/credstore"
	"github.com/codeanytime/blogctl/internal/logger"
	"github.com/codeanytime/blogctl/internal/models"
)

// FederatedProvider yields a credential from the external identity
// provider's consent flow. The credential is exchanged with the backend
// for a session token.
type FederatedProvider interface {
	Credential(ctx context.Context) (string, error)
}

// Manager exposes the identity operations and owns the decision of when
// a session is valid and when it must be torn down.
type Manager struct {
	client   *api.Client
	creds    credstore.Store
	provider FederatedProvider
	validate *validator.Validate
	log      zerolog.Logger
}

// NewManager wires the manager to the shared request client, credential
// store and federated provider.
func NewManager(client *api.Client, creds credstore.Store, provider FederatedProvider) *Manager {
	return &Manager{
		client:   client,
		creds:    creds,
		provider: provider,
		validate: validator.New(),
		log:      logger.GetLogger().With().Str("component", "session").Logger(),
	}
}

// Client returns the shared request client.
func (m *Manager) Client() *api.Client {
	return m.client
}

type credentialsInput struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type registrationInput struct {
	Username string `validate:"required"`
	Password string `validate:"required,min=6"`
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type exchangeRequest struct {
	IDToken string `json:"idToken"`
}

// LoginWithCredentials posts the username/password pair to the backend
// and stores the returned token.
func (m *Manager) LoginWithCredentials(ctx context.Context, username, password string) (*models.User, error) {
	in := credentialsInput{Username: username, Password: password}
	if err := m.validate.Struct(in); err != nil {
		return nil, &api.ValidationError{Message: "username and password are required"}
	}

	// Record the method before the first call so the request headers
	// are correct even for this login itself.
	if err := m.creds.SetMethod(credstore.MethodCredentials); err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	err := m.client.Post(ctx, "/auth/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Status == 401 {
			return nil, api.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := m.creds.Set(resp.Token, credstore.MethodCredentials); err != nil {
		return nil, err
	}

	m.log.Info().Str("username", resp.User.Username).Msg("logged in with credentials")
	return &resp.User, nil
}

// Register creates an account. The backend answers a duplicate username
// or email with a 400.
func (m *Manager) Register(ctx context.Context, username, password, email, name string) (*models.User, error) {
	in := registrationInput{Username: username, Password: password, Email: email, Name: name}
	if err := m.validate.Struct(in); err != nil {
		return nil, &api.ValidationError{Message: registrationMessage(err)}
	}

	if err := m.creds.SetMethod(credstore.MethodCredentials); err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	err := m.client.Post(ctx, "/auth/register", registerRequest{
		Username: username,
		Password: password,
		Email:    email,
		Name:     name,
	}, &resp)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Status == 400 {
			return nil, api.ErrDuplicateAccount
		}
		return nil, err
	}

	if resp.Token != "" {
		if err := m.creds.Set(resp.Token, credstore.MethodCredentials); err != nil {
			return nil, err
		}
	}

	m.log.Info().Str("username", resp.User.Username).Msg("registered account")
	return &resp.User, nil
}

// LoginWithGoogle runs the federated sign-in. With a token already
// stored it resolves via CurrentUser instead of re-entering the flow,
// so no redundant provider round trip happens.
func (m *Manager) LoginWithGoogle(ctx context.Context) (*models.User, error) {
	token, err := m.creds.Token()
	if err != nil {
		return nil, err
	}
	if token != "" {
		user, err := m.resolveToken(ctx)
		if err != nil || user != nil {
			// A network failure surfaces here with the token retained:
			// the stored session may still be valid, so a fresh consent
			// round trip would be wrong.
			return user, err
		}
		// The stored token turned out to be dead; fall through to a
		// fresh sign-in.
	}

	m.client.BeginFederatedFlow()
	defer m.client.EndFederatedFlow()

	if err := m.creds.SetMethod(credstore.MethodFederated); err != nil {
		return nil, err
	}

	credential, err := m.provider.Credential(ctx)
	if err != nil {
		return nil, err
	}

	var resp models.AuthResponse
	if err := m.client.Post(ctx, api.FederatedExchangePath, exchangeRequest{IDToken: credential}, &resp); err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			return nil, api.ErrExchangeFailed
		}
		return nil, err
	}

	if err := m.creds.Set(resp.Token, credstore.MethodFederated); err != nil {
		return nil, err
	}

	m.log.Info().Str("username", resp.User.Username).Msg("logged in with google")
	return &resp.User, nil
}

// Logout notifies the backend best-effort and unconditionally clears the
// local credentials. Clearing local state is the priority; a failed
// backend call never leaves a stale token behind.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		m.log.Warn().Err(err).Msg("backend logout failed, clearing local credentials anyway")
	}
	return m.creds.Clear()
}

// CurrentUser resolves the stored token to a user. Absence is an
// expected outcome, not an error: no stored token means (nil, nil)
// without any network call, a dead token means (nil, nil) after the
// client has cleared it, and a network failure means (nil, nil) with the
// token retained so a dropped connection never logs the user out.
func (m *Manager) CurrentUser(ctx context.Context) (*models.User, error) {
	user, err := m.resolveToken(ctx)
	if api.IsNetworkError(err) {
		m.log.Warn().Err(err).Msg("could not reach backend, keeping stored token")
		return nil, nil
	}
	return user, err
}

// resolveToken asks the backend who the stored token belongs to. Unlike
// CurrentUser it lets network failures surface, so callers can tell a
// dead token apart from an unreachable backend.
func (m *Manager) resolveToken(ctx context.Context) (*models.User, error) {
	token, err := m.creds.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	var user models.User
	if err := m.client.Get(ctx, "/auth/me", &user); err != nil {
		switch {
		case errors.Is(err, api.ErrSessionExpired), errors.Is(err, api.ErrNotAuthenticated):
			return nil, nil
		default:
			return nil, err
		}
	}

	return &user, nil
}

// hasToken reports whether a session token is currently stored.
func (m *Manager) hasToken() bool {
	token, err := m.creds.Token()
	return err == nil && token != ""
}

func registrationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch {
			case fe.Field() == "Password" && fe.Tag() == "min":
				return "password must be at least 6 characters"
			case fe.Tag() == "email":
				return "a valid email address is required"
			}
		}
	}
	return "username, password, email and name are all required"
}
