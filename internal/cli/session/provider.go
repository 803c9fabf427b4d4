package session

import (
	"context"
	"errors"
	"sync"

	"github.com/codeanytime/blogctl/internal/cli/api"
	"github.com/codeanytime/blogctl/internal/models"
)

// State is the process-wide record of the current session, consumed by
// every command that gates behaviour on identity. While Loading is true
// no authorization decision may be drawn from the other fields.
type State struct {
	User          *models.User
	Authenticated bool
	IsAdmin       bool
	Loading       bool
	Err           string
}

// Provider holds the single State instance for the process and exposes
// the identity operations bound so every call mutates it through the
// same lifecycle: loading on, error cleared, then either a wholesale
// user replacement or an error message with the prior user untouched.
type Provider struct {
	mu      sync.RWMutex
	state   State
	manager *Manager
}

// NewProvider creates the provider and bootstraps the state from the
// credential store: loading stays true until the stored token has been
// resolved (or found absent).
func NewProvider(ctx context.Context, manager *Manager) *Provider {
	p := &Provider{
		manager: manager,
		state:   State{Loading: true},
	}
	manager.Client().OnSessionExpired(p.expire)

	user, err := manager.CurrentUser(ctx)
	p.mu.Lock()
	p.applyUserLocked(user)
	if err != nil {
		// Bootstrap faults degrade to logged-out rather than failing
		// the whole command.
		p.manager.log.Warn().Err(err).Msg("session bootstrap failed")
	}
	p.state.Loading = false
	p.mu.Unlock()

	return p
}

// State returns a copy of the current session state.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// LoginWithCredentials runs the credentials login and folds the outcome
// into the shared state. A failed login leaves an existing session
// untouched.
func (p *Provider) LoginWithCredentials(ctx context.Context, username, password string) (*models.User, error) {
	p.begin()
	user, err := p.manager.LoginWithCredentials(ctx, username, password)
	p.finish(user, err)
	return user, err
}

// Register creates an account and, when the backend returns a token,
// starts the session.
func (p *Provider) Register(ctx context.Context, username, password, email, name string) (*models.User, error) {
	p.begin()
	user, err := p.manager.Register(ctx, username, password, email, name)
	p.finish(user, err)
	return user, err
}

// LoginWithGoogle runs the federated sign-in flow.
func (p *Provider) LoginWithGoogle(ctx context.Context) (*models.User, error) {
	p.begin()
	user, err := p.manager.LoginWithGoogle(ctx)
	p.finish(user, err)
	return user, err
}

// Logout tears the session down. Local state is dropped even when the
// backend call fails.
func (p *Provider) Logout(ctx context.Context) error {
	p.begin()
	err := p.manager.Logout(ctx)

	p.mu.Lock()
	p.applyUserLocked(nil)
	if err != nil {
		p.state.Err = userMessage(err)
	}
	p.state.Loading = false
	p.mu.Unlock()

	return err
}

// begin starts an identity operation: loading on, previous error
// cleared. It runs synchronously before any network suspension.
func (p *Provider) begin() {
	p.mu.Lock()
	p.state.Loading = true
	p.state.Err = ""
	p.mu.Unlock()
}

// finish folds an operation result into the state. On failure the prior
// user survives: a rejected login attempt must not log anyone out. A
// user without a stored token is not a session: registration may create
// an account without logging it in.
func (p *Provider) finish(user *models.User, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case err != nil:
		p.state.Err = userMessage(err)
	case user != nil && p.manager.hasToken():
		p.applyUserLocked(user)
	case user != nil:
		p.applyUserLocked(nil)
	}
	p.state.Loading = false
}

// expire is the request client's authorization-failure hook: the token
// is already gone, so the state drops to logged-out immediately.
func (p *Provider) expire() {
	p.mu.Lock()
	p.applyUserLocked(nil)
	p.mu.Unlock()
}

func (p *Provider) applyUserLocked(user *models.User) {
	p.state.User = user
	p.state.Authenticated = user != nil
	p.state.IsAdmin = user.IsAdmin()
}

// userMessage converts taxonomy errors into the text shown inline to the
// user.
func userMessage(err error) string {
	var verr *api.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, api.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, api.ErrDuplicateAccount):
		return "An account with that username or email already exists"
	case errors.Is(err, api.ErrProviderUnavailable):
		return "Google sign-in is not available. Use username and password instead."
	case errors.Is(err, api.ErrExchangeFailed):
		return "Google sign-in was rejected. Use username and password instead."
	case errors.Is(err, api.ErrSessionExpired):
		return "Your session has expired. Please log in again."
	case api.IsNetworkError(err):
		return "Could not reach the server. Please try again."
	case api.IsServerError(err):
		return "The server had a problem. Please try again later."
	default:
		return err.Error()
	}
}
