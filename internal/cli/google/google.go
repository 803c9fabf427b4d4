// Package google obtains a federated credential (a Google ID token) via
// the OAuth2 authorization-code flow with a loopback redirect. The
// credential is opaque to this client; it is handed to the backend's
// exchange endpoint which answers with a session token.
package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/codeanytime/blogctl/internal/cli/api"
	"github.com/codeanytime/blogctl/internal/logger"
)

const issuer = "https://accounts.google.com"

// callbackTimeout bounds how long we wait for the user to finish the
// consent screen.
const callbackTimeout = 3 * time.Minute

// Provider drives the interactive Google sign-in. A zero client ID means
// federated login is disabled.
type Provider struct {
	clientID string
	out      func(format string, args ...any)
	log      zerolog.Logger
}

// New creates a provider for the given OAuth client ID.
func New(clientID string) *Provider {
	return &Provider{
		clientID: clientID,
		out: func(format string, args ...any) {
			fmt.Printf(format, args...)
		},
		log: logger.GetLogger().With().Str("component", "google").Logger(),
	}
}

// Credential runs the sign-in flow and returns the resulting ID token.
func (p *Provider) Credential(ctx context.Context) (string, error) {
	if p.clientID == "" {
		return "", api.ErrProviderUnavailable
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf("%w: discovery failed: %v", api.ErrProviderUnavailable, err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("%w: cannot open loopback listener: %v", api.ErrProviderUnavailable, err)
	}
	defer ln.Close()

	conf := oauth2.Config{
		ClientID:    p.clientID,
		Endpoint:    provider.Endpoint(),
		RedirectURL: fmt.Sprintf("http://%s/callback", ln.Addr().String()),
		Scopes:      []string{oidc.ScopeOpenID, "profile", "email"},
	}

	state, err := randomToken()
	if err != nil {
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callback{err: errors.New("authorization response state mismatch")}
			return
		}
		if errCode := q.Get("error"); errCode != "" {
			http.Error(w, "sign-in failed", http.StatusBadRequest)
			results <- callback{err: fmt.Errorf("authorization denied: %s", errCode)}
			return
		}
		fmt.Fprintln(w, "Signed in. You can close this tab and return to the terminal.")
		results <- callback{code: q.Get("code")}
	})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	authURL := conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	p.out("Open this URL in your browser to sign in with Google:\n\n  %s\n\n", authURL)

	var code string
	select {
	case res := <-results:
		if res.err != nil {
			return "", res.err
		}
		code = res.code
	case <-time.After(callbackTimeout):
		return "", errors.New("timed out waiting for the sign-in to complete")
	case <-ctx.Done():
		return "", ctx.Err()
	}

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("code exchange failed: %w", err)
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("authorization response carried no ID token")
	}

	p.log.Debug().Msg("obtained federated credential")
	return rawIDToken, nil
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
