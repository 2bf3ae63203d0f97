// Package session owns the authenticated identity and its tokens.
// Every other component reads identity and tokens through it; nothing
// else writes them.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/insuretm/console/internal/api"
	"github.com/insuretm/console/internal/credential"
	"github.com/insuretm/console/internal/model"
)

// TokenStore is durable storage for the token pair. The keyring-backed
// credential.Store implements it; tests substitute an in-memory one.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// State is a snapshot of the session for the navigation guard.
type State struct {
	// Resolving is true while the startup token decode / user fetch
	// is still in flight.
	Resolving bool

	// User is the authenticated identity, or nil when logged out.
	User *model.User
}

// Store holds the current identity and token pair.
type Store struct {
	client *api.Client
	tokens TokenStore
	log    *zap.Logger

	mu        sync.Mutex
	user      *model.User
	access    string
	refresh   string
	resolving bool

	// refreshMu serializes token refreshes so concurrent 401s result
	// in a single round trip to /token/refresh/.
	refreshMu sync.Mutex
}

// New creates the session store. The store starts in the resolving
// state until Restore has run, so guarded routes render a loading
// placeholder instead of bouncing to login prematurely.
func New(client *api.Client, tokens TokenStore, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		client:    client,
		tokens:    tokens,
		log:       log,
		resolving: true,
	}
}

// Restore resolves a previously stored token into a full identity at
// startup. A missing token resolves to logged-out; a corrupt or
// rejected token clears storage so the session is never left
// half-authenticated.
func (s *Store) Restore(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.resolving = false
		s.mu.Unlock()
	}()

	access, err := s.tokens.Get(credential.KeyAccessToken)
	if err != nil || access == "" {
		return
	}
	refresh, _ := s.tokens.Get(credential.KeyRefreshToken)

	claims, err := api.DecodeToken(access)
	if err != nil {
		s.log.Warn("stored access token is invalid, clearing session", zap.Error(err))
		s.Logout()
		return
	}

	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()

	// Fetch the user record even if the token looks expired; the 401
	// path will refresh it on the way through.
	user, err := s.client.GetUser(ctx, claims.UserID)
	if err != nil {
		s.log.Warn("restoring session failed, clearing tokens",
			zap.Int64("user_id", claims.UserID),
			zap.Error(err),
		)
		s.Logout()
		return
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	s.log.Info("session restored",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
}

// Login authenticates with the backend and establishes the identity.
// On any failure the session state is unchanged; the caller surfaces
// the error without navigating.
func (s *Store) Login(ctx context.Context, username, password string) (*model.User, error) {
	pair, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	claims, err := api.DecodeToken(pair.Access)
	if err != nil {
		return nil, &api.AuthError{Message: "backend issued an undecodable access token"}
	}

	if err := s.tokens.Set(credential.KeyAccessToken, pair.Access); err != nil {
		return nil, err
	}
	if err := s.tokens.Set(credential.KeyRefreshToken, pair.Refresh); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.access = pair.Access
	s.refresh = pair.Refresh
	s.mu.Unlock()

	user, err := s.client.GetUser(ctx, claims.UserID)
	if err != nil {
		// The token pair is stored but the identity is unresolved;
		// roll back to keep the all-or-nothing invariant.
		s.Logout()
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.resolving = false
	s.mu.Unlock()

	s.log.Info("login succeeded",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// Logout clears the identity and both stored tokens. It is idempotent:
// calling it twice leaves the same logged-out state as calling it once.
func (s *Store) Logout() {
	if err := s.tokens.Delete(credential.KeyAccessToken); err != nil {
		s.log.Warn("clearing access token failed", zap.Error(err))
	}
	if err := s.tokens.Delete(credential.KeyRefreshToken); err != nil {
		s.log.Warn("clearing refresh token failed", zap.Error(err))
	}

	s.mu.Lock()
	s.user = nil
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()
}

// CurrentUser returns the authenticated identity, or nil.
func (s *Store) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// State returns a snapshot for the navigation guard.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Resolving: s.resolving, User: s.user}
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

// RefreshAccess implements api.TokenSource. Concurrent callers are
// serialized; whoever arrives after a completed refresh gets the fresh
// token without another round trip. A failed refresh tears the session
// down.
func (s *Store) RefreshAccess(ctx context.Context, stale string) (string, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.Lock()
	current := s.access
	refresh := s.refresh
	s.mu.Unlock()

	if current != "" && current != stale {
		return current, nil
	}
	if refresh == "" {
		s.Logout()
		return "", &api.AuthError{Message: "no refresh token available"}
	}

	access, err := s.client.RefreshToken(ctx, refresh)
	if err != nil {
		s.log.Warn("token refresh rejected, logging out", zap.Error(err))
		s.Logout()
		if api.IsAuthError(err) {
			return "", err
		}
		return "", &api.AuthError{Message: "token refresh failed: " + err.Error()}
	}

	if err := s.tokens.Set(credential.KeyAccessToken, access); err != nil {
		s.log.Warn("persisting refreshed access token failed", zap.Error(err))
	}

	s.mu.Lock()
	s.access = access
	s.mu.Unlock()

	return access, nil
}
