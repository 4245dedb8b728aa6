// Package service — authentication business logic.
//
// AuthService is the business logic layer for authentication. It sits between
// the HTTP handlers and the user/auth services:
//
//	AuthHandler (HTTP) → AuthService (auth rules) → UserService (accounts)
//	                   ↘ TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Orchestrate the GitHub OAuth callback: sync the account, issue tokens
//   - Encapsulate all auth rules in one place, away from HTTP concerns
//   - Be easily testable with mock dependencies
//
// NOTE ON PASSWORD AUTH:
// This app uses GitHub OAuth as its primary identity provider — users never
// set a password directly. The PasswordService (password.go) is included for
// completeness (e.g. if email/password auth is added later) but is not used
// in the main auth flow described here.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/forgezone/forge-zone/internal/auth"
	"github.com/forgezone/forge-zone/internal/model"
)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      *UserService          → account synchronization
//   - tokens     *auth.TokenService    → generate/validate JWTs
//   - passwords  *auth.PasswordService → bcrypt hashing (for future use)
//   - logger     *slog.Logger          → structured logging
type AuthService struct {
	users     *UserService
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users *UserService,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is returned by authentication operations.
// It bundles the user record and the issued JWT together so the caller
// (the HTTP handler) can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback.
//
// After the handler exchanges the GitHub code for a GitHubUser profile,
// it calls this method to:
//
//  1. Map the GitHub profile to a stable identity (id "github:<numeric id>")
//  2. Sync the account: create on first login, fetch as-is on repeat logins
//  3. Generate a JWT access token for the authenticated user
//  4. Return both so the handler can set the HttpOnly cookie and redirect
//
// WHY "github:<id>" AND NOT THE LOGIN NAME?
// GitHub's numeric ID is stable for the lifetime of the account; the login
// name can be changed at any time. Keying on the numeric ID means a renamed
// GitHub account still maps to the same row here.
//
// WHAT THIS METHOD DOES NOT DO:
//   - It does NOT set cookies (that's the handler's job — HTTP concern)
//   - It does NOT read HTTP requests
//   - It is NOT tied to Chi or any routing framework
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	ident := model.Identity{
		ID:    "github:" + strconv.FormatInt(ghUser.ID, 10),
		Email: ghUser.Email,
		Name:  ghUser.Name,
	}

	user, err := s.users.CreateOrFetch(ctx, ident)
	if err != nil {
		return nil, fmt.Errorf("service/auth: syncing account (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	// Issue a JWT access token containing the user's internal ID.
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}

// ValidateToken validates a JWT string and returns the userID it encodes.
//
// This is a thin delegation to TokenService.Validate. Having it on
// AuthService means callers only need to import the service package, not
// the auth package directly.
//
// Returns an error if the token is expired, tampered, or otherwise invalid.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}
