package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/middleware"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
	"github.com/arturoeanton/go-inbox-classifier-ollama/pkg/config"
)

// AuthService handles the authentication flow.
type AuthService struct {
	provider port.AuthProvider
	users    port.UserStore
	creds    *CredentialService
	jwtCfg   middleware.JWTConfig
}

// NewAuthService creates a new authentication service.
func NewAuthService(provider port.AuthProvider, users port.UserStore, creds *CredentialService, cfg *config.Config) *AuthService {
	return &AuthService{
		provider: provider,
		users:    users,
		creds:    creds,
		jwtCfg: middleware.JWTConfig{
			Secret:    cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
			ExpiresIn: time.Duration(cfg.JWTExpiration) * time.Hour,
		},
	}
}

// GetAuthURL returns the OAuth2 authorization URL.
func (s *AuthService) GetAuthURL(state string) string {
	return s.provider.AuthURL(state)
}

// HandleCallback processes the OAuth2 callback: exchange code, match the
// user by email, store the refresh token, and return a JWT.
//
// First login requires a refresh token — without one the account would be
// unusable for sync, so the caller gets port.ErrConsentRequired instead.
// On a returning login the stored credential is overwritten only when the
// provider issued a fresh refresh token.
func (s *AuthService) HandleCallback(ctx context.Context, code string) (string, *domain.User, error) {
	tokens, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := s.provider.GetUserProfile(ctx, tokens.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("get profile: %w", err)
	}

	user, err := s.users.GetUserByEmail(ctx, profile.Email)
	switch {
	case errors.Is(err, port.ErrUserNotFound):
		if tokens.RefreshToken == "" {
			return "", nil, port.ErrConsentRequired
		}
		blob, encErr := s.creds.EncryptToken(tokens.RefreshToken)
		if encErr != nil {
			return "", nil, fmt.Errorf("encrypt refresh token: %w", encErr)
		}
		user, err = s.users.CreateUserWithCredential(ctx, profile, s.provider.ProviderName(), blob)
		if err != nil {
			return "", nil, fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return "", nil, fmt.Errorf("lookup user: %w", err)
	default:
		if tokens.RefreshToken != "" {
			if err := s.creds.SaveRefreshToken(ctx, s.provider.ProviderName(), user.ID, tokens.RefreshToken); err != nil {
				return "", nil, err
			}
		}
	}

	jwt, err := middleware.GenerateJWT(user, s.jwtCfg)
	if err != nil {
		return "", nil, fmt.Errorf("generate jwt: %w", err)
	}

	slog.Info("user authenticated", "user_id", user.ID, "provider", s.provider.ProviderName())
	return jwt, user, nil
}

// GetUser returns the user for an authenticated request.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}
