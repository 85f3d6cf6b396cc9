// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/libris/internal/platform/apperr"
	"github.com/taibuivan/libris/internal/platform/constants"
	"github.com/taibuivan/libris/internal/platform/sec"
	"github.com/taibuivan/libris/internal/platform/validate"
	"github.com/taibuivan/libris/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Service implements account and session use cases.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	tokenProvider     TokenProvider
	logger            *slog.Logger
}

// NewService constructs a new auth [Service].
//
// sessionRepo and tokenProv may be nil for callers that only provision
// accounts, such as the operator CLI.
func NewService(userRepo UserRepository, sessionRepo SessionRepository, tokenProv TokenProvider, logger *slog.Logger) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		tokenProvider:     tokenProv,
		logger:            logger,
	}
}

// # Registration Flow

// Credentials holds a username and plain-text password.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) normalize() Credentials {
	c.Username = strings.TrimSpace(c.Username)
	return c
}

func (c Credentials) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, c.Username).
		MinLen(FieldUsername, c.Username, UsernameMinLength).
		MaxLen(FieldUsername, c.Username, UsernameMaxLength).
		Username(FieldUsername, c.Username).
		Required(FieldPassword, c.Password).
		MinLen(FieldPassword, c.Password, PasswordMinLength).
		MaxLen(FieldPassword, c.Password, PasswordMaxLength)
	return validator.Err()
}

/*
Register enrolls a new member account.

Parameters:
  - context: context.Context
  - input: Credentials

Returns:
  - *User: Created entity with role member
  - error: ValidationError, Conflict (username taken) or storage errors
*/
func (service *Service) Register(context context.Context, input Credentials) (*User, error) {
	input = input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	user, err := service.createUser(context, input, sec.RoleMember)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

/*
Provision creates an account with the given role, or resets the password
and role of an existing one with the same username.

Used by the operator CLI to create the first librarian.

Returns:
  - *User: The created or updated account
  - bool: true when the account was created
  - error: ValidationError or storage errors
*/
func (service *Service) Provision(context context.Context, input Credentials, role sec.UserRole) (*User, bool, error) {
	input = input.normalize()

	validator := &validate.Validator{}
	validator.Custom(FieldRole, !role.Valid(), "Must be one of: admin, member")
	if err := validator.Err(); err != nil {
		return nil, false, err
	}
	if err := input.validate(); err != nil {
		return nil, false, err
	}

	existing, err := service.userRepository.FindByUsername(context, input.Username)
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, false, err
	}

	if existing == nil {
		user, err := service.createUser(context, input, role)
		if err != nil {
			return nil, false, err
		}
		service.logger.InfoContext(context, "user_provisioned",
			slog.String("user_id", user.ID),
			slog.String("role", string(role)),
		)
		return user, true, nil
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, false, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	existing.PasswordHash = hashedPassword
	existing.Role = role
	if err := service.userRepository.UpdateCredentials(context, existing); err != nil {
		return nil, false, err
	}

	service.logger.InfoContext(context, "user_credentials_reset",
		slog.String("user_id", existing.ID),
		slog.String("role", string(role)),
	)
	return existing, false, nil
}

func (service *Service) createUser(context context.Context, input Credentials, role sec.UserRole) (*User, error) {
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Time-sortable ID to keep the primary key index append-mostly.
	user := &User{
		ID:           uuidv7.New(),
		Username:     input.Username,
		PasswordHash: hashedPassword,
		Role:         role,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}
	return user, nil
}

// # Authentication Flow

// ClientInfo describes the device that opened a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates credentials and issues an access token and a refresh token.

Unknown usernames and wrong passwords produce the same Unauthorized error.

Returns:
  - *LoginSession: Tokens and the account
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input Credentials, client ClientInfo) (*LoginSession, error) {
	input = input.normalize()

	user, err := service.userRepository.FindByUsername(context, input.Username)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	session, err := service.openSession(context, user, client)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_logged_in", slog.String("user_id", user.ID))
	return session, nil
}

/*
RefreshSession rotates a refresh token: the presented session is consumed and
a fresh pair is issued. A token can be used once, even by concurrent callers.

Returns:
  - *LoginSession: New credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken string, client ClientInfo) (*LoginSession, error) {
	tokenHash := sec.HashToken(refreshToken)

	session, err := service.sessionRepository.Consume(context, tokenHash)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("Invalid or expired refresh token")
		}
		return nil, fmt.Errorf("auth_service_refresh_consume_failed: %w", err)
	}

	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, err
	}

	return service.openSession(context, user, client)
}

// Logout revokes the session of a refresh token. Unknown tokens are ignored.
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if err := service.sessionRepository.Revoke(context, sec.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// Me returns the caller's account.
func (service *Service) Me(context context.Context, actor sec.Actor) (*User, error) {
	return service.userRepository.FindByID(context, actor.UserID)
}

func (service *Service) openSession(context context.Context, user *User, client ClientInfo) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, string(user.Role), constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(constants.RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	now := time.Now().UTC()
	session := &Session{
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		ExpiresAt: now.Add(constants.RefreshTokenTTL),
		CreatedAt: now,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
		User:                  user,
	}, nil
}
