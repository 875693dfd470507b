// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/taibuivan/schemely/internal/platform/apperr"
	"github.com/taibuivan/schemely/internal/platform/constants"
	"github.com/taibuivan/schemely/internal/platform/ctxutil"
	"github.com/taibuivan/schemely/internal/platform/sec"
	"github.com/taibuivan/schemely/internal/platform/validate"
)

// ErrInvalidCredentials is the single rejection for an unknown email and a
// wrong password. Both paths return this exact value.
var ErrInvalidCredentials = apperr.BadRequest("INVALID_CREDENTIALS", MessageInvalidCredentials)

// # Contracts & Types

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	IssueSessionToken(identity sec.SessionIdentity, timeToLive time.Duration) (string, error)
}

// Service implements the account use cases.
type Service struct {
	users  UserRepository
	tokens TokenIssuer
}

// NewService constructs a [Service].
func NewService(users UserRepository, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// NormalizeEmail trims and Unicode case-folds an address so lookups match
// regardless of how the user typed it.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// # Authentication Flow

// LoginInput holds the submitted credentials.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a successfully established session.
type LoginResult struct {
	Token string
	User  *User
}

/*
Login verifies credentials and issues a session token.

Description: An unknown email and a wrong password both return
[ErrInvalidCredentials]; the reason is only logged. Store and signing failures
are returned as internal errors and no token is produced.

Returns:
  - *LoginResult: Signed token and the authenticated user
  - error: ErrInvalidCredentials, or an internal failure
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	logger := ctxutil.GetLogger(ctx)
	email := NormalizeEmail(input.Email)

	if email == "" || input.Password == "" {
		logger.InfoContext(ctx, "login_failed", slog.String("reason", "missing_credentials"))
		return nil, ErrInvalidCredentials
	}

	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.InfoContext(ctx, "login_failed", slog.String("reason", "user_not_found"))
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal(err)
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		logger.InfoContext(ctx, "login_failed",
			slog.String("reason", "password_mismatch"),
			slog.String("user_id", user.ID),
		)
		return nil, ErrInvalidCredentials
	}

	token, err := service.tokens.IssueSessionToken(user.Identity(), constants.SessionTokenTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	logger.InfoContext(ctx, "login_succeeded", slog.String("user_id", user.ID))

	return &LoginResult{Token: token, User: user}, nil
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

/*
Register validates, hashes, and persists a new account.

Returns:
  - *User: Created entity with its assigned ID
  - error: Validation (400), Conflict (409) or storage failures
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	input.FirstName = normalizeName(input.FirstName)
	input.LastName = normalizeName(input.LastName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = NormalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.
		Required(FieldFirstName, input.FirstName).
		MaxLen(FieldFirstName, input.FirstName, NameMaxLength).
		Required(FieldLastName, input.LastName).
		MaxLen(FieldLastName, input.LastName, NameMaxLength).
		MinLen(FieldUsername, input.Username, UsernameMinLength).
		MaxLen(FieldUsername, input.Username, UsernameMaxLength).
		Username(FieldUsername, input.Username).
		Email(FieldEmail, input.Email).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		MaxBytes(FieldPassword, input.Password, PasswordMaxBytes)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.ensureAvailable(ctx, input.Email, input.Username); err != nil {
		return nil, err
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		Email:        input.Email,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
	}

	// The unique indexes still catch a concurrent registration that slipped past ensureAvailable.
	if err := service.users.Create(ctx, user); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_registered", slog.String("user_id", user.ID))

	return user, nil
}

func (service *Service) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := service.users.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	if _, err := service.users.FindByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	return nil
}

// # Profile

// Profile returns the current state of the caller's account.
func (service *Service) Profile(ctx context.Context, userID string) (*User, error) {
	return service.users.FindByID(ctx, userID)
}

/*
UpdateProfile applies onboarding edits.

The derived session flags pick up the change on the next login.
*/
func (service *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error {
	validator := &validate.Validator{}
	validator.Custom(FieldProfile, update.Empty(), "At least one of bio, profilePicture or questions is required")

	if update.Bio != nil {
		validator.MaxLen(FieldBio, *update.Bio, BioMaxLength)
	}
	if update.ProfilePicture != nil && *update.ProfilePicture != "" {
		validator.URL(FieldProfilePicture, *update.ProfilePicture)
	}
	if update.Questions != nil {
		validator.
			MaxLen(FieldUsage, update.Questions.HowDoYouWantToUseThisPlatform, AnswerMaxLength).
			MaxLen(FieldDescribes, update.Questions.WhatBestDescribesYou, AnswerMaxLength).
			MaxLen(FieldHeardFrom, update.Questions.HowDoYouHeardAboutUs, AnswerMaxLength)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.users.UpdateProfile(ctx, userID, update); err != nil {
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "profile_updated", slog.String("user_id", userID))
	return nil
}

// Ping reports whether the credential store is reachable.
func (service *Service) Ping(ctx context.Context) error {
	return service.users.Ping(ctx)
}
