// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/taibuivan/schemely/internal/platform/apperr"
)

// # Sentinel Errors

var (
	// ErrUserNotFound is returned by every [UserRepository] lookup that matches no account.
	ErrUserNotFound = apperr.NotFound("User")

	// ErrEmailTaken is returned when a write collides with an existing email.
	ErrEmailTaken = apperr.Conflict("Email is already registered")

	// ErrUsernameTaken is returned when a write collides with an existing username.
	ErrUsernameTaken = apperr.Conflict("Username is already taken")
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Emails are stored and queried in their normalized form; callers normalize
// with [NormalizeEmail] before every lookup.
type UserRepository interface {

	/*
		FindByEmail returns the account with the given normalized email.

		Returns:
		  - *User: Hydrated entity, including the password hash
		  - error: ErrUserNotFound or storage failures
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByUsername returns the account with the given username, or ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByID returns the account with the given ID, or ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	/*
		Create persists a brand-new account and fills in its ID and timestamps.

		Returns:
		  - error: ErrEmailTaken / ErrUsernameTaken on unique violations, or storage failures
	*/
	Create(ctx context.Context, user *User) error

	// UpdateProfile applies the onboarding fields of update, or returns ErrUserNotFound.
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
