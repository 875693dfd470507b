// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/schemely/internal/platform/sec"
	"github.com/taibuivan/schemely/internal/users/auth"
)

const (
	testSecret   = "test-signing-secret"
	testIssuer   = "schemely.test"
	testPassword = "correct-horse-battery"
)

// memoryUsers is an in-memory UserRepository.
type memoryUsers struct {
	mu     sync.Mutex
	users  map[string]*auth.User
	nextID int

	// err, when set, is returned by every call.
	err error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*auth.User)}
}

func (repository *memoryUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.err != nil {
		return nil, repository.err
	}
	for _, user := range repository.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (repository *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.Email == email })
}

func (repository *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.Username == username })
}

func (repository *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.ID == id })
}

func (repository *memoryUsers) Create(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.err != nil {
		return repository.err
	}
	if user.ID == "" {
		repository.nextID++
		user.ID = fmt.Sprintf("user-%d", repository.nextID)
	}
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *memoryUsers) UpdateProfile(_ context.Context, id string, update auth.ProfileUpdate) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.err != nil {
		return repository.err
	}
	user, ok := repository.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.ProfilePicture != nil {
		user.ProfilePicture = *update.ProfilePicture
	}
	if update.Questions != nil {
		questions := *update.Questions
		user.Questions = &questions
	}
	return nil
}

func (repository *memoryUsers) Ping(context.Context) error {
	return repository.err
}

func (repository *memoryUsers) stored(t *testing.T, id string) auth.User {
	t.Helper()
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[id]
	require.True(t, ok)
	return *user
}

// seedUser stores a user whose password is testPassword.
func seedUser(t *testing.T, repository *memoryUsers, user auth.User) *auth.User {
	t.Helper()

	hash, err := sec.HashPassword(testPassword)
	require.NoError(t, err)

	user.PasswordHash = hash
	require.NoError(t, repository.Create(context.Background(), &user))
	return &user
}

func sampleUser() auth.User {
	return auth.User{
		Email:     "asha@example.com",
		FirstName: "Asha",
		LastName:  "Rao",
		Username:  "asha_rao",
	}
}

func newTokens(t *testing.T) *sec.TokenService {
	t.Helper()
	tokens, err := sec.NewTokenService(testSecret, testIssuer)
	require.NoError(t, err)
	return tokens
}
