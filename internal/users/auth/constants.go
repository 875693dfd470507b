// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Account Constraints

const (
	// PasswordMinLength is the minimum number of characters for a new password.
	PasswordMinLength = 8

	// PasswordMaxBytes is bcrypt's input limit; longer passwords are rejected, not truncated.
	PasswordMaxBytes = 72

	// NameMaxLength bounds first and last names.
	NameMaxLength = 64

	// UsernameMinLength and UsernameMaxLength bound the public handle.
	UsernameMinLength = 3
	UsernameMaxLength = 32

	// BioMaxLength bounds the free-text biography.
	BioMaxLength = 500

	// AnswerMaxLength bounds each onboarding questionnaire answer.
	AnswerMaxLength = 200
)

// # Client Messages

const (
	MessageLoginSuccessful    = "Login successful"
	MessageLogoutSuccessful   = "Logout successful"
	MessageRegistered         = "User registered successfully"
	MessageProfileUpdated     = "Profile updated"
	MessageInvalidCredentials = "Invalid credentials"
)

// # Field Identifiers

// JSON field names shared by payloads and validation errors.
const (
	FieldFirstName      = "firstName"
	FieldLastName       = "lastName"
	FieldUsername       = "username"
	FieldEmail          = "email"
	FieldPassword       = "password"
	FieldBio            = "bio"
	FieldProfilePicture = "profilePicture"
	FieldProfile        = "profile"
	FieldUsage          = "questions.how_do_you_want_to_use_this_platform"
	FieldDescribes      = "questions.what_best_describes_you"
	FieldHeardFrom      = "questions.how_do_you_heard_about_us"
)
