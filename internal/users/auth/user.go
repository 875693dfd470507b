// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account identity for Schemely: registration, email and
password login, and the onboarding profile that drives the session flags.

# Architecture

  - Entity: [User] and its derived [ProfileFlags].
  - Repository: [UserRepository], implemented for PostgreSQL and MongoDB.
  - Service: [Service] owns the login and registration rules.
  - Transport: [Handler] mounts the /api/auth routes and writes the session cookie.

Sessions are stateless signed tokens. Nothing is persisted at login.
*/
package auth

import (
	"strings"
	"time"

	"github.com/taibuivan/schemely/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Schemely platform.
type User struct {
	ID             string         `json:"userId"`
	Email          string         `json:"email"`
	PasswordHash   string         `json:"-"`
	FirstName      string         `json:"firstName"`
	LastName       string         `json:"lastName"`
	Username       string         `json:"username"`
	ProfilePicture string         `json:"profilePicture,omitempty"`
	Bio            string         `json:"bio,omitempty"`
	Questions      *Questionnaire `json:"questions,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Questionnaire holds the onboarding answers. Any answer may be empty.
type Questionnaire struct {
	HowDoYouWantToUseThisPlatform string `json:"how_do_you_want_to_use_this_platform"`
	WhatBestDescribesYou          string `json:"what_best_describes_you"`
	HowDoYouHeardAboutUs          string `json:"how_do_you_heard_about_us"`
}

// Complete reports whether all three answers are non-empty. A nil questionnaire is incomplete.
func (questions *Questionnaire) Complete() bool {
	if questions == nil {
		return false
	}
	return questions.HowDoYouWantToUseThisPlatform != "" &&
		questions.WhatBestDescribesYou != "" &&
		questions.HowDoYouHeardAboutUs != ""
}

// ProfileFlags tell the web client which onboarding steps remain.
type ProfileFlags struct {
	IsAnswersPresent         bool
	IsProfilePictureUploaded bool
	IsBioAdded               bool
}

// Flags derives the onboarding flags from the user's current state.
func (user *User) Flags() ProfileFlags {
	return ProfileFlags{
		IsAnswersPresent:         user.Questions.Complete(),
		IsProfilePictureUploaded: user.ProfilePicture != "",
		IsBioAdded:               user.Bio != "",
	}
}

// Identity builds the claims input for a session token.
func (user *User) Identity() sec.SessionIdentity {
	flags := user.Flags()
	return sec.SessionIdentity{
		UserID:                   user.ID,
		FirstName:                user.FirstName,
		LastName:                 user.LastName,
		Email:                    user.Email,
		IsAnswersPresent:         flags.IsAnswersPresent,
		IsProfilePictureUploaded: flags.IsProfilePictureUploaded,
		IsBioAdded:               flags.IsBioAdded,
	}
}

// ProfileUpdate carries the optional onboarding fields of a profile edit.
// A nil field is left unchanged.
type ProfileUpdate struct {
	Bio            *string
	ProfilePicture *string
	Questions      *Questionnaire
}

// Empty reports whether the update changes nothing.
func (update ProfileUpdate) Empty() bool {
	return update.Bio == nil && update.ProfilePicture == nil && update.Questions == nil
}

// normalizeName trims surrounding whitespace from a display name.
func normalizeName(name string) string {
	return strings.TrimSpace(name)
}
