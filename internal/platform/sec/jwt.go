// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the auth package's TokenIssuer interface.
package sec

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrSigningKeyMissing is returned when a token is requested from a service
// that has no signing secret. It is a configuration fault, never a credential one.
var ErrSigningKeyMissing = errors.New("sec: session signing key is not configured")

// SessionClaims represents the payload embedded inside a session token.
//
// The profile-completeness flags let the web client route a freshly logged-in
// user to onboarding without an extra round trip.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID                   string `json:"userId"`
	FirstName                string `json:"firstName"`
	LastName                 string `json:"lastName"`
	Email                    string `json:"email"`
	IsAnswersPresent         bool   `json:"isAnswersPresent"`
	IsProfilePictureUploaded bool   `json:"isProfilePictureUploaded"`
	IsBioAdded               bool   `json:"isBioAdded"`
}

// SessionIdentity is the input to [TokenService.IssueSessionToken].
type SessionIdentity struct {
	UserID                   string
	FirstName                string
	LastName                 string
	Email                    string
	IsAnswersPresent         bool
	IsProfilePictureUploaded bool
	IsBioAdded               bool
}

// TokenService signs and verifies session tokens using HS256.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService.
//
// An empty or blank secret is rejected so that a misconfigured process fails
// at startup rather than at the first login.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSigningKeyMissing
	}

	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
	}, nil
}

// IssueSessionToken creates a signed session token valid for timeToLive.
//
// Every token carries a fresh random "jti" so two logins within the same
// second still produce distinct tokens.
func (service *TokenService) IssueSessionToken(identity SessionIdentity, timeToLive time.Duration) (string, error) {
	if service == nil || len(service.secret) == 0 {
		return "", ErrSigningKeyMissing
	}

	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.UserID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:                   identity.UserID,
		FirstName:                identity.FirstName,
		LastName:                 identity.LastName,
		Email:                    identity.Email,
		IsAnswersPresent:         identity.IsAnswersPresent,
		IsProfilePictureUploaded: identity.IsProfilePictureUploaded,
		IsBioAdded:               identity.IsBioAdded,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, algorithm, issuer and expiry of a session token.
func (service *TokenService) VerifyToken(tokenString string) (*SessionClaims, error) {
	if service == nil || len(service.secret) == 0 {
		return nil, ErrSigningKeyMissing
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if service.issuer != "" {
		options = append(options, jwt.WithIssuer(service.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return service.secret, nil
	}, options...)

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
