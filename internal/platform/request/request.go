// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It wraps body decoding and session lookup so handlers stay free of
context plumbing.
*/
package requestutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/taibuivan/schemely/internal/platform/apperr"
	"github.com/taibuivan/schemely/internal/platform/ctxutil"
	"github.com/taibuivan/schemely/internal/platform/sec"
)

// MaxBodyBytes caps the size of any JSON request body.
const MaxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

The decoder error is returned unchanged; each handler decides how a malformed
body surfaces to the client.
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if request.Body == nil {
		return fmt.Errorf("request body is empty")
	}

	decoder := json.NewDecoder(io.LimitReader(request.Body, MaxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		return err
	}
	return nil
}

/*
RequiredClaims ensures the request is authenticated and returns its claims.

Returns:
  - *sec.SessionClaims: The verified session
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredClaims(request *http.Request) (*sec.SessionClaims, error) {
	claims := ctxutil.GetSession(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredUserID returns the user ID of the authenticated caller.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
