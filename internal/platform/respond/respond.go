// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Envelopes
//
// The web client branches on two shapes only:
//
//   - Client errors (4xx): {"success": false, "message": "...", "details": [...]}
//   - Server errors (5xx): {"message": "..."}
//
// Successful responses are written as-is so each endpoint owns its payload.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/schemely/internal/platform/apperr"
	"github.com/taibuivan/schemely/internal/platform/constants"
	"github.com/taibuivan/schemely/internal/platform/ctxutil"
)

// MessageEnvelope is the JSON envelope for client errors and bare acknowledgements.
type MessageEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// InternalEnvelope is the JSON envelope for server errors.
type InternalEnvelope struct {
	Message string `json:"message"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set(constants.HeaderContentType, constants.ContentTypeJSONUTF8)
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with the payload unwrapped.
func OK(writer http.ResponseWriter, payload interface{}) {
	JSON(writer, http.StatusOK, payload)
}

// Created writes a 201 Created response with the payload unwrapped.
func Created(writer http.ResponseWriter, payload interface{}) {
	JSON(writer, http.StatusCreated, payload)
}

// Message writes a 200 OK acknowledgement such as {"success": true, "message": "Logged out"}.
func Message(writer http.ResponseWriter, message string) {
	JSON(writer, http.StatusOK, MessageEnvelope{Success: true, Message: message})
}

// Error converts any Go error into the matching JSON envelope.
//
// Errors that are not an [apperr.AppError] are treated as internal failures.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)

		JSON(writer, appError.HTTPStatus, InternalEnvelope{Message: appError.Message})
		return
	}

	JSON(writer, appError.HTTPStatus, MessageEnvelope{
		Success: false,
		Message: appError.Message,
		Details: appError.Details,
	})
}
