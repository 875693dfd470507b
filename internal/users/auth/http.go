// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/schemely/internal/platform/apperr"
	"github.com/taibuivan/schemely/internal/platform/middleware"
	requestutil "github.com/taibuivan/schemely/internal/platform/request"
	"github.com/taibuivan/schemely/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the /api/auth endpoints.
type Handler struct {
	service       *Service
	secureCookies bool
}

// NewHandler constructs a [Handler]. secureCookies marks the session cookie
// Secure and should be set in production.
func NewHandler(service *Service, secureCookies bool) *Handler {
	return &Handler{service: service, secureCookies: secureCookies}
}

// Routes returns the authentication router.
//
// # Endpoints
//   - POST  /login    : Verifies credentials and sets the session cookie.
//   - POST  /register : Creates a new account.
//   - POST  /logout   : Clears the session cookie.
//   - GET   /me       : Returns the caller's profile (authenticated).
//   - PATCH /profile  : Updates onboarding fields (authenticated).
//
// throttle guards the credential endpoints. The caller must mount
// [middleware.Authenticate] in front of this router.
func (handler *Handler) Routes(throttle func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	router.With(throttle).Post("/login", handler.login)
	router.With(throttle).Post("/register", handler.register)
	router.Post("/logout", handler.logout)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Patch("/profile", handler.updateProfile)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type profileRequest struct {
	Bio            *string        `json:"bio"`
	ProfilePicture *string        `json:"profilePicture"`
	Questions      *Questionnaire `json:"questions"`
}

// # Response Payloads

type loginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type profileView struct {
	UserID                   string         `json:"userId"`
	FirstName                string         `json:"firstName"`
	LastName                 string         `json:"lastName"`
	Username                 string         `json:"username"`
	Email                    string         `json:"email"`
	ProfilePicture           string         `json:"profilePicture,omitempty"`
	Bio                      string         `json:"bio,omitempty"`
	Questions                *Questionnaire `json:"questions,omitempty"`
	IsAnswersPresent         bool           `json:"isAnswersPresent"`
	IsProfilePictureUploaded bool           `json:"isProfilePictureUploaded"`
	IsBioAdded               bool           `json:"isBioAdded"`
}

type meResponse struct {
	Success bool        `json:"success"`
	User    profileView `json:"user"`
}

func newProfileView(user *User) profileView {
	flags := user.Flags()
	return profileView{
		UserID:                   user.ID,
		FirstName:                user.FirstName,
		LastName:                 user.LastName,
		Username:                 user.Username,
		Email:                    user.Email,
		ProfilePicture:           user.ProfilePicture,
		Bio:                      user.Bio,
		Questions:                user.Questions,
		IsAnswersPresent:         flags.IsAnswersPresent,
		IsProfilePictureUploaded: flags.IsProfilePictureUploaded,
		IsBioAdded:               flags.IsBioAdded,
	}
}

/*
Login authenticates a user and establishes a session.

POST /api/auth/login

Request:
  - Body: loginRequest (email, password)

Response:
  - 200: loginResponse, plus the session cookie
  - 400: Invalid credentials (unknown email or wrong password, indistinguishable)
  - 500: {message} for malformed bodies and internal failures, no cookie
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	result, err := handler.service.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, SessionCookie(result.Token, handler.secureCookies))

	respond.OK(writer, loginResponse{
		Success:  true,
		Message:  MessageLoginSuccessful,
		UserID:   result.User.ID,
		Username: result.User.Username,
		Email:    result.User.Email,
	})
}

/*
Register handles the creation of a new user account.

POST /api/auth/register

Response:
  - 201: registerResponse
  - 400: Validation failure with per-field details
  - 409: Email or username already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid JSON payload"))
		return
	}

	user, err := handler.service.Register(request.Context(), RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{
		Success: true,
		Message: MessageRegistered,
		UserID:  user.ID,
	})
}

/*
Logout clears the session cookie.

POST /api/auth/logout

Sessions are stateless, so an already-issued token stays valid until it expires.
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	http.SetCookie(writer, ClearSessionCookie(handler.secureCookies))
	respond.Message(writer, MessageLogoutSuccessful)
}

/*
Me returns the caller's current profile and freshly derived flags.

GET /api/auth/me
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Profile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, meResponse{Success: true, User: newProfileView(user)})
}

/*
UpdateProfile edits the onboarding fields of the caller's account.

PATCH /api/auth/profile

Request:
  - Body: profileRequest (bio?, profilePicture?, questions?)
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input profileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Invalid JSON payload"))
		return
	}

	err = handler.service.UpdateProfile(request.Context(), userID, ProfileUpdate{
		Bio:            input.Bio,
		ProfilePicture: input.ProfilePicture,
		Questions:      input.Questions,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, MessageProfileUpdated)
}
