// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-auth/internal/platform/constants"
	"github.com/taibuivan/yomira-auth/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-auth/internal/platform/request"
	"github.com/taibuivan/yomira-auth/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// The handler only translates between HTTP and [Service]: JSON bodies in,
// the refresh cookie and the {id, access_token} envelope out.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register     : Creates an account and opens a session.
//   - POST /login        : Authenticates and opens a session.
//   - GET|POST /refresh  : Rotates the refresh cookie.
//   - POST /logout       : Revokes the refresh cookie.
//   - GET /me            : Returns the bearer's profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Get("/refresh", handler.refresh)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	return router
}

// # Payloads

// credentialsRequest uses pointers so an absent field is told apart from an empty one.
type credentialsRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (input credentialsRequest) presence() map[string]bool {
	return map[string]bool{
		FieldUsername: input.Username != nil,
		FieldPassword: input.Password != nil,
	}
}

type sessionResponse struct {
	ID          string `json:"id"`
	AccessToken string `json:"access_token"`
}

// decodeCredentials reads the body and rejects missing fields with 422.
func decodeCredentials(writer http.ResponseWriter, request *http.Request) (string, string, error) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		return "", "", err
	}
	if err := requestutil.RequireFields(input.presence()); err != nil {
		return "", "", err
	}
	return *input.Username, *input.Password, nil
}

// writeSession sets the refresh cookie and writes the access token envelope.
func writeSession(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, session.RefreshCookie)
	respond.OK(writer, sessionResponse{
		ID:          session.UserID,
		AccessToken: session.AccessToken,
	})
}

// # Handlers

/*
Register handles account creation.

POST /api/v1/auth/register

Request:
  - Body: {"username", "password"}

Response:
  - 200: {id, access_token} plus the refresh cookie
  - 400: VALIDATION_ERROR or INVALID_JSON
  - 422: UNPROCESSABLE: A field is missing
  - 500: DB_ERROR (including a taken username)
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	username, password, err := decodeCredentials(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), username, password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writeSession(writer, session)
}

/*
Login authenticates a user and opens a session.

POST /api/v1/auth/login

A refresh cookie already on the request is consumed as part of the login.

Response:
  - 200: {id, access_token} plus the refresh cookie
  - 401: UNAUTHORIZED: Invalid credentials
  - 422: UNPROCESSABLE: A field is missing
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	username, password, err := decodeCredentials(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	presented := requestutil.Cookie(request, constants.RefreshTokenCookieName)

	session, err := handler.authService.Login(request.Context(), username, password, presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writeSession(writer, session)
}

/*
Refresh rotates the refresh cookie.

GET|POST /api/v1/auth/refresh

Response:
  - 200: {id, access_token} plus the successor cookie
  - 401: UNAUTHORIZED: Missing, invalid, expired or replayed token
  - 404: NOT_FOUND: The account no longer exists
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	presented := requestutil.Cookie(request, constants.RefreshTokenCookieName)

	session, err := handler.authService.Refresh(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writeSession(writer, session)
}

/*
Logout revokes the refresh cookie. It succeeds without a cookie too.

POST /api/v1/auth/logout

Response:
  - 200: Empty body with a cleared cookie
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	presented := requestutil.Cookie(request, constants.RefreshTokenCookieName)

	cleared, err := handler.authService.Logout(request.Context(), presented)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, cleared)
	writer.WriteHeader(http.StatusOK)
}

// me returns the profile of the bearer of the access token.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
