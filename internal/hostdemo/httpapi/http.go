// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package httpapi provides the HTTP delivery layer for the demo host's
authentication lifecycle: register, login, refresh, logout, and the
protected "who am I" endpoint.

Architecture:

The handler is a thin mediation layer between the web and the vault: input
validation and transport concerns (cookies, status codes, JSON) live here,
while credential issuance, verification, and session-store bookkeeping all
live in [vault.Vault].
*/
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wardauth/wardauth/internal/hostdemo/directory"
	"github.com/wardauth/wardauth/internal/platform/apperr"
	"github.com/wardauth/wardauth/internal/platform/constants"
	"github.com/wardauth/wardauth/internal/platform/middleware"
	requestutil "github.com/wardauth/wardauth/internal/platform/request"
	"github.com/wardauth/wardauth/internal/platform/respond"
	"github.com/wardauth/wardauth/internal/platform/validate"
	"github.com/wardauth/wardauth/vault"
)

// # Field Identifiers

const (
	FieldIdentity    = "identity"
	FieldPassword    = "password"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
)

// # Definitions & Constructors

// Handler implements the demo host's authentication HTTP endpoints.
type Handler struct {
	vault     *vault.Vault
	directory *directory.PostgresDirectory
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(v *vault.Vault, dir *directory.PostgresDirectory) *Handler {
	return &Handler{vault: v, directory: dir}
}

// Routes returns a [chi.Router] configured with the authentication routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

/*
register handles the creation of a new account.

POST /api/v1/auth/register

Response:
  - 201: account ID
  - 400: validation failure
  - 409: identity already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldIdentity, input.Identity).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.directory.Create(request.Context(), input.Identity, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{"id": account.ID, FieldIdentity: account.Identity})
}

/*
login authenticates an identity and establishes a session.

POST /api/v1/auth/login

Response:
  - 200: access_token (JSON) + refresh credential (HttpOnly cookie)
  - 401: invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldIdentity, input.Identity).Required(FieldPassword, input.Password)
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	creds, err := handler.vault.Login(request.Context(), input.Identity, input.Password)
	if err != nil {
		respond.Error(writer, request, translateVaultError(err))
		return
	}

	setRefreshCookie(writer, creds)
	respond.OK(writer, map[string]any{
		FieldAccessToken: creds.Auth,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int(time.Until(creds.AuthExpiresAt).Seconds()),
	})
}

/*
refresh renews a session's auth credential using the refresh credential
cookie.

POST /api/v1/auth/refresh

Response:
  - 200: new access_token (JSON) + the same refresh credential, re-set as the cookie
  - 401: missing, invalid, or superseded refresh credential
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh credential"))
		return
	}

	identity, err := handler.vault.PeekIdentity(cookie.Value)
	if err != nil {
		respond.Error(writer, request, apperr.Unauthorized("Malformed refresh credential"))
		return
	}

	creds, err := handler.vault.Renew(request.Context(), identity, cookie.Value)
	if err != nil {
		respond.Error(writer, request, translateVaultError(err))
		return
	}

	setRefreshCookie(writer, creds)
	respond.OK(writer, map[string]any{
		FieldAccessToken: creds.Auth,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int(time.Until(creds.AuthExpiresAt).Seconds()),
	})
}

/*
logout terminates the current session.

POST /api/v1/auth/logout

Response:
  - 204: always, whether or not a session was active (idempotent)
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err == nil && cookie.Value != "" {
		if identity, peekErr := handler.vault.PeekIdentity(cookie.Value); peekErr == nil {
			_ = handler.vault.Logout(request.Context(), identity, cookie.Value)
		}
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

/*
me returns the identity and client-visible session data resolved by
[middleware.Authenticate] for the bearer credential on this request.

GET /api/v1/auth/me

Response:
  - 200: identity + client session payload
  - 401: not authenticated
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	clientView := make(map[string]string, len(claims.Session.Client))
	for k, v := range claims.Session.Client {
		clientView[k] = string(v)
	}

	respond.OK(writer, map[string]any{
		FieldIdentity: claims.Identity,
		"session":     clientView,
	})
}

// # Cookie Helpers

func setRefreshCookie(writer http.ResponseWriter, creds vault.Credentials) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    creds.Refresh,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  creds.RefreshExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// translateVaultError maps a [vault.Error] to the client-facing
// [apperr.AppError] shape. Unrecognized errors fall through to a 500.
func translateVaultError(err error) error {
	var ve *vault.Error
	if !errors.As(err, &ve) {
		return err
	}

	switch ve.Kind {
	case vault.InvalidPassword, vault.MissingPassword:
		return apperr.Unauthorized("Invalid login credentials")
	case vault.InvalidClientAuthenticationToken, vault.InvalidClientRefreshToken,
		vault.InvalidTokenOwner, vault.CrossReferenceMismatch, vault.SessionNotFound:
		return apperr.Unauthorized("Session is no longer valid")
	case vault.TokenExpired:
		return apperr.Unauthorized("Credential has expired")
	default:
		return apperr.Internal(err)
	}
}
