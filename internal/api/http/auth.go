package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comepass/comepass/internal/api/service"
	"github.com/comepass/comepass/pkg/httpx"
	"github.com/comepass/comepass/pkg/slogx"
)

const detailBadCredentials = "Incorrect username or password"

type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"correct-horse"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type" example:"bearer"`
}

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles the login endpoint
//
//	@Summary		Log in
//	@Description	Authenticates with username (or email) and password and returns an access/refresh token pair.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	TokenResponse	"Token pair"
//	@Failure		403		{object}	httpx.Detail	"Bad credentials"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.AuthService.Login(ctx, req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrInactive),
		errors.Is(err, service.ErrWrongPassword):
		// One generic message regardless of which check failed.
		httpx.WriteDetail(w, http.StatusForbidden, detailBadCredentials)
		return
	case err != nil:
		log.Error("login failed", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    "bearer",
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles the refresh endpoint
//
//	@Summary		Refresh the access token
//	@Description	Exchanges a valid refresh token for a new access token. The previous access token stops validating.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	TokenResponse	"New access token"
//	@Failure		403		{object}	httpx.Detail	"Invalid or expired refresh token"
//	@Router			/auth/refresh-token [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	access, err := h.AuthService.Refresh(ctx, req.RefreshToken)
	switch {
	case errors.Is(err, service.ErrExpired):
		httpx.WriteDetail(w, http.StatusForbidden, "Refresh token expired")
		return
	case errors.Is(err, service.ErrMalformed),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrInactive):
		httpx.WriteDetail(w, http.StatusForbidden, "Refresh token invalid")
		return
	case err != nil:
		log.Error("refresh failed", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: access,
		TokenType:   "bearer",
	})
}

type CheckAccessResponse struct {
	UserID int64 `json:"user_id"`
	Valid  bool  `json:"valid"`
}

type CheckAccessHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles the access check endpoint
//
//	@Summary		Check an access token
//	@Description	Validates the bearer token through the full four-step check and returns the token's user id.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	CheckAccessResponse	"Token is valid"
//	@Failure		403	{object}	httpx.Detail		"Token failed validation"
//	@Security		BearerAuth
//	@Router			/auth/check-access [post].
func (h *CheckAccessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusForbidden, detailNotAuthenticated)
		return
	}

	claims, err := h.AuthService.ValidateAccess(r.Context(), token)
	if err != nil {
		httpx.WriteDetail(w, http.StatusForbidden, accessDetail(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, CheckAccessResponse{
		UserID: claims.UserID,
		Valid:  true,
	})
}

type CheckRoleRequest struct {
	Role string `json:"role" example:"admin"`
}

type CheckRoleResponse struct {
	Role    string `json:"role"`
	HasRole bool   `json:"has_role"`
}

type CheckRoleHandler struct {
	AuthService *service.AuthService
	RoleService *service.RoleService
}

// ServeHTTP handles the role check endpoint
//
//	@Summary		Check a role
//	@Description	Reports whether the bearer token's user holds the named role.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CheckRoleRequest	true	"Role name"
//	@Success		200		{object}	CheckRoleResponse	"Check result"
//	@Failure		403		{object}	httpx.Detail		"Token failed validation"
//	@Security		BearerAuth
//	@Router			/auth/check-role [post].
func (h *CheckRoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := bearerToken(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusForbidden, detailNotAuthenticated)
		return
	}
	claims, err := h.AuthService.ValidateAccess(ctx, token)
	if err != nil {
		httpx.WriteDetail(w, http.StatusForbidden, accessDetail(err))
		return
	}

	var req CheckRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	has, err := h.RoleService.UserHasRole(ctx, claims.UserID, req.Role)
	if err != nil {
		slogx.FromContext(ctx).Error("role check failed", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, CheckRoleResponse{Role: req.Role, HasRole: has})
}
