package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/service"
	"github.com/comepass/comepass/internal/api/store"
	"github.com/comepass/comepass/pkg/httpx"
	"github.com/comepass/comepass/pkg/slogx"
)

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// newUserResponse strips the password hash from the wire shape.
func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// pageFromQuery reads ?page= and ?limit= with 1 and 10 as defaults.
func pageFromQuery(r *http.Request) store.Page {
	page := store.Page{Number: 1, Limit: 10}
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		page.Number = n
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		page.Limit = n
	}
	return page
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

type UsersHandler struct {
	UserService *service.UserService
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// List handles user listing
//
//	@Summary	List users
//	@Tags		Users
//	@Produce	json
//	@Param		page	query		int	false	"Page number"	default(1)
//	@Param		limit	query		int	false	"Page size"		default(10)
//	@Success	200		{array}		UserResponse
//	@Failure	403		{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/users [get].
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context(), pageFromQuery(r))
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to list users", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = newUserResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Create handles account creation
//
//	@Summary	Create a user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateUserRequest	true	"New account"
//	@Success	201		{object}	UserResponse
//	@Failure	400		{object}	httpx.Detail	"Password too short"
//	@Failure	409		{object}	httpx.Detail	"Username or email taken"
//	@Security	BearerAuth
//	@Router		/users [post].
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.UserService.Create(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrPasswordPolicy):
		httpx.WriteDetail(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	case errors.Is(err, service.ErrAlreadyExists):
		httpx.WriteDetail(w, http.StatusConflict, "Username or email already in use")
		return
	case err != nil:
		slogx.FromContext(r.Context()).Error("failed to create user", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newUserResponse(u))
}

// Get handles single user retrieval
//
//	@Summary	Get a user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		int	true	"User id"
//	@Success	200	{object}	UserResponse
//	@Failure	404	{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/users/{id} [get].
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	u, err := h.UserService.Get(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		httpx.WriteDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newUserResponse(u))
}

// Update handles user edits
//
//	@Summary	Update a user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"User id"
//	@Param		request	body		UpdateUserRequest	true	"New values"
//	@Success	200		{object}	UserResponse
//	@Failure	404		{object}	httpx.Detail
//	@Failure	409		{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/users/{id} [put].
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.UserService.Update(r.Context(), id, req.Username, req.Email)
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteDetail(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, service.ErrAlreadyExists):
		httpx.WriteDetail(w, http.StatusConflict, "Username or email already in use")
		return
	case err != nil:
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newUserResponse(u))
}

// Delete handles account removal
//
//	@Summary	Delete a user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path	int	true	"User id"
//	@Success	204
//	@Failure	404	{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/users/{id} [delete].
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	err := h.UserService.Delete(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		httpx.WriteDetail(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword handles password rotation
//
//	@Summary		Change a user's password
//	@Description	Verifies the old password and the confirmation before storing the new hash. Only the account owner may change their password.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int						true	"User id"
//	@Param			request	body	ChangePasswordRequest	true	"Passwords"
//	@Success		204
//	@Failure		400	{object}	httpx.Detail	"Confirmation mismatch or weak password"
//	@Failure		403	{object}	httpx.Detail	"Wrong old password or not the owner"
//	@Security		BearerAuth
//	@Router			/users/{id}/change-password [post].
func (h *UsersHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	caller, ok := UserFromContext(r.Context())
	if !ok || caller.ID != id {
		httpx.WriteDetail(w, http.StatusForbidden, "Password can only be changed by the account owner")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.UserService.ChangePassword(r.Context(), id,
		req.OldPassword, req.NewPassword, req.ConfirmPassword)
	switch {
	case errors.Is(err, service.ErrWrongPassword):
		httpx.WriteDetail(w, http.StatusForbidden, "Old password is incorrect")
		return
	case errors.Is(err, service.ErrConfirmMismatch):
		httpx.WriteDetail(w, http.StatusBadRequest, "Password confirmation does not match")
		return
	case errors.Is(err, service.ErrPasswordPolicy):
		httpx.WriteDetail(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteDetail(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
