package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comepass/comepass/internal/api/domain"
	"github.com/comepass/comepass/internal/api/service"
	"github.com/comepass/comepass/pkg/httpx"
	"github.com/comepass/comepass/pkg/slogx"
)

type RoleResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsGroup     bool     `json:"is_group"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions"`
}

func newRoleResponse(role domain.Role) RoleResponse {
	names := make([]string, len(role.Permissions))
	for i, p := range role.Permissions {
		names[i] = p.Name
	}
	return RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		IsGroup:     role.IsGroup,
		IsActive:    role.IsActive,
		Permissions: names,
	}
}

type RolesHandler struct {
	RoleService *service.RoleService
}

type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsGroup     bool     `json:"is_group"`
	Permissions []string `json:"permissions"`
}

// List handles role listing
//
//	@Summary	List roles
//	@Tags		Roles
//	@Produce	json
//	@Param		page	query		int	false	"Page number"	default(1)
//	@Param		limit	query		int	false	"Page size"		default(10)
//	@Success	200		{array}		RoleResponse
//	@Failure	403		{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/roles [get].
func (h *RolesHandler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RoleService.List(r.Context(), pageFromQuery(r))
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to list roles", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]RoleResponse, len(roles))
	for i, role := range roles {
		out[i] = newRoleResponse(role)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Create handles role creation
//
//	@Summary		Create a role
//	@Description	Creates a role with the named permissions attached. Every permission name must already exist.
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateRoleRequest	true	"Role definition"
//	@Success		201		{object}	RoleResponse
//	@Failure		400		{object}	httpx.Detail	"Unknown permission name"
//	@Failure		409		{object}	httpx.Detail	"Role name taken"
//	@Security		BearerAuth
//	@Router			/roles [post].
func (h *RolesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	role, err := h.RoleService.Create(r.Context(), req.Name, req.Description, req.IsGroup, req.Permissions)
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		httpx.WriteDetail(w, http.StatusConflict, "Role name already in use")
		return
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteDetail(w, http.StatusBadRequest, "Unknown permission name")
		return
	case err != nil:
		slogx.FromContext(r.Context()).Error("failed to create role", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newRoleResponse(role))
}
