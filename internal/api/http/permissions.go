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

type PermissionResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Resource  string `json:"resource"`
	ObjectID  *int64 `json:"object_id,omitempty"`
	DependsOn string `json:"depends_on,omitempty"`
}

func newPermissionResponse(p domain.Permission) PermissionResponse {
	return PermissionResponse{
		ID:        p.ID,
		Name:      p.Name,
		Resource:  p.Resource,
		ObjectID:  p.ObjectID,
		DependsOn: p.DependsOn,
	}
}

type PermissionsHandler struct {
	PermissionService *service.PermissionService
}

type CreatePermissionsRequest struct {
	Resource    string `json:"resource"`
	Description string `json:"description"`
	ObjectID    *int64 `json:"object_id,omitempty"`
}

// List handles permission listing
//
//	@Summary	List permissions
//	@Tags		Permissions
//	@Produce	json
//	@Success	200	{array}		PermissionResponse
//	@Failure	403	{object}	httpx.Detail
//	@Security	BearerAuth
//	@Router		/permissions [get].
func (h *PermissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	perms, err := h.PermissionService.List(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to list permissions", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]PermissionResponse, len(perms))
	for i, p := range perms {
		out[i] = newPermissionResponse(p)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Create handles permission minting
//
//	@Summary		Create permissions for a resource
//	@Description	Mints the full action set for a resource, or the scoped set when object_id is given. Scoped permissions depend on their unscoped counterpart.
//	@Tags			Permissions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreatePermissionsRequest	true	"Resource to mint for"
//	@Success		201		{array}		PermissionResponse
//	@Failure		409		{object}	httpx.Detail	"Name already exists"
//	@Security		BearerAuth
//	@Router			/permissions [post].
func (h *PermissionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Resource == "" {
		httpx.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var (
		created []domain.Permission
		err     error
	)
	if req.ObjectID != nil {
		created, err = h.PermissionService.CreateForObject(r.Context(), req.Resource, req.Description, *req.ObjectID)
	} else {
		created, err = h.PermissionService.CreateForResource(r.Context(), req.Resource, req.Description)
	}
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		httpx.WriteDetail(w, http.StatusConflict, "Permission name already exists")
		return
	case err != nil:
		slogx.FromContext(r.Context()).Error("failed to create permissions", "error", err)
		httpx.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]PermissionResponse, len(created))
	for i, p := range created {
		out[i] = newPermissionResponse(p)
	}
	httpx.WriteJSON(w, http.StatusCreated, out)
}
