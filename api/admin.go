package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/auth"
	apperrors "github.com/connexa-app/connexa/errors"
	"github.com/connexa-app/connexa/logger"
	"github.com/connexa-app/connexa/store"
)

type updateRoleRequest struct {
	Role auth.Role `json:"role" validate:"required"`
}

type banRequest struct {
	Banned bool `json:"banned"`
}

// userIDParam parses the userId path parameter. A missing or non-numeric
// value responds 400 and reports !ok.
func (a *API) userIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("userId")
	if raw == "" {
		a.respondError(c, apperrors.MissingParam("userId"))
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		a.respondError(c, apperrors.MissingParam("userId"))
		return 0, false
	}
	return id, true
}

// ListUsers returns a paginated user listing. Supports ?role=, ?active=,
// ?page= and ?per_page= filters.
func (a *API) ListUsers(c *gin.Context) {
	var f store.ListFilter
	if role := c.Query("role"); role != "" {
		f.Role = auth.Role(role)
	}
	f.ActiveOnly = c.Query("active") == "true"
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.PerPage, _ = strconv.Atoi(c.Query("per_page"))

	page, err := a.users.List(c.Request.Context(), f)
	if err != nil {
		a.respondError(c, apperrors.Internal(err))
		return
	}

	sanitized := make([]store.Sanitized, len(page.Users))
	for i, u := range page.Users {
		sanitized[i] = u.Sanitize()
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      sanitized,
		"total":      page.Total,
		"page":       page.Page,
		"perPage":    page.PerPage,
		"totalPages": page.TotalPages,
	})
}

// GetUser returns a single user by id.
func (a *API) GetUser(c *gin.Context) {
	id, ok := a.userIDParam(c)
	if !ok {
		return
	}

	u, err := a.users.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.respondError(c, apperrors.NotFound("User"))
			return
		}
		a.respondError(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u.Sanitize()})
}

// UpdateRole changes a user's role.
func (a *API) UpdateRole(c *gin.Context) {
	id, ok := a.userIDParam(c)
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.Validation("Invalid request body"))
		return
	}
	if !req.Role.Valid() {
		a.respondError(c, apperrors.Validation("Invalid role: "+string(req.Role)))
		return
	}

	u, err := a.users.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.respondError(c, apperrors.NotFound("User"))
			return
		}
		a.respondError(c, apperrors.Internal(err))
		return
	}

	u.Role = req.Role
	if err := a.users.Update(c.Request.Context(), u); err != nil {
		a.respondError(c, apperrors.Internal(err))
		return
	}

	a.log.Info("User role updated", map[string]interface{}{
		logger.FieldUserID: id,
		"role":             string(req.Role),
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Role updated successfully",
		"user":    u.Sanitize(),
	})
}

// SetBanned disables or re-enables an account. A banned user's tokens keep
// verifying cryptographically; store-checked routes reject them.
func (a *API) SetBanned(c *gin.Context) {
	id, ok := a.userIDParam(c)
	if !ok {
		return
	}

	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.Validation("Invalid request body"))
		return
	}

	u, err := a.users.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.respondError(c, apperrors.NotFound("User"))
			return
		}
		a.respondError(c, apperrors.Internal(err))
		return
	}

	u.IsActive = !req.Banned
	if err := a.users.Update(c.Request.Context(), u); err != nil {
		a.respondError(c, apperrors.Internal(err))
		return
	}

	msg := "User unbanned successfully"
	if req.Banned {
		msg = "User banned successfully"
	}
	a.log.Info("User ban state changed", map[string]interface{}{
		logger.FieldUserID: id,
		"banned":           req.Banned,
	})
	c.JSON(http.StatusOK, gin.H{"message": msg, "user": u.Sanitize()})
}
