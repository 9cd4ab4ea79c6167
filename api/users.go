package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/auth"
	"github.com/connexa-app/connexa/auth/authctx"
	"github.com/connexa-app/connexa/auth/password"
	apperrors "github.com/connexa-app/connexa/errors"
	"github.com/connexa-app/connexa/logger"
	"github.com/connexa-app/connexa/store"
	"github.com/connexa-app/connexa/validation"
)

type registerRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72,password"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// hashError classifies a hasher failure. Length violations are client
// errors; the max=72 validate tag counts runes, so a multi-byte password
// can pass validation and still exceed the bcrypt byte limit.
func hashError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, password.ErrTooShort):
		return apperrors.Validation("Password is below the minimum length")
	case errors.Is(err, password.ErrTooLong):
		return apperrors.Validation(fmt.Sprintf("Password must be at most %d bytes", password.MaxLength))
	}
	return apperrors.Internal(err)
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password" validate:"omitempty,min=8,max=72,password"`
}

// Register creates a new account. The display name is accepted either as a
// single `name` or as `firstName`/`lastName`.
func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.Validation("Invalid request body"))
		return
	}
	if err := validation.Validate(req); err != nil {
		a.respondError(c, err)
		return
	}

	first, last := req.FirstName, req.LastName
	if first == "" {
		first, last = store.SplitName(req.Name)
	}
	if first == "" {
		a.respondError(c, apperrors.Validation("Name is required"))
		return
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		a.respondError(c, hashError(err))
		return
	}

	u := &store.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:    first,
		LastName:     last,
		PasswordHash: hash,
		Role:         auth.RoleUser,
		IsActive:     true,
	}
	if err := a.users.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			a.respondError(c, apperrors.EmailExists())
			return
		}
		a.respondError(c, apperrors.Internal(err))
		return
	}

	access, err := a.tokens.Issue(u.ID, u.Email, u.Name(), u.Role)
	if err != nil {
		a.respondError(c, apperrors.Internal(err))
		return
	}
	refresh, err := a.tokens.IssueRefresh(u.ID, u.Email, u.Role)
	if err != nil {
		a.respondError(c, apperrors.Internal(err))
		return
	}

	a.log.Info("User registered", map[string]interface{}{
		logger.FieldUserID: u.ID,
		logger.FieldEmail:  u.Email,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message":      "User registered successfully",
		"userId":       u.ID,
		"user":         u.Sanitize(),
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

// Login verifies credentials and issues an access/refresh token pair.
// A lookup miss burns a dummy bcrypt comparison so response timing does
// not reveal whether the email exists.
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.Validation("Invalid request body"))
		return
	}
	if err := validation.Validate(req); err != nil {
		a.respondError(c, err)
		return
	}

	u, err := a.users.FindByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.hasher.DummyVerify(req.Password)
			a.respondError(c, apperrors.InvalidCredentials())
			return
		}
		// An infrastructure failure is not a credential failure, but it
		// should cost the same as one so the two are not distinguishable
		// by timing.
		a.hasher.DummyVerify(req.Password)
		a.respondError(c, apperrors.Internal(err))
		return
	}

	if !a.hasher.Verify(req.Password, u.PasswordHash) {
		a.respondError(c, apperrors.InvalidCredentials())
		return
	}
	if !u.IsActive {
		a.respondError(c, apperrors.Unauthorized(apperrors.CodeAccountDisabled,
			"Account disabled", "This account has been disabled"))
		return
	}

	access, err := a.tokens.Issue(u.ID, u.Email, u.Name(), u.Role)
	if err != nil {
		a.respondError(c, apperrors.Internal(err))
		return
	}
	refresh, err := a.tokens.IssueRefresh(u.ID, u.Email, u.Role)
	if err != nil {
		a.respondError(c, apperrors.Internal(err))
		return
	}

	a.log.Info("User logged in", map[string]interface{}{
		logger.FieldUserID: u.ID,
		logger.FieldEmail:  u.Email,
	})
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"accessToken":  access,
		"refreshToken": refresh,
		"user":         u.Sanitize(),
	})
}

// Profile returns the authenticated user's record.
func (a *API) Profile(c *gin.Context) {
	identity := authctx.MustGet(c.Request.Context())

	u, err := a.users.FindByID(c.Request.Context(), identity.ID)
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

// UpdateProfile modifies the target user's record. Ownership is enforced
// by the route policy; the handler trusts the id parameter.
func (a *API) UpdateProfile(c *gin.Context) {
	id, ok := a.userIDParam(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, apperrors.Validation("Invalid request body"))
		return
	}
	if err := validation.Validate(req); err != nil {
		a.respondError(c, err)
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

	if req.Name != "" {
		u.FirstName, u.LastName = store.SplitName(req.Name)
	}
	if req.FirstName != "" {
		u.FirstName = req.FirstName
	}
	if req.LastName != "" {
		u.LastName = req.LastName
	}
	if req.Email != "" {
		u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Password != "" {
		hash, err := a.hasher.Hash(req.Password)
		if err != nil {
			a.respondError(c, hashError(err))
			return
		}
		u.PasswordHash = hash
	}

	if err := a.users.Update(c.Request.Context(), u); err != nil {
		switch {
		case errors.Is(err, store.ErrEmailExists):
			a.respondError(c, apperrors.EmailExists())
		case errors.Is(err, store.ErrNotFound):
			a.respondError(c, apperrors.NotFound("User"))
		default:
			a.respondError(c, apperrors.Internal(err))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    u.Sanitize(),
	})
}

// DeleteAccount removes the target user. Ownership (or a privileged role)
// is enforced by the route policy.
func (a *API) DeleteAccount(c *gin.Context) {
	id, ok := a.userIDParam(c)
	if !ok {
		return
	}

	if err := a.users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			a.respondError(c, apperrors.NotFound("User"))
			return
		}
		a.respondError(c, apperrors.Internal(err))
		return
	}

	a.log.Info("Account deleted", map[string]interface{}{
		logger.FieldUserID: id,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

// Logout revokes the presented token. Every later request carrying it
// fails with TOKEN_REVOKED regardless of remaining validity.
func (a *API) Logout(c *gin.Context) {
	identity := authctx.MustGet(c.Request.Context())
	raw, ok := authctx.RawToken(c.Request.Context())
	if !ok {
		a.respondError(c, apperrors.Unauthorized(apperrors.CodeAuthRequired,
			"Authentication required"))
		return
	}

	a.revoked.Revoke(raw)
	a.log.Info("User logged out", map[string]interface{}{
		logger.FieldUserID:  identity.ID,
		logger.FieldTokenID: identity.TokenID,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// Refresh rotates the session: a new token pair is issued and the
// presented token is revoked so it cannot be replayed.
func (a *API) Refresh(c *gin.Context) {
	identity := authctx.MustGet(c.Request.Context())
	raw, ok := authctx.RawToken(c.Request.Context())
	if !ok {
		a.respondError(c, apperrors.Unauthorized(apperrors.CodeAuthRequired,
			"Authentication required"))
		return
	}

	access, err := a.tokens.Issue(identity.ID, identity.Email, identity.Name, identity.Role)
	if err != nil {
		a.respondError(c, apperrors.Internal(err))
		return
	}
	refresh, err := a.tokens.IssueRefresh(identity.ID, identity.Email, identity.Role)
	if err != nil {
		a.respondError(c, apperrors.Internal(err))
		return
	}
	a.revoked.Revoke(raw)

	c.JSON(http.StatusOK, gin.H{
		"message":      "Token refreshed successfully",
		"accessToken":  access,
		"refreshToken": refresh,
	})
}
