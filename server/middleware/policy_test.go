package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/auth"
	"github.com/connexa-app/connexa/auth/authctx"
	apperrors "github.com/connexa-app/connexa/errors"
)

// withIdentity fakes the authentication stage so policy stages can be
// exercised in isolation.
func withIdentity(id *auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != nil {
			c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), id))
		}
		c.Next()
	}
}

func servePolicy(stages []gin.HandlerFunc, path string) *httptest.ResponseRecorder {
	r := gin.New()
	handlers := append(stages, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/account/:userId", handlers...)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		identity   *auth.Identity
		roles      []auth.Role
		wantStatus int
		wantCode   apperrors.ErrorCode
	}{
		{
			name:       "no identity",
			identity:   nil,
			roles:      []auth.Role{auth.RoleAdmin},
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperrors.CodeAuthRequired,
		},
		{
			name:       "role not in set",
			identity:   &auth.Identity{ID: 1, Role: auth.RoleUser},
			roles:      []auth.Role{auth.RoleAdmin, auth.RoleSuperAdmin},
			wantStatus: http.StatusForbidden,
			wantCode:   apperrors.CodeInsufficientPermissions,
		},
		{
			name:       "role in set",
			identity:   &auth.Identity{ID: 1, Role: auth.RoleAdmin},
			roles:      []auth.Role{auth.RoleAdmin, auth.RoleSuperAdmin},
			wantStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := []gin.HandlerFunc{withIdentity(tt.identity), RequireRole(tt.roles...)}
			w := servePolicy(stages, "/account/1")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if code := errorCode(t, w); code != string(tt.wantCode) {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
			}
		})
	}
}

func TestRequireOwnership(t *testing.T) {
	tests := []struct {
		name       string
		identity   *auth.Identity
		overrides  []auth.Role
		path       string
		wantStatus int
		wantCode   apperrors.ErrorCode
	}{
		{
			name:       "owner passes",
			identity:   &auth.Identity{ID: 5, Role: auth.RoleUser},
			path:       "/account/5",
			wantStatus: http.StatusOK,
		},
		{
			name:       "non-owner rejected",
			identity:   &auth.Identity{ID: 5, Role: auth.RoleUser},
			path:       "/account/6",
			wantStatus: http.StatusForbidden,
			wantCode:   apperrors.CodeAccessForbidden,
		},
		{
			name:       "override role bypasses ownership",
			identity:   &auth.Identity{ID: 5, Role: auth.RoleAdmin},
			overrides:  []auth.Role{auth.RoleAdmin},
			path:       "/account/6",
			wantStatus: http.StatusOK,
		},
		{
			name:       "non-numeric id is a client error",
			identity:   &auth.Identity{ID: 5, Role: auth.RoleUser},
			path:       "/account/abc",
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeMissingParam,
		},
		{
			name:       "no identity",
			identity:   nil,
			path:       "/account/5",
			wantStatus: http.StatusUnauthorized,
			wantCode:   apperrors.CodeAuthRequired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := []gin.HandlerFunc{
				withIdentity(tt.identity),
				RequireOwnership("userId", tt.overrides...),
			}
			w := servePolicy(stages, tt.path)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode != "" {
				if code := errorCode(t, w); code != string(tt.wantCode) {
					t.Errorf("code = %q, want %q", code, tt.wantCode)
				}
			}
		})
	}
}

func TestRequireOwnershipMissingParam(t *testing.T) {
	r := gin.New()
	r.GET("/profile",
		withIdentity(&auth.Identity{ID: 5, Role: auth.RoleUser}),
		RequireOwnership("userId"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if code := errorCode(t, w); code != string(apperrors.CodeMissingParam) {
		t.Errorf("code = %q, want MISSING_PARAM", code)
	}

}

func TestRequireOwnershipBodyFallback(t *testing.T) {
	var bio string
	r := gin.New()
	r.POST("/profile",
		withIdentity(&auth.Identity{ID: 5, Role: auth.RoleUser}),
		RequireOwnership("userId"),
		func(c *gin.Context) {
			var body struct {
				UserID int64  `json:"userId"`
				Bio    string `json:"bio"`
			}
			if err := c.ShouldBindJSON(&body); err != nil {
				c.Status(http.StatusInternalServerError)
				return
			}
			bio = body.Bio
			c.Status(http.StatusOK)
		},
	)

	post := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// The routeless id comes from the body, numeric or string, and the
	// body survives for the handler's own bind.
	w := post(`{"userId": 5, "bio": "ok"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("numeric body id: status = %d (body %s)", w.Code, w.Body.String())
	}
	if bio != "ok" {
		t.Errorf("handler saw bio = %q, body was consumed by the policy", bio)
	}

	w = post(`{"userId": "5"}`)
	if w.Code != http.StatusOK {
		t.Errorf("string body id: status = %d", w.Code)
	}

	w = post(`{"userId": 6}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign body id: status = %d, want 403", w.Code)
	}
	if code := errorCode(t, w); code != string(apperrors.CodeAccessForbidden) {
		t.Errorf("code = %q, want ACCESS_FORBIDDEN", code)
	}

	w = post(`{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("absent id: status = %d, want 400", w.Code)
	}
}

func TestPolicyComposition(t *testing.T) {
	f := newAuthFixture(t)
	userTok, _ := f.tokens.Issue(5, "user@example.com", "User", auth.RoleUser)
	adminTok, _ := f.tokens.Issue(9, "admin@example.com", "Admin", auth.RoleAdmin)

	stages := f.auth.Policy(PolicyConfig{
		Ownership: &OwnershipCheck{Param: "userId", Overrides: auth.AdminRoles},
	})

	r := gin.New()
	r.GET("/account/:userId", append(stages, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})...)

	do := func(path, tok string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do("/account/5", userTok); w.Code != http.StatusOK {
		t.Errorf("owner: status = %d, want 200", w.Code)
	}
	if w := do("/account/6", userTok); w.Code != http.StatusForbidden {
		t.Errorf("non-owner: status = %d, want 403", w.Code)
	}
	if w := do("/account/6", adminTok); w.Code != http.StatusOK {
		t.Errorf("admin override: status = %d, want 200", w.Code)
	}

	// Authentication always runs first: no token fails before ownership.
	req := httptest.NewRequest(http.MethodGet, "/account/5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
}
