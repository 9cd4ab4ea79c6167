package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connexa-app/connexa/api"
	"github.com/connexa-app/connexa/auth/password"
	"github.com/connexa-app/connexa/auth/revocation"
	"github.com/connexa-app/connexa/auth/token"
	apperrors "github.com/connexa-app/connexa/errors"
	"github.com/connexa-app/connexa/logger"
	"github.com/connexa-app/connexa/server/middleware"
	"github.com/connexa-app/connexa/store"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewDefault("test")
	users := store.NewMemoryStore()
	hasher := password.NewBcryptHasher(password.WithCost(4))
	tokens, err := token.NewService(token.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	revoked := revocation.NewMemoryStore(log)

	a := api.New(users, hasher, tokens, revoked, log)
	authn := middleware.NewAuthenticator(tokens, revoked, users, log)

	r := gin.New()
	limits := api.DefaultRateLimits()
	limits.Login = 10000
	limits.Register = 10000
	a.RegisterRoutes(r, authn, limits)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientSessionFlow(t *testing.T) {
	srv := startTestServer(t)
	c := NewClient(srv.URL)
	ctx := context.Background()

	reg, err := c.Register(ctx, "Ada Lovelace", "ada@example.com", "Str0ng!Pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "ada@example.com" {
		t.Errorf("registered email = %q", reg.User.Email)
	}

	auth, err := c.Login(ctx, "ada@example.com", "Str0ng!Pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if auth.AccessToken == "" || auth.RefreshToken == "" {
		t.Fatal("login returned empty tokens")
	}

	profile, err := c.Profile(ctx, auth.AccessToken)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.ID != reg.UserID {
		t.Errorf("profile id = %d, want %d", profile.ID, reg.UserID)
	}

	// Refresh rotates: the new token works, the old one is revoked.
	fresh, err := c.Refresh(ctx, auth.AccessToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, err := c.Profile(ctx, fresh); err != nil {
		t.Fatalf("Profile with rotated token: %v", err)
	}
	_, err = c.Profile(ctx, auth.AccessToken)
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("old token: err = %v, want AppError", err)
	}
	if appErr.Code != apperrors.CodeTokenRevoked {
		t.Errorf("old token code = %q, want TOKEN_REVOKED", appErr.Code)
	}

	// Logout ends the rotated session too.
	if err := c.Logout(ctx, fresh); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := c.Profile(ctx, fresh); err == nil {
		t.Error("profile succeeded after logout")
	}
}

func TestClientErrorEnvelope(t *testing.T) {
	srv := startTestServer(t)
	c := NewClient(srv.URL)

	_, err := c.Login(context.Background(), "nobody@example.com", "Str0ng!Pass")
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("err = %v, want AppError", err)
	}
	if appErr.Code != apperrors.CodeInvalidCredentials {
		t.Errorf("code = %q, want INVALID_CREDENTIALS", appErr.Code)
	}
	if appErr.HTTPStatus != 401 {
		t.Errorf("status = %d, want 401", appErr.HTTPStatus)
	}
}

func TestManagerAgainstRealServer(t *testing.T) {
	srv := startTestServer(t)
	c := NewClient(srv.URL)
	ctx := context.Background()

	if _, err := c.Register(ctx, "Ada Lovelace", "ada@example.com", "Str0ng!Pass"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	auth, err := c.Login(ctx, "ada@example.com", "Str0ng!Pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	sess := newManagerStore(t)
	if err := sess.SetToken(auth.AccessToken); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	// The default-issued token has a 24h TTL, inside a 25h threshold, so
	// the first check renews it through the real refresh endpoint.
	var refreshed string
	m := NewTokenManager(sess, c, ManagerOptions{
		RefreshThreshold: 25 * time.Hour,
		OnRefreshed:      func(tok string) { refreshed = tok },
	})
	m.CheckNow(ctx)

	if refreshed == "" {
		t.Fatal("manager did not renew the token")
	}
	if _, err := c.Profile(ctx, refreshed); err != nil {
		t.Fatalf("Profile with renewed token: %v", err)
	}
	// The pre-renewal token was revoked by the rotation.
	_, err = c.Profile(ctx, auth.AccessToken)
	if appErr, ok := apperrors.AsAppError(err); !ok || appErr.Code != apperrors.CodeTokenRevoked {
		t.Errorf("old token err = %v, want TOKEN_REVOKED", err)
	}

	if _, err := sess.Token(); err != nil {
		t.Errorf("stored token unreadable after renewal: %v", err)
	}
}
