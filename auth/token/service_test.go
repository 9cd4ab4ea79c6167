package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/connexa-app/connexa/auth"
	"github.com/connexa-app/connexa/auth/token"
)

func newService(t *testing.T, cfg token.Config) *token.Service {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	svc, err := token.NewService(cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc := newService(t, token.Config{})

	signed, err := svc.Issue(5, "alice@example.com", "Alice", auth.RoleUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 5 || claims.Email != "alice@example.com" || claims.Role != auth.RoleUser {
		t.Errorf("claims do not round-trip: %+v", claims)
	}
	if claims.TokenType != token.TypeAccess {
		t.Errorf("expected access token, got %s", claims.TokenType)
	}
	if claims.TokenID == "" {
		t.Error("expected a token id")
	}
	if claims.ExpiresAt.Time.Before(claims.IssuedAt.Time) {
		t.Error("expiry must be after issued-at")
	}
}

func TestIssue_RequiresSubject(t *testing.T) {
	svc := newService(t, token.Config{})

	if _, err := svc.Issue(0, "a@b.com", "", auth.RoleUser); !errors.Is(err, token.ErrMissingSubject) {
		t.Errorf("expected ErrMissingSubject for zero id, got %v", err)
	}
	if _, err := svc.Issue(1, "", "", auth.RoleUser); !errors.Is(err, token.ErrMissingSubject) {
		t.Errorf("expected ErrMissingSubject for empty email, got %v", err)
	}
}

func TestIssue_UniqueTokenIDs(t *testing.T) {
	svc := newService(t, token.Config{})

	a, _ := svc.Issue(1, "a@b.com", "", auth.RoleUser)
	b, _ := svc.Issue(1, "a@b.com", "", auth.RoleUser)

	ca := svc.Decode(a)
	cb := svc.Decode(b)
	if ca.TokenID == cb.TokenID {
		t.Error("token ids must be unique across rapid issuance")
	}
}

func TestVerify_BearerPrefix(t *testing.T) {
	svc := newService(t, token.Config{})
	signed, _ := svc.Issue(1, "a@b.com", "", auth.RoleUser)

	if _, err := svc.Verify("Bearer " + signed); err != nil {
		t.Errorf("Verify with Bearer prefix: %v", err)
	}
}

func TestVerify_Failures(t *testing.T) {
	svc := newService(t, token.Config{})
	other := newService(t, token.Config{Secret: "different-secret"})
	signed, _ := svc.Issue(1, "a@b.com", "", auth.RoleUser)

	tests := []struct {
		name  string
		token string
		svc   *token.Service
		want  error
	}{
		{"empty", "", svc, token.ErrMissingToken},
		{"garbage", "not-a-token", svc, token.ErrMalformed},
		{"wrong secret", signed, other, token.ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.svc.Verify(tt.token); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestVerify_Expired(t *testing.T) {
	svc := newService(t, token.Config{AccessTokenTTL: time.Millisecond})
	signed, _ := svc.Issue(1, "a@b.com", "", auth.RoleUser)

	time.Sleep(5 * time.Millisecond)
	if _, err := svc.Verify(signed); !errors.Is(err, token.ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	issuing := newService(t, token.Config{Issuer: "someone-else"})
	verifying := newService(t, token.Config{})

	signed, _ := issuing.Issue(1, "a@b.com", "", auth.RoleUser)
	if _, err := verifying.Verify(signed); !errors.Is(err, token.ErrWrongIssuerAudience) {
		t.Errorf("expected ErrWrongIssuerAudience, got %v", err)
	}
}

func TestIsExpired(t *testing.T) {
	svc := newService(t, token.Config{})

	valid, _ := svc.Issue(1, "a@b.com", "", auth.RoleUser)
	if svc.IsExpired(valid) {
		t.Error("fresh token reported expired")
	}

	short := newService(t, token.Config{AccessTokenTTL: time.Millisecond})
	expired, _ := short.Issue(1, "a@b.com", "", auth.RoleUser)
	time.Sleep(5 * time.Millisecond)
	if !short.IsExpired(expired) {
		t.Error("stale token not reported expired")
	}

	if !svc.IsExpired("garbage") {
		t.Error("malformed token must be reported expired")
	}
}

func TestTimeToExpiry(t *testing.T) {
	svc := newService(t, token.Config{AccessTokenTTL: time.Hour})
	signed, _ := svc.Issue(1, "a@b.com", "", auth.RoleUser)

	remaining := svc.TimeToExpiry(signed)
	if remaining <= 55*time.Minute || remaining > time.Hour {
		t.Errorf("unexpected time to expiry: %v", remaining)
	}

	if svc.TimeToExpiry("garbage") != 0 {
		t.Error("malformed token must report zero time to expiry")
	}
}

func TestDecode_NoVerification(t *testing.T) {
	issuing := newService(t, token.Config{Secret: "other"})
	svc := newService(t, token.Config{})

	signed, _ := issuing.Issue(7, "bob@example.com", "Bob", auth.RoleAdmin)

	// Decode parses despite the signature mismatch.
	claims := svc.Decode(signed)
	if claims == nil || claims.UserID != 7 {
		t.Fatalf("Decode failed on foreign-signed token: %+v", claims)
	}
	if svc.Decode("garbage") != nil {
		t.Error("Decode on malformed input must return nil")
	}
}
