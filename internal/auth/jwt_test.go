package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/cms-be/internal/models"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Generate(models.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" {
		t.Fatalf("claims=%+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	good, _ := m.Generate(models.User{ID: "u1", Username: "alice"})

	other := NewTokenManager("other-secret", time.Hour)
	wrongKey, _ := other.Generate(models.User{ID: "u1"})

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Generate(models.User{ID: "u1"})

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	goodParts := strings.Split(good, ".")
	otherParts := strings.Split(wrongKey, ".")
	tampered := goodParts[0] + "." + otherParts[1] + "." + goodParts[2]

	tests := map[string]string{
		"garbage":   "not-a-token",
		"wrong key": wrongKey,
		"expired":   old,
		"alg none":  unsigned,
		"tampered":  tampered,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Validate(token); err == nil {
				t.Fatalf("expected %s token to be rejected", name)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, _ := m.Generate(models.User{ID: "u1", Username: "alice"})

	var seen *Claims
	h := m.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, "Missing token"},
		{"invalid", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, "Invalid token"},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusNoContent, ""},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: token}) }, http.StatusNoContent, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("code=%d want %d", rec.Code, tc.wantCode)
			}
			if tc.wantBody != "" && !strings.Contains(rec.Body.String(), tc.wantBody) {
				t.Fatalf("body=%q want %q", rec.Body.String(), tc.wantBody)
			}
			if tc.wantCode == http.StatusNoContent && (seen == nil || seen.UserID != "u1") {
				t.Fatalf("claims not propagated: %+v", seen)
			}
		})
	}
}
