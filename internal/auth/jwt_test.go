package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/realworld-go/conduit-be/internal/models"
)

func testService() *Service {
	return NewService("test-secret", time.Hour)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := testService()
	user := models.User{ID: "u-1", Username: "johnjacob"}

	token, err := svc.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != "u-1" || claims.Username != "johnjacob" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	token, err := NewService("other-secret", time.Hour).GenerateToken(models.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := testService().ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for token signed with another secret")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)
	token, err := svc.GenerateToken(models.User{ID: "u-1"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestTokenFromHeader(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"standard scheme", "Token abc123", "abc123", false},
		{"case-insensitive scheme", "tOkEn abc123", "abc123", false},
		{"wrong scheme", "Bearer abc123", "", true},
		{"missing credential", "Token", "", true},
		{"too many parts", "Token abc 123", "", true},
		{"empty header", "", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TokenFromHeader(tc.header)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.header)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequiredMiddleware(t *testing.T) {
	svc := testService()
	var gotClaims *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFrom(r.Context())
	})
	handler := svc.Required(next)

	// Missing header fails the request.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", rec.Code)
	}

	// Valid credential attaches claims.
	token, err := svc.GenerateToken(models.User{ID: "u-1", Username: "jake"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", rec.Code)
	}
	if gotClaims == nil || gotClaims.UserID != "u-1" {
		t.Fatalf("expected claims on context, got %+v", gotClaims)
	}
}

func TestOptionalMiddleware(t *testing.T) {
	svc := testService()
	var sawClaims bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = ClaimsFrom(r.Context())
	})
	handler := svc.Optional(next)

	// Invalid credential proceeds anonymously instead of failing.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous pass-through, got %d", rec.Code)
	}
	if sawClaims {
		t.Fatal("expected no claims for invalid credential")
	}
}
