package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/realworld-go/conduit-be/internal/models"
)

// ErrMalformedHeader is returned when the Authorization header does not match
// the "Token <value>" scheme.
var ErrMalformedHeader = errors.New("malformed authorization header")

// Claims defines the JWT claims structure.
type Claims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserClaimsKey is the context key for user claims.
type contextKey string

const UserClaimsKey = contextKey("userClaims")

// Service issues and verifies signed tokens. The secret is injected at
// construction; there is no package-level state.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService creates a token service signing with the given secret.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a new JWT for a given user.
func (s *Service) GenerateToken(user models.User) (string, error) {
	expirationTime := time.Now().Add(s.ttl)
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates a JWT string.
func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// TokenFromHeader extracts the credential from an Authorization header value.
// The scheme is "Token <value>": exactly two space-separated parts, scheme
// matched case-insensitively.
func TokenFromHeader(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 {
		return "", ErrMalformedHeader
	}
	if !strings.EqualFold(parts[0], "Token") {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}

// Required returns middleware that rejects the request with 401 unless a
// valid credential is presented.
func (s *Service) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.claimsFromRequest(r)
		if err != nil {
			unauthorized(w)
			return
		}
		ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional returns middleware that attaches claims when a valid credential is
// presented and proceeds anonymously on any failure.
func (s *Service) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.claimsFromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) claimsFromRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMalformedHeader
	}
	tokenStr, err := TokenFromHeader(header)
	if err != nil {
		return nil, err
	}
	return s.ValidateToken(tokenStr)
}

// ClaimsFrom returns the authenticated claims attached to the context, if any.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": map[string]string{"token": "missing or invalid"},
	})
}
