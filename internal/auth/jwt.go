package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrLotU/user-profile-be/internal/models"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "token"

// Claims defines the JWT claims structure.
type Claims struct {
	UserID        string `json:"userId"`
	Username      string `json:"username"`
	PasswordStamp int64  `json:"pwdStamp"`
	jwt.RegisteredClaims
}

// StampSource reports the current password stamp for an account.
// Tokens issued against an older stamp are rejected, which is what
// invalidates outstanding sessions after a password change.
type StampSource interface {
	PasswordStamp(userID string) (int64, error)
}

// Manager issues and validates session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	stamps StampSource
}

// NewManager creates a token manager.
func NewManager(secret string, ttl time.Duration, stamps StampSource) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, stamps: stamps}
}

// TTL returns the session lifetime tokens are issued with.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Generate creates a new session token for a given user.
func (m *Manager) Generate(user models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:        user.ID,
		Username:      user.Username,
		PasswordStamp: user.PasswordStamp,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate parses a token, verifies the signature and rejects tokens
// whose password stamp no longer matches the stored one.
func (m *Manager) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	stamp, err := m.stamps.PasswordStamp(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("unknown account: %w", err)
	}
	if stamp != claims.PasswordStamp {
		return nil, fmt.Errorf("session invalidated by password change")
	}
	return claims, nil
}

// SetSessionCookie binds a session token to the response.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearSessionCookie drops the session token from the client.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}

// Sessions resolves the request's identity. A valid token yields an
// authenticated session in the context; anything else leaves the
// request anonymous. Routes decide for themselves whether anonymous
// access is acceptable.
func (m *Manager) Sessions() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			// 1. Try to get the token from the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, "Bearer ")
				if len(parts) == 2 {
					tokenStr = parts[1]
				}
			}

			// 2. If not in header, fall back to the cookie
			if tokenStr == "" {
				if cookie, err := r.Cookie(SessionCookie); err == nil {
					tokenStr = cookie.Value
				}
			}

			session := Anonymous()
			if tokenStr != "" {
				if claims, err := m.Validate(tokenStr); err == nil {
					session = Authenticated(claims.UserID, claims.Username)
				}
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAuthenticated rejects anonymous requests.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !FromContext(r.Context()).IsAuthenticated() {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
