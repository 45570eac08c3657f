package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/daryeelcare/caafimaad-platform/internal/identity"
)

// Claims are the JWT claims issued by the session service. Only fields the
// API needs are decoded.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// RequireAuth enforces an HMAC-signed bearer token and stores the decoded
// principal on the request context. A missing or invalid token is an auth
// failure, never a business-rule failure.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := Claims{}
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			role := identity.Role(claims.Role)
			switch role {
			case identity.RolePatient, identity.RoleDoctor, identity.RoleAdmin:
			default:
				role = identity.RolePatient
			}
			principal := identity.Principal{
				UserID: claims.Subject,
				Email:  claims.Email,
				Role:   role,
			}
			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin rejects callers whose principal is not an admin. It must be
// mounted after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := identity.FromContext(r.Context())
		if !ok {
			http.Error(w, "missing principal", http.StatusUnauthorized)
			return
		}
		if !p.IsAdmin() {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff admits doctors and admins.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := identity.FromContext(r.Context())
		if !ok {
			http.Error(w, "missing principal", http.StatusUnauthorized)
			return
		}
		if !p.IsStaff() {
			http.Error(w, "staff access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
