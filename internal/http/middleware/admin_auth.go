package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const scheduleAdminKey contextKey = "scheduleAdmin"

// ScheduleAdminClaims are the claims carried by tokens minted for the
// schedule-config endpoints. Scope is a space-separated list; a token
// without a scope claim is unrestricted.
type ScheduleAdminClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope,omitempty"`
}

func (c *ScheduleAdminClaims) allows(scope string) bool {
	if c.Scope == "" {
		return true
	}
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// AdminJWT gates the schedule-config endpoints behind an HMAC-signed
// JWT. Scoped tokens must carry the "schedule" scope.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeError(w, http.StatusUnauthorized, "admin auth disabled")
				return
			}
			auth := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || tokenString == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			claims := &ScheduleAdminClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if !claims.allows("schedule") {
				writeError(w, http.StatusForbidden, "insufficient scope")
				return
			}
			ctx := context.WithValue(r.Context(), scheduleAdminKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ScheduleAdminFromContext returns the verified admin claims if present.
func ScheduleAdminFromContext(ctx context.Context) (*ScheduleAdminClaims, bool) {
	claims, ok := ctx.Value(scheduleAdminKey).(*ScheduleAdminClaims)
	return claims, ok
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
