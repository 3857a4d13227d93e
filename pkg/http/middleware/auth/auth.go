package auth

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dgstore/fulfillment/internal/service/models/actor"
)

// NewActorMiddleware turns the identity provider's bearer token into a typed
// actor on the request context. Claims: "sub" is the user id, "role" is
// USER or ADMIN. The role is trusted as given; this service performs no
// authorization beyond role checks downstream.
func NewActorMiddleware(secret string) func(next http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing bearer token")

				return
			}

			raw := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			}, jwt.WithLeeway(30*time.Second)) // small clock skew
			if err != nil || !token.Valid {
				unauthorized(w, "invalid token")

				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				unauthorized(w, "invalid claims")

				return
			}

			act, ok := actorFromClaims(claims)
			if !ok {
				unauthorized(w, "invalid claims")

				return
			}

			next.ServeHTTP(w, r.WithContext(actor.WithContext(r.Context(), act)))
		})
	}
}

func actorFromClaims(claims jwt.MapClaims) (actor.Actor, bool) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return actor.Actor{}, false
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return actor.Actor{}, false
	}

	roleClaim, _ := claims["role"].(string)
	role, err := actor.ParseRole(roleClaim)
	if err != nil {
		return actor.Actor{}, false
	}

	return actor.Actor{ID: id, Role: role}, true
}

func unauthorized(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
