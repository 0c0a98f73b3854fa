// Package identity resolves the acting user from a caller-supplied
// credential. The storefront delegates authentication to an external
// identity provider and consumes only an opaque user id: either the
// subject of a bearer token the provider signed, or a bare User-Id
// header when no signing secret is configured (trusted-edge deployments).
//
// The middleware only annotates the request context. It never rejects;
// handlers decide what an absent identity means for their endpoint.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const userIDHeader = "User-Id"

type ctxKey struct{}

type User struct {
	ID string
}

func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// Verifier validates HS256 bearer tokens issued by the identity
// provider and extracts the subject as the opaque user id.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret)}
}

var errInvalidToken = errors.New("invalid token")

func (v *Verifier) UserID(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || token == nil || !token.Valid || claims.Subject == "" {
		return "", errInvalidToken
	}

	return claims.Subject, nil
}

// Middleware resolves the acting user onto the request context. With a
// verifier, a valid bearer token wins; without one, the User-Id header is
// trusted as-is. Requests with no resolvable identity pass through
// unannotated.
func Middleware(v *Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := resolve(v, log, r); ok {
				r = r.WithContext(WithUser(r.Context(), User{ID: id}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolve(v *Verifier, log *zap.Logger, r *http.Request) (string, bool) {
	if v != nil {
		authz := r.Header.Get("Authorization")
		if strings.HasPrefix(authz, "Bearer ") {
			id, err := v.UserID(strings.TrimPrefix(authz, "Bearer "))
			if err != nil {
				if log != nil {
					log.Warn("bearer token rejected", zap.Error(err))
				}
				return "", false
			}
			return id, true
		}
		return "", false
	}

	if id := strings.TrimSpace(r.Header.Get(userIDHeader)); id != "" {
		return id, true
	}
	return "", false
}
