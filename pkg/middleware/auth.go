package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/averma/campus-events/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// PrincipalKey is the context key for the authenticated account
const PrincipalKey ContextKey = "principal"

// Resolver errors returned when the account behind a valid token cannot act
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountInactive = errors.New("account has been deactivated")
)

// Principal is the acting identity resolved from the role-scoped account
// store, not from anything the client claims at request time.
type Principal struct {
	ID    primitive.ObjectID
	Role  string
	Name  string
	Email string
}

// Resolver re-fetches the account named in a verified token and reports
// whether it may act. Implementations return ErrAccountNotFound or
// ErrAccountInactive for the gate's 401/403 split.
type Resolver interface {
	Resolve(ctx context.Context, id primitive.ObjectID, role string) (*Principal, error)
}

// Authenticator validates the bearer token, resolves the account it names
// and attaches the principal to the request context.
func Authenticator(secret []byte, resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "No token provided, authorization denied")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := ParseToken(secret, parts[1])
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					response.Unauthorized(w, "Token expired")
					return
				}
				response.Unauthorized(w, "Invalid token")
				return
			}

			id, err := primitive.ObjectIDFromHex(claims.Subject)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			principal, err := resolver.Resolve(r.Context(), id, claims.Role)
			if err != nil {
				if errors.Is(err, ErrAccountInactive) {
					response.Forbidden(w, "Account has been deactivated. Please contact admin.")
					return
				}
				if errors.Is(err, ErrAccountNotFound) {
					response.Unauthorized(w, "Account not found")
					return
				}
				response.InternalError(w, "Failed to authenticate request")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose role is not in the
// allow-list.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				response.Unauthorized(w, "Authentication required")
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Access denied. Required roles: "+strings.Join(roles, ", "))
		})
	}
}

// GetPrincipal extracts the authenticated account from the request context
func GetPrincipal(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(*Principal)
	return principal, ok
}
