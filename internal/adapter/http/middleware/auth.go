package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/models"
	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	wrap "github.com/fleetgate/fleet-tracking-system/pkg/logger/wrapper"
)

// Auth resolves the bearer token into a principal and injects it into the
// request context. A missing header means anonymous; anonymous callers
// only get past endpoints that allow them. A present but invalid token is
// always a 401.
func (m *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r.WithContext(models.WithPrincipal(ctx, models.AnonymousPrincipal())))
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		principal, err := m.verifier.Verify(ctx, token)
		if err != nil || principal == nil {
			m.log.Warn(wrap.WithAction(ctx, "auth"), "rejected bearer token", "remote", r.RemoteAddr)
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(models.WithPrincipal(ctx, principal)))
	})
}

// RequireClass allows only callers of the given connection classes.
func (m *Middleware) RequireClass(next http.HandlerFunc, allowed ...types.ConnClass) http.Handler {
	allowedSet := make(map[types.ConnClass]struct{}, len(allowed))
	for _, class := range allowed {
		allowedSet[class] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := models.PrincipalFromContext(r.Context())
		if principal.IsAnonymous() {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if len(allowedSet) > 0 {
			if _, ok := allowedSet[principal.Class]; !ok {
				errorResponse(w, http.StatusForbidden, "forbidden: insufficient role")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
