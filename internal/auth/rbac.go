package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/factoryshift/internal/authz"
)

// RoleGuard provides route-level role gates. Record-level scoping stays in
// the services via the authz predicates; these middlewares only reject
// roles that can never reach the route.
type RoleGuard struct {
	logger *slog.Logger
}

func NewRoleGuard(logger *slog.Logger) *RoleGuard {
	return &RoleGuard{logger: logger}
}

func (g *RoleGuard) requireRoles(roles ...authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, `{"detail": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			g.logger.WarnContext(r.Context(), "access denied: insufficient role",
				"user_id", user.ID,
				"role", user.Role,
				"path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"detail": "Not enough permissions"}`))
		})
	}
}

func (g *RoleGuard) RequireAdmin() func(http.Handler) http.Handler {
	return g.requireRoles(authz.RoleAdmin)
}

// RequireManager admits admins and division managers.
func (g *RoleGuard) RequireManager() func(http.Handler) http.Handler {
	return g.requireRoles(authz.RoleAdmin, authz.RoleDivisionManager)
}
