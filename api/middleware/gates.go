package middleware

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/enums"
	"github.com/angelmondragon/csemotors/pkg/flash"
	"github.com/angelmondragon/csemotors/pkg/logger"
	"github.com/angelmondragon/csemotors/pkg/metrics"
)

// LoginRequiredNotice is flashed when an anonymous caller hits a login-only route.
const LoginRequiredNotice = "Please log in."

// RequireLogin turns anonymous callers away to the login page.
func RequireLogin(m *metrics.AuthMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !auth.IdentityFromContext(r.Context()).IsAuthenticated() {
				deny(w, r, "login", "not_authenticated", LoginRequiredNotice, m, logg)
				return
			}
			m.Gate("login", metrics.GateAllowed, "authenticated")
			next.ServeHTTP(w, r)
		})
	}
}

// RoleGate describes a role-restricted area and what to tell callers kept out of it.
type RoleGate struct {
	Name         string
	Allowed      []enums.AccountType
	LoginNotice  string
	DeniedNotice string
}

// InventoryGate guards inventory management.
func InventoryGate() RoleGate {
	return RoleGate{
		Name:         "inventory",
		Allowed:      []enums.AccountType{enums.AccountTypeEmployee, enums.AccountTypeAdmin},
		LoginNotice:  "You must be logged in to access inventory management.",
		DeniedNotice: "You do not have permission to access inventory management.",
	}
}

// RequireRole admits only authenticated callers whose role is in gate.Allowed. Both failures
// redirect to the login page; only the flash text differs.
func RequireRole(gate RoleGate, m *metrics.AuthMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if !identity.IsAuthenticated() {
				deny(w, r, gate.Name, "not_authenticated", gate.LoginNotice, m, logg)
				return
			}
			if !slices.Contains(gate.Allowed, identity.Role) {
				deny(w, r, gate.Name, "insufficient_role", gate.DeniedNotice, m, logg)
				return
			}
			m.Gate(gate.Name, metrics.GateAllowed, "role")
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, r *http.Request, gate, reason, notice string, m *metrics.AuthMetrics, logg *logger.Logger) {
	ctx := r.Context()
	m.Gate(gate, metrics.GateDenied, reason)
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"gate": gate, "reason": reason}), "access.denied")
	}
	flash.FromContext(ctx).Notice(ctx, notice)
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}
