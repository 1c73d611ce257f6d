package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/auth/session"
	"github.com/angelmondragon/csemotors/pkg/config"
	"github.com/angelmondragon/csemotors/pkg/flash"
	"github.com/angelmondragon/csemotors/pkg/logger"
	"github.com/angelmondragon/csemotors/pkg/metrics"
	"github.com/golang-jwt/jwt/v5"
)

// SessionExpiredNotice is flashed when the identity cookie no longer verifies.
const SessionExpiredNotice = "Your session has expired. Please log in again."

var errRevoked = errors.New("identity token revoked")

// Session decodes the identity cookie into the request context. It never rejects a request:
// a missing or bad token leaves the caller anonymous, and a bad one is also cleared.
func Session(cfg config.JWTConfig, checker session.AccessSessionChecker, m *metrics.AuthMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw := auth.IdentityCookie(r, cfg)
			if raw == "" {
				m.TokenDecoded("absent")
				next.ServeHTTP(w, r.WithContext(auth.WithIdentity(ctx, auth.Anonymous())))
				return
			}

			claims, err := auth.ParseIdentityToken(cfg, raw)
			if err == nil && checker != nil {
				live, lookupErr := checker.HasSession(ctx, claims.ID)
				switch {
				case lookupErr != nil:
					m.TokenDecoded("unverified")
					if logg != nil {
						logg.Error(ctx, "session.lookup_failed", lookupErr)
					}
					next.ServeHTTP(w, r.WithContext(auth.WithIdentity(ctx, auth.Anonymous())))
					return
				case !live:
					err = errRevoked
				}
			}

			if err != nil {
				reason := invalidReason(err)
				m.TokenDecoded(reason)
				auth.ClearIdentityCookie(w, cfg)
				flash.FromContext(ctx).Notice(ctx, SessionExpiredNotice)
				if logg != nil {
					logg.Info(logg.WithField(ctx, "reason", reason), "session.token_rejected")
				}
				next.ServeHTTP(w, r.WithContext(auth.WithIdentity(ctx, auth.Anonymous())))
				return
			}

			m.TokenDecoded("valid")
			next.ServeHTTP(w, r.WithContext(withClaims(ctx, claims, logg)))
		})
	}
}

func withClaims(ctx context.Context, claims *auth.IdentityClaims, logg *logger.Logger) context.Context {
	ctx = auth.WithIdentity(ctx, claims.Identity)
	ctx = auth.WithTokenID(ctx, claims.ID)
	if logg != nil {
		ctx = logg.WithAccountID(ctx, claims.AccountID)
		ctx = logg.WithRole(ctx, claims.Role.String())
	}
	return ctx
}

func invalidReason(err error) string {
	switch {
	case errors.Is(err, errRevoked):
		return "revoked"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	default:
		return "invalid"
	}
}
