package middleware

import (
	"net/http"

	"github.com/angelmondragon/csemotors/pkg/config"
	"github.com/angelmondragon/csemotors/pkg/flash"
	"github.com/angelmondragon/csemotors/pkg/logger"
	"github.com/google/uuid"
)

// FlashSession gives every client a session id cookie and binds its flash queue to the request.
func FlashSession(store flash.Store, cfg config.FlashConfig, secure bool, logg *logger.Logger) func(http.Handler) http.Handler {
	name := cfg.CookieName
	if name == "" {
		name = "sessionId"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(name); err == nil {
				if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
					sessionID = cookie.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := flash.WithQueue(r.Context(), flash.NewQueue(store, sessionID, logg))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
