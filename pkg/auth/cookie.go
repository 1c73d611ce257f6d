package auth

import (
	"net/http"

	"github.com/angelmondragon/csemotors/pkg/config"
)

// SetIdentityCookie stores the identity token in an HTTP-only cookie living as long as the token.
func SetIdentityCookie(w http.ResponseWriter, cfg config.JWTConfig, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(cfg),
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TTL().Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearIdentityCookie expires the identity cookie on the client.
func ClearIdentityCookie(w http.ResponseWriter, cfg config.JWTConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(cfg),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// IdentityCookie returns the raw token from the request, or "" when absent.
func IdentityCookie(r *http.Request, cfg config.JWTConfig) string {
	cookie, err := r.Cookie(cookieName(cfg))
	if err != nil {
		return ""
	}
	return cookie.Value
}

func cookieName(cfg config.JWTConfig) string {
	if cfg.CookieName == "" {
		return config.DefaultIdentityCookie
	}
	return cfg.CookieName
}
