package middleware

import "net/http"

// ErrorPage writes the generic error view for err.
type ErrorPage interface {
	RenderError(w http.ResponseWriter, r *http.Request, err error)
}

// LoginPath is where access gates send callers they turn away.
const LoginPath = "/account/login"
