package middleware

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/logger"
)

// Recoverer turns a panic into the generic 500 error page.
func Recoverer(page ErrorPage, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err := fmt.Errorf("panic: %v", rec)
					ctx := r.Context()
					if logg != nil {
						ctx = logg.WithFields(ctx, map[string]any{"panic": fmt.Sprint(rec)})
						logg.Error(ctx, "panic.recovered", err)
					}
					wrapped := pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic")
					if page == nil {
						http.Error(w, pkgerrors.PublicMessage(wrapped), http.StatusInternalServerError)
						return
					}
					page.RenderError(w, r, wrapped)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
