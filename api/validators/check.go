package validators

import (
	"context"
	"net/http"

	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/logger"
	"github.com/angelmondragon/csemotors/pkg/metrics"
)

const maxFormBytes = 1 << 20

type formCtxKey struct{}

// InvalidFunc renders the originating view again with the result's errors and values.
type InvalidFunc func(w http.ResponseWriter, r *http.Request, result *Result)

// ErrorRenderer writes the generic error page.
type ErrorRenderer interface {
	RenderError(w http.ResponseWriter, r *http.Request, err error)
}

// Checker builds validation middleware sharing one error page, logger and metrics sink.
type Checker struct {
	errors  ErrorRenderer
	logg    *logger.Logger
	metrics *metrics.AuthMetrics
}

// NewChecker returns a Checker.
func NewChecker(errors ErrorRenderer, logg *logger.Logger, m *metrics.AuthMetrics) *Checker {
	return &Checker{errors: errors, logg: logg, metrics: m}
}

// Check parses the form and evaluates rules. Invalid submissions go to onInvalid and never reach
// next; valid ones reach next with the sanitized result available through FormFromContext.
func (c *Checker) Check(rules Rules, onInvalid InvalidFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			if err := r.ParseForm(); err != nil {
				c.fail(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "The form could not be read."))
				return
			}

			result, err := rules.Validate(ctx, r.PostForm)
			if err != nil {
				c.fail(w, r, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validation lookup failed"))
				return
			}

			if !result.Valid() {
				c.metrics.ValidationFailed(rules.Name)
				if c.logg != nil {
					logCtx := c.logg.WithFields(ctx, map[string]any{
						"form":   rules.Name,
						"errors": len(result.Errors),
					})
					c.logg.Info(logCtx, "validation.failed")
				}
				onInvalid(w, r, result)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithForm(ctx, result)))
		})
	}
}

func (c *Checker) fail(w http.ResponseWriter, r *http.Request, err error) {
	if c.logg != nil {
		c.logg.Error(c.logg.WithField(r.Context(), "code", string(pkgerrors.CodeOf(err))), "validation.aborted", err)
	}
	if c.errors == nil {
		http.Error(w, pkgerrors.PublicMessage(err), http.StatusInternalServerError)
		return
	}
	c.errors.RenderError(w, r, err)
}

// WithForm stores a validated result on the context.
func WithForm(ctx context.Context, result *Result) context.Context {
	return context.WithValue(ctx, formCtxKey{}, result)
}

// FormFromContext returns the validated form of the current request.
func FormFromContext(ctx context.Context) *Result {
	result, _ := ctx.Value(formCtxKey{}).(*Result)
	return result
}
