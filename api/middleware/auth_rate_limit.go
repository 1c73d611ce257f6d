package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/flash"
	"github.com/angelmondragon/csemotors/pkg/logger"
)

// RateLimitedNotice is flashed alongside the 429 page.
const RateLimitedNotice = "Too many attempts. Please wait a few minutes and try again."

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// AuthRateLimitPolicy counts submissions of one account form per client IP and per email.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

// NewAuthRateLimitPolicy builds a policy. A zero limit disables that counter.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

// counter is one limit applied to one identifying value of the request. Emails are hashed
// before they reach Redis or the logs.
type counter struct {
	scope string
	value string
	limit int
}

func (p AuthRateLimitPolicy) counters(r *http.Request) []counter {
	var out []counter
	if p.ipLimit > 0 {
		if ip := clientIP(r); ip != "" {
			out = append(out, counter{scope: "ip", value: ip, limit: p.ipLimit})
		}
	}
	if p.emailLimit > 0 {
		if email := strings.ToLower(strings.TrimSpace(r.PostForm.Get("account_email"))); email != "" {
			out = append(out, counter{scope: "email", value: hashValue(email), limit: p.emailLimit})
		}
	}
	return out
}

func (p AuthRateLimitPolicy) key(c counter) string {
	return c.scope + ":" + p.name + ":" + c.value
}

// AuthRateLimit throttles POSTs to the login and register forms. Page views are never counted.
// Blocked attempts get the 429 error page and a flash notice.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, page ErrorPage, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if policy.window <= 0 || (policy.ipLimit <= 0 && policy.emailLimit <= 0) || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			if policy.emailLimit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
				if err := r.ParseForm(); err != nil {
					writeError(w, r, page, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "The form could not be read."))
					return
				}
			}

			for _, c := range policy.counters(r) {
				count, err := store.IncrWithTTL(ctx, store.RateLimitKey(policy.key(c)), policy.window)
				if err != nil {
					if logg != nil {
						logg.Error(ctx, "auth.rate_limit.store_failed", err)
					}
					writeError(w, r, page, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(c.limit) {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":         policy.name,
							"scope":          c.scope,
							"subject":        c.value,
							"attempts":       count,
							"limit":          c.limit,
							"window_seconds": int(policy.window.Seconds()),
						}), "auth.rate_limit.blocked")
					}
					flash.FromContext(ctx).Error(ctx, RateLimitedNotice)
					writeError(w, r, page, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

const maxFormBytes = 1 << 20

func writeError(w http.ResponseWriter, r *http.Request, page ErrorPage, err error) {
	if page == nil {
		http.Error(w, pkgerrors.PublicMessage(err), pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).HTTPStatus)
		return
	}
	page.RenderError(w, r, err)
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
