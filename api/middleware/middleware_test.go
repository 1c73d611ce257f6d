package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/csemotors/pkg/config"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/flash"
	redisclient "github.com/angelmondragon/csemotors/pkg/redis"
	"github.com/redis/go-redis/v9"
)

type stubErrorPage struct {
	err error
}

func (s *stubErrorPage) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	s.err = err
	w.WriteHeader(pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).HTTPStatus)
}

func newFlashStore(t *testing.T) *flash.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	store, err := flash.NewRedisStore(redisclient.Wrap(raw), config.FlashConfig{TTL: time.Hour})
	if err != nil {
		t.Fatalf("flash store: %v", err)
	}
	return store
}

// withFlash binds a fresh queue for a fixed session id so tests can inspect it afterwards.
func withFlash(t *testing.T, req *http.Request) (*http.Request, *flash.Queue) {
	t.Helper()
	q := flash.NewQueue(newFlashStore(t), "test-session", nil)
	return req.WithContext(flash.WithQueue(req.Context(), q)), q
}

func drainTexts(q *flash.Queue) []string {
	var out []string
	for _, msg := range q.Drain(context.Background()) {
		out = append(out, msg.Text)
	}
	return out
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
