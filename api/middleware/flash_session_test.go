package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/csemotors/pkg/config"
	"github.com/angelmondragon/csemotors/pkg/flash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}

func TestFlashSessionIssuesCookieAndQueue(t *testing.T) {
	store := newFlashStore(t)
	var sessionID string
	handler := FlashSession(store, config.FlashConfig{CookieName: "sessionId"}, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := flash.FromContext(r.Context())
		sessionID = q.SessionID()
		q.Notice(r.Context(), "hello")
	}))

	rec := serve(handler, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sessionId", cookies[0].Name)
	assert.Equal(t, sessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// The next request carrying the cookie drains what the first one queued.
	var drained []flash.Message
	next := FlashSession(store, config.FlashConfig{CookieName: "sessionId"}, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		drained = flash.FromContext(r.Context()).Drain(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/account/", nil)
	req.AddCookie(cookies[0])
	rec = serve(next, req)

	assert.Empty(t, rec.Result().Cookies(), "existing session keeps its cookie")
	require.Len(t, drained, 1)
	assert.Equal(t, "hello", drained[0].Text)
}

func TestFlashSessionReplacesForgedID(t *testing.T) {
	store := newFlashStore(t)
	var sessionID string
	handler := FlashSession(store, config.FlashConfig{}, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID = flash.FromContext(r.Context()).SessionID()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sessionId", Value: "../../etc"})

	rec := serve(handler, req)

	assert.NotEqual(t, "../../etc", sessionID)
	assert.Len(t, rec.Result().Cookies(), 1)
}
