package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/csemotors/api/validators"
	"github.com/angelmondragon/csemotors/api/views"
	"github.com/angelmondragon/csemotors/pkg/auth"
	"github.com/angelmondragon/csemotors/pkg/config"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/flash"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "cse-motors", ExpirationMinutes: 30, CookieName: "jwt"}

type renderCall struct {
	status int
	name   string
	page   views.Page
	err    error
}

type recordingView struct {
	calls []renderCall
}

func (v *recordingView) Render(w http.ResponseWriter, _ *http.Request, status int, name string, page views.Page) {
	v.calls = append(v.calls, renderCall{status: status, name: name, page: page})
	w.WriteHeader(status)
}

func (v *recordingView) RenderError(w http.ResponseWriter, _ *http.Request, err error) {
	status := pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).HTTPStatus
	v.calls = append(v.calls, renderCall{status: status, name: views.PageError, err: err})
	w.WriteHeader(status)
}

func (v *recordingView) last(t *testing.T) renderCall {
	t.Helper()
	if len(v.calls) == 0 {
		t.Fatal("expected a render")
	}
	return v.calls[len(v.calls)-1]
}

type memoryFlash struct {
	queued []flash.Message
}

func (m *memoryFlash) Push(_ context.Context, _ string, msgs ...flash.Message) error {
	m.queued = append(m.queued, msgs...)
	return nil
}

func (m *memoryFlash) Drain(context.Context, string) ([]flash.Message, error) {
	out := m.queued
	m.queued = nil
	return out, nil
}

func (m *memoryFlash) texts() []string {
	out := make([]string, 0, len(m.queued))
	for _, msg := range m.queued {
		out = append(out, msg.Text)
	}
	return out
}

// formRequest builds a POST carrying form, the caller's identity and a flash queue. When
// rules is set the form is validated and attached the way validators.Checker does.
func formRequest(t *testing.T, path string, form url.Values, identity auth.Identity, store *memoryFlash, rules *validators.Rules) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if err := req.ParseForm(); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	ctx := auth.WithIdentity(req.Context(), identity)
	ctx = flash.WithQueue(ctx, flash.NewQueue(store, "sid", nil))
	if rules != nil {
		result, err := rules.Validate(ctx, req.PostForm)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !result.Valid() {
			t.Fatalf("fixture form is invalid: %v", result.Messages())
		}
		ctx = validators.WithForm(ctx, result)
	}
	return req.WithContext(ctx)
}

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
