package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func withCaller(r *http.Request, userID string, roles ...string) *http.Request {
	ctx := WithUserID(r.Context(), userID)
	ctx = WithRoles(ctx, roles)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rc))
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	mw := RequireRole("admin", nil)(ok)

	resp := httptest.NewRecorder()
	mw.ServeHTTP(resp, withCaller(httptest.NewRequest(http.MethodPost, "/", nil), "u1", "creator", "admin"))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = httptest.NewRecorder()
	mw.ServeHTTP(resp, withCaller(httptest.NewRequest(http.MethodPost, "/", nil), "u1", "learner"))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestSelfOnlyAndSelfOrRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	tests := []struct {
		name   string
		mw     func(http.Handler) http.Handler
		caller string
		roles  []string
		target string
		want   int
	}{
		{"self", SelfOnly("id", nil), "u1", nil, "u1", http.StatusNoContent},
		{"other", SelfOnly("id", nil), "u1", []string{"admin"}, "u2", http.StatusForbidden},
		{"anonymous", SelfOnly("id", nil), "", nil, "", http.StatusForbidden},
		{"admin override", SelfOrRole("id", "admin", nil), "u1", []string{"admin"}, "u2", http.StatusNoContent},
		{"no override", SelfOrRole("id", "admin", nil), "u1", []string{"creator"}, "u2", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest(http.MethodPut, "/", nil), "id", tt.target)
			req = withCaller(req, tt.caller, tt.roles...)
			resp := httptest.NewRecorder()
			tt.mw(ok).ServeHTTP(resp, req)
			assert.Equal(t, tt.want, resp.Code)
		})
	}
}
