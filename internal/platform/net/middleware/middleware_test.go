package middleware_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"glossarysync/internal/platform/logger"
	"glossarysync/internal/platform/net/middleware"
	kit "glossarysync/internal/platform/testkit"
)

func TestAccessLog_PassThroughAndLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: "info", Format: "json", Writer: &buf})
	mw := middleware.AccessLogZerolog(middleware.AccessLogOptions{Log: &log})

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "hi")
		_, _ = io.WriteString(w, "there")
	})
	rr := httptest.NewRecorder()
	mw(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/terms", nil))

	if rr.Code != http.StatusCreated || rr.Body.String() != "hithere" {
		t.Fatalf("response = %d %q", rr.Code, rr.Body.String())
	}
	out := buf.String()
	kit.MustContain(t, out, `"status":201`)
	kit.MustContain(t, out, `"bytes":7`)
	kit.MustContain(t, out, `"path":"/terms"`)
}

func TestRecoverJSON(t *testing.T) {
	h := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	kit.MustContain(t, rr.Body.String(), `"code":"InternalServerError"`)
}

func TestDefaults_SetsRequestID(t *testing.T) {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.URL.Path)
	})
	chain := middleware.Defaults(middleware.AccessLogOptions{})
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/terms/", nil))
	if rr.Body.String() != "/terms" {
		t.Fatalf("trailing slash not stripped: %q", rr.Body.String())
	}
}
