package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestLoggerMiddlewareEmitsRequestLine(t *testing.T) {
	t.Setenv("ENV", "development")

	origStderr := os.Stderr
	pr, pw, err := os.Pipe()
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	os.Stderr = pw
	defer func() { os.Stderr = origStderr }()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest(http.MethodGet, "/customers?limit=5", nil)
	LoggerMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)

	pw.Close()
	os.Stderr = origStderr
	out, err := io.ReadAll(pr)
	if err != nil {
		t.Fatalf("read captured output: %v", err)
	}

	if len(out) == 0 {
		t.Fatal("middleware wrote nothing to stderr")
	}
	if !strings.Contains(string(out), "GET /customers?limit=5") {
		t.Errorf("request line missing from output: %q", string(out))
	}
}
