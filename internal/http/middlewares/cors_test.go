package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name            string
		allowed         []string
		method          string
		origin          string
		wantStatus      int
		wantAllowOrigin string
		wantCredentials bool
		wantPreflight   bool
	}{
		{"listed origin", []string{"https://blog.example"}, http.MethodGet, "https://blog.example", http.StatusOK, "https://blog.example", true, false},
		{"unlisted origin", []string{"https://blog.example"}, http.MethodGet, "https://evil.example", http.StatusOK, "", false, false},
		{"wildcard never sends credentials", []string{"*"}, http.MethodGet, "https://any.example", http.StatusOK, "*", false, false},
		{"preflight from listed origin", []string{"https://blog.example"}, http.MethodOptions, "https://blog.example", http.StatusNoContent, "https://blog.example", true, true},
		{"preflight from unlisted origin", []string{"https://blog.example"}, http.MethodOptions, "https://evil.example", http.StatusNoContent, "", false, false},
		{"no origin header", []string{"*"}, http.MethodGet, "", http.StatusOK, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORSMiddleware(tt.allowed))
			r.Handle(tt.method, "/posts", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/posts", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowOrigin {
				t.Fatalf("allow-origin = %q, want %q", got, tt.wantAllowOrigin)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials") == "true"; got != tt.wantCredentials {
				t.Fatalf("credentials = %v, want %v", got, tt.wantCredentials)
			}
			if got := w.Header().Get("Access-Control-Allow-Methods") != ""; got != tt.wantPreflight {
				t.Fatalf("preflight headers = %v, want %v", got, tt.wantPreflight)
			}
			if tt.wantAllowOrigin != "" && w.Header().Get("Access-Control-Expose-Headers") == "" {
				t.Fatalf("expected exposed headers for ETag and Retry-After")
			}
			if tt.origin != "" && w.Header().Get("Vary") != "Origin" {
				t.Fatalf("expected Vary: Origin, got %q", w.Header().Get("Vary"))
			}
		})
	}
}
