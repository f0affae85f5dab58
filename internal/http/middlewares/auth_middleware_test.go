package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/blogspace/internal/actorctx"
	"github.com/geocoder89/blogspace/internal/auth"
	"github.com/gin-gonic/gin"
)

type fakeVerifier struct {
	claims *auth.Claims
	err    error
}

func (f fakeVerifier) VerifyAccessToken(string) (*auth.Claims, error) {
	return f.claims, f.err
}

func TestAuthenticate(t *testing.T) {
	valid := fakeVerifier{claims: &auth.Claims{UserID: "u-1", Name: "Ada", Email: "ada@example.com"}}
	invalid := fakeVerifier{err: errors.New("expired")}

	tests := []struct {
		name      string
		verifier  fakeVerifier
		header    string
		wantID    string
		wantActor bool
	}{
		{"no header", valid, "", "", false},
		{"wrong scheme", valid, "Basic abc", "", false},
		{"empty token", valid, "Bearer   ", "", false},
		{"invalid token", invalid, "Bearer abc", "", false},
		{"valid token", valid, "Bearer abc", "u-1", true},
		{"lowercase scheme", valid, "bearer abc", "u-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(tt.verifier)

			var (
				gotID    string
				gotActor bool
			)

			r := gin.New()
			r.GET("/", m.Authenticate(), func(c *gin.Context) {
				if id, ok := IdentityFromContext(c); ok {
					gotID = id.ID
				}
				_, gotActor = actorctx.UserIDFrom(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Authenticate must not reject, got %d", w.Code)
			}
			if gotID != tt.wantID {
				t.Fatalf("identity id = %q, want %q", gotID, tt.wantID)
			}
			if gotActor != tt.wantActor {
				t.Fatalf("actor on context = %v, want %v", gotActor, tt.wantActor)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(fakeVerifier{claims: &auth.Claims{UserID: "u-1"}})

	r := gin.New()
	r.GET("/me", m.Authenticate(), m.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: got %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer ok")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated: got %d, want 200", w.Code)
	}
}
