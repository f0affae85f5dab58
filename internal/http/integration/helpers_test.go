package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/blogspace/internal/config"
	"github.com/geocoder89/blogspace/internal/credentials"
	apphttp "github.com/geocoder89/blogspace/internal/http"
	"github.com/geocoder89/blogspace/internal/storage"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		StorageDriver:       config.DriverMemory,
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		MaxBodyBytes:        1 << 20,
		LoginRateLimit:      1000,
		WriteRateLimit:      1000,
		OTelServiceName:     "blogspace-test",
	}
}

func setupRouter(t *testing.T, backend *storage.Backend, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return apphttp.NewRouter(logger, apphttp.Deps{
		Backend:     backend,
		Credentials: credentials.NewStore(backend.Accounts, credentials.WithCost(bcrypt.MinCost)),
	}, cfg)
}

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	Account     struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"account"`
}

// signUp registers an account and returns its access token and id.
func signUp(t *testing.T, r http.Handler, name, email string) (string, string) {
	t.Helper()

	w := doRequest(r, http.MethodPost, "/accounts",
		`{"name":"`+name+`","email":"`+email+`","password":"secret1"}`, "")
	expectStatus(t, w, http.StatusCreated)

	w = doRequest(r, http.MethodPost, "/auth/login",
		`{"email":"`+email+`","password":"secret1"}`, "")
	expectStatus(t, w, http.StatusOK)

	var resp loginResponse
	mustReadJSON(t, w, &resp)
	if resp.AccessToken == "" {
		t.Fatalf("empty access token")
	}

	return resp.AccessToken, resp.Account.ID
}

var longContent = strings.Repeat("Gophers like small interfaces and plain structs. ", 2)

func doRequestRaw(router http.Handler, method, path, body, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	mustReadJSON(t, w, &resp)
	return resp.Error.Code
}
