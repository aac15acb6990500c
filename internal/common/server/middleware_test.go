package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ParkSmart/ParkSmart/internal/common/auth"
	"github.com/ParkSmart/ParkSmart/internal/common/config"
)

func authCfg() config.AuthConfig {
	return config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "test-secret",
		Issuer:      "parksmart",
		Audience:    "parksmart-web",
		PublicPaths: []string{"/healthz", "/api/login"},
	}
}

func echoSubject() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ai, ok := AuthFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(ai.Subject))
	})
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	h := JWTAuth(authCfg(), nil)(echoSubject())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthAllowsPublicPath(t *testing.T) {
	called := false
	h := JWTAuth(authCfg(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatalf("public path should bypass auth")
	}
}

func TestJWTAuthAcceptsValidBearer(t *testing.T) {
	cfg := authCfg()
	token, _, err := auth.GenerateAccessToken(cfg, "user-42", []string{"user"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	h := JWTAuth(cfg, nil)(echoSubject())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "user-42" {
		t.Fatalf("expected subject user-42, got %q", rec.Body.String())
	}
}

func TestJWTAuthRejectsGarbageToken(t *testing.T) {
	h := JWTAuth(authCfg(), nil)(echoSubject())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
