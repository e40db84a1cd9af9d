package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/internal/auth"
	pkgAuth "github.com/iodacademy/lendstock-backend/pkg/auth"
	"github.com/iodacademy/lendstock-backend/pkg/auth/session"
	"github.com/iodacademy/lendstock-backend/pkg/config"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

func sessionTestJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
}

func mintSessionToken(t *testing.T, cfg config.JWTConfig) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "member@iod.academy",
		Role:   enums.UserRoleStaff,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	return token, accessID
}

func TestAuthRefreshPassesBothTokens(t *testing.T) {
	cfg := sessionTestJWTConfig()
	token, _ := mintSessionToken(t, cfg)

	var seen auth.RefreshRequest
	svc := &testAuthService{
		refreshFn: func(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
			seen = req
			return &auth.RefreshResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}

	body := bytes.NewBufferString(`{"refresh_token":"old-refresh"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	AuthRefresh(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d body %s", resp.Code, resp.Body.String())
	}
	if seen.AccessToken != token {
		t.Fatal("expected bearer token forwarded to the service")
	}
	if seen.RefreshToken != "old-refresh" {
		t.Fatalf("unexpected refresh token %q", seen.RefreshToken)
	}
}

func TestAuthRefreshRequiresBearerToken(t *testing.T) {
	svc := &testAuthService{
		refreshFn: func(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
			t.Fatal("service must not be reached")
			return nil, nil
		},
	}

	body := bytes.NewBufferString(`{"refresh_token":"old-refresh"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", body)
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	AuthRefresh(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRefreshRequiresRefreshToken(t *testing.T) {
	cfg := sessionTestJWTConfig()
	token, _ := mintSessionToken(t, cfg)
	svc := &testAuthService{}

	body := bytes.NewBufferString(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	AuthRefresh(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	cfg := sessionTestJWTConfig()
	token, accessID := mintSessionToken(t, cfg)

	var revoked string
	svc := &testAuthService{
		logoutFn: func(ctx context.Context, id string) error {
			revoked = id
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	AuthLogout(svc, cfg, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d body %s", resp.Code, resp.Body.String())
	}
	if revoked != accessID {
		t.Fatalf("expected revoked session %s got %s", accessID, revoked)
	}
}

func TestAuthLogoutAcceptsExpiredToken(t *testing.T) {
	cfg := sessionTestJWTConfig()
	accessID := session.NewAccessID()
	expired, err := pkgAuth.MintAccessToken(cfg, time.Now().Add(-time.Hour), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "member@iod.academy",
		Role:   enums.UserRoleStaff,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	var revoked string
	svc := &testAuthService{
		logoutFn: func(ctx context.Context, id string) error {
			revoked = id
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+expired)

	resp := httptest.NewRecorder()
	AuthLogout(svc, cfg, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d body %s", resp.Code, resp.Body.String())
	}
	if revoked != accessID {
		t.Fatalf("expected revoked session %s got %s", accessID, revoked)
	}
}

func TestAuthLogoutRejectsGarbageToken(t *testing.T) {
	cfg := sessionTestJWTConfig()
	svc := &testAuthService{
		logoutFn: func(ctx context.Context, id string) error {
			t.Fatal("service must not be reached")
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	resp := httptest.NewRecorder()
	AuthLogout(svc, cfg, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
