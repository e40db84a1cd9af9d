package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/api/middleware"
	"github.com/iodacademy/lendstock-backend/internal/notifications"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
	"github.com/iodacademy/lendstock-backend/pkg/logger"
)

type testNotificationsService struct {
	markReadFn    func(ctx context.Context, userID, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, userID uuid.UUID) (int64, error)
	listFn        func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
}

func (s *testNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return nil, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, userID, notificationID)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, userID)
	}
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withActor(req *http.Request, userID uuid.UUID, role enums.UserRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, uid, nid uuid.UUID) error {
			called = true
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", nil)
	req = withActor(req, userID, enums.UserRoleViewer)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("notificationID", notificationID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler := MarkNotificationRead(svc, testLogger())
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMarkNotificationReadRejectsMissingActor(t *testing.T) {
	svc := &testNotificationsService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+uuid.NewString()+"/read", nil)

	resp := httptest.NewRecorder()
	handler := MarkNotificationRead(svc, testLogger())
	handler(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMarkAllNotificationsReadReportsCount(t *testing.T) {
	userID := uuid.New()
	svc := &testNotificationsService{
		markAllReadFn: func(ctx context.Context, uid uuid.UUID) (int64, error) {
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			return 4, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", nil)
	req = withActor(req, userID, enums.UserRoleStaff)

	resp := httptest.NewRecorder()
	handler := MarkAllNotificationsRead(svc, testLogger())
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			Status  string `json:"status"`
			Updated int64  `json:"updated"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Updated != 4 {
		t.Fatalf("expected 4 updated got %d", envelope.Data.Updated)
	}
}

func TestListNotificationsParsesQuery(t *testing.T) {
	userID := uuid.New()
	var seen notifications.ListParams
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
			seen = params
			return &notifications.ListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=25&cursor=abc&unreadOnly=true", nil)
	req = withActor(req, userID, enums.UserRoleViewer)

	resp := httptest.NewRecorder()
	handler := ListNotifications(svc, testLogger())
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if seen.UserID != userID {
		t.Fatalf("unexpected user %s", seen.UserID)
	}
	if seen.Limit != 25 || seen.Cursor != "abc" || !seen.UnreadOnly {
		t.Fatalf("unexpected params %+v", seen)
	}
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	svc := &testNotificationsService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=zero", nil)
	req = withActor(req, uuid.New(), enums.UserRoleViewer)

	resp := httptest.NewRecorder()
	handler := ListNotifications(svc, testLogger())
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
