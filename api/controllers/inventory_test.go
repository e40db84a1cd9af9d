package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iodacademy/lendstock-backend/internal/inventory"
	"github.com/iodacademy/lendstock-backend/pkg/db/models"
	"github.com/iodacademy/lendstock-backend/pkg/enums"
)

type testInventoryService struct {
	createFn func(ctx context.Context, input inventory.CreateInput) (*models.InventoryItem, error)
	updateFn func(ctx context.Context, input inventory.UpdateInput) (*models.InventoryItem, error)
}

func (s *testInventoryService) Create(ctx context.Context, input inventory.CreateInput) (*models.InventoryItem, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.InventoryItem{ID: uuid.New()}, nil
}

func (s *testInventoryService) Update(ctx context.Context, input inventory.UpdateInput) (*models.InventoryItem, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, input)
	}
	return &models.InventoryItem{ID: input.ItemID}, nil
}

func (s *testInventoryService) AdjustStock(ctx context.Context, input inventory.AdjustStockInput) (*models.InventoryItem, error) {
	return &models.InventoryItem{ID: input.ItemID}, nil
}

func (s *testInventoryService) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole enums.UserRole) (*inventory.DeleteResult, error) {
	return &inventory.DeleteResult{}, nil
}

func (s *testInventoryService) Get(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return &models.InventoryItem{ID: id}, nil
}

func (s *testInventoryService) List(ctx context.Context, params inventory.ListParams) (*inventory.ListResult, error) {
	return &inventory.ListResult{}, nil
}

func TestCreateItemTrimsNameAndLocation(t *testing.T) {
	var captured inventory.CreateInput
	svc := &testInventoryService{
		createFn: func(ctx context.Context, input inventory.CreateInput) (*models.InventoryItem, error) {
			captured = input
			return &models.InventoryItem{ID: uuid.New()}, nil
		},
	}

	body := `{"name":"  Soldering Iron  ","sku":"SI-001","category":"electronics","stock_qty":3,"location":" shelf B2 "}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleStaff)

	resp := httptest.NewRecorder()
	CreateItem(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", resp.Code, resp.Body.String())
	}
	if captured.Name != "Soldering Iron" {
		t.Fatalf("expected trimmed name got %q", captured.Name)
	}
	if captured.Location != "shelf B2" {
		t.Fatalf("expected trimmed location got %q", captured.Location)
	}
}

func TestUpdateItemTrimsName(t *testing.T) {
	itemID := uuid.New()
	var captured inventory.UpdateInput
	svc := &testInventoryService{
		updateFn: func(ctx context.Context, input inventory.UpdateInput) (*models.InventoryItem, error) {
			captured = input
			return &models.InventoryItem{ID: input.ItemID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/inventory/"+itemID.String(), strings.NewReader(`{"name":"  Bench PSU "}`))
	req.Header.Set("Content-Type", "application/json")
	req = withActor(req, uuid.New(), enums.UserRoleStaff)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("itemID", itemID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	UpdateItem(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	if captured.Name == nil || *captured.Name != "Bench PSU" {
		t.Fatalf("expected trimmed name got %v", captured.Name)
	}
}
