package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/repuestos-mp/backend/internal/models"
)

func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.Sale{}, &models.SaleItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, zaptest.NewLogger(t)), db
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := setupRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/api/health expected 200 got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] == "" || body["timestamp"] == "" {
		t.Fatalf("expected message and timestamp: %v", body)
	}

	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w2.Code != http.StatusOK {
		t.Fatalf("/healthz expected 200 got %d", w2.Code)
	}
}

func TestSaleRoutesEndToEnd(t *testing.T) {
	h, db := setupRouter(t)

	p := models.Product{Code: "REP-000001", Name: "Filter", Category: "Filtros", Quantity: 10}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	// Create through the router.
	req := httptest.NewRequest(http.MethodPost, "/api/sales", strings.NewReader(`{"items":[{"product_id":"REP-000001","quantity":2,"unit_price":25}]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var sale models.Sale
	if err := json.Unmarshal(w.Body.Bytes(), &sale); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Detail via path parameter.
	dw := httptest.NewRecorder()
	h.ServeHTTP(dw, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/sales/%d", sale.ID), nil))
	if dw.Code != http.StatusOK {
		t.Fatalf("detail expected 200 got %d", dw.Code)
	}

	// Listing.
	lw := httptest.NewRecorder()
	h.ServeHTTP(lw, httptest.NewRequest(http.MethodGet, "/api/sales", nil))
	if lw.Code != http.StatusOK {
		t.Fatalf("list expected 200 got %d", lw.Code)
	}

	// Wrong method on the collection.
	mw := httptest.NewRecorder()
	h.ServeHTTP(mw, httptest.NewRequest(http.MethodDelete, "/api/sales", nil))
	if mw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", mw.Code)
	}
}
