package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/repuestos-mp/backend/internal/httpx"
	"github.com/repuestos-mp/backend/internal/services"
)

const msgInternalError = "Error interno del servidor"

type SaleHandler struct {
	Svc *services.SaleService
}

func NewSaleHandler(svc *services.SaleService) *SaleHandler { return &SaleHandler{Svc: svc} }

// Create: POST /api/sales
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []services.SaleItemInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if len(req.Items) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "Se requiere al menos un producto para la venta")
		return
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "Todos los productos deben tener ID y cantidad válida")
			return
		}
	}

	sale, err := h.Svc.CreateSale(r.Context(), req.Items)
	if err != nil {
		var stockErr *services.InsufficientStockError
		if errors.As(err, &stockErr) {
			httpx.JSONError(w, http.StatusBadRequest, stockErr.Error())
			return
		}
		// A missing product also lands here and surfaces as a 500; that is
		// the documented behavior of the service being replaced.
		httpx.JSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

// List: GET /api/sales
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	f := services.SaleFilters{
		Search: r.URL.Query().Get("search"),
		Page:   1,
		Limit:  10,
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			f.Limit = n
		}
	}
	if v := r.URL.Query().Get("startDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.StartDate = t
		}
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.EndDate = t
		}
	}

	list, err := h.Svc.List(r.Context(), f)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// GetByID: GET /api/sales/{id}
func (h *SaleHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusNotFound, "Venta no encontrada")
		return
	}
	sale, err := h.Svc.GetByID(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Venta no encontrada")
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
