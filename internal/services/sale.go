package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/repuestos-mp/backend/internal/models"
)

// ErrNoItems is returned when a sale is requested with an empty item list.
// The HTTP layer rejects this earlier; the service keeps its own guard.
var ErrNoItems = errors.New("la venta no contiene items")

// ProductNotFoundError aborts the whole sale when an item references a
// product code that does not exist.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Producto %s no encontrado", e.ProductID)
}

// InsufficientStockError aborts the whole sale when an item asks for more
// units than the product has on hand. The message is user-facing.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Stock insuficiente para %s. Disponible: %d, Solicitado: %d", e.ProductName, e.Available, e.Requested)
}

// SaleItemInput is one requested line of a sale. UnitPrice defaults to 0
// when the caller omits it.
type SaleItemInput struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type SaleService struct{ DB *gorm.DB }

func NewSaleService(db *gorm.DB) *SaleService { return &SaleService{DB: db} }

// CreateSale commits a fully consistent sale (header + line items + stock
// decrements) or nothing. Items are processed in input order inside one
// transaction, so a decrement for an earlier line is visible to a later
// line's stock check on the same product.
func (s *SaleService) CreateSale(ctx context.Context, items []SaleItemInput) (*models.Sale, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	totalItems := 0
	for _, it := range items {
		totalItems += it.Quantity
	}

	var saleID uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The real sale number is derived from the surrogate key, which is
		// unknown until after the insert; a transient unique placeholder
		// keeps concurrent inserts from colliding on the unique index.
		sale := models.Sale{SaleNumber: "TMP-" + uuid.NewString(), TotalItems: totalItems}
		if err := tx.Create(&sale).Error; err != nil {
			return fmt.Errorf("crear venta: %w", err)
		}
		if err := tx.Model(&sale).Update("sale_number", models.FormatSaleNumber(sale.ID)).Error; err != nil {
			return fmt.Errorf("asignar número de venta: %w", err)
		}

		for _, it := range items {
			var product models.Product
			q := tx
			if tx.Dialector.Name() == "postgres" {
				// Row lock held until commit so concurrent sales cannot both
				// pass the stock check. SQLite serializes writers on its own
				// and rejects FOR UPDATE.
				q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
			}
			if err := q.Where("code = ?", it.ProductID).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ProductNotFoundError{ProductID: it.ProductID}
				}
				return fmt.Errorf("leer producto %s: %w", it.ProductID, err)
			}
			if product.Quantity < it.Quantity {
				return &InsufficientStockError{ProductName: product.Name, Available: product.Quantity, Requested: it.Quantity}
			}

			item := models.SaleItem{
				SaleID:      sale.ID,
				ProductID:   product.Code,
				ProductName: product.Name,
				Category:    product.Category,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TotalPrice:  round2(it.UnitPrice * float64(it.Quantity)),
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("crear item de venta: %w", err)
			}

			// Guarded decrement: even under a misconfigured isolation level
			// the counter can never commit negative.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND quantity >= ?", product.ID, it.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", it.Quantity))
			if res.Error != nil {
				return fmt.Errorf("descontar stock de %s: %w", product.Code, res.Error)
			}
			if res.RowsAffected == 0 {
				if err := tx.Where("id = ?", product.ID).First(&product).Error; err != nil {
					return fmt.Errorf("releer producto %s: %w", it.ProductID, err)
				}
				return &InsufficientStockError{ProductName: product.Name, Available: product.Quantity, Requested: it.Quantity}
			}
		}

		saleID = sale.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, saleID)
}

// GetByID loads a sale with its line items in creation order. Returns
// gorm.ErrRecordNotFound (wrapped) when the sale does not exist.
func (s *SaleService) GetByID(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sale_items.id") }).
		First(&sale, id).Error
	if err != nil {
		return nil, fmt.Errorf("leer venta %d: %w", id, err)
	}
	return &sale, nil
}

// SaleFilters narrows and pages the sale history listing.
type SaleFilters struct {
	Search    string
	StartDate time.Time
	EndDate   time.Time
	Page      int
	Limit     int
}

// SaleSummary is one history row with its per-sale aggregates.
type SaleSummary struct {
	ID          uint      `json:"id"`
	SaleNumber  string    `json:"sale_number"`
	TotalItems  int       `json:"total_items"`
	ItemsCount  int64     `json:"items_count"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SaleList struct {
	Sales      []SaleSummary `json:"sales"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
}

// List returns the paginated sale history, newest first.
func (s *SaleService) List(ctx context.Context, f SaleFilters) (*SaleList, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 10
	}

	q := s.DB.WithContext(ctx).Model(&models.Sale{})
	if f.Search != "" {
		q = q.Where("sale_number LIKE ?", "%"+f.Search+"%")
	}
	if !f.StartDate.IsZero() {
		q = q.Where("sales.created_at >= ?", f.StartDate)
	}
	if !f.EndDate.IsZero() {
		q = q.Where("sales.created_at <= ?", f.EndDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("contar ventas: %w", err)
	}

	summaries := make([]SaleSummary, 0, f.Limit)
	err := q.
		Select("sales.id, sales.sale_number, sales.total_items, sales.created_at, sales.updated_at, COUNT(sale_items.id) AS items_count, COALESCE(SUM(sale_items.total_price), 0) AS total_amount").
		Joins("LEFT JOIN sale_items ON sale_items.sale_id = sales.id").
		Group("sales.id").
		Order("sales.created_at DESC").
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("listar ventas: %w", err)
	}

	return &SaleList{
		Sales:      summaries,
		Total:      total,
		Page:       f.Page,
		TotalPages: int(math.Ceil(float64(total) / float64(f.Limit))),
	}, nil
}

// round2 keeps money at 2 decimal places so total_price carries no float
// drift past centavos.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
