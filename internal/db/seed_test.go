package db

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/repuestos-mp/backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.AutoMigrate(&models.Category{}, &models.Product{}, &models.Sale{}, &models.SaleItem{}); err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSeedIdempotent(t *testing.T) {
	d := openTestDB(t)
	if err := seed(d); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := seed(d); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	var catCount, prodCount int64
	d.Model(&models.Category{}).Count(&catCount)
	d.Model(&models.Product{}).Count(&prodCount)
	if catCount != int64(len(seedCategories)) {
		t.Fatalf("categories duplicated or missing: %d", catCount)
	}
	if prodCount != int64(len(seedProducts)) {
		t.Fatalf("products duplicated or missing: %d", prodCount)
	}
	// Every seeded product must carry a generated display code.
	var products []models.Product
	d.Find(&products)
	for _, p := range products {
		if !strings.HasPrefix(p.Code, models.ProductCodePrefix+"-") {
			t.Fatalf("product %q has unassigned code %q", p.Name, p.Code)
		}
	}
}

func TestCreateProductAssignsCode(t *testing.T) {
	d := openTestDB(t)
	p := models.Product{Name: "Filtro de prueba", Category: "Filtros", Quantity: 3}
	if err := CreateProduct(d, &p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.Code != models.FormatProductCode(p.ID) {
		t.Fatalf("code %s does not match id %d", p.Code, p.ID)
	}
	var reloaded models.Product
	if err := d.First(&reloaded, p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Code != p.Code {
		t.Fatalf("persisted code mismatch: %s vs %s", reloaded.Code, p.Code)
	}
}
