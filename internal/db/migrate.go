package db

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/repuestos-mp/backend/internal/models"
)

// ConnectAndMigrate opens the database and brings the schema up to date.
// With MIGRATIONS=1 the SQL files under ./migrations run via golang-migrate
// (postgres only); otherwise AutoMigrate keeps dev setups working. DB_SEED=1
// loads the demo catalog.
func ConnectAndMigrate(rawDSN string) (*gorm.DB, error) {
	dsn := NormalizeDSN(rawDSN)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN vacío, revise la configuración del entorno")
	}

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	if IsSQLiteDSN(dsn) {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	} else {
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if IsSQLiteDSN(dsn) {
			return nil, errors.New("MIGRATIONS=1 requiere postgres")
		}
		if err := RunSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range []interface{}{&models.Category{}, &models.Product{}, &models.Sale{}, &models.SaleItem{}} {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"categories", "products", "sales", "sale_items"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		if err := seed(db); err != nil {
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}
	return db, nil
}

// RunSQLMigrations executes migrations in ./migrations using the file source.
func RunSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", ToURLDSN(dsn))
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

var seedCategories = []string{"Filtros", "Aceites", "Frenos", "Eléctrico"}

var seedProducts = []models.Product{
	{Name: "Filtro de aceite W712", Category: "Filtros", Quantity: 25},
	{Name: "Filtro de aire C2345", Category: "Filtros", Quantity: 18},
	{Name: "Aceite 10W40 4L", Category: "Aceites", Quantity: 40},
	{Name: "Pastillas de freno delanteras", Category: "Frenos", Quantity: 12},
	{Name: "Batería 12V 65Ah", Category: "Eléctrico", Quantity: 6},
}

// seed loads the demo catalog. Idempotent: existing categories and products
// (matched by name) are left untouched.
func seed(db *gorm.DB) error {
	for _, name := range seedCategories {
		var existing models.Category
		if err := db.Where("name = ?", name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&models.Category{Name: name}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	for _, p := range seedProducts {
		var existing models.Product
		err := db.Where("name = ?", p.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := CreateProduct(db, &p); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// CreateProduct inserts a product and assigns its display code from the
// surrogate key, in one transaction.
func CreateProduct(db *gorm.DB, p *models.Product) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if p.Code == "" {
			p.Code = "TMP-" + uuid.NewString()
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		p.Code = models.FormatProductCode(p.ID)
		return tx.Model(p).Update("code", p.Code).Error
	})
}
