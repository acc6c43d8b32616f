// internal/services/service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

// setupTestDB opens an isolated in-memory SQLite database. A single
// connection keeps concurrent tests from tripping over SQLITE_BUSY.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.FarmerProfile{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Rating{},
		&models.AuditLog{},
	))

	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			ExpirationHours: 1,
			RefreshHours:    24,
		},
		Payment: config.PaymentConfig{Currency: "php"},
	}
}

func createUser(t *testing.T, db *gorm.DB, role models.UserRole, status models.UserStatus) *models.User {
	t.Helper()

	user := &models.User{
		Name:   fmt.Sprintf("%s-%s", role, uuid.New().String()[:8]),
		Email:  fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		Role:   role,
		Status: status,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createBuyer(t *testing.T, db *gorm.DB) *models.User {
	return createUser(t, db, models.UserRoleBuyer, models.UserStatusActive)
}

func createFarmer(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	farmer := createUser(t, db, models.UserRoleFarmer, models.UserStatusActive)
	require.NoError(t, db.Create(&models.FarmerProfile{
		UserID:       farmer.ID,
		BusinessName: "Test Farm",
		Location:     "Benguet",
	}).Error)
	return farmer
}

func createAdmin(t *testing.T, db *gorm.DB) *models.User {
	return createUser(t, db, models.UserRoleAdmin, models.UserStatusActive)
}

func createProduct(t *testing.T, db *gorm.DB, farmerID uuid.UUID, price string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		FarmerID: farmerID,
		Name:     fmt.Sprintf("product-%s", uuid.New().String()[:8]),
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: "vegetables",
		Unit:     "kg",
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func productStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func newCheckoutService(db *gorm.DB) *CheckoutService {
	return NewCheckoutService(db, NewAuthorizationService(), NewPaymentService(testConfig()))
}

func defaultParams() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}
