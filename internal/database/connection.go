// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if !cfg.IsProduction() {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	DB = db
	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.FarmerProfile{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Rating{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_farmer_id ON products(farmer_id)",
		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)",
		"CREATE INDEX IF NOT EXISTS idx_orders_buyer_id ON orders(buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_farmer_id ON orders(farmer_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)",
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", idx)
		}
	}

	logrus.Info("Database migrations completed")
	return nil
}

// SeedInitialData creates the bootstrap admin account when none exists.
func SeedInitialData(db *gorm.DB, adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{
		Name:   "Administrator",
		Email:  adminEmail,
		Role:   models.UserRoleAdmin,
		Status: models.UserStatusActive,
	}
	if err := admin.SetPassword(adminPassword); err != nil {
		return err
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logrus.WithField("email", adminEmail).Info("Seeded initial admin account")
	return nil
}

// WithTransaction runs fn inside a transaction, rolling back on error.
func WithTransaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}
