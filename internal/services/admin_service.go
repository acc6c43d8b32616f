// internal/services/admin_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

type AdminDashboard struct {
	TotalUsers      int64           `json:"total_users"`
	TotalBuyers     int64           `json:"total_buyers"`
	TotalFarmers    int64           `json:"total_farmers"`
	PendingFarmers  int64           `json:"pending_farmers"`
	TotalProducts   int64           `json:"total_products"`
	TotalOrders     int64           `json:"total_orders"`
	OrdersByStatus  map[string]int64 `json:"orders_by_status"`
	PlatformRevenue decimal.Decimal `json:"platform_revenue"`
}

type UpdateStockRequest struct {
	Stock int `json:"stock" validate:"min=0"`
}

// ListFarmers returns farmer accounts with their profiles, optionally
// filtered by status (pending applications are the common case).
func (s *AdminService) ListFarmers(status string, params utils.PaginationParams) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{}).Where("role = ?", models.UserRoleFarmer)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name", "status"})
	query = utils.ApplyPagination(query, params)

	var farmers []models.User
	if err := query.Preload("FarmerProfile").Find(&farmers).Error; err != nil {
		return nil, 0, err
	}
	return farmers, total, nil
}

// ApproveFarmer activates a pending farmer application.
func (s *AdminService) ApproveFarmer(farmerID uuid.UUID) (*models.User, error) {
	return s.reviewFarmer(farmerID, models.UserStatusActive)
}

// RejectFarmer declines a pending farmer application.
func (s *AdminService) RejectFarmer(farmerID uuid.UUID) (*models.User, error) {
	return s.reviewFarmer(farmerID, models.UserStatusRejected)
}

func (s *AdminService) reviewFarmer(farmerID uuid.UUID, status models.UserStatus) (*models.User, error) {
	var farmer models.User
	err := s.db.Preload("FarmerProfile").
		First(&farmer, "id = ? AND role = ?", farmerID, models.UserRoleFarmer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, err
	}

	if err := s.db.Model(&farmer).Update("status", status).Error; err != nil {
		return nil, err
	}
	farmer.Status = status

	logrus.WithFields(logrus.Fields{
		"farmer_id": farmer.ID,
		"status":    status,
	}).Info("Farmer application reviewed")

	return &farmer, nil
}

// DeleteFarmer removes a farmer account with its profile and products.
// Orders are kept for the buyers' history.
func (s *AdminService) DeleteFarmer(farmerID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var farmer models.User
		err := tx.First(&farmer, "id = ? AND role = ?", farmerID, models.UserRoleFarmer).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFarmerNotFound
			}
			return err
		}

		if err := tx.Where("user_id = ?", farmerID).Delete(&models.FarmerProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("farmer_id = ?", farmerID).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		return tx.Delete(&farmer).Error
	})
}

// UpdateProductStock sets a product's stock directly, bypassing the
// reservation path. Intended for inventory corrections.
func (s *AdminService) UpdateProductStock(productID uuid.UUID, req *UpdateStockRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := s.db.Model(&product).Update("stock", req.Stock).Error; err != nil {
		return nil, err
	}
	product.Stock = req.Stock
	return &product, nil
}

type ProductStats struct {
	TotalProducts   int64            `json:"total_products"`
	OutOfStock      int64            `json:"out_of_stock"`
	LowStock        int64            `json:"low_stock"`
	TotalStockUnits int64            `json:"total_stock_units"`
	ByCategory      map[string]int64 `json:"by_category"`
}

// ProductStats summarizes catalog inventory health for moderation.
func (s *AdminService) ProductStats() (*ProductStats, error) {
	stats := &ProductStats{ByCategory: make(map[string]int64)}

	if err := s.db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Product{}).Where("stock = 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Product{}).
		Where("stock > 0 AND stock <= ?", lowStockThreshold).
		Count(&stats.LowStock).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Product{}).
		Select("COALESCE(SUM(stock), 0)").Scan(&stats.TotalStockUnits).Error; err != nil {
		return nil, err
	}

	type categoryCount struct {
		Category string
		Count    int64
	}
	var byCategory []categoryCount
	if err := s.db.Model(&models.Product{}).
		Select("category, COUNT(*) as count").Group("category").
		Scan(&byCategory).Error; err != nil {
		return nil, err
	}
	for _, cc := range byCategory {
		stats.ByCategory[cc.Category] = cc.Count
	}

	return stats, nil
}

// Dashboard aggregates platform-wide counts for the admin overview.
func (s *AdminService) Dashboard() (*AdminDashboard, error) {
	dashboard := &AdminDashboard{
		OrdersByStatus:  make(map[string]int64),
		PlatformRevenue: decimal.Zero,
	}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&dashboard.TotalUsers, s.db.Model(&models.User{})},
		{&dashboard.TotalBuyers, s.db.Model(&models.User{}).Where("role = ?", models.UserRoleBuyer)},
		{&dashboard.TotalFarmers, s.db.Model(&models.User{}).Where("role = ?", models.UserRoleFarmer)},
		{&dashboard.PendingFarmers, s.db.Model(&models.User{}).Where("role = ? AND status = ?", models.UserRoleFarmer, models.UserStatusPending)},
		{&dashboard.TotalProducts, s.db.Model(&models.Product{})},
		{&dashboard.TotalOrders, s.db.Model(&models.Order{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var byStatus []statusCount
	if err := s.db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").Group("status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, sc := range byStatus {
		dashboard.OrdersByStatus[sc.Status] = sc.Count
	}

	var revenue decimal.NullDecimal
	err := s.db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusDelivered).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		dashboard.PlatformRevenue = revenue.Decimal
	}

	return dashboard, nil
}
