// internal/services/farmer_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type FarmerService struct {
	db      *gorm.DB
	ratings *RatingService
}

func NewFarmerService(db *gorm.DB, ratings *RatingService) *FarmerService {
	return &FarmerService{db: db, ratings: ratings}
}

type UpdateFarmerProfileRequest struct {
	BusinessName      string `json:"business_name" validate:"omitempty,max=255"`
	Location          string `json:"location" validate:"omitempty,max=255"`
	BusinessPermitURL string `json:"business_permit_url" validate:"omitempty,max=512"`
}

type FarmerDashboard struct {
	TotalProducts int64            `json:"total_products"`
	LowStockCount int64            `json:"low_stock_count"`
	TotalOrders   int64            `json:"total_orders"`
	PendingOrders int64            `json:"pending_orders"`
	TotalEarnings decimal.Decimal  `json:"total_earnings"`
	AverageRating float64          `json:"average_rating"`
	RatingCount   int64            `json:"rating_count"`
	RecentOrders  []models.Order   `json:"recent_orders"`
	LowStockItems []models.Product `json:"low_stock_items"`
}

const lowStockThreshold = 5

// Dashboard aggregates the farmer's storefront: inventory health,
// order pipeline, delivered earnings and buyer sentiment.
func (s *FarmerService) Dashboard(farmerID uuid.UUID) (*FarmerDashboard, error) {
	dashboard := &FarmerDashboard{TotalEarnings: decimal.Zero}

	if err := s.db.Model(&models.Product{}).
		Where("farmer_id = ?", farmerID).
		Count(&dashboard.TotalProducts).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Product{}).
		Where("farmer_id = ? AND stock <= ?", farmerID, lowStockThreshold).
		Count(&dashboard.LowStockCount).Error; err != nil {
		return nil, err
	}

	if err := s.db.Where("farmer_id = ? AND stock <= ?", farmerID, lowStockThreshold).
		Order("stock ASC").Limit(10).
		Find(&dashboard.LowStockItems).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Order{}).
		Where("farmer_id = ?", farmerID).
		Count(&dashboard.TotalOrders).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Order{}).
		Where("farmer_id = ? AND status = ?", farmerID, models.OrderStatusPending).
		Count(&dashboard.PendingOrders).Error; err != nil {
		return nil, err
	}

	var earnings decimal.NullDecimal
	err := s.db.Model(&models.Order{}).
		Where("farmer_id = ? AND status = ?", farmerID, models.OrderStatusDelivered).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&earnings).Error
	if err != nil {
		return nil, err
	}
	if earnings.Valid {
		dashboard.TotalEarnings = earnings.Decimal
	}

	if err := s.db.Preload("Buyer").Preload("Items.Product").
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").Limit(5).
		Find(&dashboard.RecentOrders).Error; err != nil {
		return nil, err
	}

	avg, count, err := s.ratings.FarmerAverage(farmerID)
	if err != nil {
		return nil, err
	}
	dashboard.AverageRating = avg
	dashboard.RatingCount = count

	return dashboard, nil
}

func (s *FarmerService) GetProfile(farmerID uuid.UUID) (*models.FarmerProfile, error) {
	var profile models.FarmerProfile
	if err := s.db.Preload("User").First(&profile, "user_id = ?", farmerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFarmerNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *FarmerService) UpdateProfile(farmerID uuid.UUID, req *UpdateFarmerProfileRequest) (*models.FarmerProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(farmerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.BusinessName != "" {
		updates["business_name"] = req.BusinessName
	}
	if req.Location != "" {
		updates["location"] = req.Location
	}
	if req.BusinessPermitURL != "" {
		updates["business_permit_url"] = req.BusinessPermitURL
	}

	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetProfile(farmerID)
}
