// internal/services/rating_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type RatingService struct {
	db    *gorm.DB
	authz *AuthorizationService
}

func NewRatingService(db *gorm.DB, authz *AuthorizationService) *RatingService {
	return &RatingService{db: db, authz: authz}
}

type RateProductRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type ProductRatingSummary struct {
	Average      float64         `json:"average"`
	Count        int64           `json:"count"`
	Distribution map[int]int64   `json:"distribution"`
	Ratings      []models.Rating `json:"ratings"`
}

// Rate records or updates the buyer's score for a product. One rating
// per (buyer, product); rating again overwrites the previous score.
func (s *RatingService) Rate(buyer *models.User, productID uuid.UUID, req *RateProductRequest) (*models.Rating, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	if decision := s.authz.Can(buyer, ActionRatingWrite, nil); !decision.Allowed {
		return nil, ErrUnauthorized
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var rating models.Rating
	err := s.db.Where("buyer_id = ? AND product_id = ?", buyer.ID, productID).First(&rating).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		rating = models.Rating{
			BuyerID:   buyer.ID,
			ProductID: productID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := s.db.Create(&rating).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		rating.Rating = req.Rating
		rating.Comment = req.Comment
		if err := s.db.Model(&rating).Updates(map[string]interface{}{
			"rating":  req.Rating,
			"comment": req.Comment,
		}).Error; err != nil {
			return nil, err
		}
	}

	return &rating, nil
}

// ProductSummary returns the ratings for a product with average and
// per-star distribution.
func (s *RatingService) ProductSummary(productID uuid.UUID) (*ProductRatingSummary, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	summary := &ProductRatingSummary{
		Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	if err := s.db.Preload("Buyer").Where("product_id = ?", productID).
		Order("created_at DESC").Find(&summary.Ratings).Error; err != nil {
		return nil, err
	}

	var sum int64
	for _, r := range summary.Ratings {
		summary.Count++
		sum += int64(r.Rating)
		summary.Distribution[r.Rating]++
	}
	if summary.Count > 0 {
		summary.Average = float64(sum) / float64(summary.Count)
	}

	return summary, nil
}

// FarmerAverage is the mean rating across all of a farmer's products.
func (s *RatingService) FarmerAverage(farmerID uuid.UUID) (float64, int64, error) {
	type result struct {
		Average float64
		Count   int64
	}
	var r result
	err := s.db.Model(&models.Rating{}).
		Joins("JOIN products ON products.id = ratings.product_id").
		Where("products.farmer_id = ?", farmerID).
		Select("COALESCE(AVG(ratings.rating), 0) as average, COUNT(*) as count").
		Scan(&r).Error
	if err != nil {
		return 0, 0, err
	}
	return r.Average, r.Count, nil
}
