// internal/services/product_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type ProductService struct {
	db    *gorm.DB
	authz *AuthorizationService
}

func NewProductService(db *gorm.DB, authz *AuthorizationService) *ProductService {
	return &ProductService{db: db, authz: authz}
}

type CreateProductRequest struct {
	Name           string          `json:"name" validate:"required,min=2,max=255"`
	Description    string          `json:"description" validate:"max=5000"`
	Price          decimal.Decimal `json:"price" validate:"positive_price"`
	Stock          int             `json:"stock" validate:"min=0"`
	Category       string          `json:"category" validate:"required,max=100"`
	Unit           string          `json:"unit" validate:"max=50"`
	Origin         string          `json:"origin" validate:"max=255"`
	HarvestDate    *time.Time      `json:"harvest_date"`
	ExpirationDate *time.Time      `json:"expiration_date"`
	Certification  string          `json:"certification" validate:"max=255"`
	Features       string          `json:"features" validate:"max=5000"`
	ImageURL       string          `json:"image_url" validate:"max=512"`
}

type UpdateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=2,max=255"`
	Description    *string          `json:"description" validate:"omitempty,max=5000"`
	Price          *decimal.Decimal `json:"price" validate:"omitempty,positive_price"`
	Stock          *int             `json:"stock" validate:"omitempty,min=0"`
	Category       *string          `json:"category" validate:"omitempty,max=100"`
	Unit           *string          `json:"unit" validate:"omitempty,max=50"`
	Origin         *string          `json:"origin" validate:"omitempty,max=255"`
	HarvestDate    *time.Time       `json:"harvest_date"`
	ExpirationDate *time.Time       `json:"expiration_date"`
	Certification  *string          `json:"certification" validate:"omitempty,max=255"`
	Features       *string          `json:"features" validate:"omitempty,max=5000"`
	ImageURL       *string          `json:"image_url" validate:"omitempty,max=512"`
}

type ProductFilters struct {
	FarmerID  *uuid.UUID
	Category  string
	Search    string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	InStock   bool
}

func (s *ProductService) Create(farmer *models.User, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	if decision := s.authz.Can(farmer, ActionProductCreate, nil); !decision.Allowed {
		if !farmer.IsActive() {
			return nil, ErrAccountInactive
		}
		return nil, ErrUnauthorized
	}

	product := &models.Product{
		FarmerID:       farmer.ID,
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Stock:          req.Stock,
		Category:       req.Category,
		Unit:           req.Unit,
		Origin:         req.Origin,
		HarvestDate:    req.HarvestDate,
		ExpirationDate: req.ExpirationDate,
		Certification:  req.Certification,
		Features:       req.Features,
		ImageURL:       req.ImageURL,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"farmer_id":  farmer.ID,
	}).Info("Product created")

	return product, nil
}

func (s *ProductService) GetByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Farmer").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Update(actor *models.User, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if decision := s.authz.Can(actor, ActionProductUpdate, product); !decision.Allowed {
		return nil, ErrUnauthorized
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.Origin != nil {
		updates["origin"] = *req.Origin
	}
	if req.HarvestDate != nil {
		updates["harvest_date"] = *req.HarvestDate
	}
	if req.ExpirationDate != nil {
		updates["expiration_date"] = *req.ExpirationDate
	}
	if req.Certification != nil {
		updates["certification"] = *req.Certification
	}
	if req.Features != nil {
		updates["features"] = *req.Features
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetByID(id)
}

func (s *ProductService) Delete(actor *models.User, id uuid.UUID) error {
	product, err := s.GetByID(id)
	if err != nil {
		return err
	}

	if decision := s.authz.Can(actor, ActionProductDelete, product); !decision.Allowed {
		return ErrUnauthorized
	}

	return s.db.Delete(product).Error
}

// Search lists products with filters, sorting and pagination. Public
// listings use InStock; farmer and admin views pass their own filters.
func (s *ProductService) Search(filters ProductFilters, params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if filters.FarmerID != nil {
		query = query.Where("farmer_id = ?", *filters.FarmerID)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.InStock {
		query = query.Where("stock > 0")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = utils.ApplySort(query, params, []string{"created_at", "price", "name", "stock"})
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Preload("Farmer").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// TopProducts returns the best sellers by delivered quantity.
func (s *ProductService) TopProducts(limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var ids []uuid.UUID
	err := s.db.Model(&models.OrderItem{}).
		Select("order_items.product_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.OrderStatusDelivered).
		Group("order_items.product_id").
		Order("SUM(order_items.quantity) DESC").
		Limit(limit).
		Pluck("order_items.product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var products []models.Product
	if err := s.db.Preload("Farmer").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// reserveStock decrements stock only when enough remains, in one guarded
// UPDATE. RowsAffected == 0 means another buyer got there first or the
// product vanished; the caller distinguishes the two.
func reserveStock(tx *gorm.DB, productID uuid.UUID, quantity int) (bool, error) {
	result := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// releaseStock returns previously reserved quantity to the product. A
// missing product is not an error: the farmer may have delisted it after
// the order was placed.
func releaseStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity)).Error
}
