// internal/services/checkout_service.go
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

// CheckoutService turns a multi-farmer cart into orders. The whole
// submission commits or rolls back as one unit: if any line cannot be
// reserved, no stock moves and no order is created.
type CheckoutService struct {
	db      *gorm.DB
	authz   *AuthorizationService
	payment *PaymentService
}

func NewCheckoutService(db *gorm.DB, authz *AuthorizationService, payment *PaymentService) *CheckoutService {
	return &CheckoutService{db: db, authz: authz, payment: payment}
}

type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type SellerGroup struct {
	FarmerID        uuid.UUID      `json:"farmer_id" validate:"required"`
	PaymentMethod   string         `json:"payment_method" validate:"required,oneof=credit_card debit_card cod bank_transfer"`
	DeliveryAddress string         `json:"delivery_address" validate:"required,max=512"`
	Items           []CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

type CheckoutRequest struct {
	Orders []SellerGroup `json:"orders" validate:"required,min=1,dive"`
}

// Checkout reserves stock and creates one order per farmer inside a
// single transaction. Unit prices are read from the product rows, never
// from the client. Card payments are initiated after commit so a payment
// gateway hiccup cannot leave stock half-reserved.
func (s *CheckoutService) Checkout(buyer *models.User, req *CheckoutRequest) ([]models.Order, error) {
	if decision := s.authz.Can(buyer, ActionOrderCreate, nil); !decision.Allowed {
		if buyer != nil && buyer.IsBuyer() && !buyer.IsActive() {
			return nil, ErrAccountInactive
		}
		return nil, ErrUnauthorized
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var orders []models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		orders = orders[:0]

		for _, group := range req.Orders {
			var farmer models.User
			if err := tx.First(&farmer, "id = ? AND role = ?", group.FarmerID, models.UserRoleFarmer).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrFarmerNotFound
				}
				return err
			}

			order := models.Order{
				BuyerID:         buyer.ID,
				FarmerID:        group.FarmerID,
				Status:          models.OrderStatusPending,
				PaymentMethod:   models.PaymentMethod(group.PaymentMethod),
				DeliveryAddress: group.DeliveryAddress,
			}

			total := decimal.Zero
			items := make([]models.OrderItem, 0, len(group.Items))

			for _, line := range group.Items {
				var product models.Product
				if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return ErrProductNotFound
					}
					return err
				}
				if product.FarmerID != group.FarmerID {
					return ErrProductNotFound
				}

				reserved, err := reserveStock(tx, product.ID, line.Quantity)
				if err != nil {
					return err
				}
				if !reserved {
					return &InsufficientStockError{ProductName: product.Name}
				}

				item := models.OrderItem{
					ProductID: product.ID,
					Quantity:  line.Quantity,
					UnitPrice: product.Price,
				}
				total = total.Add(item.LineTotal())
				items = append(items, item)
			}

			order.TotalAmount = total
			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			for i := range items {
				items[i].OrderID = order.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}

			order.Items = items
			orders = append(orders, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range orders {
		if ref, err := s.payment.InitiatePayment(&orders[i]); err != nil {
			logrus.WithError(err).WithField("order_id", orders[i].ID).Warn("Payment initiation failed")
		} else if ref != "" {
			if err := s.db.Model(&orders[i]).Update("payment_ref", ref).Error; err == nil {
				orders[i].PaymentRef = ref
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"buyer_id": buyer.ID,
		"orders":   len(orders),
	}).Info("Checkout completed")

	return orders, nil
}
