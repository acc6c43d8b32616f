// internal/services/order_service.go
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

type OrderService struct {
	db    *gorm.DB
	authz *AuthorizationService
}

func NewOrderService(db *gorm.DB, authz *AuthorizationService) *OrderService {
	return &OrderService{db: db, authz: authz}
}

type OrderFilters struct {
	Status string
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

type OrderStats struct {
	TotalOrders   int64            `json:"total_orders"`
	PendingOrders int64            `json:"pending_orders"`
	TotalRevenue  decimal.Decimal  `json:"total_revenue"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// transitionOrder flips the order's status only when the row still holds
// the status the decision was made against, mirroring the guarded stock
// decrement. RowsAffected == 0 means a concurrent writer won the race
// and the caller must not act on its stale read.
func transitionOrder(tx *gorm.DB, orderID uuid.UUID, from, to models.OrderStatus) (bool, error) {
	result := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListForActor returns the orders the actor is a party to: buyers see
// their purchases, farmers their sales, admins everything.
func (s *OrderService) ListForActor(actor *models.User, filters OrderFilters, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{})

	switch {
	case actor.IsBuyer():
		query = query.Where("buyer_id = ?", actor.ID)
	case actor.IsFarmer():
		query = query.Where("farmer_id = ?", actor.ID)
	case actor.IsAdmin():
		// no scoping
	default:
		return nil, 0, ErrUnauthorized
	}

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = utils.ApplySort(query, params, []string{"created_at", "total_amount", "status"})
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Preload("Items.Product").Preload("Buyer").Preload("Farmer").Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (s *OrderService) GetByID(actor *models.User, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items.Product").Preload("Buyer").Preload("Farmer").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if decision := s.authz.Can(actor, ActionOrderView, &order); !decision.Allowed {
		return nil, ErrUnauthorized
	}

	return &order, nil
}

// Cancel lets the buyer withdraw a pending order. Reserved stock goes
// back to the products in the same transaction that flips the status.
// Once a farmer starts processing, cancellation is no longer possible.
func (s *OrderService) Cancel(actor *models.User, id uuid.UUID) (*models.Order, error) {
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if decision := s.authz.Can(actor, ActionOrderCancel, &order); !decision.Allowed {
			return ErrUnauthorized
		}

		if order.Status != models.OrderStatusPending {
			return ErrInvalidTransition
		}

		won, err := transitionOrder(tx, order.ID, models.OrderStatusPending, models.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !won {
			return ErrInvalidTransition
		}

		// Stock goes back only on the write that won the guard, so a
		// racing cancel can never release the same reservation twice.
		for _, item := range order.Items {
			if err := releaseStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		order.Status = models.OrderStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"buyer_id": order.BuyerID,
	}).Info("Order cancelled by buyer")

	return &order, nil
}

// UpdateStatus moves an order along its lifecycle. Only the selling
// farmer or an admin may call it, and only transitions the lifecycle
// table permits are applied. Moving to cancelled releases the stock.
func (s *OrderService) UpdateStatus(actor *models.User, id uuid.UUID, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	next := models.OrderStatus(req.Status)
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if decision := s.authz.Can(actor, ActionOrderStatus, &order); !decision.Allowed {
			return ErrUnauthorized
		}

		if !order.Status.CanTransitionTo(next) {
			return ErrInvalidTransition
		}

		won, err := transitionOrder(tx, order.ID, order.Status, next)
		if err != nil {
			return err
		}
		if !won {
			return ErrInvalidTransition
		}

		if next == models.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := releaseStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   order.Status,
	}).Info("Order status updated")

	return &order, nil
}

// Stats aggregates order counts and delivered revenue for the actor's
// scope (buyer purchases, farmer sales, or everything for admins).
func (s *OrderService) Stats(actor *models.User) (*OrderStats, error) {
	scoped := func() *gorm.DB {
		query := s.db.Model(&models.Order{})
		switch {
		case actor.IsBuyer():
			query = query.Where("buyer_id = ?", actor.ID)
		case actor.IsFarmer():
			query = query.Where("farmer_id = ?", actor.ID)
		}
		return query
	}

	stats := &OrderStats{
		ByStatus:     make(map[string]int64),
		TotalRevenue: decimal.Zero,
	}

	if err := scoped().Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := scoped().Select("status, COUNT(*) as count").Group("status").Scan(&counts).Error; err != nil {
		return nil, err
	}
	for _, sc := range counts {
		stats.ByStatus[sc.Status] = sc.Count
		if sc.Status == string(models.OrderStatusPending) {
			stats.PendingOrders = sc.Count
		}
	}

	var revenue decimal.NullDecimal
	err := scoped().
		Where("status = ?", models.OrderStatusDelivered).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	}

	return stats, nil
}

// Delete removes an order and its items. Admin only; a hard delete does
// not touch stock since it is an administrative cleanup, not a refund.
func (s *OrderService) Delete(actor *models.User, id uuid.UUID) error {
	if decision := s.authz.Can(actor, ActionOrderDelete, nil); !decision.Allowed {
		return ErrUnauthorized
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}
