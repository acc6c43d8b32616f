// internal/services/authorization_service.go
package services

import (
	"github.com/agrilink/agrilink-backend/internal/models"
)

// Action names every guarded operation in one place.
type Action string

const (
	ActionProductCreate Action = "product.create"
	ActionProductUpdate Action = "product.update"
	ActionProductDelete Action = "product.delete"
	ActionOrderCreate   Action = "order.create"
	ActionOrderView     Action = "order.view"
	ActionOrderCancel   Action = "order.cancel"
	ActionOrderStatus   Action = "order.update_status"
	ActionOrderDelete   Action = "order.delete"
	ActionRatingWrite   Action = "rating.write"
	ActionFarmerReview  Action = "farmer.review"
)

// Decision is the outcome of an authorization check. Reason is only set
// when access is denied, for logging.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r string) Decision { return Decision{Reason: r} }

// AuthorizationService centralizes the role/ownership rules. Admins pass
// every check except buyer-only actions that make no sense for them.
type AuthorizationService struct{}

func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// Can decides whether actor may perform action on resource. Resource is
// the domain object the rule inspects: *models.Product for product
// actions, *models.Order for order actions, nil where role alone decides.
func (s *AuthorizationService) Can(actor *models.User, action Action, resource interface{}) Decision {
	if actor == nil {
		return deny("no actor")
	}

	switch action {
	case ActionProductCreate:
		if !actor.IsFarmer() {
			return deny("only farmers create products")
		}
		if !actor.IsActive() {
			return deny("farmer account not approved")
		}
		return allow()

	case ActionProductUpdate, ActionProductDelete:
		product, ok := resource.(*models.Product)
		if !ok {
			return deny("no product")
		}
		if actor.IsAdmin() {
			return allow()
		}
		if actor.IsFarmer() && product.FarmerID == actor.ID {
			return allow()
		}
		return deny("not the product owner")

	case ActionOrderCreate:
		if !actor.IsBuyer() {
			return deny("only buyers place orders")
		}
		if !actor.IsActive() {
			return deny("account not active")
		}
		return allow()

	case ActionOrderView:
		order, ok := resource.(*models.Order)
		if !ok {
			return deny("no order")
		}
		if actor.IsAdmin() || order.BuyerID == actor.ID || order.FarmerID == actor.ID {
			return allow()
		}
		return deny("not a party to this order")

	case ActionOrderCancel:
		order, ok := resource.(*models.Order)
		if !ok {
			return deny("no order")
		}
		if order.BuyerID != actor.ID {
			return deny("only the buyer cancels an order")
		}
		return allow()

	case ActionOrderStatus:
		order, ok := resource.(*models.Order)
		if !ok {
			return deny("no order")
		}
		if actor.IsAdmin() {
			return allow()
		}
		if actor.IsFarmer() && order.FarmerID == actor.ID {
			return allow()
		}
		return deny("not the selling farmer")

	case ActionOrderDelete, ActionFarmerReview:
		if actor.IsAdmin() {
			return allow()
		}
		return deny("admin only")

	case ActionRatingWrite:
		if actor.IsBuyer() {
			return allow()
		}
		return deny("only buyers rate products")
	}

	return deny("unknown action")
}
