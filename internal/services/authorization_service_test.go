// internal/services/authorization_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/agrilink/agrilink-backend/internal/models"
)

func TestAuthorizationDecisions(t *testing.T) {
	svc := NewAuthorizationService()

	admin := &models.User{BaseModel: models.BaseModel{ID: uuid.New()}, Role: models.UserRoleAdmin, Status: models.UserStatusActive}
	farmer := &models.User{BaseModel: models.BaseModel{ID: uuid.New()}, Role: models.UserRoleFarmer, Status: models.UserStatusActive}
	pendingFarmer := &models.User{BaseModel: models.BaseModel{ID: uuid.New()}, Role: models.UserRoleFarmer, Status: models.UserStatusPending}
	buyer := &models.User{BaseModel: models.BaseModel{ID: uuid.New()}, Role: models.UserRoleBuyer, Status: models.UserStatusActive}
	pendingBuyer := &models.User{BaseModel: models.BaseModel{ID: uuid.New()}, Role: models.UserRoleBuyer, Status: models.UserStatusPending}

	ownProduct := &models.Product{FarmerID: farmer.ID}
	foreignProduct := &models.Product{FarmerID: uuid.New()}
	ownOrder := &models.Order{BuyerID: buyer.ID, FarmerID: farmer.ID}
	foreignOrder := &models.Order{BuyerID: uuid.New(), FarmerID: uuid.New()}

	tests := []struct {
		name     string
		actor    *models.User
		action   Action
		resource interface{}
		allowed  bool
	}{
		{"active farmer creates product", farmer, ActionProductCreate, nil, true},
		{"pending farmer cannot create", pendingFarmer, ActionProductCreate, nil, false},
		{"buyer cannot create product", buyer, ActionProductCreate, nil, false},

		{"owner updates product", farmer, ActionProductUpdate, ownProduct, true},
		{"non-owner cannot update", farmer, ActionProductUpdate, foreignProduct, false},
		{"admin updates any product", admin, ActionProductUpdate, foreignProduct, true},
		{"owner deletes product", farmer, ActionProductDelete, ownProduct, true},
		{"admin deletes any product", admin, ActionProductDelete, foreignProduct, true},

		{"active buyer places orders", buyer, ActionOrderCreate, nil, true},
		{"pending buyer cannot place orders", pendingBuyer, ActionOrderCreate, nil, false},
		{"farmer cannot place orders", farmer, ActionOrderCreate, nil, false},
		{"admin cannot place orders", admin, ActionOrderCreate, nil, false},

		{"buyer views own order", buyer, ActionOrderView, ownOrder, true},
		{"farmer views own sale", farmer, ActionOrderView, ownOrder, true},
		{"stranger cannot view order", buyer, ActionOrderView, foreignOrder, false},
		{"admin views any order", admin, ActionOrderView, foreignOrder, true},

		{"buyer cancels own order", buyer, ActionOrderCancel, ownOrder, true},
		{"farmer cannot cancel via buyer path", farmer, ActionOrderCancel, ownOrder, false},

		{"selling farmer updates status", farmer, ActionOrderStatus, ownOrder, true},
		{"other farmer cannot update status", farmer, ActionOrderStatus, foreignOrder, false},
		{"admin updates any status", admin, ActionOrderStatus, foreignOrder, true},

		{"admin deletes orders", admin, ActionOrderDelete, nil, true},
		{"farmer cannot delete orders", farmer, ActionOrderDelete, nil, false},
		{"admin reviews farmers", admin, ActionFarmerReview, nil, true},
		{"buyer cannot review farmers", buyer, ActionFarmerReview, nil, false},

		{"buyer rates products", buyer, ActionRatingWrite, nil, true},
		{"farmer cannot rate products", farmer, ActionRatingWrite, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := svc.Can(tt.actor, tt.action, tt.resource)
			assert.Equal(t, tt.allowed, decision.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestAuthorizationNilActor(t *testing.T) {
	svc := NewAuthorizationService()
	decision := svc.Can(nil, ActionProductCreate, nil)
	assert.False(t, decision.Allowed)
}
