// internal/models/order.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one farmer's share of a buyer submission: a cart spanning
// several farmers becomes one Order per farmer. TotalAmount is fixed at
// creation from the line items and is never recomputed afterwards.
type Order struct {
	BaseModel
	BuyerID         uuid.UUID       `json:"buyer_id" gorm:"type:uuid;not null;index"`
	FarmerID        uuid.UUID       `json:"farmer_id" gorm:"type:uuid;not null;index"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(50);not null"`
	PaymentRef      string          `json:"payment_ref,omitempty" gorm:"size:255"`
	DeliveryAddress string          `json:"delivery_address" gorm:"size:512"`

	// Relationships
	Buyer  *User       `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Farmer *User       `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	Items  []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem captures quantity and the product's price at order time.
// UnitPrice is deliberately decoupled from the product's current price so
// historical orders survive later price changes and product deletion.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`

	// Relationships
	Order   *Order   `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// LineTotal is quantity * unit_price in exact decimal arithmetic.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
