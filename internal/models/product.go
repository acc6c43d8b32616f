// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	FarmerID       uuid.UUID       `json:"farmer_id" gorm:"type:uuid;not null;index"`
	Name           string          `json:"name" gorm:"size:255;not null"`
	Description    string          `json:"description" gorm:"type:text"`
	Price          decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock          int             `json:"stock" gorm:"not null;default:0"`
	Category       string          `json:"category" gorm:"size:100;index"`
	Unit           string          `json:"unit" gorm:"size:50"`
	Origin         string          `json:"origin" gorm:"size:255"`
	HarvestDate    *time.Time      `json:"harvest_date"`
	ExpirationDate *time.Time      `json:"expiration_date"`
	Certification  string          `json:"certification" gorm:"size:255"`
	Features       string          `json:"features" gorm:"type:text"`
	ImageURL       string          `json:"image_url" gorm:"size:512"`

	// Relationships
	Farmer     *User       `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	OrderItems []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:ProductID"`
	Ratings    []Rating    `json:"ratings,omitempty" gorm:"foreignKey:ProductID"`
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}
