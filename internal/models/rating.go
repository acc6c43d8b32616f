// internal/models/rating.go
package models

import "github.com/google/uuid"

// Rating is a buyer's 1-5 score for a product, one row per
// (buyer, product) pair; repeated submissions update in place.
type Rating struct {
	BaseModel
	BuyerID   uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_buyer_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_ratings_buyer_product"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"size:1000"`

	Buyer   *User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
