// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name            string     `json:"name" gorm:"size:255;not null"`
	Email           string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string     `json:"-" gorm:"size:255;not null"`
	Role            UserRole   `json:"role" gorm:"type:varchar(20);not null;index"`
	Status          UserStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at"`

	// Relationships
	FarmerProfile *FarmerProfile `json:"farmer_profile,omitempty" gorm:"foreignKey:UserID"`
	Products      []Product      `json:"products,omitempty" gorm:"foreignKey:FarmerID"`
	BuyerOrders   []Order        `json:"buyer_orders,omitempty" gorm:"foreignKey:BuyerID"`
	FarmerOrders  []Order        `json:"farmer_orders,omitempty" gorm:"foreignKey:FarmerID"`
	Ratings       []Rating       `json:"ratings,omitempty" gorm:"foreignKey:BuyerID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) IsAdmin() bool  { return u.Role == UserRoleAdmin }
func (u *User) IsFarmer() bool { return u.Role == UserRoleFarmer }
func (u *User) IsBuyer() bool  { return u.Role == UserRoleBuyer }
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// FarmerProfile holds the business details submitted with a farmer
// application. The permit document itself lives in blob storage;
// BusinessPermitURL is its storage key.
type FarmerProfile struct {
	BaseModel
	UserID            uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	BusinessName      string    `json:"business_name" gorm:"size:255;not null"`
	BusinessPermitURL string    `json:"business_permit_url" gorm:"size:512"`
	Location          string    `json:"location" gorm:"size:255"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
