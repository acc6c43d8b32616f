// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the handler layer maps to HTTP responses with errors.Is.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrFarmerNotFound     = errors.New("farmer not found")
	ErrRatingNotFound     = errors.New("rating not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyApplied     = errors.New("farmer application already exists")
	ErrUnauthorized       = errors.New("not allowed")
	ErrAccountInactive    = errors.New("account is not active")
	ErrInvalidTransition  = errors.New("invalid order status transition")
)

// InsufficientStockError aborts a checkout and names the offending product
// so the buyer knows which line to fix.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

// IsNotFound reports whether err is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrFarmerNotFound) ||
		errors.Is(err, ErrRatingNotFound)
}
