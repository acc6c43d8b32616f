// internal/i18n/keys.go
package i18n

// Translation keys grouped by domain.
const (
	// Auth
	KeyAuthRequired        = "auth.required"
	KeyAuthInvalidCreds    = "auth.invalid_credentials"
	KeyAuthEmailTaken      = "auth.email_taken"
	KeyAuthAccountPending  = "auth.account_pending"
	KeyAuthAccountRejected = "auth.account_rejected"
	KeyAuthLoggedOut       = "auth.logged_out"
	KeyAccessDenied        = "auth.access_denied"
	KeyTokenInvalid        = "auth.token_invalid"
	KeyTokenExpired        = "auth.token_expired"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Users / farmers
	KeyUserNotFound         = "user.not_found"
	KeyFarmerNotFound       = "farmer.not_found"
	KeyFarmerApproved       = "farmer.approved"
	KeyFarmerRejected       = "farmer.rejected"
	KeyFarmerNotActive      = "farmer.not_active"
	KeyFarmerApplied        = "farmer.application_submitted"
	KeyFarmerAlreadyApplied = "farmer.already_applied"

	// Products
	KeyProductNotFound   = "product.not_found"
	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductDeleted    = "product.deleted"
	KeyProductOutOfStock = "product.out_of_stock"
	KeyInsufficientStock = "product.insufficient_stock"

	// Orders
	KeyOrderNotFound      = "order.not_found"
	KeyOrderPlaced        = "order.placed"
	KeyOrderCancelled     = "order.cancelled"
	KeyOrderStatusUpdated = "order.status_updated"
	KeyOrderInvalidStatus = "order.invalid_status"
	KeyOrderCannotCancel  = "order.cannot_cancel"

	// Ratings
	KeyRatingSaved    = "rating.saved"
	KeyRatingNotFound = "rating.not_found"

	// Generic
	KeyInternalError = "error.internal"
)
