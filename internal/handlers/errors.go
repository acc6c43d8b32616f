// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/agrilink/agrilink-backend/internal/i18n"
	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

// respondServiceError maps service-layer errors onto the response
// envelope. Anything unrecognized is logged and becomes a 500.
func respondServiceError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	var stockErr *services.InsufficientStockError
	if errors.As(err, &stockErr) {
		utils.BadRequestResponse(c,
			i18n.T(lang, i18n.KeyInsufficientStock, stockErr.ProductName), nil)
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "user")
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, "product")
	case errors.Is(err, services.ErrOrderNotFound):
		utils.NotFoundResponse(c, "order")
	case errors.Is(err, services.ErrFarmerNotFound):
		utils.NotFoundResponse(c, "farmer")
	case errors.Is(err, services.ErrRatingNotFound):
		utils.NotFoundResponse(c, "rating")
	case errors.Is(err, services.ErrEmailTaken):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthEmailTaken))
	case errors.Is(err, services.ErrAlreadyApplied):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyFarmerAlreadyApplied))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCreds))
	case errors.Is(err, services.ErrUnauthorized):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrAccountInactive):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyFarmerNotActive))
	case errors.Is(err, services.ErrInvalidTransition):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyOrderInvalidStatus), nil)
	default:
		logrus.WithError(err).Error("Unhandled service error")
		utils.InternalErrorResponse(c, "")
	}
}
