// internal/handlers/rating.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrilink/agrilink-backend/internal/i18n"
	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type RatingHandler struct {
	ratingService *services.RatingService
	authService   *services.AuthService
}

func NewRatingHandler(ratingService *services.RatingService, authService *services.AuthService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService, authService: authService}
}

// Rate records the buyer's score for a product; rating again replaces
// the previous score.
func (h *RatingHandler) Rate(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	productID, ok := pathID(c)
	if !ok {
		return
	}

	var req services.RateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	rating, err := h.ratingService.Rate(actor, productID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyRatingSaved),
		"rating":  rating,
	})
}
