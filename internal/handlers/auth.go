// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/internal/i18n"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a buyer or farmer account. Farmer registrations are
// applications: the account stays pending until an admin approves it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	resp, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, resp)
}

// Logout acknowledges the client discarding its tokens. Access tokens
// are stateless JWTs, so there is no server-side session to tear down.
func (h *AuthHandler) Logout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyAuthLoggedOut)})
}

// ApplyAsFarmer lets an existing buyer submit a farmer application
// without re-registering. The account goes back to pending review.
func (h *AuthHandler) ApplyAsFarmer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.FarmerApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	user, err := h.authService.ApplyAsFarmer(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, user)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	user, err := h.authService.UpdateProfile(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// currentUserID parses the authenticated caller's id out of the context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// loadActor fetches the authenticated caller's full user row. Services
// make ownership decisions on it, so claims alone are not enough.
func loadActor(c *gin.Context, authService *services.AuthService) (*models.User, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return nil, false
	}

	user, err := authService.GetUserByID(userID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return user, true
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
