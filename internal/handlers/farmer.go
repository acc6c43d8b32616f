// internal/handlers/farmer.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type FarmerHandler struct {
	farmerService  *services.FarmerService
	authService    *services.AuthService
	storageService *services.StorageService
}

func NewFarmerHandler(
	farmerService *services.FarmerService,
	authService *services.AuthService,
	storageService *services.StorageService,
) *FarmerHandler {
	return &FarmerHandler{
		farmerService:  farmerService,
		authService:    authService,
		storageService: storageService,
	}
}

func (h *FarmerHandler) Dashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	dashboard, err := h.farmerService.Dashboard(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, dashboard)
}

func (h *FarmerHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	profile, err := h.farmerService.GetProfile(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

func (h *FarmerHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateFarmerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	profile, err := h.farmerService.UpdateProfile(userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, profile)
}

// UploadPermit stores the farmer's business permit document and records
// it on the profile. Pending farmers use this to complete their
// application.
func (h *FarmerHandler) UploadPermit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	file, err := c.FormFile("permit")
	if err != nil {
		utils.BadRequestResponse(c, "Permit file is required", nil)
		return
	}

	key, err := h.storageService.UploadBusinessPermit(file)
	if err != nil {
		utils.UnprocessableResponse(c, err.Error(), nil)
		return
	}

	profile, err := h.farmerService.UpdateProfile(userID, &services.UpdateFarmerProfileRequest{
		BusinessPermitURL: key,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, profile)
}
