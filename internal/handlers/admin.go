// internal/handlers/admin.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/agrilink/agrilink-backend/internal/i18n"
	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type AdminHandler struct {
	adminService   *services.AdminService
	orderService   *services.OrderService
	productService *services.ProductService
	farmerService  *services.FarmerService
	authService    *services.AuthService
	storageService *services.StorageService
}

func NewAdminHandler(
	adminService *services.AdminService,
	orderService *services.OrderService,
	productService *services.ProductService,
	farmerService *services.FarmerService,
	authService *services.AuthService,
	storageService *services.StorageService,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		orderService:   orderService,
		productService: productService,
		farmerService:  farmerService,
		authService:    authService,
		storageService: storageService,
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.adminService.Dashboard()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, dashboard)
}

func (h *AdminHandler) ListFarmers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	farmers, total, err := h.adminService.ListFarmers(c.Query("status"), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(farmers, total, params))
}

func (h *AdminHandler) ApproveFarmer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	farmer, err := h.adminService.ApproveFarmer(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFarmerApproved),
		"farmer":  farmer,
	})
}

func (h *AdminHandler) RejectFarmer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	farmer, err := h.adminService.RejectFarmer(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFarmerRejected),
		"farmer":  farmer,
	})
}

func (h *AdminHandler) DeleteFarmer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.adminService.DeleteFarmer(id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// DownloadPermit streams a farmer's business permit for review.
func (h *AdminHandler) DownloadPermit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	profile, err := h.farmerService.GetProfile(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if profile.BusinessPermitURL == "" {
		utils.NotFoundResponse(c, "farmer")
		return
	}

	body, err := h.storageService.Download(profile.BusinessPermitURL)
	if err != nil {
		utils.NotFoundResponse(c, "farmer")
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", "attachment")
	c.Status(200)
	_, _ = io.Copy(c.Writer, body)
}

// ListProducts is the unfiltered catalog view, including out-of-stock
// listings.
func (h *AdminHandler) ListProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filters := services.ProductFilters{
		Category: params.Category,
		Search:   params.Search,
	}

	products, total, err := h.productService.Search(filters, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

func (h *AdminHandler) ProductStats(c *gin.Context) {
	stats, err := h.adminService.ProductStats()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, stats)
}

func (h *AdminHandler) UpdateProductStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	product, err := h.adminService.UpdateProductStock(id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	filters := services.OrderFilters{Status: c.Query("status")}

	orders, total, err := h.orderService.ListForActor(actor, filters, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

func (h *AdminHandler) DeleteOrder(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.orderService.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}
