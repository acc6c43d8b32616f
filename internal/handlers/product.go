// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/agrilink/agrilink-backend/internal/services"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	ratingService  *services.RatingService
	authService    *services.AuthService
	storageService *services.StorageService
}

func NewProductHandler(
	productService *services.ProductService,
	ratingService *services.RatingService,
	authService *services.AuthService,
	storageService *services.StorageService,
) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		ratingService:  ratingService,
		authService:    authService,
		storageService: storageService,
	}
}

// List is the public catalog: in-stock products with search, category
// and price filters.
func (h *ProductHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filters := services.ProductFilters{
		Category: params.Category,
		Search:   params.Search,
		InStock:  true,
	}
	if v := c.Query("min_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filters.MinPrice = &d
		}
	}
	if v := c.Query("max_price"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			filters.MaxPrice = &d
		}
	}

	products, total, err := h.productService.Search(filters, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

func (h *ProductHandler) Ratings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	summary, err := h.ratingService.ProductSummary(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, summary)
}

func (h *ProductHandler) Top(c *gin.Context) {
	products, err := h.productService.TopProducts(10)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, products)
}

// ListMine returns the authenticated farmer's own products, including
// out-of-stock ones.
func (h *ProductHandler) ListMine(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	filters := services.ProductFilters{
		FarmerID: &actor.ID,
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

func (h *ProductHandler) Create(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	product, err := h.productService.Create(actor, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	actor, ok := loadActor(c, h.authService)
	if !ok {
		return
	}

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", nil)
		return
	}

	product, err := h.productService.Update(actor, id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
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

// UploadImage stores a product photo and returns its URL for use in a
// subsequent create or update.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Image file is required", nil)
		return
	}

	url, err := h.storageService.UploadProductImage(file)
	if err != nil {
		utils.UnprocessableResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"url": url})
}
