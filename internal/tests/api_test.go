// internal/tests/api_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/i18n"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/router"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupAPI(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.FarmerProfile{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Rating{},
		&models.AuditLog{},
	))

	require.NoError(t, i18n.Init("../i18n/locales"))

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		JWT:    config.JWTConfig{ExpirationHours: 1, RefreshHours: 24},
		I18n:   config.I18nConfig{LocalesPath: "../i18n/locales", DefaultLang: "en"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Upload: config.UploadConfig{
			MaxFileSize:  1024 * 1024,
			AllowedTypes: []string{"image/jpeg", "image/png", "application/pdf"},
			LocalPath:    t.TempDir(),
		},
		Payment: config.PaymentConfig{Currency: "php"},
	}

	engine, err := router.Setup(db, cfg)
	require.NoError(t, err)
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if len(w.Body.Bytes()) > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

type authPayload struct {
	User struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
		Role   string    `json:"role"`
	} `json:"user"`
	AccessToken string `json:"access_token"`
}

func register(t *testing.T, engine *gin.Engine, body gin.H) authPayload {
	t.Helper()

	w, env := doJSON(t, engine, http.MethodPost, "/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var payload authPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	return payload
}

func seedAdmin(t *testing.T, engine *gin.Engine, db *gorm.DB) string {
	t.Helper()

	admin := &models.User{
		Name:   "Admin",
		Email:  "admin@agrilink.test",
		Role:   models.UserRoleAdmin,
		Status: models.UserStatusActive,
	}
	require.NoError(t, admin.SetPassword("adminpass123"))
	require.NoError(t, db.Create(admin).Error)

	w, env := doJSON(t, engine, http.MethodPost, "/v1/auth/login", "", gin.H{
		"email":    "admin@agrilink.test",
		"password": "adminpass123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload authPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	return payload.AccessToken
}

func TestHealth(t *testing.T) {
	engine, _ := setupAPI(t)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMarketplaceFlow(t *testing.T) {
	engine, db := setupAPI(t)

	// Farmer applies and starts out pending.
	farmer := register(t, engine, gin.H{
		"name":          "Juan dela Cruz",
		"email":         "juan@example.com",
		"password":      "password123",
		"role":          "farmer",
		"business_name": "Cruz Family Farm",
		"location":      "Nueva Ecija",
	})
	require.Equal(t, "pending", farmer.User.Status)

	// Pending farmers cannot list products yet.
	w, _ := doJSON(t, engine, http.MethodPost, "/v1/farmer/products", farmer.AccessToken, gin.H{
		"name": "Tomatoes", "price": "45.00", "stock": 10, "category": "vegetables",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	// Admin approves the application.
	adminToken := seedAdmin(t, engine, db)
	w, _ = doJSON(t, engine, http.MethodPut,
		"/v1/admin/farmers/"+farmer.User.ID.String()+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Approval lands in a fresh token on next login.
	w, env := doJSON(t, engine, http.MethodPost, "/v1/auth/login", "", gin.H{
		"email": "juan@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var approved authPayload
	require.NoError(t, json.Unmarshal(env.Data, &approved))
	require.Equal(t, "active", approved.User.Status)

	w, env = doJSON(t, engine, http.MethodPost, "/v1/farmer/products", approved.AccessToken, gin.H{
		"name": "Tomatoes", "price": "45.00", "stock": 10, "category": "vegetables", "unit": "kg",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var product models.Product
	require.NoError(t, json.Unmarshal(env.Data, &product))
	require.True(t, product.Price.Equal(decimal.RequireFromString("45.00")))

	// Checkout requires authentication.
	w, _ = doJSON(t, engine, http.MethodPost, "/v1/checkout", "", gin.H{})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	buyer := register(t, engine, gin.H{
		"name": "Maria Santos", "email": "maria@example.com",
		"password": "password123", "role": "buyer",
	})

	// Farmers cannot use the buyer checkout.
	w, _ = doJSON(t, engine, http.MethodPost, "/v1/checkout", approved.AccessToken, gin.H{})
	require.Equal(t, http.StatusForbidden, w.Code)

	checkout := gin.H{
		"orders": []gin.H{{
			"farmer_id":        farmer.User.ID,
			"payment_method":   "cod",
			"delivery_address": "123 Main St, Quezon City",
			"items": []gin.H{{
				"product_id": product.ID,
				"quantity":   3,
			}},
		}},
	}
	w, env = doJSON(t, engine, http.MethodPost, "/v1/checkout", buyer.AccessToken, checkout)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var checkoutResp struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &checkoutResp))
	require.Len(t, checkoutResp.Orders, 1)
	order := checkoutResp.Orders[0]
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("135.00")))

	// Stock is reserved immediately.
	w, env = doJSON(t, engine, http.MethodGet, "/v1/products/"+product.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed models.Product
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Equal(t, 7, listed.Stock)

	// Over-asking for the rest fails without touching stock.
	tooMuch := gin.H{
		"orders": []gin.H{{
			"farmer_id":        farmer.User.ID,
			"payment_method":   "cod",
			"delivery_address": "123 Main St",
			"items":            []gin.H{{"product_id": product.ID, "quantity": 8}},
		}},
	}
	w, _ = doJSON(t, engine, http.MethodPost, "/v1/checkout", buyer.AccessToken, tooMuch)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Farmer moves the order along; the buyer can no longer cancel.
	w, _ = doJSON(t, engine, http.MethodPatch,
		"/v1/farmer/orders/"+order.ID.String()+"/status", approved.AccessToken,
		gin.H{"status": "processing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = doJSON(t, engine, http.MethodPost,
		"/v1/orders/"+order.ID.String()+"/cancel", buyer.AccessToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Deliver, then rate.
	for _, status := range []string{"shipped", "delivered"} {
		w, _ = doJSON(t, engine, http.MethodPatch,
			"/v1/farmer/orders/"+order.ID.String()+"/status", approved.AccessToken,
			gin.H{"status": status})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, _ = doJSON(t, engine, http.MethodPost,
		"/v1/products/"+product.ID.String()+"/ratings", buyer.AccessToken,
		gin.H{"rating": 5, "comment": "Very fresh"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = doJSON(t, engine, http.MethodGet, "/v1/farmer/dashboard", approved.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, engine, http.MethodGet, "/v1/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Buyers are locked out of admin surface.
	w, _ = doJSON(t, engine, http.MethodGet, "/v1/admin/dashboard", buyer.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogoutAndFarmerApplication(t *testing.T) {
	engine, _ := setupAPI(t)

	buyer := register(t, engine, gin.H{
		"name": "Maria Santos", "email": "maria3@example.com",
		"password": "password123", "role": "buyer",
	})

	// Logout needs a token.
	w, _ := doJSON(t, engine, http.MethodPost, "/v1/auth/logout", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, engine, http.MethodPost, "/v1/auth/logout", buyer.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A buyer can apply to become a farmer; the account drops to pending.
	w, env := doJSON(t, engine, http.MethodPost, "/v1/farmer-applications", buyer.AccessToken, gin.H{
		"business_name": "Santos Produce",
		"location":      "Batangas",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var applied struct {
		Role   string `json:"role"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &applied))
	assert.Equal(t, "farmer", applied.Role)
	assert.Equal(t, "pending", applied.Status)

	// Applying twice conflicts.
	w, _ = doJSON(t, engine, http.MethodPost, "/v1/farmer-applications", buyer.AccessToken, gin.H{
		"business_name": "Santos Produce",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestBuyerCancelFlow(t *testing.T) {
	engine, db := setupAPI(t)

	adminToken := seedAdmin(t, engine, db)

	farmer := register(t, engine, gin.H{
		"name": "Juan", "email": "juan2@example.com", "password": "password123",
		"role": "farmer", "business_name": "Farm",
	})
	w, _ := doJSON(t, engine, http.MethodPut,
		"/v1/admin/farmers/"+farmer.User.ID.String()+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, engine, http.MethodPost, "/v1/auth/login", "", gin.H{
		"email": "juan2@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var approved authPayload
	require.NoError(t, json.Unmarshal(env.Data, &approved))

	w, env = doJSON(t, engine, http.MethodPost, "/v1/farmer/products", approved.AccessToken, gin.H{
		"name": "Rice", "price": "25.00", "stock": 5, "category": "grains",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var product models.Product
	require.NoError(t, json.Unmarshal(env.Data, &product))

	buyer := register(t, engine, gin.H{
		"name": "Maria", "email": "maria2@example.com", "password": "password123", "role": "buyer",
	})

	w, env = doJSON(t, engine, http.MethodPost, "/v1/checkout", buyer.AccessToken, gin.H{
		"orders": []gin.H{{
			"farmer_id":        farmer.User.ID,
			"payment_method":   "bank_transfer",
			"delivery_address": "456 Side St",
			"items":            []gin.H{{"product_id": product.ID, "quantity": 5}},
		}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var checkoutResp struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &checkoutResp))
	order := checkoutResp.Orders[0]

	var stock int
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Select("stock").Scan(&stock).Error)
	require.Equal(t, 0, stock)

	w, _ = doJSON(t, engine, http.MethodPost,
		"/v1/orders/"+order.ID.String()+"/cancel", buyer.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Select("stock").Scan(&stock).Error)
	assert.Equal(t, 5, stock)

	// Second cancel is rejected and stock stays put.
	w, _ = doJSON(t, engine, http.MethodPost,
		"/v1/orders/"+order.ID.String()+"/cancel", buyer.AccessToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Select("stock").Scan(&stock).Error)
	assert.Equal(t, 5, stock)
}
