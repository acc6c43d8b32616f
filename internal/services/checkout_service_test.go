// internal/services/checkout_service_test.go
package services

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilink/agrilink-backend/internal/models"
)

func TestCheckoutSingleSeller(t *testing.T) {
	db := setupTestDB(t)
	svc := newCheckoutService(db)

	farmer := createFarmer(t, db)
	buyer := createBuyer(t, db)
	tomatoes := createProduct(t, db, farmer.ID, "45.00", 10)
	rice := createProduct(t, db, farmer.ID, "25.00", 10)

	orders, err := svc.Checkout(buyer, &CheckoutRequest{
		Orders: []SellerGroup{{
			FarmerID:        farmer.ID,
			PaymentMethod:   "cod",
			DeliveryAddress: "123 Main St",
			Items: []CheckoutItem{
				{ProductID: tomatoes.ID, Quantity: 2},
				{ProductID: rice.ID, Quantity: 1},
			},
		}},
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	order := orders[0]
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, buyer.ID, order.BuyerID)
	assert.Equal(t, farmer.ID, order.FarmerID)
	require.Len(t, order.Items, 2)

	// 2 * 45.00 + 1 * 25.00 must come out as exactly 115.00.
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("115.00")),
		"got total %s", order.TotalAmount)

	assert.Equal(t, 8, productStock(t, db, tomatoes.ID))
	assert.Equal(t, 9, productStock(t, db, rice.ID))
}

func TestCheckoutCapturesServerPrice(t *testing.T) {
	db := setupTestDB(t)
	svc := newCheckoutService(db)

	farmer := createFarmer(t, db)
	buyer := createBuyer(t, db)
	product := createProduct(t, db, farmer.ID, "45.00", 10)

	orders, err := svc.Checkout(buyer, &CheckoutRequest{
		Orders: []SellerGroup{{
			FarmerID:        farmer.ID,
			PaymentMethod:   "cod",
			DeliveryAddress: "123 Main St",
			Items:           []CheckoutItem{{ProductID: product.ID, Quantity: 1}},
		}},
	})
	require.NoError(t, err)
	require.Len(t, orders[0].Items, 1)
	assert.True(t, orders[0].Items[0].UnitPrice.Equal(product.Price))

	// A later price change must not rewrite the recorded order.
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("99.00")).Error)

	var item models.OrderItem
	require.NoError(t, db.First(&item, "order_id = ?", orders[0].ID).Error)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("45.00")),
		"got unit price %s", item.UnitPrice)

	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", orders[0].ID).Error)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("45.00")))
}

func TestCheckoutInsufficientStockRollsBackEverything(t *testing.T) {
	db := setupTestDB(t)
	svc := newCheckoutService(db)

	farmerA := createFarmer(t, db)
	farmerB := createFarmer(t, db)
	buyer := createBuyer(t, db)

	plenty := createProduct(t, db, farmerA.ID, "45.00", 10)
	scarce := createProduct(t, db, farmerB.ID, "25.00", 1)

	_, err := svc.Checkout(buyer, &CheckoutRequest{
		Orders: []SellerGroup{
			{
				FarmerID:        farmerA.ID,
				PaymentMethod:   "cod",
				DeliveryAddress: "123 Main St",
				Items:           []CheckoutItem{{ProductID: plenty.ID, Quantity: 2}},
			},
			{
				FarmerID:        farmerB.ID,
				PaymentMethod:   "cod",
				DeliveryAddress: "123 Main St",
				Items:           []CheckoutItem{{ProductID: scarce.ID, Quantity: 5}},
			},
		},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, scarce.Name, stockErr.ProductName)

	// The first seller's reservation must have been rolled back too.
	assert.Equal(t, 10, productStock(t, db, plenty.ID))
	assert.Equal(t, 1, productStock(t, db, scarce.ID))

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestCheckoutNeverOversells(t *testing.T) {
	db := setupTestDB(t)
	svc := newCheckoutService(db)

	farmer := createFarmer(t, db)
	product := createProduct(t, db, farmer.ID, "10.00", 5)

	buyers := make([]*models.User, 10)
	for i := range buyers {
		buyers[i] = createBuyer(t, db)
	}

	var wg sync.WaitGroup
	results := make(chan error, len(buyers))

	for _, buyer := range buyers {
		wg.Add(1)
		go func(buyer *models.User) {
			defer wg.Done()
			_, err := svc.Checkout(buyer, &CheckoutRequest{
				Orders: []SellerGroup{{
					FarmerID:        farmer.ID,
					PaymentMethod:   "cod",
					DeliveryAddress: "123 Main St",
					Items:           []CheckoutItem{{ProductID: product.ID, Quantity: 1}},
				}},
			})
			results <- err
		}(buyer)
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
	}

	assert.Equal(t, 5, successes)
	assert.Equal(t, 0, productStock(t, db, product.ID))
}

func TestCheckoutSequentialExhaustion(t *testing.T) {
	db := setupTestDB(t)
	svc := newCheckoutService(db)

	farmer := createFarmer(t, db)
	buyer := createBuyer(t, db)
	product := createProduct(t, db, farmer.ID, "10.00", 3)

	request := func(qty int) error {
		_, err := svc.Checkout(buyer, &CheckoutRequest{
			Orders: []SellerGroup{{
				FarmerID:        farmer.ID,
				PaymentMethod:   "bank_transfer",
				DeliveryAddress: "123 Main St",
				Items:           []CheckoutItem{{ProductID: product.ID, Quantity: qty}},
			}},
		})
		return err
	}

	require.NoError(t, request(2))
	require.NoError(t, request(1))

	err := request(1)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, productStock(t, db, product.ID))
}

func TestCheckoutRejectsForeignProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := newCheckoutService(db)

	farmerA := createFarmer(t, db)
	farmerB := createFarmer(t, db)
	buyer := createBuyer(t, db)

	// Product belongs to B but is claimed under A's seller group.
	product := createProduct(t, db, farmerB.ID, "10.00", 5)

	_, err := svc.Checkout(buyer, &CheckoutRequest{
		Orders: []SellerGroup{{
			FarmerID:        farmerA.ID,
			PaymentMethod:   "cod",
			DeliveryAddress: "123 Main St",
			Items:           []CheckoutItem{{ProductID: product.ID, Quantity: 1}},
		}},
	})
	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 5, productStock(t, db, product.ID))
}

func TestCheckoutRequiresActiveBuyer(t *testing.T) {
	db := setupTestDB(t)
	svc := newCheckoutService(db)

	farmer := createFarmer(t, db)
	product := createProduct(t, db, farmer.ID, "10.00", 5)

	cart := &CheckoutRequest{
		Orders: []SellerGroup{{
			FarmerID:        farmer.ID,
			PaymentMethod:   "cod",
			DeliveryAddress: "123 Main St",
			Items:           []CheckoutItem{{ProductID: product.ID, Quantity: 1}},
		}},
	}

	_, err := svc.Checkout(farmer, cart)
	require.ErrorIs(t, err, ErrUnauthorized)

	pending := createUser(t, db, models.UserRoleBuyer, models.UserStatusPending)
	_, err = svc.Checkout(pending, cart)
	require.ErrorIs(t, err, ErrAccountInactive)

	assert.Equal(t, 5, productStock(t, db, product.ID))
}

func TestCheckoutValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newCheckoutService(db)
	buyer := createBuyer(t, db)

	_, err := svc.Checkout(buyer, &CheckoutRequest{})
	require.Error(t, err)

	farmer := createFarmer(t, db)
	product := createProduct(t, db, farmer.ID, "10.00", 5)

	_, err = svc.Checkout(buyer, &CheckoutRequest{
		Orders: []SellerGroup{{
			FarmerID:        farmer.ID,
			PaymentMethod:   "paypal",
			DeliveryAddress: "123 Main St",
			Items:           []CheckoutItem{{ProductID: product.ID, Quantity: 1}},
		}},
	})
	require.Error(t, err, "unsupported payment method must be rejected")

	_, err = svc.Checkout(buyer, &CheckoutRequest{
		Orders: []SellerGroup{{
			FarmerID:        farmer.ID,
			PaymentMethod:   "cod",
			DeliveryAddress: "123 Main St",
			Items:           []CheckoutItem{{ProductID: product.ID, Quantity: 0}},
		}},
	})
	require.Error(t, err, "zero quantity must be rejected")

	assert.Equal(t, 5, productStock(t, db, product.ID))
}
