// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilink/agrilink-backend/internal/models"
)

func TestRegisterBuyerIsActive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "password123",
		Role:     "buyer",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, resp.User.Status)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestRegisterFarmerStartsPending(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	resp, err := svc.Register(&RegisterRequest{
		Name:         "Juan dela Cruz",
		Email:        "juan@example.com",
		Password:     "password123",
		Role:         "farmer",
		BusinessName: "Cruz Family Farm",
		Location:     "Nueva Ecija",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusPending, resp.User.Status)
	require.NotNil(t, resp.User.FarmerProfile)
	assert.Equal(t, "Cruz Family Farm", resp.User.FarmerProfile.BusinessName)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	req := &RegisterRequest{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "password123",
		Role:     "buyer",
	}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register(&RegisterRequest{
		Name:     "Sneaky",
		Email:    "sneaky@example.com",
		Password: "password123",
		Role:     "admin",
	})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	_, err := svc.Register(&RegisterRequest{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "password123",
		Role:     "buyer",
	})
	require.NoError(t, err)

	resp, err := svc.Login(&LoginRequest{Email: "maria@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotNil(t, resp.User.LastLoginAt)

	_, err = svc.Login(&LoginRequest{Email: "maria@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "password123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	resp, err := svc.Register(&RegisterRequest{
		Name:     "Maria Santos",
		Email:    "maria@example.com",
		Password: "password123",
		Role:     "buyer",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)

	_, err = svc.RefreshToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestApplyAsFarmer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	buyer := createBuyer(t, db)

	user, err := svc.ApplyAsFarmer(buyer.ID, &FarmerApplicationRequest{
		BusinessName: "Santos Produce",
		Location:     "Batangas",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleFarmer, user.Role)
	assert.Equal(t, models.UserStatusPending, user.Status)
	require.NotNil(t, user.FarmerProfile)
	assert.Equal(t, "Santos Produce", user.FarmerProfile.BusinessName)

	var reloaded models.User
	require.NoError(t, db.Preload("FarmerProfile").First(&reloaded, "id = ?", buyer.ID).Error)
	assert.Equal(t, models.UserRoleFarmer, reloaded.Role)
	assert.Equal(t, models.UserStatusPending, reloaded.Status)

	// A second application from the same account is rejected.
	_, err = svc.ApplyAsFarmer(buyer.ID, &FarmerApplicationRequest{BusinessName: "Santos Produce"})
	require.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestApplyAsFarmerRejectsNonBuyers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	admin := createAdmin(t, db)
	_, err := svc.ApplyAsFarmer(admin.ID, &FarmerApplicationRequest{BusinessName: "Admin Farm"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testConfig())

	buyer := createBuyer(t, db)

	updated, err := svc.UpdateProfile(buyer.ID, &UpdateProfileRequest{Name: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	_, err = svc.UpdateProfile(buyer.ID, &UpdateProfileRequest{Password: "newpassword123"})
	require.NoError(t, err)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", buyer.ID).Error)
	require.NoError(t, reloaded.CheckPassword("newpassword123"))
}
