// internal/services/auth_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/agrilink/agrilink-backend/internal/config"
	"github.com/agrilink/agrilink-backend/internal/database"
	"github.com/agrilink/agrilink-backend/internal/models"
	"github.com/agrilink/agrilink-backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=buyer farmer"`

	// Farmer application fields, required when Role is farmer.
	BusinessName      string `json:"business_name" validate:"required_if=Role farmer,max=255"`
	Location          string `json:"location" validate:"max=255"`
	BusinessPermitURL string `json:"business_permit_url" validate:"max=512"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=255"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// Register creates an account. Buyers are active immediately; farmers
// start pending and must be approved by an admin before they can sell.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:   req.Name,
		Email:  req.Email,
		Role:   models.UserRole(req.Role),
		Status: models.UserStatusActive,
	}
	if user.Role == models.UserRoleFarmer {
		user.Status = models.UserStatusPending
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return err
		}

		if user.Role == models.UserRoleFarmer {
			profile := &models.FarmerProfile{
				UserID:            user.ID,
				BusinessName:      req.BusinessName,
				Location:          req.Location,
				BusinessPermitURL: req.BusinessPermitURL,
			}
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
			user.FarmerProfile = profile
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")

	return s.issueTokens(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.Preload("FarmerProfile").Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	s.db.Model(&user).Update("last_login_at", now)
	user.LastLoginAt = &now

	return s.issueTokens(&user)
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *AuthService) GetUserByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("FarmerProfile").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

type FarmerApplicationRequest struct {
	BusinessName      string `json:"business_name" validate:"required,max=255"`
	Location          string `json:"location" validate:"max=255"`
	BusinessPermitURL string `json:"business_permit_url" validate:"max=512"`
}

// ApplyAsFarmer converts an existing buyer account into a farmer
// application: the role flips to farmer, the status drops back to
// pending until an admin reviews it, and a profile row is created.
func (s *AuthService) ApplyAsFarmer(userID uuid.UUID, req *FarmerApplicationRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user.Role == models.UserRoleFarmer {
		return nil, ErrAlreadyApplied
	}
	if !user.IsBuyer() {
		return nil, ErrUnauthorized
	}

	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Model(user).Updates(map[string]interface{}{
			"role":   models.UserRoleFarmer,
			"status": models.UserStatusPending,
		}).Error; err != nil {
			return err
		}

		profile := &models.FarmerProfile{
			UserID:            user.ID,
			BusinessName:      req.BusinessName,
			Location:          req.Location,
			BusinessPermitURL: req.BusinessPermitURL,
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		user.Role = models.UserRoleFarmer
		user.Status = models.UserStatusPending
		user.FarmerProfile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("user_id", user.ID).Info("Farmer application submitted")
	return user, nil
}

func (s *AuthService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
		user.Name = req.Name
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			return nil, err
		}
		updates["password_hash"] = user.PasswordHash
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(
		user.ID, user.Name, string(user.Role), string(user.Status),
		s.cfg.JWT.ExpirationHours,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshHours)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
