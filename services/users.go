package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/AliRajag51/bookstore-backend/models"
)

const msgUserNotFound = "User not found"

type UserUpdate struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(ctx context.Context, page Page) ([]models.User, Page, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if err := query.Count(&page.Total).Error; err != nil {
		return nil, page, Internal("Fetch users failed", err)
	}

	users := []models.User{}
	if err := query.Order("id").Limit(page.Limit).Offset(page.offset()).Find(&users).Error; err != nil {
		return nil, page, Internal("Fetch users failed", err)
	}
	return users, page, nil
}

// Update changes the role or the active flag of a user. A deactivated user
// can no longer log in and fails check-auth with a still-valid session.
func (s *UserService) Update(ctx context.Context, id uint, update UserUpdate) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, NotFound(msgUserNotFound)
	}
	if err != nil {
		return models.User{}, Internal("Update user failed", err)
	}

	changes := map[string]any{}
	if update.Role != nil {
		if *update.Role != models.RoleUser && *update.Role != models.RoleAdmin {
			return models.User{}, Validation("Role must be user or admin")
		}
		changes["role"] = *update.Role
		user.Role = *update.Role
	}
	if update.IsActive != nil {
		changes["is_active"] = *update.IsActive
		user.IsActive = *update.IsActive
	}
	if len(changes) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(changes).Error; err != nil {
		return models.User{}, Internal("Update user failed", err)
	}
	return user, nil
}

// Delete removes the user row and their cart for good. Orders are kept.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cartIDs []uint
		if err := tx.Model(&models.Cart{}).Where("user_id = ?", id).Pluck("id", &cartIDs).Error; err != nil {
			return err
		}
		if len(cartIDs) > 0 {
			if err := tx.Where("cart_id IN ?", cartIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", cartIDs).Delete(&models.Cart{}).Error; err != nil {
				return err
			}
		}

		result := tx.Unscoped().Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return NotFound(msgUserNotFound)
		}
		return nil
	})
	if err != nil {
		return orInternal(err, "Delete user failed")
	}
	return nil
}
