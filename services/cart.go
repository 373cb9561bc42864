package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AliRajag51/bookstore-backend/models"
)

const (
	msgBookNotFound   = "Book not found"
	msgItemNotInCart  = "Item not in cart"
	msgCartFailed     = "Failed to update cart"
	msgBookIDRequired = "bookId is required"
)

// CartService owns per-user cart state. Each mutation runs in a transaction
// holding a row lock on the user's cart, so concurrent requests from the same
// user are applied one after the other.
type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// Get returns the user's cart. A user without a cart gets an empty, unsaved one.
func (s *CartService) Get(ctx context.Context, userID uint) (models.Cart, error) {
	return s.load(ctx, userID)
}

// Add merges quantity into the line for bookID, creating the line (and the
// cart) when missing. Absent, non-finite or non-positive quantities count as 1.
func (s *CartService) Add(ctx context.Context, userID, bookID uint, quantity *float64) (models.Cart, error) {
	if bookID == 0 {
		return models.Cart{}, Validation(msgBookIDRequired)
	}

	var book models.Book
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", bookID, true).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Cart{}, NotFound(msgBookNotFound)
	}
	if err != nil {
		return models.Cart{}, Internal("Failed to fetch book", err)
	}

	qty := normalizeAddQuantity(quantity)
	return s.mutate(ctx, userID, func(tx *gorm.DB, cart *models.Cart) error {
		if line := findLine(cart, bookID); line != nil {
			return tx.Model(&models.CartItem{}).
				Where("id = ?", line.ID).
				Update("quantity", gorm.Expr("quantity + ?", qty)).Error
		}
		return tx.Create(&models.CartItem{CartID: cart.ID, BookID: bookID, Quantity: qty}).Error
	})
}

// SetQuantity overwrites the quantity of an existing line. A quantity that is
// absent, non-finite or not positive removes the line. Positive fractions are
// stored whole, never below one.
func (s *CartService) SetQuantity(ctx context.Context, userID, bookID uint, quantity *float64) (models.Cart, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, cart *models.Cart) error {
		line := findLine(cart, bookID)
		if line == nil {
			return NotFound(msgItemNotInCart)
		}

		if quantity == nil || !isPositive(*quantity) {
			return tx.Delete(&models.CartItem{}, line.ID).Error
		}
		return tx.Model(&models.CartItem{}).
			Where("id = ?", line.ID).
			Update("quantity", lineQuantity(*quantity)).Error
	})
}

func (s *CartService) Remove(ctx context.Context, userID, bookID uint) (models.Cart, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, cart *models.Cart) error {
		line := findLine(cart, bookID)
		if line == nil {
			return NotFound(msgItemNotInCart)
		}
		return tx.Delete(&models.CartItem{}, line.ID).Error
	})
}

// Clear empties the cart. Clearing an empty cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID uint) (models.Cart, error) {
	return s.mutate(ctx, userID, func(tx *gorm.DB, cart *models.Cart) error {
		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
}

func (s *CartService) mutate(ctx context.Context, userID uint, fn func(tx *gorm.DB, cart *models.Cart) error) (models.Cart, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&models.Cart{UserID: userID}).Error; err != nil {
			return err
		}

		var cart models.Cart
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&cart).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Order("id").Find(&cart.Items).Error; err != nil {
			return err
		}
		return fn(tx, &cart)
	})
	if err != nil {
		return models.Cart{}, orInternal(err, msgCartFailed)
	}
	return s.load(ctx, userID)
}

// load reads the cart with every line's book populated.
func (s *CartService) load(ctx context.Context, userID uint) (models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Book").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, Internal("Failed to fetch cart", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

func findLine(cart *models.Cart, bookID uint) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].BookID == bookID {
			return &cart.Items[i]
		}
	}
	return nil
}

func normalizeAddQuantity(quantity *float64) int {
	if quantity == nil || !isPositive(*quantity) {
		return 1
	}
	return lineQuantity(*quantity)
}

// lineQuantity stores a positive quantity as a whole number of at least one.
func lineQuantity(f float64) int {
	if qty := wholeQuantity(f); qty >= 1 {
		return qty
	}
	return 1
}
