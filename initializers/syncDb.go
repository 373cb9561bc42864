package initializers

import (
	"github.com/AliRajag51/bookstore-backend/models"
	"gorm.io/gorm"
)

func SyncDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	)
}
