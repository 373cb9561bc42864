package models

import (
	"time"

	"gorm.io/gorm"
)

type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CartID    uint      `json:"-" gorm:"not null;uniqueIndex:idx_cart_book"`
	BookID    uint      `json:"bookId" gorm:"not null;uniqueIndex:idx_cart_book"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Book      *Book     `json:"book,omitempty" gorm:"foreignKey:BookID"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cart holds at most one line per book. Lines are kept in insertion order.
type Cart struct {
	gorm.Model
	UserID uint       `json:"userId" gorm:"uniqueIndex;not null"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}
