package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func init() {
	// Prices are rendered as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Book struct {
	gorm.Model
	Slug            *string                     `json:"slug,omitempty" gorm:"size:191;uniqueIndex"`
	Title           string                      `json:"title" gorm:"size:255;not null"`
	Author          string                      `json:"author" gorm:"size:255;not null"`
	Description     string                      `json:"description" gorm:"type:text"`
	Category        string                      `json:"category" gorm:"size:100;not null;default:General;index"`
	Price           decimal.Decimal             `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	OldPrice        decimal.NullDecimal         `json:"oldPrice" gorm:"type:decimal(10,2)"`
	DiscountPercent *int                        `json:"discountPercent"`
	CoverImage      string                      `json:"coverImage" gorm:"size:512"`
	Images          datatypes.JSONSlice[string] `json:"images"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	KeyTakeaways    datatypes.JSONSlice[string] `json:"keyTakeaways"`
	Stock           int                         `json:"stock" gorm:"not null;default:0"`
	Rating          float64                     `json:"rating" gorm:"not null;default:0"`
	Pages           int                         `json:"pages" gorm:"not null;default:0"`
	Published       string                      `json:"published" gorm:"size:50"`
	Language        string                      `json:"language" gorm:"size:50"`
	Format          string                      `json:"format" gorm:"size:50"`
	ISBN            string                      `json:"isbn" gorm:"size:20"`
	Bestseller      bool                        `json:"bestseller" gorm:"not null;default:false"`
	IsActive        bool                        `json:"isActive" gorm:"not null;default:true;index"`
}
