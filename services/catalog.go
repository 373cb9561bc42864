package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/AliRajag51/bookstore-backend/models"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// BookInput carries the writable book fields. Nil fields are left untouched
// on update.
type BookInput struct {
	Slug            *string          `json:"slug"`
	Title           *string          `json:"title"`
	Author          *string          `json:"author"`
	Description     *string          `json:"description"`
	Category        *string          `json:"category"`
	Price           *decimal.Decimal `json:"price"`
	OldPrice        *decimal.Decimal `json:"oldPrice"`
	DiscountPercent *int             `json:"discountPercent"`
	CoverImage      *string          `json:"coverImage"`
	Images          *[]string        `json:"images"`
	Tags            *[]string        `json:"tags"`
	KeyTakeaways    *[]string        `json:"keyTakeaways"`
	Stock           *int             `json:"stock"`
	Rating          *float64         `json:"rating"`
	Pages           *int             `json:"pages"`
	Published       *string          `json:"published"`
	Language        *string          `json:"language"`
	Format          *string          `json:"format"`
	ISBN            *string          `json:"isbn"`
	Bestseller      *bool            `json:"bestseller"`
	IsActive        *bool            `json:"isActive"`
}

type Page struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// NewPage clamps the requested page and limit.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}

type CatalogService struct {
	db       *gorm.DB
	uploader ImageUploader
}

// NewCatalogService builds the catalog. uploader may be nil when image storage
// is not configured.
func NewCatalogService(db *gorm.DB, uploader ImageUploader) *CatalogService {
	return &CatalogService{db: db, uploader: uploader}
}

// List returns active books, newest first.
func (s *CatalogService) List(ctx context.Context, page Page, category string) ([]models.Book, Page, error) {
	query := s.db.WithContext(ctx).Model(&models.Book{}).Where("is_active = ?", true)
	if category = strings.TrimSpace(category); category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&page.Total).Error; err != nil {
		return nil, page, Internal("Fetch books failed", err)
	}

	books := []models.Book{}
	if err := query.Order("created_at DESC, id DESC").Limit(page.Limit).Offset(page.offset()).Find(&books).Error; err != nil {
		return nil, page, Internal("Fetch books failed", err)
	}
	return books, page, nil
}

// Get returns a book by id, including soft-deleted ones.
func (s *CatalogService) Get(ctx context.Context, id uint) (models.Book, error) {
	var book models.Book
	err := s.db.WithContext(ctx).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Book{}, NotFound(msgBookNotFound)
	}
	if err != nil {
		return models.Book{}, Internal("Fetch book failed", err)
	}
	return book, nil
}

func (s *CatalogService) Create(ctx context.Context, input BookInput) (models.Book, error) {
	book := models.Book{Category: "General", IsActive: true}
	input.apply(&book)
	if err := validateBook(book); err != nil {
		return models.Book{}, err
	}

	if err := s.db.WithContext(ctx).Create(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Book{}, Conflict("A book with this slug already exists")
		}
		return models.Book{}, Internal("Create book failed", err)
	}
	// gorm skips zero values that have a column default on insert.
	if !book.IsActive {
		if err := s.db.WithContext(ctx).Model(&book).Update("is_active", false).Error; err != nil {
			return models.Book{}, Internal("Create book failed", err)
		}
	}
	return book, nil
}

func (s *CatalogService) Update(ctx context.Context, id uint, input BookInput) (models.Book, error) {
	book, err := s.Get(ctx, id)
	if err != nil {
		return models.Book{}, err
	}

	input.apply(&book)
	if err := validateBook(book); err != nil {
		return models.Book{}, err
	}

	if err := s.db.WithContext(ctx).Save(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Book{}, Conflict("A book with this slug already exists")
		}
		return models.Book{}, Internal("Update book failed", err)
	}
	return book, nil
}

// Delete hides the book from listings. It stays addressable by id.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return Internal("Delete book failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return NotFound(msgBookNotFound)
	}
	return nil
}

// UploadImages stores each file and appends its URL to the book. Files that
// fail to upload are reported by name and do not abort the others.
func (s *CatalogService) UploadImages(ctx context.Context, id uint, files []*multipart.FileHeader) (models.Book, []string, error) {
	if s.uploader == nil {
		return models.Book{}, nil, Configuration("Image storage is not configured", nil)
	}
	if len(files) == 0 {
		return models.Book{}, nil, Validation("No files uploaded")
	}

	book, err := s.Get(ctx, id)
	if err != nil {
		return models.Book{}, nil, err
	}

	var failed []string
	for _, file := range files {
		url, err := s.uploadOne(ctx, book.ID, file)
		if err != nil {
			failed = append(failed, file.Filename)
			continue
		}
		book.Images = append(book.Images, url)
		if book.CoverImage == "" {
			book.CoverImage = url
		}
	}

	if len(failed) == len(files) {
		return book, failed, Dependency("Failed to upload images", nil)
	}
	if err := s.db.WithContext(ctx).Model(&book).Select("images", "cover_image").Updates(&book).Error; err != nil {
		return models.Book{}, failed, Internal("Failed to save book images", err)
	}
	return book, failed, nil
}

func (s *CatalogService) uploadOne(ctx context.Context, bookID uint, file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := fmt.Sprintf("books/%d/%s-%s", bookID, uuid.NewString(), filepath.Base(file.Filename))
	return s.uploader.Upload(ctx, key, file.Header.Get("Content-Type"), f)
}

func (in BookInput) apply(book *models.Book) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	if in.Slug != nil {
		slug := strings.TrimSpace(*in.Slug)
		if slug == "" {
			book.Slug = nil
		} else {
			book.Slug = &slug
		}
	}
	setString(&book.Title, in.Title)
	setString(&book.Author, in.Author)
	setString(&book.Description, in.Description)
	setString(&book.Category, in.Category)
	setString(&book.CoverImage, in.CoverImage)
	setString(&book.Published, in.Published)
	setString(&book.Language, in.Language)
	setString(&book.Format, in.Format)
	setString(&book.ISBN, in.ISBN)

	if in.Price != nil {
		book.Price = *in.Price
	}
	if in.OldPrice != nil {
		book.OldPrice = decimal.NewNullDecimal(*in.OldPrice)
	}
	if in.DiscountPercent != nil {
		book.DiscountPercent = in.DiscountPercent
	}
	if in.Images != nil {
		book.Images = *in.Images
	}
	if in.Tags != nil {
		book.Tags = *in.Tags
	}
	if in.KeyTakeaways != nil {
		book.KeyTakeaways = *in.KeyTakeaways
	}
	if in.Stock != nil {
		book.Stock = *in.Stock
	}
	if in.Rating != nil {
		book.Rating = *in.Rating
	}
	if in.Pages != nil {
		book.Pages = *in.Pages
	}
	if in.Bestseller != nil {
		book.Bestseller = *in.Bestseller
	}
	if in.IsActive != nil {
		book.IsActive = *in.IsActive
	}
}

func validateBook(book models.Book) error {
	switch {
	case book.Title == "" || book.Author == "":
		return Validation("Title and author are required")
	case book.Price.IsNegative():
		return Validation("Price must not be negative")
	case book.OldPrice.Valid && book.OldPrice.Decimal.IsNegative():
		return Validation("Old price must not be negative")
	case book.Stock < 0:
		return Validation("Stock must not be negative")
	case book.Pages < 0:
		return Validation("Pages must not be negative")
	case book.Rating < 0 || book.Rating > 5:
		return Validation("Rating must be between 0 and 5")
	case book.DiscountPercent != nil && (*book.DiscountPercent < 0 || *book.DiscountPercent > 100):
		return Validation("Discount must be between 0 and 100")
	}
	return nil
}
