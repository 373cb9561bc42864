package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/AliRajag51/bookstore-backend/metrics"
	"github.com/AliRajag51/bookstore-backend/models"
)

const (
	msgOrderItemsRequired = "Order items required"
	msgOrderContact       = "Name, email, and address required"
	msgOrderBooksMissing  = "One or more books not found"
	msgOrderNotFound      = "Order not found"
)

// OrderLineInput is one requested line. The book may be named by either
// bookId or id, as a number or a numeric string.
type OrderLineInput struct {
	BookID   any `json:"bookId"`
	ID       any `json:"id"`
	Quantity any `json:"quantity"`
}

type PlaceOrderInput struct {
	Items          []OrderLineInput `json:"items"`
	PaymentMethod  string           `json:"paymentMethod"`
	Address        string           `json:"address"`
	Email          string           `json:"email"`
	FullName       string           `json:"fullName"`
	IdempotencyKey string           `json:"-"`
}

type orderLine struct {
	bookID   uint
	quantity int
}

type OrderService struct {
	db       *gorm.DB
	notifier Notifier
	log      *logrus.Logger
}

func NewOrderService(db *gorm.DB, notifier Notifier, log *logrus.Logger) *OrderService {
	return &OrderService{db: db, notifier: notifier, log: log}
}

// Place validates the lines against the catalog, freezes a snapshot of title
// and price per line and stores the order as pending. The confirmation email
// is queued after commit and never affects the result. created is false when
// the idempotency key matched an earlier order, which is returned instead.
func (s *OrderService) Place(ctx context.Context, userID uint, in PlaceOrderInput) (order models.Order, created bool, err error) {
	lines := normalizeOrderLines(in.Items)
	if len(lines) == 0 {
		return models.Order{}, false, Validation(msgOrderItemsRequired)
	}

	address := strings.TrimSpace(in.Address)
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if address == "" || email == "" || fullName == "" {
		return models.Order{}, false, Validation(msgOrderContact)
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if existing, found, err := s.findByIdempotencyKey(ctx, userID, key); err != nil {
			return models.Order{}, false, err
		} else if found {
			return existing, false, nil
		}
	}

	ids := bookIDs(lines)
	var books []models.Book
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&books).Error; err != nil {
		return models.Order{}, false, Internal("Create order failed", err)
	}
	if len(books) < len(ids) {
		return models.Order{}, false, Validation(msgOrderBooksMissing)
	}

	byID := make(map[uint]models.Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}

	order = models.Order{
		UserID:          userID,
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		ShippingAddress: address,
		ContactEmail:    email,
		ContactName:     fullName,
		Status:          models.OrderPending,
		TotalAmount:     decimal.Zero,
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = models.DefaultPaymentMethod
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	for _, line := range lines {
		book := byID[line.bookID]
		price := book.Price
		if price.IsNegative() {
			price = decimal.Zero
		}
		item := models.OrderItem{
			BookID:   book.ID,
			Title:    book.Title,
			Price:    price,
			Quantity: line.quantity,
		}
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.Subtotal())
	}

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		if key != "" {
			// A concurrent request with the same key won the insert.
			if existing, found, findErr := s.findByIdempotencyKey(ctx, userID, key); findErr == nil && found {
				return existing, false, nil
			}
		}
		return models.Order{}, false, Internal("Create order failed", err)
	}

	metrics.OrderPlaced()
	s.notifyPlaced(order)
	return order, true, nil
}

func (s *OrderService) notifyPlaced(order models.Order) {
	entry := s.log.WithFields(logrus.Fields{"order_id": order.ID, "user_id": order.UserID})

	msg, err := orderConfirmationEmail(order)
	if err != nil {
		entry.WithError(err).Error("Failed to render order confirmation")
		return
	}
	if !s.notifier.Enqueue(msg) {
		entry.Warn("Order confirmation was not queued")
	}
}

// List returns the user's orders, newest first.
func (s *OrderService) List(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, Internal("Fetch orders failed", err)
	}
	return orders, nil
}

// ListAll returns every order, newest first, optionally filtered by status.
func (s *OrderService) ListAll(ctx context.Context, page Page, status models.OrderStatus) ([]models.Order, Page, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		if !status.Valid() {
			return nil, page, Validation("Unknown order status")
		}
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&page.Total).Error; err != nil {
		return nil, page, Internal("Fetch orders failed", err)
	}

	orders := []models.Order{}
	err := query.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.offset()).
		Find(&orders).Error
	if err != nil {
		return nil, page, Internal("Fetch orders failed", err)
	}
	return orders, page, nil
}

// Get returns an order owned by userID. Orders of other users are reported as
// not found.
func (s *OrderService) Get(ctx context.Context, userID, orderID uint) (models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, NotFound(msgOrderNotFound)
	}
	if err != nil {
		return models.Order{}, Internal("Fetch order failed", err)
	}
	return order, nil
}

// UpdateStatus moves an order along pending → paid → shipped → completed, or
// to cancelled before it ships.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, Validation("Unknown order status")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound(msgOrderNotFound)
			}
			return err
		}
		if !order.Status.CanTransitionTo(status) {
			return Validation("Cannot change order status from " + string(order.Status) + " to " + string(status))
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return Conflict("Order status changed concurrently")
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return models.Order{}, orInternal(err, "Failed to update order status")
	}
	return order, nil
}

func (s *OrderService) findByIdempotencyKey(ctx context.Context, userID uint, key string) (models.Order, bool, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, Internal("Create order failed", err)
	}
	return order, true, nil
}

// normalizeOrderLines drops entries without a usable book id or with a
// quantity below one. Repeated books are merged into the first line naming
// them.
func normalizeOrderLines(items []OrderLineInput) []orderLine {
	var lines []orderLine
	index := make(map[uint]int, len(items))
	for _, item := range items {
		rawID := item.BookID
		if isBlank(rawID) {
			rawID = item.ID
		}
		bookID, ok := IDFrom(rawID)
		if !ok {
			continue
		}

		qty, ok := NumberFrom(item.Quantity)
		if !ok || !isPositive(qty) || wholeQuantity(qty) < 1 {
			continue
		}
		if i, seen := index[bookID]; seen {
			lines[i].quantity = addQuantity(lines[i].quantity, wholeQuantity(qty))
			continue
		}
		index[bookID] = len(lines)
		lines = append(lines, orderLine{bookID: bookID, quantity: wholeQuantity(qty)})
	}
	return lines
}

func bookIDs(lines []orderLine) []uint {
	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.bookID)
	}
	return ids
}

func addQuantity(a, b int) int {
	if a > math.MaxInt32-b {
		return math.MaxInt32
	}
	return a + b
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
