package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/AliRajag51/bookstore-backend/models"
	"github.com/AliRajag51/bookstore-backend/utils"
)

// Notifier accepts messages for background delivery.
type Notifier interface {
	Enqueue(msg utils.Message) bool
}

type orderEmailLine struct {
	Title    string
	Price    string
	Quantity int
}

func orderConfirmationEmail(order models.Order) (utils.Message, error) {
	lines := make([]orderEmailLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, orderEmailLine{
			Title:    item.Title,
			Price:    item.Price.StringFixed(2),
			Quantity: item.Quantity,
		})
	}

	body, err := utils.RenderTemplate("order_confirmation.html", map[string]any{
		"Name":    order.ContactName,
		"OrderID": order.ID,
		"Total":   order.TotalAmount.StringFixed(2),
		"Address": order.ShippingAddress,
		"Items":   lines,
	})
	if err != nil {
		return utils.Message{}, err
	}
	return utils.Message{To: order.ContactEmail, Subject: "Order Confirmation", Body: body}, nil
}

func passwordResetEmail(user models.User, frontendURL, token string) (utils.Message, error) {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(frontendURL, "/"), url.QueryEscape(token))
	body, err := utils.RenderTemplate("reset_password.html", map[string]any{
		"Name":     user.FirstName,
		"ResetURL": resetURL,
	})
	if err != nil {
		return utils.Message{}, err
	}
	return utils.Message{To: user.Email, Subject: "Password Reset", Body: body}, nil
}
