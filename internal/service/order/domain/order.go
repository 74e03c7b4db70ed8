// internal/service/order/domain/order.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

// Order is the aggregate root. IDs are caller-supplied and globally unique;
// line items are fixed at creation. Once a reservation has succeeded the
// items correspond 1:1 with stock deducted on the inventory participant.
type Order struct {
	ID        string
	UserID    int64
	Total     Cents
	Status    Status
	Items     []LineItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineItem is one SKU position of an order.
type LineItem struct {
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice Cents  `json:"unit_price"`
}

// NewOrder validates and builds an order. Status defaults to pending.
func NewOrder(id string, userID int64, total Cents, status Status, items []LineItem) (*Order, error) {
	if id == "" {
		return nil, errors.Wrap(ErrValidation, "order id is required")
	}
	if userID <= 0 {
		return nil, errors.Wrap(ErrValidation, "user id is required")
	}
	if total < 0 {
		return nil, errors.Wrap(ErrValidation, "total must not be negative")
	}
	if status == "" {
		status = StatusPending
	}
	for _, item := range items {
		if item.SKU == "" {
			return nil, errors.Wrap(ErrValidation, "line item sku is required")
		}
		if item.Quantity <= 0 {
			return nil, errors.Wrapf(ErrValidation, "line item %s quantity must be positive", item.SKU)
		}
		if item.UnitPrice < 0 {
			return nil, errors.Wrapf(ErrValidation, "line item %s unit price must not be negative", item.SKU)
		}
	}

	now := time.Now().UTC()
	return &Order{
		ID:        id,
		UserID:    userID,
		Total:     total,
		Status:    status,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// OwnedBy reports whether userID owns this order.
func (o *Order) OwnedBy(userID int64) bool {
	return o.UserID == userID
}
