// internal/service/inventory/domain/item.go
package domain

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("inventory item not found")
	ErrConflict          = errors.New("sku already exists")
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Item is one stock position. Quantity never goes negative: every deduct is
// a single conditional update, atomic per call.
type Item struct {
	SKU       string
	Name      string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewItem(sku, name string, quantity int) (*Item, error) {
	if sku == "" {
		return nil, errors.Wrap(ErrValidation, "sku is required")
	}
	if quantity < 0 {
		return nil, errors.Wrap(ErrValidation, "quantity must not be negative")
	}
	now := time.Now().UTC()
	return &Item{SKU: sku, Name: name, Quantity: quantity, CreatedAt: now, UpdatedAt: now}, nil
}

// Direction of an adjustment request.
type Direction string

const (
	DirectionDeduct  Direction = "deduct"
	DirectionRestore Direction = "restore"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionDeduct, DirectionRestore:
		return Direction(s), nil
	default:
		return "", errors.Wrapf(ErrValidation, "unknown direction %q", s)
	}
}
