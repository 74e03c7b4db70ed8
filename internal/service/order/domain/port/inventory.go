// internal/service/order/domain/port/inventory.go
package port

import (
	"context"

	"github.com/pkg/errors"
)

// Direction of a stock adjustment.
type Direction string

const (
	DirectionDeduct  Direction = "deduct"
	DirectionRestore Direction = "restore"
)

// Opposite returns the compensating direction.
func (d Direction) Opposite() Direction {
	if d == DirectionDeduct {
		return DirectionRestore
	}
	return DirectionDeduct
}

// Outcomes the inventory participant can report. Unavailable must be treated
// differently from the other two: it means the request may not have been
// processed at all.
var (
	ErrNotFound          = errors.New("inventory: sku not found")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	ErrUnavailable       = errors.New("inventory: participant unavailable")
)

// Item is the participant's view of a SKU.
type Item struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// InventoryService is the outbound port to the inventory participant. Every
// call carries the caller's bearer token for authorization passthrough.
type InventoryService interface {
	// Lookup fetches a SKU; ErrNotFound when absent.
	Lookup(ctx context.Context, sku, token string) (*Item, error)
	// Adjust applies one atomic per-SKU stock change. A deduct that would
	// push quantity below zero fails with ErrInsufficientStock and no
	// partial effect; a restore always succeeds on the participant side.
	Adjust(ctx context.Context, sku string, quantity int, direction Direction, token string) error
	// AdjustBatch applies the items sequentially in order and stops at the
	// first failure. Atomicity stays per-SKU: items already adjusted keep
	// their new quantity, so callers needing all-or-nothing semantics must
	// compensate (the reservation coordinator does).
	AdjustBatch(ctx context.Context, items []Item, direction Direction, token string) error
	// Provision creates a SKU on the participant (import auto-provisioning).
	Provision(ctx context.Context, sku string, quantity int, token string) error
}
