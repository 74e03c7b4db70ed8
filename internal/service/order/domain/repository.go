// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository persists orders. Mutations take the ledger entry that
// documents them so row and event commit in one local transaction; the
// remote inventory adjustments are deliberately outside that transaction.
type OrderRepository interface {
	Create(ctx context.Context, order *Order, event OrderEvent) error
	Update(ctx context.Context, order *Order, event OrderEvent) error
	Delete(ctx context.Context, orderID string, event OrderEvent) error
	FindByID(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context, offset, limit int) ([]*Order, error)
}

// EventLedger reads the append-only event record back.
type EventLedger interface {
	Timeline(ctx context.Context, orderID string) ([]OrderEvent, error)
}
