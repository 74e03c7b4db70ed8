// internal/service/inventory/domain/repository.go
package domain

import "context"

// Repository persists items. AdjustQuantity is the consistency-critical
// operation: implementations must apply the delta atomically and must not
// let a deduct observe or produce a negative quantity.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, sku string) error
	FindBySKU(ctx context.Context, sku string) (*Item, error)
	List(ctx context.Context, offset, limit int) ([]*Item, error)
	// AdjustQuantity adds delta (negative for deducts) to the SKU's
	// quantity. ErrInsufficientStock when the deduct would underflow,
	// ErrNotFound when the SKU is absent; in both cases nothing changes.
	AdjustQuantity(ctx context.Context, sku string, delta int) error
}
