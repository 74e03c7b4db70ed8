// internal/service/order/domain/port/publisher.go
package port

import (
	"context"

	"atlas/internal/service/order/domain"
)

// EventPublisher pushes committed ledger entries to interested consumers.
// Publication is best-effort: a failure here must never fail the mutation
// that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
}
