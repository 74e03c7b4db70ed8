// internal/service/order/application/saga/reservation.go
package saga

import (
	"context"

	"atlas/internal/pkg/dlock"
	"atlas/internal/pkg/logger"
	"atlas/internal/service/order/domain"
	"atlas/internal/service/order/domain/port"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AttemptState tracks one SKU through a coordinator pass.
type AttemptState string

const (
	StatePending     AttemptState = "pending"
	StateSucceeded   AttemptState = "succeeded"
	StateFailed      AttemptState = "failed"
	StateCompensated AttemptState = "compensated"
)

// Attempt is the per-SKU record driving compensation. It exists only for the
// duration of one Apply call but is returned in the Outcome so partial state
// stays inspectable.
type Attempt struct {
	SKU      string
	Quantity int
	State    AttemptState
}

// Outcome reports an Apply pass. OK is false whenever the forward pass
// failed, even if every compensation succeeded. Unavailable distinguishes
// "participant unreachable, retry later" from a definitive rejection.
type Outcome struct {
	OK          bool
	FailedSKU   string
	Message     string
	Unavailable bool
	Attempts    []Attempt
}

// Coordinator provides the illusion of an all-or-nothing multi-item
// reservation on top of the participant's independently atomic per-SKU
// adjustments: sequential forward application, then reverse compensation of
// everything already applied when any step fails. There is no lock across
// the whole pass; between a partial success and its compensation the remote
// state genuinely diverges from the not-yet-committed order.
type Coordinator struct {
	inventory port.InventoryService
	locker    dlock.Locker
	tracer    trace.Tracer
}

func NewCoordinator(inventory port.InventoryService, locker dlock.Locker, tracer trace.Tracer) *Coordinator {
	if locker == nil {
		locker = dlock.Noop{}
	}
	return &Coordinator{inventory: inventory, locker: locker, tracer: tracer}
}

// Apply walks the line items in order, adjusting stock one SKU at a time in
// the given direction. On the first failure it stops and issues the opposite
// adjustment for every already-succeeded attempt, newest first.
func (c *Coordinator) Apply(ctx context.Context, items []domain.LineItem, direction port.Direction, token string) Outcome {
	ctx, span := c.tracer.Start(ctx, "saga.Apply")
	defer span.End()
	span.SetAttributes(
		attribute.String("direction", string(direction)),
		attribute.Int("items", len(items)),
	)

	attempts := make([]Attempt, len(items))
	for i, item := range items {
		attempts[i] = Attempt{SKU: item.SKU, Quantity: item.Quantity, State: StatePending}
	}

	for i := range attempts {
		if err := c.adjust(ctx, &attempts[i], direction, token); err != nil {
			attempts[i].State = StateFailed
			span.RecordError(err)
			span.SetStatus(codes.Error, "forward pass aborted")
			c.compensate(ctx, attempts[:i], direction, token)

			applyTotal.WithLabelValues(string(direction), "aborted").Inc()
			return Outcome{
				OK:          false,
				FailedSKU:   attempts[i].SKU,
				Message:     err.Error(),
				Unavailable: errors.Is(err, port.ErrUnavailable),
				Attempts:    attempts,
			}
		}
		attempts[i].State = StateSucceeded
	}

	applyTotal.WithLabelValues(string(direction), "ok").Inc()
	return Outcome{OK: true, Attempts: attempts}
}

func (c *Coordinator) adjust(ctx context.Context, attempt *Attempt, direction port.Direction, token string) error {
	release, err := c.locker.Acquire(ctx, attempt.SKU)
	if err != nil {
		return errors.Wrapf(port.ErrUnavailable, "lock %s: %v", attempt.SKU, err)
	}
	defer release()

	err = c.inventory.Adjust(ctx, attempt.SKU, attempt.Quantity, direction, token)
	if err != nil {
		adjustmentsTotal.WithLabelValues(string(direction), "failed").Inc()
		return err
	}
	adjustmentsTotal.WithLabelValues(string(direction), "ok").Inc()
	return nil
}

// compensate undoes the succeeded prefix in reverse order. Only attempts
// explicitly recorded as succeeded are compensated: a timed-out call with an
// unknown remote outcome is skipped, accepting a latent inconsistency rather
// than risking a double adjustment. A compensation failure is not retried;
// it is logged and counted for manual reconciliation.
func (c *Coordinator) compensate(ctx context.Context, succeeded []Attempt, direction port.Direction, token string) {
	if len(succeeded) == 0 {
		return
	}
	ctx, span := c.tracer.Start(ctx, "saga.Compensate")
	defer span.End()

	opposite := direction.Opposite()
	for i := len(succeeded) - 1; i >= 0; i-- {
		attempt := &succeeded[i]
		if attempt.State != StateSucceeded {
			continue
		}
		if err := c.adjust(ctx, attempt, opposite, token); err != nil {
			compensationFailures.Inc()
			span.RecordError(err)
			logger.Ctx(ctx).Error().
				Err(err).
				Str("sku", attempt.SKU).
				Int("quantity", attempt.Quantity).
				Str("direction", string(opposite)).
				Msg("compensation failed, inventory needs manual reconciliation")
			continue
		}
		attempt.State = StateCompensated
	}
}
