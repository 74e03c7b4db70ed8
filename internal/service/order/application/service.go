// internal/service/order/application/service.go
package application

import (
	"context"

	"atlas/internal/pkg/logger"
	"atlas/internal/service/order/application/rules"
	"atlas/internal/service/order/application/saga"
	"atlas/internal/service/order/domain"
	"atlas/internal/service/order/domain/port"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// OrderApplicationService drives every order mutation: gateway validation,
// the state machine's inventory decision, the reservation coordinator, and
// finally the local commit with its ledger entry. A mutation that fails at
// any step leaves no partial state behind.
type OrderApplicationService struct {
	repo        domain.OrderRepository
	ledger      domain.EventLedger
	users       port.UserService
	inventory   port.InventoryService
	coordinator *saga.Coordinator
	rules       *rules.Engine
	publisher   port.EventPublisher
	tracer      trace.Tracer

	// restoreOnDelete makes DELETE release an active order's reservation
	// before removing the row. Historically deletion performed no
	// compensation, so this is off unless configured.
	restoreOnDelete bool
}

type Config struct {
	Repo            domain.OrderRepository
	Ledger          domain.EventLedger
	Users           port.UserService
	Inventory       port.InventoryService
	Coordinator     *saga.Coordinator
	Rules           *rules.Engine
	Publisher       port.EventPublisher
	Tracer          trace.Tracer
	RestoreOnDelete bool
}

func NewOrderApplicationService(cfg Config) *OrderApplicationService {
	if cfg.Rules == nil {
		cfg.Rules, _ = rules.NewEngine("")
	}
	return &OrderApplicationService{
		repo:            cfg.Repo,
		ledger:          cfg.Ledger,
		users:           cfg.Users,
		inventory:       cfg.Inventory,
		coordinator:     cfg.Coordinator,
		rules:           cfg.Rules,
		publisher:       cfg.Publisher,
		tracer:          cfg.Tracer,
		restoreOnDelete: cfg.RestoreOnDelete,
	}
}

// CreateOrder validates the caller and the referenced user, reserves stock
// for active orders with items, and commits order plus `created` event in
// one transaction. Reservation failure rejects the creation with nothing
// persisted; a commit failure after a successful reservation releases the
// stock again before returning.
func (s *OrderApplicationService) CreateOrder(ctx context.Context, p Principal, req CreateOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Create")
	defer span.End()

	order, err := domain.NewOrder(req.ID, req.UserID, req.Total, req.Status, req.Items)
	if err != nil {
		return nil, err
	}
	if !p.CanAccess(order.UserID) {
		return nil, errors.Wrap(domain.ErrForbidden, "cannot create orders for another user")
	}

	totalQty := 0
	for _, item := range order.Items {
		totalQty += item.Quantity
	}
	allowed, err := s.rules.Allow(rules.Fact{
		UserID:        order.UserID,
		Total:         float64(order.Total) / 100,
		Status:        string(order.Status),
		ItemCount:     len(order.Items),
		TotalQuantity: totalQty,
	})
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, errors.Wrap(domain.ErrValidation, "order rejected by business rule")
	}

	exists, err := s.users.Exists(ctx, order.UserID, p.Token)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrDependencyUnavailable, "user validation: %v", err)
	}
	if !exists {
		return nil, errors.Wrapf(domain.ErrValidation, "user %d does not exist", order.UserID)
	}

	if existing, err := s.repo.FindByID(ctx, order.ID); err == nil && existing != nil {
		return nil, errors.Wrapf(domain.ErrConflict, "order %s already exists", order.ID)
	}

	action := domain.CreationStockAction(order.Status, len(order.Items) > 0)
	if action == domain.ActionDeduct {
		outcome := s.coordinator.Apply(ctx, order.Items, port.DirectionDeduct, p.Token)
		if !outcome.OK {
			return nil, outcomeError(outcome)
		}
	}

	event := domain.NewCreatedEvent(order, p.UserID)
	if err := s.repo.Create(ctx, order, event); err != nil {
		// The reservation went through but the local commit did not; put
		// the stock back so order and inventory do not diverge.
		if action == domain.ActionDeduct {
			rollback := s.coordinator.Apply(ctx, order.Items, port.DirectionRestore, p.Token)
			if !rollback.OK {
				logger.Ctx(ctx).Error().
					Str("order_id", order.ID).
					Str("failed_sku", rollback.FailedSKU).
					Str("reason", rollback.Message).
					Msg("stock rollback after failed commit incomplete, reconcile manually")
			}
		}
		return nil, err
	}

	s.publish(ctx, event)
	return order, nil
}

// UpdateOrder applies a partial update. A status transition across the
// active/cancelled boundary runs the coordinator first; when that fails the
// update is rejected and the order keeps its prior status.
func (s *OrderApplicationService) UpdateOrder(ctx context.Context, p Principal, orderID string, req UpdateOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Update")
	defer span.End()

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !p.CanAccess(order.UserID) {
		return nil, errors.Wrap(domain.ErrForbidden, "not the order owner")
	}

	oldStatus := order.Status
	newStatus := oldStatus
	if req.Status != nil && *req.Status != "" {
		newStatus = *req.Status
	}

	action := domain.StockAction(oldStatus, newStatus)
	if action != domain.ActionNone && len(order.Items) > 0 {
		direction := port.DirectionDeduct
		if action == domain.ActionRestore {
			direction = port.DirectionRestore
		}
		outcome := s.coordinator.Apply(ctx, order.Items, direction, p.Token)
		if !outcome.OK {
			return nil, outcomeError(outcome)
		}
	}

	order.Status = newStatus
	if req.Total != nil {
		order.Total = *req.Total
	}

	var event domain.OrderEvent
	if newStatus != oldStatus {
		event = domain.NewStatusChangedEvent(order.ID, oldStatus, newStatus, p.UserID)
	} else {
		event = domain.NewUpdatedEvent(order.ID, p.UserID)
	}

	if err := s.repo.Update(ctx, order, event); err != nil {
		if action != domain.ActionNone && len(order.Items) > 0 {
			direction := port.DirectionRestore
			if action == domain.ActionRestore {
				direction = port.DirectionDeduct
			}
			rollback := s.coordinator.Apply(ctx, order.Items, direction, p.Token)
			if !rollback.OK {
				logger.Ctx(ctx).Error().
					Str("order_id", order.ID).
					Str("failed_sku", rollback.FailedSKU).
					Str("reason", rollback.Message).
					Msg("stock rollback after failed update incomplete, reconcile manually")
			}
		}
		return nil, err
	}

	s.publish(ctx, event)
	return order, nil
}

// DeleteOrder removes the order row. The ledger entry survives. Stock is
// only released first when restore-on-delete is enabled.
func (s *OrderApplicationService) DeleteOrder(ctx context.Context, p Principal, orderID string) error {
	ctx, span := s.tracer.Start(ctx, "order.Delete")
	defer span.End()

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !p.CanAccess(order.UserID) {
		return errors.Wrap(domain.ErrForbidden, "not the order owner")
	}

	if s.restoreOnDelete && order.Status.Active() && len(order.Items) > 0 {
		outcome := s.coordinator.Apply(ctx, order.Items, port.DirectionRestore, p.Token)
		if !outcome.OK {
			return outcomeError(outcome)
		}
	}

	event := domain.NewDeletedEvent(order.ID, order.Status, p.UserID)
	if err := s.repo.Delete(ctx, orderID, event); err != nil {
		return err
	}

	s.publish(ctx, event)
	return nil
}

func (s *OrderApplicationService) GetOrder(ctx context.Context, p Principal, orderID string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !p.CanAccess(order.UserID) {
		return nil, errors.Wrap(domain.ErrForbidden, "not the order owner")
	}
	return order, nil
}

func (s *OrderApplicationService) ListOrders(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, limit)
}

// Timeline returns the order's events ascending by creation time. Only the
// owner or an admin may read it.
func (s *OrderApplicationService) Timeline(ctx context.Context, p Principal, orderID string) ([]domain.OrderEvent, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !p.CanAccess(order.UserID) {
		return nil, errors.Wrap(domain.ErrForbidden, "not the order owner")
	}
	return s.ledger.Timeline(ctx, orderID)
}

// ProvisionItems creates unseen SKUs on the inventory participant, used by
// the bulk import path. Admin only; SKUs are provisioned concurrently.
func (s *OrderApplicationService) ProvisionItems(ctx context.Context, p Principal, items []port.Item) error {
	if !p.Admin() {
		return errors.Wrap(domain.ErrForbidden, "provisioning requires admin role")
	}
	ctx, span := s.tracer.Start(ctx, "order.ProvisionItems")
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, item := range items {
		g.Go(func() error {
			if err := s.inventory.Provision(ctx, item.SKU, item.Quantity, p.Token); err != nil {
				return errors.Wrapf(domain.ErrDependencyUnavailable, "provision %s: %v", item.SKU, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// publish pushes the committed event to the bus. Best effort only: the
// mutation has already committed, a publish failure is logged and dropped.
func (s *OrderApplicationService) publish(ctx context.Context, event domain.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", event.OrderID).
			Str("type", string(event.Type)).
			Msg("event publication failed")
	}
}

// outcomeError maps a failed coordinator pass onto the error taxonomy.
// Unavailable participants surface as 503-class errors so callers can tell
// "try again later" from a definitive rejection.
func outcomeError(outcome saga.Outcome) error {
	if outcome.Unavailable {
		return errors.Wrapf(domain.ErrDependencyUnavailable, "inventory adjustment for %s failed: %s", outcome.FailedSKU, outcome.Message)
	}
	return errors.Wrapf(domain.ErrValidation, "inventory adjustment for %s failed: %s", outcome.FailedSKU, outcome.Message)
}
