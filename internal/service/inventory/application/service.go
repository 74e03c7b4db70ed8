// internal/service/inventory/application/service.go
package application

import (
	"context"
	"time"

	"atlas/internal/pkg/logger"
	"atlas/internal/service/inventory/domain"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace"
)

// Service implements the inventory participant's operations.
type Service struct {
	repo   domain.Repository
	tracer trace.Tracer
}

func NewService(repo domain.Repository, tracer trace.Tracer) *Service {
	return &Service{repo: repo, tracer: tracer}
}

func (s *Service) Get(ctx context.Context, sku string) (*domain.Item, error) {
	return s.repo.FindBySKU(ctx, sku)
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]*domain.Item, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *Service) Create(ctx context.Context, sku, name string, quantity int) (*domain.Item, error) {
	item, err := domain.NewItem(sku, name, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Update(ctx context.Context, sku string, name *string, quantity *int) (*domain.Item, error) {
	item, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if name != nil {
		item.Name = *name
	}
	if quantity != nil {
		if *quantity < 0 {
			return nil, errors.Wrap(domain.ErrValidation, "quantity must not be negative")
		}
		item.Quantity = *quantity
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, sku string) error {
	return s.repo.Delete(ctx, sku)
}

// Adjust applies one stock movement. Deducts that would underflow fail with
// no partial effect; restores always succeed for a known SKU.
func (s *Service) Adjust(ctx context.Context, sku string, quantity int, direction domain.Direction) error {
	ctx, span := s.tracer.Start(ctx, "inventory.Adjust")
	defer span.End()

	if quantity <= 0 {
		return errors.Wrap(domain.ErrValidation, "quantity must be positive")
	}
	delta := quantity
	if direction == domain.DirectionDeduct {
		delta = -quantity
	}
	if err := s.repo.AdjustQuantity(ctx, sku, delta); err != nil {
		return err
	}
	logger.Ctx(ctx).Info().
		Str("sku", sku).
		Int("quantity", quantity).
		Str("direction", string(direction)).
		Msg("stock adjusted")
	return nil
}
