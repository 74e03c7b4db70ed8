// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"atlas/internal/service/order/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// GormOrderRepository persists orders and their ledger entries in MySQL.
// Every mutation writes the row change and its event in one transaction, so
// an order change without its ledger entry (or the reverse) cannot commit.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Migrate creates the schema. Called once from the composition root.
func (r *GormOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{}, &OrderItemModel{}, &OrderEventModel{})
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order, event domain.OrderEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toOrderModel(order)).Error; err != nil {
			return err
		}
		return tx.Create(toEventModel(event)).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return errors.Wrapf(domain.ErrConflict, "order %s already exists", order.ID)
		}
		return errors.Wrapf(err, "create order %s", order.ID)
	}
	return nil
}

func (r *GormOrderRepository) Update(ctx context.Context, order *domain.Order, event domain.OrderEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&OrderModel{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"status":      string(order.Status),
			"total_cents": int64(order.Total),
			"updated_at":  order.UpdatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(domain.ErrNotFound, "order %s", order.ID)
		}
		return tx.Create(toEventModel(event)).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return errors.Wrapf(err, "update order %s", order.ID)
	}
	return nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, orderID string, event domain.OrderEvent) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&OrderItemModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", orderID).Delete(&OrderModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(domain.ErrNotFound, "order %s", orderID)
		}
		return tx.Create(toEventModel(event)).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return errors.Wrapf(err, "delete order %s", orderID)
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "order %s", orderID)
		}
		return nil, errors.Wrapf(err, "find order %s", orderID)
	}
	return toDomainOrder(&model), nil
}

func (r *GormOrderRepository) List(ctx context.Context, offset, limit int) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).Preload("Items").
		Order("created_at").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	out := make([]*domain.Order, 0, len(models))
	for i := range models {
		out = append(out, toDomainOrder(&models[i]))
	}
	return out, nil
}

// Timeline implements domain.EventLedger, ascending by sequence (which is
// assigned in commit order).
func (r *GormOrderRepository) Timeline(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	var models []OrderEventModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("seq").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrapf(err, "timeline for order %s", orderID)
	}
	out := make([]domain.OrderEvent, 0, len(models))
	for i := range models {
		out = append(out, toDomainEvent(&models[i]))
	}
	return out, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
