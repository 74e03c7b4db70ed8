// internal/service/inventory/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"atlas/internal/service/inventory/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

type ItemModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	SKU       string `gorm:"not null;uniqueIndex;size:64"`
	Name      string `gorm:"size:255"`
	Quantity  int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ItemModel) TableName() string { return "inventory_items" }

type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) Migrate() error {
	return r.db.AutoMigrate(&ItemModel{})
}

func (r *GormItemRepository) Create(ctx context.Context, item *domain.Item) error {
	model := toModel(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicate(err) {
			return errors.Wrapf(domain.ErrConflict, "sku %s", item.SKU)
		}
		return errors.Wrapf(err, "create item %s", item.SKU)
	}
	return nil
}

func (r *GormItemRepository) Update(ctx context.Context, item *domain.Item) error {
	res := r.db.WithContext(ctx).Model(&ItemModel{}).Where("sku = ?", item.SKU).Updates(map[string]interface{}{
		"name":       item.Name,
		"quantity":   item.Quantity,
		"updated_at": item.UpdatedAt,
	})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "update item %s", item.SKU)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(domain.ErrNotFound, "sku %s", item.SKU)
	}
	return nil
}

func (r *GormItemRepository) Delete(ctx context.Context, sku string) error {
	res := r.db.WithContext(ctx).Where("sku = ?", sku).Delete(&ItemModel{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "delete item %s", sku)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(domain.ErrNotFound, "sku %s", sku)
	}
	return nil
}

func (r *GormItemRepository) FindBySKU(ctx context.Context, sku string) (*domain.Item, error) {
	var model ItemModel
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "sku %s", sku)
		}
		return nil, errors.Wrapf(err, "find item %s", sku)
	}
	return toDomain(&model), nil
}

func (r *GormItemRepository) List(ctx context.Context, offset, limit int) ([]*domain.Item, error) {
	var models []ItemModel
	err := r.db.WithContext(ctx).Order("sku").Offset(offset).Limit(limit).Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	out := make([]*domain.Item, 0, len(models))
	for i := range models {
		out = append(out, toDomain(&models[i]))
	}
	return out, nil
}

// AdjustQuantity applies the delta in one conditional UPDATE. The guard in
// the WHERE clause is what makes a deduct atomic: the row only changes when
// enough stock is on hand, so no interleaving of concurrent deducts can
// produce a negative quantity.
func (r *GormItemRepository) AdjustQuantity(ctx context.Context, sku string, delta int) error {
	query := r.db.WithContext(ctx).Model(&ItemModel{}).Where("sku = ?", sku)
	if delta < 0 {
		query = query.Where("quantity >= ?", -delta)
	}
	res := query.Updates(map[string]interface{}{
		"quantity":   gorm.Expr("quantity + ?", delta),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "adjust item %s", sku)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing SKU from an underflow.
		var count int64
		if err := r.db.WithContext(ctx).Model(&ItemModel{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
			return errors.Wrapf(err, "adjust item %s", sku)
		}
		if count == 0 {
			return errors.Wrapf(domain.ErrNotFound, "sku %s", sku)
		}
		return errors.Wrapf(domain.ErrInsufficientStock, "sku %s", sku)
	}
	return nil
}

func toModel(item *domain.Item) *ItemModel {
	return &ItemModel{
		SKU:       item.SKU,
		Name:      item.Name,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func toDomain(m *ItemModel) *domain.Item {
	return &domain.Item{
		SKU:       m.SKU,
		Name:      m.Name,
		Quantity:  m.Quantity,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
