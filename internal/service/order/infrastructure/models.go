// internal/service/order/infrastructure/models.go
package infrastructure

import (
	"time"

	"atlas/internal/service/order/domain"
)

type OrderModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	UserID     int64  `gorm:"not null;index"`
	TotalCents int64  `gorm:"not null"`
	Status     string `gorm:"not null;default:pending;size:64"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Items      []OrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

func (OrderModel) TableName() string { return "orders" }

type OrderItemModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	OrderID        string `gorm:"not null;index;size:64"`
	SKU            string `gorm:"not null;size:64"`
	Quantity       int    `gorm:"not null"`
	UnitPriceCents int64  `gorm:"not null"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// OrderEventModel rows are append-only; no update or delete path exists and
// there is deliberately no foreign key so the ledger outlives its order.
type OrderEventModel struct {
	Seq         int64  `gorm:"primaryKey;autoIncrement"`
	EventID     string `gorm:"not null;uniqueIndex;size:36"`
	OrderID     string `gorm:"not null;index;size:64"`
	EventType   string `gorm:"not null;size:32"`
	Description string `gorm:"size:255"`
	OldValue    string `gorm:"size:255"`
	NewValue    string `gorm:"size:255"`
	ActorID     int64  `gorm:"not null"`
	CreatedAt   time.Time
}

func (OrderEventModel) TableName() string { return "order_events" }

func toOrderModel(o *domain.Order) *OrderModel {
	m := &OrderModel{
		ID:         o.ID,
		UserID:     o.UserID,
		TotalCents: int64(o.Total),
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, item := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			OrderID:        o.ID,
			SKU:            item.SKU,
			Quantity:       item.Quantity,
			UnitPriceCents: int64(item.UnitPrice),
		})
	}
	return m
}

func toDomainOrder(m *OrderModel) *domain.Order {
	o := &domain.Order{
		ID:        m.ID,
		UserID:    m.UserID,
		Total:     domain.Cents(m.TotalCents),
		Status:    domain.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, item := range m.Items {
		o.Items = append(o.Items, domain.LineItem{
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: domain.Cents(item.UnitPriceCents),
		})
	}
	return o
}

func toEventModel(e domain.OrderEvent) *OrderEventModel {
	return &OrderEventModel{
		EventID:     e.EventID,
		OrderID:     e.OrderID,
		EventType:   string(e.Type),
		Description: e.Description,
		OldValue:    e.OldValue,
		NewValue:    e.NewValue,
		ActorID:     e.ActorID,
		CreatedAt:   e.CreatedAt,
	}
}

func toDomainEvent(m *OrderEventModel) domain.OrderEvent {
	return domain.OrderEvent{
		Seq:         m.Seq,
		EventID:     m.EventID,
		OrderID:     m.OrderID,
		Type:        domain.EventType(m.EventType),
		Description: m.Description,
		OldValue:    m.OldValue,
		NewValue:    m.NewValue,
		ActorID:     m.ActorID,
		CreatedAt:   m.CreatedAt,
	}
}
