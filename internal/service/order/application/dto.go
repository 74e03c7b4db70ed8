// internal/service/order/application/dto.go
package application

import "atlas/internal/service/order/domain"

// Principal is the authenticated caller, passed explicitly through every
// operation instead of living in ambient request state. Token is the raw
// bearer token, forwarded verbatim to the participants.
type Principal struct {
	UserID int64
	Role   string
	Token  string
}

func (p Principal) Admin() bool {
	return p.Role == "admin"
}

// CanAccess reports whether the principal may act on an order owned by
// ownerID.
func (p Principal) CanAccess(ownerID int64) bool {
	return p.Admin() || p.UserID == ownerID
}

type CreateOrderRequest struct {
	ID     string            `json:"id"`
	UserID int64             `json:"user_id"`
	Total  domain.Cents      `json:"total"`
	Status domain.Status     `json:"status"`
	Items  []domain.LineItem `json:"items"`
}

// UpdateOrderRequest carries a partial update; nil fields stay untouched.
// Line items and ownership are immutable after creation.
type UpdateOrderRequest struct {
	Total  *domain.Cents  `json:"total"`
	Status *domain.Status `json:"status"`
}
