// internal/service/order/domain/port/user.go
package port

import "context"

// UserService validates user references. Only consulted at order creation;
// identity cannot change afterwards, so updates and deletes skip it.
type UserService interface {
	Exists(ctx context.Context, userID int64, token string) (bool, error)
}
