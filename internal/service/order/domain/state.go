// internal/service/order/domain/state.go
package domain

// Status is an open set of caller-defined labels. Only "cancelled" carries
// inventory semantics; every other label ("pending", "completed", ...) is
// uniformly active.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Active reports whether the status holds a reservation.
func (s Status) Active() bool {
	return s != StatusCancelled
}

// Action is the inventory operation a status transition requires.
type Action int

const (
	ActionNone Action = iota
	ActionDeduct
	ActionRestore
)

func (a Action) String() string {
	switch a {
	case ActionDeduct:
		return "deduct"
	case ActionRestore:
		return "restore"
	default:
		return "none"
	}
}

// StockAction decides the inventory action for a status transition. Label
// changes within the same class (active→active, cancelled→cancelled) never
// touch inventory.
func StockAction(from, to Status) Action {
	switch {
	case from.Active() && !to.Active():
		return ActionRestore
	case !from.Active() && to.Active():
		return ActionDeduct
	default:
		return ActionNone
	}
}

// CreationStockAction decides the inventory action when an order first comes
// into existence. An order created directly as cancelled holds nothing.
func CreationStockAction(status Status, hasItems bool) Action {
	if status.Active() && hasItems {
		return ActionDeduct
	}
	return ActionNone
}
