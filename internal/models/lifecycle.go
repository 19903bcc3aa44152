package models

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderPreparing  OrderStatus = "preparing"
	OrderDelivering OrderStatus = "delivering"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderDelivering, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Lifecycle maps each status to the statuses reachable from it.
// Statuses with no outbound edges are terminal.
type Lifecycle map[OrderStatus][]OrderStatus

// PermissiveLifecycle lets staff complete a confirmed order directly,
// skipping the preparing and delivering steps. Any non-terminal order
// can be cancelled.
var PermissiveLifecycle = Lifecycle{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderPreparing, OrderCompleted, OrderCancelled},
	OrderPreparing:  {OrderDelivering, OrderCancelled},
	OrderDelivering: {OrderCompleted, OrderCancelled},
	OrderCompleted:  {},
	OrderCancelled:  {},
}

// FullLifecycle forces every order through preparing and delivering
// before it can complete.
var FullLifecycle = Lifecycle{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderPreparing, OrderCancelled},
	OrderPreparing:  {OrderDelivering, OrderCancelled},
	OrderDelivering: {OrderCompleted, OrderCancelled},
	OrderCompleted:  {},
	OrderCancelled:  {},
}

// LifecycleByName resolves the ORDER_LIFECYCLE config value. The
// permissive graph is the default.
func LifecycleByName(name string) Lifecycle {
	if name == "full" {
		return FullLifecycle
	}
	return PermissiveLifecycle
}

func (l Lifecycle) CanTransition(from, to OrderStatus) bool {
	for _, next := range l[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (l Lifecycle) IsTerminal(s OrderStatus) bool {
	return len(l[s]) == 0
}
