package services

import "order_manager/internal/models"

// OrderMirror projects order events onto a secondary, best-effort
// ledger. Implementations must never fail the caller; they report the
// outcome as a bool and keep their errors to themselves.
type OrderMirror interface {
	MirrorCreate(order *models.Order) bool
	MirrorStatusChange(orderID uint, status models.OrderStatus) bool
}

// NoopMirror stands in when no ledger target is configured.
type NoopMirror struct{}

func (NoopMirror) MirrorCreate(*models.Order) bool { return false }

func (NoopMirror) MirrorStatusChange(uint, models.OrderStatus) bool { return false }
