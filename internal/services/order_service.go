package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"order_manager/internal/apperrors"
	"order_manager/internal/models"
	"order_manager/internal/repository"
)

type OrderService interface {
	CreateOrder(order *models.Order) (*models.Order, error)
	GetOrderByID(id uint) (*models.Order, error)
	GetAllOrders() ([]models.Order, error)
	UpdateStatus(id uint, status models.OrderStatus) error
	ReplaceOrder(id uint, update *models.Order) error
	DeleteOrder(id uint) error
	BulkDelete(ids []uint) (int, map[uint]error)
	Lifecycle() models.Lifecycle
}

type orderService struct {
	orderRepo repository.OrderRepository
	mirror    OrderMirror
	lifecycle models.Lifecycle
	logger    *zap.Logger
}

func NewOrderService(orderRepo repository.OrderRepository, mirror OrderMirror, lifecycle models.Lifecycle, logger *zap.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		mirror:    mirror,
		lifecycle: lifecycle,
		logger:    logger,
	}
}

func (s *orderService) CreateOrder(order *models.Order) (*models.Order, error) {
	if len(order.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", apperrors.ErrValidation)
	}
	for _, item := range order.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1 for %q", apperrors.ErrValidation, item.Name)
		}
	}
	// Client totals are not trusted; the item snapshot is authoritative.
	if sum := order.Items.Sum(); order.Total != sum {
		return nil, fmt.Errorf("%w: total %d does not match item sum %d", apperrors.ErrValidation, order.Total, sum)
	}

	order.ID = 0
	order.Status = models.OrderPending
	order.CreatedAt = time.Now().UTC()

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	created := *order
	go func() {
		if !s.mirror.MirrorCreate(&created) {
			s.logger.Warn("ledger mirror skipped order create",
				zap.Uint("order_id", created.ID),
				zap.Error(apperrors.ErrMirrorUnavailable))
		}
	}()

	return order, nil
}

func (s *orderService) GetOrderByID(id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

func (s *orderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

func (s *orderService) UpdateStatus(id uint, status models.OrderStatus) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !s.lifecycle.CanTransition(order.Status, status) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, order.Status, status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return err
	}

	s.mirrorStatus(id, status)
	return nil
}

// ReplaceOrder overwrites every mutable field of an existing order.
// Used by the staff edit flow; the caller is responsible for keeping
// the total in line with the items. Status set here bypasses the
// lifecycle graph, matching free-form staff edits.
func (s *orderService) ReplaceOrder(id uint, update *models.Order) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}

	status := update.Status
	if status == "" {
		status = models.OrderPending
	}
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}

	order.Items = update.Items
	order.Total = update.Total
	order.CustomerName = update.CustomerName
	order.CustomerPhone = update.CustomerPhone
	order.DeliveryAddress = update.DeliveryAddress
	order.DeliveryTime = update.DeliveryTime
	order.Status = status

	if err := s.orderRepo.Update(order); err != nil {
		return err
	}

	if update.Status != "" {
		s.mirrorStatus(id, status)
	}
	return nil
}

func (s *orderService) DeleteOrder(id uint) error {
	return s.orderRepo.Delete(id)
}

// BulkDelete removes every order in ids. An order that is already gone
// counts as deleted; only other failures are reported, per id.
func (s *orderService) BulkDelete(ids []uint) (int, map[uint]error) {
	deleted := 0
	failures := make(map[uint]error)
	for _, id := range ids {
		err := s.orderRepo.Delete(id)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, apperrors.ErrNotFound):
			// Observed effect is the same: the order no longer exists.
			deleted++
		default:
			failures[id] = err
			s.logger.Error("bulk delete failed for order",
				zap.Uint("order_id", id), zap.Error(err))
		}
	}
	return deleted, failures
}

func (s *orderService) Lifecycle() models.Lifecycle {
	return s.lifecycle
}

func (s *orderService) mirrorStatus(id uint, status models.OrderStatus) {
	go func() {
		if !s.mirror.MirrorStatusChange(id, status) {
			s.logger.Warn("ledger mirror skipped status change",
				zap.Uint("order_id", id),
				zap.String("status", string(status)),
				zap.Error(apperrors.ErrMirrorUnavailable))
		}
	}()
}
