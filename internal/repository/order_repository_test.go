package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"order_manager/internal/apperrors"
	"order_manager/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.MenuItem{}))
	return db
}

func sampleOrder(total int) *models.Order {
	return &models.Order{
		Items:        models.OrderItems{{Name: "Nem chua", UnitPrice: total, Quantity: 1}},
		Total:        total,
		CustomerName: "Khách",
		Status:       models.OrderPending,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestOrderRepositoryCreateAssignsID(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	order := sampleOrder(36000)
	require.NoError(t, repo.Create(order))
	require.NotZero(t, order.ID)

	got, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, got.Status)
	require.Equal(t, 36000, got.Total)
	require.Len(t, got.Items, 1)
	require.Equal(t, "Nem chua", got.Items[0].Name)
}

func TestOrderRepositoryGetByIDNotFound(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	_, err := repo.GetByID(99)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderRepositoryGetAllNewestFirst(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		order := sampleOrder(10000 * (i + 1))
		order.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(order))
	}

	orders, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.Equal(t, 30000, orders[0].Total)
	require.Equal(t, 20000, orders[1].Total)
	require.Equal(t, 10000, orders[2].Total)
}

func TestOrderRepositoryGetAllTieBreaksOnID(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		order := sampleOrder(10000)
		order.CreatedAt = ts
		require.NoError(t, repo.Create(order))
	}

	orders, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Greater(t, orders[0].ID, orders[1].ID)
}

func TestOrderRepositoryUpdateStatus(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	order := sampleOrder(36000)
	require.NoError(t, repo.Create(order))

	require.NoError(t, repo.UpdateStatus(order.ID, models.OrderConfirmed))

	got, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderConfirmed, got.Status)

	require.ErrorIs(t, repo.UpdateStatus(999, models.OrderConfirmed), apperrors.ErrNotFound)
}

func TestOrderRepositoryDeleteIsIdempotentAtCallerBoundary(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	order := sampleOrder(36000)
	require.NoError(t, repo.Create(order))

	require.NoError(t, repo.Delete(order.ID))
	require.ErrorIs(t, repo.Delete(order.ID), apperrors.ErrNotFound)

	_, err := repo.GetByID(order.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOrderRepositoryIDNotReusedAfterDelete(t *testing.T) {
	repo := NewOrderRepository(newTestDB(t))

	first := sampleOrder(10000)
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Delete(first.ID))

	second := sampleOrder(20000)
	require.NoError(t, repo.Create(second))
	require.Greater(t, second.ID, first.ID)
}
