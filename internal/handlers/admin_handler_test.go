package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"order_manager/internal/apperrors"
	"order_manager/internal/models"
	"order_manager/internal/redis"
	"order_manager/internal/repository"
	"order_manager/internal/services"
)

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*redis.OperatorSession
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]*redis.OperatorSession)}
}

func (s *memorySessionStore) SetSession(sessionID string, data *redis.OperatorSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = data
	return nil
}

func (s *memorySessionStore) GetSession(sessionID string) (*redis.OperatorSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *memorySessionStore) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *memorySessionStore) TouchSession(sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

type adminFixture struct {
	router       *gin.Engine
	orderService services.OrderService
	watchManager *services.WatchManager
}

// newAdminFixture wires the admin surface over sqlite with an in-memory
// session store. The watch interval is an hour so tests drive Poll by
// hand instead of racing the ticker.
func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	logger := zap.NewNop()
	orderService := services.NewOrderService(
		repository.NewOrderRepository(db), services.NoopMirror{}, models.PermissiveLifecycle, logger)

	sessionStore := newMemorySessionStore()
	authService, err := services.NewAuthService("banh-mi-ngon", sessionStore, time.Hour)
	require.NoError(t, err)
	watchManager := services.NewWatchManager(orderService, sessionStore, time.Hour, logger)
	t.Cleanup(watchManager.StopAll)

	handler := NewAdminHandler(authService, orderService, watchManager, logger)

	router := gin.New()
	admin := router.Group("/api/admin")
	{
		admin.POST("/login", handler.Login)
		admin.DELETE("/sessions/:session_id", handler.Logout)
		admin.GET("/sessions/:session_id/alert", handler.GetAlert)
		admin.POST("/sessions/:session_id/alert/accept", handler.AcceptAlert)
		admin.POST("/sessions/:session_id/alert/cancel", handler.CancelAlert)
		admin.POST("/sessions/:session_id/alert/dismiss", handler.DismissAlert)
		admin.POST("/orders/bulk-delete", handler.BulkDelete)
		admin.GET("/stats", handler.GetStats)
	}
	return &adminFixture{
		router:       router,
		orderService: orderService,
		watchManager: watchManager,
	}
}

func (f *adminFixture) login(t *testing.T) string {
	t.Helper()
	rec := doJSON(t, f.router, http.MethodPost, "/api/admin/login", gin.H{"password": "banh-mi-ngon"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.SessionID)
	return body.SessionID
}

func (f *adminFixture) placeOrder(t *testing.T) *models.Order {
	t.Helper()
	order := &models.Order{
		Items: models.OrderItems{{Name: "Nem chua", UnitPrice: 36000, Quantity: 2}},
		Total: 72000,
	}
	created, err := f.orderService.CreateOrder(order)
	require.NoError(t, err)
	return created
}

func TestLoginRejectsWrongPassphrase(t *testing.T) {
	f := newAdminFixture(t)

	rec := doJSON(t, f.router, http.MethodPost, "/api/admin/login", gin.H{"password": "pho-bo"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginStartsWatchSession(t *testing.T) {
	f := newAdminFixture(t)

	sessionID := f.login(t)
	_, ok := f.watchManager.Get(sessionID)
	assert.True(t, ok)
}

func TestAlertLifecycleOverHTTP(t *testing.T) {
	f := newAdminFixture(t)
	sessionID := f.login(t)

	rec := doJSON(t, f.router, http.MethodGet, "/api/admin/sessions/"+sessionID+"/alert", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	created := f.placeOrder(t)

	watcher, ok := f.watchManager.Get(sessionID)
	require.True(t, ok)
	require.NoError(t, watcher.Poll())

	rec = doJSON(t, f.router, http.MethodGet, "/api/admin/sessions/"+sessionID+"/alert", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var alerted models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerted))
	assert.Equal(t, created.ID, alerted.ID)

	rec = doJSON(t, f.router, http.MethodPost, "/api/admin/sessions/"+sessionID+"/alert/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	after, err := f.orderService.GetOrderByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, after.Status)

	// Accepted orders never come back, even after more polls.
	require.NoError(t, watcher.Poll())
	rec = doJSON(t, f.router, http.MethodGet, "/api/admin/sessions/"+sessionID+"/alert", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCancelAlertOverHTTP(t *testing.T) {
	f := newAdminFixture(t)
	sessionID := f.login(t)

	created := f.placeOrder(t)
	watcher, _ := f.watchManager.Get(sessionID)
	require.NoError(t, watcher.Poll())

	rec := doJSON(t, f.router, http.MethodPost, "/api/admin/sessions/"+sessionID+"/alert/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	after, err := f.orderService.GetOrderByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, after.Status)
}

func TestDismissAlertKeepsOrderPending(t *testing.T) {
	f := newAdminFixture(t)
	sessionID := f.login(t)

	created := f.placeOrder(t)
	watcher, _ := f.watchManager.Get(sessionID)
	require.NoError(t, watcher.Poll())

	rec := doJSON(t, f.router, http.MethodPost, "/api/admin/sessions/"+sessionID+"/alert/dismiss", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	after, err := f.orderService.GetOrderByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, after.Status)

	require.NoError(t, watcher.Poll())
	rec = doJSON(t, f.router, http.MethodGet, "/api/admin/sessions/"+sessionID+"/alert", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAcceptWithoutAlert(t *testing.T) {
	f := newAdminFixture(t)
	sessionID := f.login(t)

	rec := doJSON(t, f.router, http.MethodPost, "/api/admin/sessions/"+sessionID+"/alert/accept", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertRequiresValidSession(t *testing.T) {
	f := newAdminFixture(t)

	rec := doJSON(t, f.router, http.MethodGet, "/api/admin/sessions/deadbeef/alert", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndsSessionAndWatch(t *testing.T) {
	f := newAdminFixture(t)
	sessionID := f.login(t)

	rec := doJSON(t, f.router, http.MethodDelete, "/api/admin/sessions/"+sessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, ok := f.watchManager.Get(sessionID)
	assert.False(t, ok)

	rec = doJSON(t, f.router, http.MethodGet, "/api/admin/sessions/"+sessionID+"/alert", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBulkDeleteWithMissingOrders(t *testing.T) {
	f := newAdminFixture(t)

	var ids []uint
	for i := 0; i < 5; i++ {
		ids = append(ids, f.placeOrder(t).ID)
	}
	// Two are already gone before the bulk call.
	require.NoError(t, f.orderService.DeleteOrder(ids[1]))
	require.NoError(t, f.orderService.DeleteOrder(ids[3]))

	rec := doJSON(t, f.router, http.MethodPost, "/api/admin/orders/bulk-delete",
		gin.H{"password": "banh-mi-ngon", "ids": ids})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Deleted int               `json:"deleted"`
		Failed  map[string]string `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Deleted)
	assert.Empty(t, body.Failed)

	orders, err := f.orderService.GetAllOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestBulkDeleteRejectsWrongPassphrase(t *testing.T) {
	f := newAdminFixture(t)
	created := f.placeOrder(t)

	rec := doJSON(t, f.router, http.MethodPost, "/api/admin/orders/bulk-delete",
		gin.H{"password": "pho-bo", "ids": []uint{created.ID}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	_, err := f.orderService.GetOrderByID(created.ID)
	assert.NoError(t, err, "nothing is deleted without the passphrase")
}

func TestStats(t *testing.T) {
	f := newAdminFixture(t)

	first := f.placeOrder(t)
	second := f.placeOrder(t)
	f.placeOrder(t)

	require.NoError(t, f.orderService.UpdateStatus(first.ID, models.OrderConfirmed))
	require.NoError(t, f.orderService.UpdateStatus(first.ID, models.OrderCompleted))
	require.NoError(t, f.orderService.UpdateStatus(second.ID, models.OrderCancelled))

	rec := doJSON(t, f.router, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		TotalOrders     int `json:"total_orders"`
		TotalRevenue    int `json:"total_revenue"`
		OpenOrders      int `json:"open_orders"`
		CompletedOrders int `json:"completed_orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 72000, stats.TotalRevenue)
	assert.Equal(t, 1, stats.OpenOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
}

func TestRelogin(t *testing.T) {
	f := newAdminFixture(t)

	first := f.login(t)
	second := f.login(t)
	assert.NotEqual(t, first, second)

	_, ok := f.watchManager.Get(first)
	assert.True(t, ok, "earlier sessions keep their watch")
	_, ok = f.watchManager.Get(second)
	assert.True(t, ok)
}
