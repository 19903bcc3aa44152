package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"order_manager/internal/models"
	"order_manager/internal/services"
)

type AdminHandler struct {
	authService  services.AuthService
	orderService services.OrderService
	watchManager *services.WatchManager
	logger       *zap.Logger
}

func NewAdminHandler(
	authService services.AuthService,
	orderService services.OrderService,
	watchManager *services.WatchManager,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		orderService: orderService,
		watchManager: watchManager,
		logger:       logger,
	}
}

// Login handles POST /api/admin/login. A successful login also starts
// the new-order watch for the session.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	sessionID, err := h.authService.Login(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.watchManager.StartSession(sessionID); err != nil {
		h.logger.Error("failed to start order watch", zap.Error(err))
		h.authService.Logout(sessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID})
}

// Logout handles DELETE /api/admin/sessions/:session_id. Stopping the
// watcher releases its polling goroutine.
func (h *AdminHandler) Logout(c *gin.Context) {
	sessionID := c.Param("session_id")
	h.watchManager.StopSession(sessionID)
	if err := h.authService.Logout(sessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "status": "ended"})
}

func (h *AdminHandler) watcherFor(c *gin.Context) (*services.Watcher, bool) {
	sessionID := c.Param("session_id")
	if err := h.authService.ValidateSession(sessionID); err != nil {
		respondError(c, err)
		return nil, false
	}
	watcher, ok := h.watchManager.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No watch for session"})
		return nil, false
	}
	return watcher, true
}

// GetAlert handles GET /api/admin/sessions/:session_id/alert.
func (h *AdminHandler) GetAlert(c *gin.Context) {
	watcher, ok := h.watcherFor(c)
	if !ok {
		return
	}

	alert := watcher.Alert()
	if alert == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// AcceptAlert handles POST /api/admin/sessions/:session_id/alert/accept.
func (h *AdminHandler) AcceptAlert(c *gin.Context) {
	watcher, ok := h.watcherFor(c)
	if !ok {
		return
	}

	if err := watcher.Accept(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order accepted"})
}

// CancelAlert handles POST /api/admin/sessions/:session_id/alert/cancel.
func (h *AdminHandler) CancelAlert(c *gin.Context) {
	watcher, ok := h.watcherFor(c)
	if !ok {
		return
	}

	if err := watcher.Cancel(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}

// DismissAlert handles POST /api/admin/sessions/:session_id/alert/dismiss.
// The order stays pending and will not be alerted again.
func (h *AdminHandler) DismissAlert(c *gin.Context) {
	watcher, ok := h.watcherFor(c)
	if !ok {
		return
	}

	watcher.Dismiss()
	c.JSON(http.StatusOK, gin.H{"message": "Alert dismissed"})
}

// BulkDelete handles POST /api/admin/orders/bulk-delete. The shared
// passphrase is required on every call; orders already gone count as
// deleted.
func (h *AdminHandler) BulkDelete(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
		IDs      []uint `json:"ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.authService.VerifyPassphrase(req.Password); err != nil {
		respondError(c, err)
		return
	}

	deleted, failures := h.orderService.BulkDelete(req.IDs)
	failed := make(map[uint]string, len(failures))
	for id, err := range failures {
		failed[id] = err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"failed":  failed,
	})
}

// GetStats handles GET /api/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		respondError(c, err)
		return
	}

	totalRevenue := 0
	openOrders := 0
	completedOrders := 0
	for _, order := range orders {
		switch order.Status {
		case models.OrderCompleted:
			completedOrders++
			totalRevenue += order.Total
		case models.OrderPending, models.OrderConfirmed, models.OrderPreparing, models.OrderDelivering:
			openOrders++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_orders":     len(orders),
		"total_revenue":    totalRevenue,
		"open_orders":      openOrders,
		"completed_orders": completedOrders,
	})
}
