package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"order_manager/internal/models"
	"order_manager/internal/services"
)

type MenuHandler struct {
	menuService services.MenuService
}

func NewMenuHandler(menuService services.MenuService) *MenuHandler {
	return &MenuHandler{menuService: menuService}
}

// GetMenu handles GET /api/menu.
func (h *MenuHandler) GetMenu(c *gin.Context) {
	items, err := h.menuService.GetAllItems()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetMenuByCategory handles GET /api/menu/category/:category.
func (h *MenuHandler) GetMenuByCategory(c *gin.Context) {
	items, err := h.menuService.GetItemsByCategory(c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetMenuItem handles GET /api/menu/:id.
func (h *MenuHandler) GetMenuItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.menuService.GetItemByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateMenuItem handles POST /api/menu.
func (h *MenuHandler) CreateMenuItem(c *gin.Context) {
	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.menuService.CreateItem(&item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /api/menu/:id.
func (h *MenuHandler) UpdateMenuItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var item models.MenuItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	item.ID = id

	if err := h.menuService.UpdateItem(&item); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /api/menu/:id.
func (h *MenuHandler) DeleteMenuItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.menuService.DeleteItem(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}
