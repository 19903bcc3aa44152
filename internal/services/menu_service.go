package services

import (
	"fmt"

	"order_manager/internal/apperrors"
	"order_manager/internal/models"
	"order_manager/internal/repository"
)

type MenuService interface {
	CreateItem(item *models.MenuItem) error
	GetItemByID(id uint) (*models.MenuItem, error)
	GetAllItems() ([]models.MenuItem, error)
	GetItemsByCategory(category string) ([]models.MenuItem, error)
	UpdateItem(item *models.MenuItem) error
	DeleteItem(id uint) error
}

type menuService struct {
	menuRepo repository.MenuRepository
}

func NewMenuService(menuRepo repository.MenuRepository) MenuService {
	return &menuService{menuRepo: menuRepo}
}

func validateMenuItem(item *models.MenuItem) error {
	if item.Name == "" || item.Category == "" || item.Price <= 0 {
		return fmt.Errorf("%w: name, category and price are required", apperrors.ErrValidation)
	}
	return nil
}

func (s *menuService) CreateItem(item *models.MenuItem) error {
	if err := validateMenuItem(item); err != nil {
		return err
	}
	return s.menuRepo.Create(item)
}

func (s *menuService) GetItemByID(id uint) (*models.MenuItem, error) {
	return s.menuRepo.GetByID(id)
}

func (s *menuService) GetAllItems() ([]models.MenuItem, error) {
	return s.menuRepo.GetAll()
}

func (s *menuService) GetItemsByCategory(category string) ([]models.MenuItem, error) {
	return s.menuRepo.GetByCategory(category)
}

func (s *menuService) UpdateItem(item *models.MenuItem) error {
	if err := validateMenuItem(item); err != nil {
		return err
	}
	if _, err := s.menuRepo.GetByID(item.ID); err != nil {
		return err
	}
	return s.menuRepo.Update(item)
}

func (s *menuService) DeleteItem(id uint) error {
	return s.menuRepo.Delete(id)
}
