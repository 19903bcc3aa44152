package repository

import (
	"errors"

	"gorm.io/gorm"

	"order_manager/internal/apperrors"
	"order_manager/internal/models"
)

type MenuRepository interface {
	Create(item *models.MenuItem) error
	GetByID(id uint) (*models.MenuItem, error)
	GetAll() ([]models.MenuItem, error)
	GetByCategory(category string) ([]models.MenuItem, error)
	Update(item *models.MenuItem) error
	Delete(id uint) error
	Count() (int64, error)
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(item *models.MenuItem) error {
	return r.db.Create(item).Error
}

func (r *menuRepository) GetByID(id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) GetAll() ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.Order("category, name").Find(&items).Error
	return items, err
}

func (r *menuRepository) GetByCategory(category string) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.Where("category = ?", category).Order("name").Find(&items).Error
	return items, err
}

func (r *menuRepository) Update(item *models.MenuItem) error {
	result := r.db.Save(item)
	return result.Error
}

func (r *menuRepository) Delete(id uint) error {
	result := r.db.Delete(&models.MenuItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *menuRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.MenuItem{}).Count(&count).Error
	return count, err
}
