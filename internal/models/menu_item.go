package models

type MenuItem struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Category    string `json:"category" gorm:"not null"`
	Price       int    `json:"price" gorm:"not null"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}
