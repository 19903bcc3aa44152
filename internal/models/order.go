package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// OrderItem is a snapshot of a menu item at the moment the order was
// placed. It is never re-derived from the live menu.
type OrderItem struct {
	Name      string `json:"name"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// OrderItems is persisted as a JSON text column on the order row.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (items *OrderItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*items = nil
		return nil
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	}
	return errors.New("unsupported column type for order items")
}

// Sum returns the total implied by the item snapshot.
func (items OrderItems) Sum() int {
	total := 0
	for _, item := range items {
		total += item.UnitPrice * item.Quantity
	}
	return total
}

type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	Items           OrderItems  `json:"items" gorm:"type:text;not null"`
	Total           int         `json:"total" gorm:"not null"`
	CustomerName    string      `json:"customer_name"`
	CustomerPhone   string      `json:"customer_phone"`
	DeliveryAddress string      `json:"delivery_address"`
	DeliveryTime    string      `json:"delivery_time"`
	Status          OrderStatus `json:"status" gorm:"default:'pending'"`
	CreatedAt       time.Time   `json:"created_at"`
}
