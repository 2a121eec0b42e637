package models

import "time"

// Product represents an inventory item owned by a single user.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text;not null;default:''"`
	Price       float64   `json:"price" gorm:"not null"`
	Quantity    int       `json:"quantity" gorm:"not null;default:0"`
	Category    string    `json:"category" gorm:"type:varchar(100);not null"`
	SKU         string    `json:"sku" gorm:"type:varchar(32);uniqueIndex;not null"`
	CreatedBy   string    `json:"created_by" gorm:"type:varchar(36);index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the table name for Product.
func (Product) TableName() string {
	return "products"
}
