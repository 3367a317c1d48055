package models

import "time"

// Category is a named grouping of books.
type Category struct {
	ID          uint      `json:"category_id" gorm:"primaryKey"`
	Name        string    `json:"category_name" gorm:"column:category_name;type:varchar(100)"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Books referencing this category block its deletion.
	Books []Book `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
}
