package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a catalog item. StockQuantity never goes negative: the order
// workflow decrements it with a conditional atomic update instead of a
// database check constraint.
type Book struct {
	ID              uint            `json:"book_id" gorm:"primaryKey"`
	Title           string          `json:"title" gorm:"type:varchar(200)"`
	Author          string          `json:"author" gorm:"type:varchar(100)"`
	ISBN            string          `json:"isbn,omitempty" gorm:"type:varchar(20)"`
	CategoryID      *uint           `json:"category_id,omitempty" gorm:"index"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	StockQuantity   int             `json:"stock_quantity"`
	ImageURL        string          `json:"image_url,omitempty" gorm:"type:varchar(500)"`
	PublicationDate *time.Time      `json:"publication_date,omitempty"`
	Publisher       string          `json:"publisher,omitempty" gorm:"type:varchar(100)"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Category *Category `json:"-" gorm:"foreignKey:CategoryID"`

	// Order items referencing this book block its deletion, preserving
	// order history.
	OrderItems []OrderItem `json:"-" gorm:"foreignKey:BookID;constraint:OnDelete:RESTRICT"`
}
