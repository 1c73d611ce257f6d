package models

import "github.com/shopspring/decimal"

// Vehicle is one row of the inventory table.
type Vehicle struct {
	ID               int             `gorm:"column:inv_id;primaryKey;autoIncrement"`
	Make             string          `gorm:"column:inv_make;not null"`
	Model            string          `gorm:"column:inv_model;not null"`
	Year             int             `gorm:"column:inv_year;not null"`
	Description      string          `gorm:"column:inv_description;not null"`
	Image            string          `gorm:"column:inv_image;not null"`
	Thumbnail        string          `gorm:"column:inv_thumbnail;not null"`
	Price            decimal.Decimal `gorm:"column:inv_price;type:numeric(9,2);not null"`
	Miles            int             `gorm:"column:inv_miles;not null"`
	Color            string          `gorm:"column:inv_color;not null"`
	ClassificationID int             `gorm:"column:classification_id;not null;index"`
	Classification   Classification
}

func (Vehicle) TableName() string { return "inventory" }
