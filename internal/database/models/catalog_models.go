package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID       int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU      string          `gorm:"column:sku;size:50;uniqueIndex;not null" json:"sku"`
	Name     string          `gorm:"size:255;not null" json:"name"`
	Category *string         `gorm:"size:100" json:"category,omitempty"`
	UOM      string          `gorm:"column:uom;size:20;not null;default:pcs" json:"uom"`
	Barcode  *string         `gorm:"size:100;uniqueIndex" json:"barcode,omitempty"`
	MinQty   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"minQty"`
	ImageURL *string         `gorm:"size:500" json:"imageUrl,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Moves []InventoryMove `gorm:"foreignKey:ItemID" json:"-"`
}

type Location struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`

	Moves []InventoryMove `gorm:"foreignKey:LocationID" json:"-"`
}
