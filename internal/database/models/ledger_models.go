package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MoveType string

const (
	MoveTypeIn     MoveType = "IN"
	MoveTypeOut    MoveType = "OUT"
	MoveTypeAdjust MoveType = "ADJUST"
)

// Valid reports whether t is one of the three movement types. Direction of
// a stock change is carried by the type, never by the sign of Qty.
func (t MoveType) Valid() bool {
	switch t {
	case MoveTypeIn, MoveTypeOut, MoveTypeAdjust:
		return true
	}
	return false
}

type InventoryMove struct {
	ID         int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID     int64            `gorm:"not null;index" json:"itemId"`
	LocationID int64            `gorm:"not null;index" json:"locationId"`
	Type       MoveType         `gorm:"size:10;not null" json:"type"`
	Qty        decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"qty"`
	UnitCost   *decimal.Decimal `gorm:"type:decimal(20,4)" json:"unitCost,omitempty"`
	SellPrice  *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sellPrice,omitempty"`
	Ref        *string          `gorm:"size:100" json:"ref,omitempty"`
	Note       *string          `gorm:"size:500" json:"note,omitempty"`
	UserName   *string          `gorm:"size:100" json:"userName,omitempty"`
	MovedAt    time.Time        `gorm:"not null;index" json:"movedAt"`

	Item     *Item     `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

// ItemLocationBalance is one row of the derived balances view. It is never
// persisted as a table; the primary read path queries
// v_item_location_balances and the fallback path recomputes the same rows
// from raw moves.
type ItemLocationBalance struct {
	ItemID     int64           `gorm:"column:item_id" json:"item_id"`
	SKU        string          `gorm:"column:sku" json:"sku"`
	Name       string          `gorm:"column:name" json:"name"`
	LocationID int64           `gorm:"column:location_id" json:"location_id"`
	Location   string          `gorm:"column:location" json:"location"`
	QtyOnHand  decimal.Decimal `gorm:"column:qty_on_hand" json:"qty_on_hand"`
}
