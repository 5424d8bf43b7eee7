// Package stock provides the stock register: quantity on hand per item and
// the append-only movement log explaining it.
package stock

import (
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
)

// Direction classifies a movement.
type Direction string

const (
	DirectionIn         Direction = "IN"
	DirectionOut        Direction = "OUT"
	DirectionAdjustment Direction = "ADJUSTMENT"
)

// Movement records one quantity change of one item.
type Movement struct {
	entity.MovementBase

	ItemID   id.ID  `db:"item_id" json:"itemId"`
	ItemName string `db:"item_name" json:"itemName"`

	// Qty is signed: negative for OUT, positive for IN.
	Qty       types.Quantity `db:"qty" json:"qty"`
	Direction Direction      `db:"direction" json:"type"`
	Reason    *string        `db:"reason" json:"reason,omitempty"`
}

// Posting is the stock effect of one document.
type Posting struct {
	// ReferenceID is the document number written on every movement.
	ReferenceID string
	Direction   Direction
	Lines       []PostingLine
}

// PostingLine is one line of a Posting. Lines without ItemID are ad hoc and
// carry no stock effect.
type PostingLine struct {
	ItemID *id.ID
	Qty    types.Quantity
}

// Delta returns the signed stock change of qty under direction.
func Delta(direction Direction, qty types.Quantity) types.Quantity {
	if direction == DirectionOut {
		return -qty
	}
	return qty
}

// ItemStock is the stock-relevant view of one item.
type ItemStock struct {
	ItemID       id.ID          `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Unit         string         `db:"unit" json:"unit"`
	PurchaseRate types.Money    `db:"purchase_rate" json:"purchaseRate"`
	OpeningStock types.Quantity `db:"opening_stock" json:"openingStock"`
	Stock        types.Quantity `db:"stock" json:"stock"`
}

// ItemBalance pairs an item's stored stock with the sum of its movements.
type ItemBalance struct {
	ItemStock
	MovementSum types.Quantity `db:"movement_sum" json:"movementSum"`
}

// MovementFilter narrows movement history.
type MovementFilter struct {
	domain.ListFilter
	ItemID      *id.ID
	ReferenceID string
}
