package dto

import (
	"tradebook/internal/core/types"
	"tradebook/internal/domain/catalogs/item"
	"tradebook/internal/domain/catalogs/party"
)

// --- Party ---

// CreatePartyRequest is the request body for creating a party.
type CreatePartyRequest struct {
	Name           string      `json:"name" binding:"required"`
	Mobile         string      `json:"mobile" binding:"required"`
	Email          *string     `json:"email"`
	Type           party.Type  `json:"type" binding:"required"`
	OpeningBalance types.Money `json:"openingBalance"`
	TaxID          *string     `json:"taxId"`
	Address        *string     `json:"address"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePartyRequest) ToEntity() *party.Party {
	p := party.NewParty(r.Name, r.Mobile, r.Type, r.OpeningBalance)
	p.Email = r.Email
	p.TaxID = r.TaxID
	p.Address = r.Address
	return p
}

// UpdatePartyRequest is the request body for updating a party.
type UpdatePartyRequest struct {
	CreatePartyRequest
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePartyRequest) ApplyTo(p *party.Party) {
	p.Name = r.Name
	p.Mobile = r.Mobile
	p.Email = r.Email
	p.Type = r.Type
	p.OpeningBalance = r.OpeningBalance
	p.TaxID = r.TaxID
	p.Address = r.Address
	p.Version = r.Version
}

// --- Item ---

// CreateItemRequest is the request body for creating an item.
type CreateItemRequest struct {
	Name         string         `json:"name" binding:"required"`
	Unit         string         `json:"unit"`
	HSN          *string        `json:"hsn"`
	Barcode      *string        `json:"barcode"`
	PurchaseRate types.Money    `json:"purchaseRate"`
	SaleRate     types.Money    `json:"saleRate"`
	TaxPercent   *types.Percent `json:"taxPercent"`
	OpeningStock types.Quantity `json:"openingStock"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateItemRequest) ToEntity() *item.Item {
	unit := r.Unit
	if unit == "" {
		unit = "pcs"
	}
	it := item.NewItem(r.Name, unit, r.OpeningStock)
	it.HSN = r.HSN
	it.Barcode = r.Barcode
	it.PurchaseRate = r.PurchaseRate
	it.SaleRate = r.SaleRate
	if r.TaxPercent != nil {
		it.TaxPercent = *r.TaxPercent
	}
	return it
}

// UpdateItemRequest is the request body for updating an item's master data.
// Stock is not accepted here.
type UpdateItemRequest struct {
	Name         string        `json:"name" binding:"required"`
	Unit         string        `json:"unit" binding:"required"`
	HSN          *string       `json:"hsn"`
	Barcode      *string       `json:"barcode"`
	PurchaseRate types.Money   `json:"purchaseRate"`
	SaleRate     types.Money   `json:"saleRate"`
	TaxPercent   types.Percent `json:"taxPercent"`
	Version      int           `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateItemRequest) ApplyTo(it *item.Item) {
	it.Name = r.Name
	it.Unit = r.Unit
	it.HSN = r.HSN
	it.Barcode = r.Barcode
	it.PurchaseRate = r.PurchaseRate
	it.SaleRate = r.SaleRate
	it.TaxPercent = r.TaxPercent
	it.Version = r.Version
}

// AdjustStockRequest is a manual stock correction.
type AdjustStockRequest struct {
	Delta  types.Quantity `json:"delta"`
	Reason string         `json:"reason" binding:"required"`
}
