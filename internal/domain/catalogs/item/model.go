// Package item provides the Item catalog: stockable products.
package item

import (
	"context"

	"github.com/shopspring/decimal"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/types"
)

// DefaultTaxPercent applies when an item is created without a tax rate.
var DefaultTaxPercent = decimal.NewFromInt(18)

// Item is a stockable product.
type Item struct {
	entity.Catalog

	Unit    string  `db:"unit" json:"unit"`
	HSN     *string `db:"hsn" json:"hsn,omitempty"`
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	PurchaseRate types.Money   `db:"purchase_rate" json:"purchaseRate"`
	SaleRate     types.Money   `db:"sale_rate" json:"saleRate"`
	TaxPercent   types.Percent `db:"tax_percent" json:"taxPercent"`

	// OpeningStock is the quantity on hand when the item was created.
	OpeningStock types.Quantity `db:"opening_stock" json:"openingStock"`

	// Stock is the quantity on hand. Only the stock register writes it.
	Stock types.Quantity `db:"stock" json:"stock"`
}

// NewItem creates an Item whose stock starts at openingStock.
func NewItem(name, unit string, openingStock types.Quantity) *Item {
	return &Item{
		Catalog:      entity.NewCatalog(name),
		Unit:         unit,
		TaxPercent:   DefaultTaxPercent,
		OpeningStock: openingStock,
		Stock:        openingStock,
	}
}

// Validate implements entity.Validatable interface.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.Catalog.Validate(ctx); err != nil {
		return err
	}

	if i.PurchaseRate.IsNegative() {
		return apperror.NewValidation("purchase rate must not be negative").
			WithDetail("field", "purchaseRate")
	}
	if i.SaleRate.IsNegative() {
		return apperror.NewValidation("sale rate must not be negative").
			WithDetail("field", "saleRate")
	}
	if !types.InPercentRange(i.TaxPercent) {
		return apperror.NewValidation("tax percent must be between 0 and 100").
			WithDetail("field", "taxPercent")
	}

	return nil
}
