package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/dresi/internal/apperr"
	"github.com/erazemk/dresi/internal/model"
)

func validateProductInput(in model.ProductInput) error {
	var errs apperr.ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs.Add("name", "is required")
	}
	if !model.ValidProductType(in.Type) {
		errs.Add("type", "unknown product type %q", in.Type)
	}
	if in.KitTypeID <= 0 {
		errs.Add("kit_type_id", "is required")
	}
	validateSizes(&errs, in.Sizes)
	validatePricing(&errs, in.Price, in.SalePrice, in.IsOnSale)
	return errs.Err()
}

func validateProductPatch(current model.Product, known bool, p model.ProductPatch) error {
	var errs apperr.ValidationErrors
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs.Add("name", "cannot be empty")
	}
	if p.Type != nil && !model.ValidProductType(*p.Type) {
		errs.Add("type", "unknown product type %q", *p.Type)
	}
	if p.KitTypeID != nil && *p.KitTypeID <= 0 {
		errs.Add("kit_type_id", "is required")
	}
	if p.Sizes != nil {
		validateSizes(&errs, p.Sizes)
	}

	if p.Price != nil || p.SalePrice != nil || p.IsOnSale != nil {
		// Pricing rules apply to the merged result, which needs the current
		// record when only part of the pricing changes.
		price, sale, onSale := current.Price, current.SalePrice, current.IsOnSale
		if p.Price != nil {
			price = *p.Price
		}
		if p.SalePrice != nil {
			sale = *p.SalePrice
		}
		if p.IsOnSale != nil {
			onSale = *p.IsOnSale
		}
		if known || p.Price != nil {
			validatePricing(&errs, price, sale, onSale)
		}
	}
	return errs.Err()
}

func validateSizes(errs *apperr.ValidationErrors, sizes []model.SizeQuantity) {
	seen := make(map[string]bool, len(sizes))
	for _, sz := range sizes {
		switch {
		case strings.TrimSpace(sz.Size) == "":
			errs.Add("sizes", "size name is required")
		case seen[sz.Size]:
			errs.Add("sizes", "size %s is listed more than once", sz.Size)
		}
		seen[sz.Size] = true
		if sz.Quantity < 0 {
			errs.Add("sizes", "quantity for size %s cannot be negative", sz.Size)
		}
	}
}

func validatePricing(errs *apperr.ValidationErrors, price decimal.Decimal, sale decimal.NullDecimal, onSale bool) {
	if !price.IsPositive() {
		errs.Add("price", "must be greater than zero")
	}
	if sale.Valid && sale.Decimal.IsNegative() {
		errs.Add("sale_price", "cannot be negative")
	}
	if onSale {
		if !sale.Valid {
			errs.Add("sale_price", "is required when the product is on sale")
		} else if !sale.Decimal.LessThan(price) {
			errs.Add("sale_price", "must be lower than the price")
		}
	}
}

func validateNamesetInput(in model.NamesetInput) error {
	var errs apperr.ValidationErrors
	if strings.TrimSpace(in.PlayerName) == "" {
		errs.Add("player_name", "is required")
	}
	if in.Number < 0 {
		errs.Add("number", "cannot be negative")
	}
	if in.Quantity < 0 {
		errs.Add("quantity", "cannot be negative")
	}
	return errs.Err()
}

func validateNamesetPatch(_ model.Nameset, _ bool, p model.NamesetPatch) error {
	var errs apperr.ValidationErrors
	if p.PlayerName != nil && strings.TrimSpace(*p.PlayerName) == "" {
		errs.Add("player_name", "cannot be empty")
	}
	if p.Number != nil && *p.Number < 0 {
		errs.Add("number", "cannot be negative")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		errs.Add("quantity", "cannot be negative")
	}
	return errs.Err()
}

func validateBadgeInput(in model.BadgeInput) error {
	var errs apperr.ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs.Add("name", "is required")
	}
	if in.Quantity < 0 {
		errs.Add("quantity", "cannot be negative")
	}
	return errs.Err()
}

func validateBadgePatch(_ model.Badge, _ bool, p model.BadgePatch) error {
	var errs apperr.ValidationErrors
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs.Add("name", "cannot be empty")
	}
	if p.Quantity != nil && *p.Quantity < 0 {
		errs.Add("quantity", "cannot be negative")
	}
	return errs.Err()
}

func requireName(field string) func(name string) error {
	return func(name string) error {
		var errs apperr.ValidationErrors
		if strings.TrimSpace(name) == "" {
			errs.Add(field, "is required")
		}
		return errs.Err()
	}
}
