package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog record statuses. Archived records keep their invariants but are
// hidden from the active listings.
const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Product types.
const (
	ProductTypeShirt  = "SHIRT"
	ProductTypeKidKit = "KID_KIT"
)

// ValidProductType reports whether t is a known product type.
func ValidProductType(t string) bool {
	return t == ProductTypeShirt || t == ProductTypeKidKit
}

// SizeQuantity is the stock held for one size of a product.
type SizeQuantity struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// Product is a sellable shirt or kit with per-size stock.
type Product struct {
	ID        int64               `json:"id"`
	Name      string              `json:"name"`
	Type      string              `json:"type"`
	Sizes     []SizeQuantity      `json:"sizes"`
	Price     decimal.Decimal     `json:"price"`
	SalePrice decimal.NullDecimal `json:"sale_price"`
	IsOnSale  bool                `json:"is_on_sale"`
	NamesetID *int64              `json:"nameset_id,omitempty"`
	TeamID    *int64              `json:"team_id,omitempty"`
	KitTypeID int64               `json:"kit_type_id"`
	BadgeID   *int64              `json:"badge_id,omitempty"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// SizeQuantity returns the stock held for size and whether the product has it.
func (p Product) SizeQuantity(size string) (int, bool) {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Quantity, true
		}
	}
	return 0, false
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name      string              `json:"name"`
	Type      string              `json:"type"`
	Sizes     []SizeQuantity      `json:"sizes"`
	Price     decimal.Decimal     `json:"price"`
	SalePrice decimal.NullDecimal `json:"sale_price"`
	IsOnSale  bool                `json:"is_on_sale"`
	NamesetID *int64              `json:"nameset_id,omitempty"`
	TeamID    *int64              `json:"team_id,omitempty"`
	KitTypeID int64               `json:"kit_type_id"`
	BadgeID   *int64              `json:"badge_id,omitempty"`
}

// ProductPatch is a partial product update. Nil fields are left unchanged.
// Sizes, when set, replaces the whole size list.
type ProductPatch struct {
	Name      *string              `json:"name,omitempty"`
	Type      *string              `json:"type,omitempty"`
	Sizes     []SizeQuantity       `json:"sizes,omitempty"`
	Price     *decimal.Decimal     `json:"price,omitempty"`
	SalePrice *decimal.NullDecimal `json:"sale_price,omitempty"`
	IsOnSale  *bool                `json:"is_on_sale,omitempty"`
	NamesetID *int64               `json:"nameset_id,omitempty"`
	TeamID    *int64               `json:"team_id,omitempty"`
	KitTypeID *int64               `json:"kit_type_id,omitempty"`
	BadgeID   *int64               `json:"badge_id,omitempty"`
}

// Nameset is a player name and number print consumed by products.
type Nameset struct {
	ID         int64     `json:"id"`
	PlayerName string    `json:"player_name"`
	Number     int       `json:"number"`
	Season     string    `json:"season,omitempty"`
	Quantity   int       `json:"quantity"`
	KitTypeID  *int64    `json:"kit_type_id,omitempty"`
	ImageMime  string    `json:"image_mime,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// NamesetInput is the payload for creating a nameset.
type NamesetInput struct {
	PlayerName string `json:"player_name"`
	Number     int    `json:"number"`
	Season     string `json:"season"`
	Quantity   int    `json:"quantity"`
	KitTypeID  *int64 `json:"kit_type_id,omitempty"`
}

// NamesetPatch is a partial nameset update.
type NamesetPatch struct {
	PlayerName *string `json:"player_name,omitempty"`
	Number     *int    `json:"number,omitempty"`
	Season     *string `json:"season,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
	KitTypeID  *int64  `json:"kit_type_id,omitempty"`
}

// Badge is a league or competition patch consumed by products.
type Badge struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Season    string    `json:"season,omitempty"`
	Quantity  int       `json:"quantity"`
	ImageMime string    `json:"image_mime,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// BadgeInput is the payload for creating a badge.
type BadgeInput struct {
	Name     string `json:"name"`
	Season   string `json:"season"`
	Quantity int    `json:"quantity"`
}

// BadgePatch is a partial badge update.
type BadgePatch struct {
	Name     *string `json:"name,omitempty"`
	Season   *string `json:"season,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
}

// Team is a club or national team.
type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamInput is the payload for creating a team.
type TeamInput struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// TeamPatch is a partial team update.
type TeamPatch struct {
	Name    *string `json:"name,omitempty"`
	Country *string `json:"country,omitempty"`
}

// KitType is a kit variant such as home, away or third.
type KitType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// KitTypeInput is the payload for creating a kit type.
type KitTypeInput struct {
	Name string `json:"name"`
}

// KitTypePatch is a partial kit type update.
type KitTypePatch struct {
	Name *string `json:"name,omitempty"`
}

func (p Product) RecordID() int64 { return p.ID }
func (n Nameset) RecordID() int64 { return n.ID }
func (b Badge) RecordID() int64   { return b.ID }
func (t Team) RecordID() int64    { return t.ID }
func (k KitType) RecordID() int64 { return k.ID }

func (p Product) Archived() bool { return p.Status == StatusArchived }
func (n Nameset) Archived() bool { return n.Status == StatusArchived }
func (b Badge) Archived() bool   { return b.Status == StatusArchived }
func (t Team) Archived() bool    { return t.Status == StatusArchived }
func (k KitType) Archived() bool { return k.Status == StatusArchived }
