package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale channels.
const (
	SaleTypeOLX      = "OLX"
	SaleTypeInPerson = "IN-PERSON"
	SaleTypeVinted   = "VINTED"
)

// ValidSaleType reports whether t is a known sale channel.
func ValidSaleType(t string) bool {
	switch t {
	case SaleTypeOLX, SaleTypeInPerson, SaleTypeVinted:
		return true
	}
	return false
}

// Reservation statuses.
const (
	ReservationPending   = "pending"
	ReservationCompleted = "completed"
)

// LineItem is one product size sold, reserved or returned.
type LineItem struct {
	ProductID int64           `json:"product_id"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	PriceSold decimal.Decimal `json:"price_sold"`
}

// Sale is a finalized, stock-consuming transaction.
type Sale struct {
	ID            int64      `json:"id"`
	Items         []LineItem `json:"items"`
	CustomerName  string     `json:"customer_name,omitempty"`
	Date          time.Time  `json:"date"`
	SaleType      string     `json:"sale_type"`
	ReservationID *int64     `json:"reservation_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Total returns the sum of price sold times quantity over all items.
func (s Sale) Total() decimal.Decimal {
	return ItemsTotal(s.Items)
}

// SaleInput is the payload for recording a sale.
type SaleInput struct {
	Items         []LineItem `json:"items"`
	CustomerName  string     `json:"customer_name"`
	Date          time.Time  `json:"date"`
	SaleType      string     `json:"sale_type"`
	ReservationID *int64     `json:"reservation_id,omitempty"`
}

// SalePatch is a partial sale edit. Items, when set, replaces all items.
type SalePatch struct {
	Items        []LineItem `json:"items,omitempty"`
	CustomerName *string    `json:"customer_name,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	SaleType     *string    `json:"sale_type,omitempty"`
}

// Reservation is a customer hold on product stock. The held quantity is
// decremented from the product when the reservation is created.
type Reservation struct {
	ID           int64      `json:"id"`
	Items        []LineItem `json:"items"`
	CustomerName string     `json:"customer_name"`
	ExpiringDate time.Time  `json:"expiring_date"`
	Location     string     `json:"location,omitempty"`
	DateTime     *time.Time `json:"date_time,omitempty"`
	SaleType     string     `json:"sale_type,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Expired reports whether a pending reservation is past its expiring date.
// Expiry is advisory and never changes the reservation.
func (r Reservation) Expired(now time.Time) bool {
	return r.Status == ReservationPending && r.ExpiringDate.Before(now)
}

// ReservationInput is the payload for creating or editing a reservation.
type ReservationInput struct {
	Items        []LineItem `json:"items"`
	CustomerName string     `json:"customer_name"`
	ExpiringDate time.Time  `json:"expiring_date"`
	Location     string     `json:"location"`
	DateTime     *time.Time `json:"date_time,omitempty"`
	SaleType     string     `json:"sale_type"`
}

// Return is a historical record of merchandise returned after a sale.
type Return struct {
	ID           int64      `json:"id"`
	Items        []LineItem `json:"items"`
	CustomerName string     `json:"customer_name,omitempty"`
	Date         time.Time  `json:"date"`
	SaleType     string     `json:"sale_type"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ReturnInput is the payload for recording a return.
type ReturnInput struct {
	Items        []LineItem `json:"items"`
	CustomerName string     `json:"customer_name"`
	Date         time.Time  `json:"date"`
	SaleType     string     `json:"sale_type"`
}

// ReturnFilter narrows a return listing. Zero values match everything.
type ReturnFilter struct {
	Start    *time.Time
	End      *time.Time
	SaleType string
}

// ItemsTotal returns the sum of price sold times quantity.
func ItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.PriceSold.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (s Sale) RecordID() int64        { return s.ID }
func (r Reservation) RecordID() int64 { return r.ID }
func (r Return) RecordID() int64      { return r.ID }
