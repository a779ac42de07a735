package cart

import "github.com/shopspring/decimal"

// Line is one distinct purchasable item's pending-purchase record. Name,
// image, description, and price are denormalized snapshots taken at add time.
// Disabled is derived: true iff the item is already in the owned library, and
// a disabled line can never be selected.
type Line struct {
	ItemID      string          `json:"id"`
	Name        string          `json:"name"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Selected    bool            `json:"selected"`
	Disabled    bool            `json:"disabled,omitempty"`
}

// Total returns unit price times quantity for this line.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
