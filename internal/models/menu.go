package models

import "github.com/shopspring/decimal"

// MenuItem is menu item entity. Discount is a whole percentage in [0, 100].
type MenuItem struct {
	ID           string
	RestaurantID string
	Name         string
	Description  string
	Price        decimal.Decimal
	Category     string
	ImageURL     string
	Discount     int
	IsAvailable  bool
}

// EffectivePrice returns the listed price with the item discount applied,
// rounded to whole currency units.
func (m *MenuItem) EffectivePrice() decimal.Decimal {
	if m.Discount <= 0 {
		return m.Price
	}
	factor := decimal.NewFromInt(int64(100 - m.Discount)).Div(decimal.NewFromInt(100))
	return m.Price.Mul(factor).Round(0)
}
