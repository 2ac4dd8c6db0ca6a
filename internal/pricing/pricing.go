// Package pricing holds the GST, discount and total arithmetic shared by the
// cart and order engines. All amounts are rounded to two decimal places.
package pricing

import (
	"github.com/fekuna/omnipos-commerce-service/internal/apperror"
	"github.com/fekuna/omnipos-commerce-service/internal/model"
	"github.com/shopspring/decimal"
)

const places = 2

var hundred = decimal.NewFromInt(100)

type Calculator struct {
	GSTRate decimal.Decimal // percent
}

func NewCalculator(gstRate decimal.Decimal) Calculator {
	return Calculator{GSTRate: gstRate}
}

// UnitGST is the tax charged on one unit at unitPrice.
func (c Calculator) UnitGST(unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(c.GSTRate).Div(hundred).Round(places)
}

// LineDiscount is the discount on a line whose undiscounted value is base.
// A fixed discount applies once per line, not per unit.
func LineDiscount(base, amount decimal.Decimal, typ model.DiscountType) decimal.Decimal {
	if typ == model.DiscountPercentage {
		return base.Mul(amount).Div(hundred).Round(places)
	}
	return amount
}

// EffectiveDiscount is the money taken off total. For percentage discounts
// amount is the percentage itself. Fixed discounts never exceed total.
func EffectiveDiscount(total, amount decimal.Decimal, typ model.DiscountType) decimal.Decimal {
	if typ == model.DiscountPercentage {
		return total.Mul(amount).Div(hundred).Round(places)
	}
	return decimal.Min(amount, total)
}

func FinalAmount(total, discount decimal.Decimal, typ model.DiscountType, gst decimal.Decimal) decimal.Decimal {
	return total.Sub(EffectiveDiscount(total, discount, typ)).Add(gst)
}

// ValidateDiscount checks an order-level discount against the order total.
func ValidateDiscount(total, amount decimal.Decimal, typ model.DiscountType) error {
	if !typ.Valid() {
		return apperror.Validation("discount_type must be percentage or fixed")
	}
	if amount.IsNegative() {
		return apperror.Validation("discount amount cannot be negative")
	}
	if typ == model.DiscountPercentage && amount.GreaterThan(hundred) {
		return apperror.Validation("percentage discount cannot exceed 100")
	}
	if typ == model.DiscountFixed && amount.GreaterThan(total) {
		return apperror.Validation("discount amount cannot be greater than order total")
	}
	return nil
}

// Reprice recomputes final_amount after total, gst or the discount changed.
func Reprice(o *model.Order) {
	o.FinalAmount = FinalAmount(o.TotalAmount, o.DiscountAmount, o.DiscountType, o.GSTAmount)
}

type CartSummary struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalGST      decimal.Decimal `json:"total_gst"`
	Total         decimal.Decimal `json:"total"`
	TotalItems    int             `json:"total_items"`
}

// SummarizeCart totals the active items; other statuses are ignored.
func SummarizeCart(items []model.CartItem) CartSummary {
	s := CartSummary{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalGST:      decimal.Zero,
	}
	for _, it := range items {
		if it.Status != model.CartItemActive {
			continue
		}
		qty := decimal.NewFromInt(int64(it.Quantity))
		base := it.UnitPrice.Mul(qty)
		s.Subtotal = s.Subtotal.Add(base)
		s.TotalDiscount = s.TotalDiscount.Add(LineDiscount(base, it.Discount, it.DiscountType))
		s.TotalGST = s.TotalGST.Add(it.GSTAmount.Mul(qty))
		s.TotalItems += it.Quantity
	}
	s.Total = s.Subtotal.Sub(s.TotalDiscount).Add(s.TotalGST)
	return s
}

// ItemTotal is the undiscounted value of an order line.
func ItemTotal(it *model.OrderItem) decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ItemGST is the tax of an order line.
func ItemGST(it *model.OrderItem) decimal.Decimal {
	return it.GSTAmount.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ItemSubtotal is what the line costs after its own discount, tax included.
func ItemSubtotal(it *model.OrderItem) decimal.Decimal {
	base := ItemTotal(it)
	return base.Sub(LineDiscount(base, it.DiscountAmount, it.DiscountType)).Add(ItemGST(it))
}
