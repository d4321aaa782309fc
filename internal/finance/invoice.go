package finance

import "github.com/theirongolddev/tally/internal/model"

// basisPoints is the tax_rate denominator.
const basisPoints = 10000

// Totals is a computed invoice breakdown.
type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	DiscountCents int64
	TotalCents    int64
}

// LineTotal is quantity times unit price.
func LineTotal(it model.InvoiceItem) int64 {
	return it.Quantity * it.UnitPriceCents
}

// InvoiceTotals mirrors the server's invoice math so totals can be shown
// before submit. Tax uses integer basis points and truncates per line.
func InvoiceTotals(items []model.InvoiceItem, discountCents int64) Totals {
	var t Totals
	for _, it := range items {
		sub := LineTotal(it)
		t.SubtotalCents += sub
		t.TaxCents += sub * it.TaxRate / basisPoints
	}
	t.DiscountCents = discountCents
	t.TotalCents = t.SubtotalCents + t.TaxCents - discountCents
	return t
}
