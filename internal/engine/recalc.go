package engine

import (
	"backend/internal/domain"
	"backend/internal/store"
)

type productTotals struct {
	quantity int
	tax      float64
	total    float64
}

// RecalcProductAggregates rebuilds every product's quantity/tax/price_with_tax
// from the invoice list. It is a full rebuild, never an incremental patch, so
// calling it twice on the same state yields the same result. Invoices without
// a product link are excluded; products with no invoices keep their last-known
// aggregates.
func RecalcProductAggregates(state store.State) store.State {
	totals := map[string]*productTotals{}
	for _, inv := range state.Invoices {
		if inv.ProductID == "" {
			continue
		}
		t := totals[inv.ProductID]
		if t == nil {
			t = &productTotals{}
			totals[inv.ProductID] = t
		}
		t.quantity += inv.Quantity
		t.tax += inv.Tax
		t.total += inv.TotalAmount
	}

	next := state.Clone()
	for i, product := range next.Products {
		if t, ok := totals[product.ID]; ok {
			next.Products[i].Quantity = t.quantity
			next.Products[i].Tax = t.tax
			next.Products[i].PriceWithTax = t.total
		}
	}
	return next
}

// RecalcCustomerAggregates rebuilds every customer's total_purchase_amount
// from the invoice list, with the same exclusion and retain-if-absent rules
// as the product pass.
func RecalcCustomerAggregates(state store.State) store.State {
	totals := map[string]float64{}
	for _, inv := range state.Invoices {
		if inv.CustomerID == "" {
			continue
		}
		totals[inv.CustomerID] += inv.TotalAmount
	}

	next := state.Clone()
	for i, customer := range next.Customers {
		if total, ok := totals[customer.ID]; ok {
			next.Customers[i].TotalPurchaseAmount = total
		}
	}
	return next
}

// ComputeTotals summarizes the invoice list for the dashboard header.
func ComputeTotals(state store.State) domain.Totals {
	totals := domain.Totals{TotalInvoices: len(state.Invoices)}
	for _, inv := range state.Invoices {
		totals.TotalAmount += inv.TotalAmount
		totals.TotalTax += inv.Tax
	}
	return totals
}
