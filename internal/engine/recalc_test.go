package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backend/internal/domain"
	"backend/internal/store"
)

func aggregateState() store.State {
	return store.State{
		Products: []domain.Product{
			{ID: "p1", Name: "Widget", Quantity: 99, Tax: 99, PriceWithTax: 99},
			{ID: "p2", Name: "Gadget", Quantity: 7, Tax: 3, PriceWithTax: 33},
		},
		Customers: []domain.Customer{
			{ID: "c1", CustomerName: "Alice", TotalPurchaseAmount: 1},
			{ID: "c2", CustomerName: "Bob", TotalPurchaseAmount: 555},
		},
		Invoices: []domain.Invoice{
			{ID: "i1", CustomerID: "c1", ProductID: "p1", Quantity: 2, Tax: 5, TotalAmount: 25},
			{ID: "i2", CustomerID: "c1", ProductID: "p1", Quantity: 3, Tax: 7.5, TotalAmount: 37.5},
			{ID: "i3", CustomerID: "", ProductID: "", Quantity: 10, Tax: 100, TotalAmount: 1000},
		},
	}
}

func TestRecalcProductAggregatesSums(t *testing.T) {
	next := RecalcProductAggregates(aggregateState())

	widget := next.Products[0]
	assert.Equal(t, 5, widget.Quantity)
	assert.InDelta(t, 12.5, widget.Tax, 1e-9)
	assert.InDelta(t, 62.5, widget.PriceWithTax, 1e-9)
}

func TestRecalcProductAggregatesRetainsWhenAbsent(t *testing.T) {
	next := RecalcProductAggregates(aggregateState())

	// no invoice references Gadget; its last-known aggregates survive
	gadget := next.Products[1]
	assert.Equal(t, 7, gadget.Quantity)
	assert.InDelta(t, 3.0, gadget.Tax, 1e-9)
	assert.InDelta(t, 33.0, gadget.PriceWithTax, 1e-9)
}

func TestRecalcCustomerAggregatesSums(t *testing.T) {
	next := RecalcCustomerAggregates(aggregateState())

	assert.InDelta(t, 62.5, next.Customers[0].TotalPurchaseAmount, 1e-9)
	assert.InDelta(t, 555.0, next.Customers[1].TotalPurchaseAmount, 1e-9)
}

func TestRecalcCustomerAggregatesMatchesInvoiceSum(t *testing.T) {
	state := aggregateState()
	next := RecalcCustomerAggregates(state)

	want := 0.0
	for _, inv := range state.Invoices {
		if inv.CustomerID == "c1" {
			want += inv.TotalAmount
		}
	}
	assert.InDelta(t, want, next.Customers[0].TotalPurchaseAmount, 1e-9)
}

func TestUnlinkedInvoicesExcludedFromAggregation(t *testing.T) {
	state := aggregateState()
	next := RecalcProductAggregates(RecalcCustomerAggregates(state))

	// the unlinked invoice's 1000 total lands nowhere
	total := 0.0
	for _, c := range next.Customers {
		total += c.TotalPurchaseAmount
	}
	assert.InDelta(t, 62.5+555.0, total, 1e-9)
}

func TestRecalcIsIdempotent(t *testing.T) {
	state := aggregateState()

	once := RecalcCustomerAggregates(RecalcProductAggregates(state))
	twice := RecalcCustomerAggregates(RecalcProductAggregates(once))

	assert.Equal(t, once, twice)
}

func TestRecalcIgnoresPriorAggregateState(t *testing.T) {
	state := aggregateState()
	dirty := state.Clone()
	dirty.Products[0].Quantity = 123456
	dirty.Products[0].Tax = -1
	dirty.Customers[0].TotalPurchaseAmount = 1e12

	fromClean := RecalcCustomerAggregates(RecalcProductAggregates(state))
	fromDirty := RecalcCustomerAggregates(RecalcProductAggregates(dirty))

	assert.Equal(t, fromClean.Products[0], fromDirty.Products[0])
	assert.Equal(t, fromClean.Customers[0], fromDirty.Customers[0])
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(aggregateState())

	assert.Equal(t, 3, totals.TotalInvoices)
	assert.InDelta(t, 1062.5, totals.TotalAmount, 1e-9)
	assert.InDelta(t, 112.5, totals.TotalTax, 1e-9)
}
