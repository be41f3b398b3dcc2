package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/domain"
	"backend/internal/store"
)

func widgetState() store.State {
	return store.State{
		Products: []domain.Product{
			{ID: "p1", Name: "Widget", Quantity: 4, UnitPrice: 10, Tax: 20, PriceWithTax: 60},
			{ID: "p2", Name: "Gadget", Quantity: 2, UnitPrice: 8, Tax: 4, PriceWithTax: 20},
		},
		Customers: []domain.Customer{
			{ID: "c1", CustomerName: "Alice"},
			{ID: "c2", CustomerName: "Bob"},
		},
		Invoices: []domain.Invoice{
			{ID: "i1", SerialNumber: "INV-1", CustomerID: "c1", CustomerName: "Alice",
				ProductID: "p1", ProductName: "Widget", Quantity: 4, Tax: 20, TotalAmount: 60},
		},
	}
}

func TestQuantityEditRecomputesTaxAndTotal(t *testing.T) {
	state := widgetState()

	next := ApplyInvoiceEdit(state, 0, "quantity", float64(6))

	inv := next.Invoices[0]
	assert.Equal(t, 6, inv.Quantity)
	assert.InDelta(t, 30.0, inv.Tax, 1e-9)         // 20/4 * 6
	assert.InDelta(t, 90.0, inv.TotalAmount, 1e-9) // 10*6 + 30
}

func TestQuantityEditZeroProductQuantityUsesDivisorOne(t *testing.T) {
	state := widgetState()
	state.Products[0].Quantity = 0

	next := ApplyInvoiceEdit(state, 0, "quantity", float64(3))

	inv := next.Invoices[0]
	assert.InDelta(t, 60.0, inv.Tax, 1e-9)          // 20/1 * 3
	assert.InDelta(t, 90.0, inv.TotalAmount, 1e-9)  // 10*3 + 60
}

func TestQuantityEditWithoutPricedProductStoresVerbatim(t *testing.T) {
	state := widgetState()
	state.Products[0].UnitPrice = 0

	next := ApplyInvoiceEdit(state, 0, "quantity", float64(9))

	inv := next.Invoices[0]
	assert.Equal(t, 9, inv.Quantity)
	assert.InDelta(t, 20.0, inv.Tax, 1e-9)
	assert.InDelta(t, 60.0, inv.TotalAmount, 1e-9)
}

func TestQuantityEditCoercion(t *testing.T) {
	state := widgetState()
	state.Invoices[0].ProductID = ""

	for raw, want := range map[any]int{
		"7":          7,
		"not-a-number": 0,
		float64(-3): 0,
		nil:         0,
	} {
		next := ApplyInvoiceEdit(state, 0, "quantity", raw)
		assert.Equal(t, want, next.Invoices[0].Quantity, "raw %v", raw)
	}
}

func TestTaxEditRecomputesTotalOnly(t *testing.T) {
	state := widgetState()

	next := ApplyInvoiceEdit(state, 0, "tax", float64(12))

	inv := next.Invoices[0]
	assert.Equal(t, 4, inv.Quantity)
	assert.InDelta(t, 12.0, inv.Tax, 1e-9)
	assert.InDelta(t, 52.0, inv.TotalAmount, 1e-9) // 10*4 + 12
}

func TestTotalEditIsAuthoritative(t *testing.T) {
	state := widgetState()

	next := ApplyInvoiceEdit(state, 0, "total_amount", float64(123.45))

	inv := next.Invoices[0]
	assert.InDelta(t, 123.45, inv.TotalAmount, 1e-9)
	assert.Equal(t, 4, inv.Quantity)
	assert.InDelta(t, 20.0, inv.Tax, 1e-9)
}

func TestProductNameEditLinksAndRecomputes(t *testing.T) {
	state := widgetState()

	next := ApplyInvoiceEdit(state, 0, "product_name", "Gadget")

	inv := next.Invoices[0]
	assert.Equal(t, "Gadget", inv.ProductName)
	assert.Equal(t, "p2", inv.ProductID)
	assert.Equal(t, 1, inv.Quantity)
	assert.InDelta(t, 2.0, inv.Tax, 1e-9)          // 4/2 * 1
	assert.InDelta(t, 10.0, inv.TotalAmount, 1e-9) // 8*1 + 2
}

func TestProductNameEditUnknownNameStoresVerbatim(t *testing.T) {
	state := widgetState()

	next := ApplyInvoiceEdit(state, 0, "product_name", "Nonexistent")

	inv := next.Invoices[0]
	assert.Equal(t, "Nonexistent", inv.ProductName)
	assert.Empty(t, inv.ProductID)
	assert.Equal(t, 4, inv.Quantity)
	assert.InDelta(t, 20.0, inv.Tax, 1e-9)
}

func TestCustomerNameEditRelinks(t *testing.T) {
	state := widgetState()

	next := ApplyInvoiceEdit(state, 0, "customer_name", "Bob")
	assert.Equal(t, "Bob", next.Invoices[0].CustomerName)
	assert.Equal(t, "c2", next.Invoices[0].CustomerID)

	next = ApplyInvoiceEdit(next, 0, "customer_name", "Stranger")
	assert.Equal(t, "Stranger", next.Invoices[0].CustomerName)
	assert.Empty(t, next.Invoices[0].CustomerID)
}

func TestVerbatimFieldsDoNotCascade(t *testing.T) {
	state := widgetState()

	next := ApplyInvoiceEdit(state, 0, "payment_mode", "UPI")
	next = ApplyInvoiceEdit(next, 0, "date", "2024-03-01")
	next = ApplyInvoiceEdit(next, 0, "serial_number", "INV-99")

	inv := next.Invoices[0]
	assert.Equal(t, "UPI", inv.PaymentMode)
	assert.Equal(t, "2024-03-01", inv.Date)
	assert.Equal(t, "INV-99", inv.SerialNumber)
	assert.InDelta(t, 20.0, inv.Tax, 1e-9)
	assert.InDelta(t, 60.0, inv.TotalAmount, 1e-9)
}

func TestInvoiceEditOutOfBoundsIsNoOp(t *testing.T) {
	state := widgetState()

	assert.Equal(t, state, ApplyInvoiceEdit(state, 5, "quantity", float64(1)))
	assert.Equal(t, state, ApplyInvoiceEdit(state, -1, "quantity", float64(1)))
}

func TestRecalcScopeForInvoiceField(t *testing.T) {
	for _, field := range []string{"quantity", "tax", "total_amount", "product_name"} {
		products, customers := RecalcScopeForInvoiceField(field)
		assert.True(t, products, field)
		assert.True(t, customers, field)
	}

	products, customers := RecalcScopeForInvoiceField("customer_name")
	assert.False(t, products)
	assert.True(t, customers)

	products, customers = RecalcScopeForInvoiceField("date")
	assert.False(t, products)
	assert.False(t, customers)
}

func TestProductPricingEditCascadesIntoInvoices(t *testing.T) {
	state := widgetState()

	next := ApplyProductEdit(state, "Widget", "unit_price", float64(20))

	product, ok := next.ProductByName("Widget")
	require.True(t, ok)
	assert.InDelta(t, 20.0, product.UnitPrice, 1e-9)
	assert.InDelta(t, 100.0, product.PriceWithTax, 1e-9) // 20*4 + 20

	inv := next.Invoices[0]
	assert.InDelta(t, 20.0, inv.Tax, 1e-9)          // 20/4 * 4
	assert.InDelta(t, 100.0, inv.TotalAmount, 1e-9) // 20*4 + 20
}

func TestProductTaxEditCascadesPerUnit(t *testing.T) {
	state := widgetState()

	next := ApplyProductEdit(state, "Widget", "tax", float64(40))

	inv := next.Invoices[0]
	assert.InDelta(t, 40.0, inv.Tax, 1e-9)          // 40/4 * 4
	assert.InDelta(t, 80.0, inv.TotalAmount, 1e-9)  // 10*4 + 40
}

func TestProductEditUnknownNameIsNoOp(t *testing.T) {
	state := widgetState()

	assert.Equal(t, state, ApplyProductEdit(state, "Nope", "unit_price", float64(5)))
}

func TestProductVerbatimFields(t *testing.T) {
	state := widgetState()

	next := ApplyProductEdit(state, "Widget", "sku", "W-001")
	next = ApplyProductEdit(next, "Widget", "discount", float64(2.5))

	product, _ := next.ProductByName("Widget")
	assert.Equal(t, "W-001", product.SKU)
	assert.InDelta(t, 2.5, product.Discount, 1e-9)
	assert.InDelta(t, 20.0, next.Invoices[0].Tax, 1e-9)
}

func TestCustomerEditStoresVerbatim(t *testing.T) {
	state := widgetState()

	next := ApplyCustomerEdit(state, "Alice", "email", "alice@example.com")
	next = ApplyCustomerEdit(next, "Alice", "total_purchase_amount", "250.5")

	customer, ok := next.CustomerByName("Alice")
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", customer.Email)
	assert.InDelta(t, 250.5, customer.TotalPurchaseAmount, 1e-9)

	assert.Equal(t, state, ApplyCustomerEdit(state, "Nobody", "email", "x@y.z"))
}

// The full edit-then-aggregate flow from a single-invoice product.
func TestQuantityEditThenAggregatePass(t *testing.T) {
	state := store.State{
		Products: []domain.Product{
			{ID: "p1", Name: "Widget", Quantity: 2, UnitPrice: 5, Tax: 10, PriceWithTax: 20},
		},
		Customers: []domain.Customer{{ID: "c1", CustomerName: "Alice"}},
		Invoices: []domain.Invoice{
			{ID: "i1", CustomerID: "c1", CustomerName: "Alice",
				ProductID: "p1", ProductName: "Widget", Quantity: 2, Tax: 10, TotalAmount: 20},
		},
	}

	next := ApplyInvoiceEdit(state, 0, "quantity", float64(5))
	inv := next.Invoices[0]
	assert.InDelta(t, 25.0, inv.Tax, 1e-9)         // 10/2 * 5
	assert.InDelta(t, 50.0, inv.TotalAmount, 1e-9) // 5*5 + 25

	next = RecalcProductAggregates(next)
	next = RecalcCustomerAggregates(next)

	product := next.Products[0]
	assert.Equal(t, 5, product.Quantity)
	assert.InDelta(t, 25.0, product.Tax, 1e-9)
	assert.InDelta(t, 50.0, product.PriceWithTax, 1e-9)
	assert.InDelta(t, 50.0, next.Customers[0].TotalPurchaseAmount, 1e-9)
}
