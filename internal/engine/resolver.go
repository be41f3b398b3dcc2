package engine

import (
	"fmt"
	"strconv"
	"strings"

	"backend/internal/domain"
	"backend/internal/store"
)

// ApplyInvoiceEdit applies one cell edit to the invoice at index and performs
// the dependent-field recomputations that edit implies. The aggregate passes
// (RecalcProductAggregates, RecalcCustomerAggregates) are the caller's job and
// must run on the returned state, never on a pre-edit snapshot.
func ApplyInvoiceEdit(state store.State, index int, field string, raw any) store.State {
	return state.WithInvoice(index, func(inv domain.Invoice) domain.Invoice {
		switch field {
		case "product_name":
			name := strings.TrimSpace(coerceText(raw))
			product, found := state.ProductByName(name)
			if !found || domain.MissingText(name) {
				inv.ProductName = name
				inv.ProductID = ""
				return inv
			}
			inv.ProductName = product.Name
			inv.ProductID = product.ID
			inv.Quantity = 1
			inv.Tax = perUnitTax(product) * float64(inv.Quantity)
			inv.TotalAmount = product.UnitPrice*float64(inv.Quantity) + inv.Tax
		case "quantity":
			qty := coerceQuantity(raw)
			inv.Quantity = qty
			if product, ok := state.ProductByID(inv.ProductID); ok && product.UnitPrice > 0 {
				inv.Tax = perUnitTax(product) * float64(qty)
				inv.TotalAmount = product.UnitPrice*float64(qty) + inv.Tax
			}
		case "tax":
			inv.Tax = coerceAmount(raw)
			if product, ok := state.ProductByID(inv.ProductID); ok {
				inv.TotalAmount = product.UnitPrice*float64(inv.Quantity) + inv.Tax
			}
		case "total_amount":
			// Direct edits to the total are authoritative: no backward
			// recomputation of tax or quantity.
			inv.TotalAmount = coerceAmount(raw)
		case "customer_name":
			name := coerceText(raw)
			inv.CustomerName = name
			if customer, ok := state.CustomerByName(name); ok {
				inv.CustomerID = customer.ID
			} else {
				inv.CustomerID = ""
			}
		case "serial_number":
			inv.SerialNumber = coerceText(raw)
		case "date":
			inv.Date = coerceText(raw)
		case "payment_mode":
			inv.PaymentMode = coerceText(raw)
		case "notes":
			inv.Notes = coerceText(raw)
		case "discount":
			inv.Discount = coerceAmount(raw)
		}
		return inv
	})
}

// RecalcScopeForInvoiceField reports which aggregate passes must follow an
// edit to the given invoice field.
func RecalcScopeForInvoiceField(field string) (recalcProducts, recalcCustomers bool) {
	switch field {
	case "quantity", "tax", "total_amount", "product_name":
		return true, true
	case "customer_name":
		return false, true
	}
	return false, false
}

// ApplyProductEdit applies one cell edit to the product with the given display
// name. Pricing edits (unit_price, tax) cascade into every invoice linked to
// the product; callers must run both aggregate passes afterwards. Name edits
// are not accepted here, renames go through RenameProduct.
func ApplyProductEdit(state store.State, name, field string, raw any) store.State {
	switch field {
	case "unit_price", "tax":
		next := state.WithProduct(name, func(p domain.Product) domain.Product {
			if field == "unit_price" {
				p.UnitPrice = coerceAmount(raw)
			} else {
				p.Tax = coerceAmount(raw)
			}
			p.PriceWithTax = p.UnitPrice*float64(p.Quantity) + p.Tax
			return p
		})
		if product, ok := next.ProductByName(name); ok {
			return cascadeProductPricing(next, product)
		}
		return next
	case "quantity":
		return state.WithProduct(name, func(p domain.Product) domain.Product {
			p.Quantity = coerceQuantity(raw)
			return p
		})
	case "price_with_tax":
		return state.WithProduct(name, func(p domain.Product) domain.Product {
			p.PriceWithTax = coerceAmount(raw)
			return p
		})
	case "discount":
		return state.WithProduct(name, func(p domain.Product) domain.Product {
			p.Discount = coerceAmount(raw)
			return p
		})
	case "sku":
		return state.WithProduct(name, func(p domain.Product) domain.Product {
			p.SKU = coerceText(raw)
			return p
		})
	}
	return state
}

// RecalcScopeForProductField reports which aggregate passes must follow an
// edit to the given product field.
func RecalcScopeForProductField(field string) (recalcProducts, recalcCustomers bool) {
	switch field {
	case "unit_price", "tax":
		return true, true
	}
	return false, false
}

// ApplyCustomerEdit applies one cell edit to the customer with the given
// display name. No customer field cascades anywhere.
func ApplyCustomerEdit(state store.State, name, field string, raw any) store.State {
	return state.WithCustomer(name, func(c domain.Customer) domain.Customer {
		switch field {
		case "phone_number":
			c.PhoneNumber = coerceText(raw)
		case "email":
			c.Email = coerceText(raw)
		case "address":
			c.Address = coerceText(raw)
		case "total_purchase_amount":
			c.TotalPurchaseAmount = coerceAmount(raw)
		}
		return c
	})
}

// cascadeProductPricing rewrites tax and total on every invoice linked to the
// product after its pricing changed, mirroring what a fresh product selection
// would have computed.
func cascadeProductPricing(state store.State, product domain.Product) store.State {
	perUnit := perUnitTax(product)
	next := state.Clone()
	for i, inv := range next.Invoices {
		if inv.ProductID != product.ID {
			continue
		}
		qty := inv.Quantity
		if qty == 0 {
			qty = 1
		}
		tax := perUnit * float64(qty)
		next.Invoices[i].Tax = tax
		next.Invoices[i].TotalAmount = product.UnitPrice*float64(qty) + tax
	}
	return next
}

// perUnitTax spreads the product's aggregate tax evenly over its aggregate
// quantity. A zero quantity uses a divisor of 1 so the result stays finite.
func perUnitTax(product domain.Product) float64 {
	divisor := product.Quantity
	if divisor <= 0 {
		divisor = 1
	}
	return product.Tax / float64(divisor)
}

func coerceText(raw any) string {
	switch value := raw.(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		return fmt.Sprint(value)
	}
}

// coerceQuantity parses a non-negative integer out of whatever the client
// sent. Invalid, absent, and negative values all collapse to 0.
func coerceQuantity(raw any) int {
	switch value := raw.(type) {
	case float64:
		if value < 0 {
			return 0
		}
		return int(value)
	case int:
		if value < 0 {
			return 0
		}
		return value
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || parsed < 0 {
			return 0
		}
		return int(parsed)
	}
	return 0
}

// coerceAmount parses a non-negative real number; invalid and negative values
// collapse to 0.
func coerceAmount(raw any) float64 {
	switch value := raw.(type) {
	case float64:
		if value < 0 {
			return 0
		}
		return value
	case int:
		if value < 0 {
			return 0
		}
		return float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || parsed < 0 {
			return 0
		}
		return parsed
	}
	return 0
}
