package engine

import (
	"strings"

	"backend/internal/store"
)

// RenameProduct changes a product's display name and rewrites the matching
// foreign-key column on every invoice in the same transition, so no partially
// renamed state is ever committed. Preconditions: the trimmed new name must be
// non-empty and differ from the old one, and a product with the old name must
// exist. On precondition failure the state is returned unchanged with ok=false
// and the edit is discarded.
func RenameProduct(state store.State, oldName, newName string) (store.State, bool) {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return state, false
	}
	product, found := state.ProductByName(oldName)
	if !found {
		return state, false
	}

	next := state.Clone()
	for i := range next.Products {
		if next.Products[i].ID == product.ID {
			next.Products[i].Name = newName
			break
		}
	}
	for i := range next.Invoices {
		if next.Invoices[i].ProductID == product.ID || next.Invoices[i].ProductName == oldName {
			next.Invoices[i].ProductName = newName
			next.Invoices[i].ProductID = product.ID
		}
	}
	return next, true
}

// RenameCustomer is the customer counterpart of RenameProduct.
func RenameCustomer(state store.State, oldName, newName string) (store.State, bool) {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return state, false
	}
	customer, found := state.CustomerByName(oldName)
	if !found {
		return state, false
	}

	next := state.Clone()
	for i := range next.Customers {
		if next.Customers[i].ID == customer.ID {
			next.Customers[i].CustomerName = newName
			break
		}
	}
	for i := range next.Invoices {
		if next.Invoices[i].CustomerID == customer.ID || next.Invoices[i].CustomerName == oldName {
			next.Invoices[i].CustomerName = newName
			next.Invoices[i].CustomerID = customer.ID
		}
	}
	return next, true
}
