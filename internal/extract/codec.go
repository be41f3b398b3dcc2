package extract

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"backend/internal/domain"
	"backend/internal/store"
)

// sentinel is the marker the extraction service uses for absent fields. It is
// translated to empty strings on ingest and re-applied on export; nothing
// outside this package compares against it.
const sentinel = "MISSING"

// Envelope is the extraction service's response payload, also produced by the
// local spreadsheet parser.
type Envelope struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Invoices  []WireInvoice  `json:"invoices" validate:"dive"`
	Products  []WireProduct  `json:"products" validate:"dive"`
	Customers []WireCustomer `json:"customers" validate:"dive"`
}

type WireInvoice struct {
	SerialNumber string  `json:"serial_number"`
	CustomerName string  `json:"customer_name"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	Tax          float64 `json:"tax" validate:"gte=0"`
	TotalAmount  float64 `json:"total_amount" validate:"gte=0"`
	Discount     float64 `json:"discount"`
	Date         string  `json:"date"`
	PaymentMode  string  `json:"payment_mode"`
	Notes        string  `json:"notes"`
}

type WireProduct struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity" validate:"gte=0"`
	UnitPrice    float64 `json:"unit_price" validate:"gte=0"`
	Tax          float64 `json:"tax" validate:"gte=0"`
	PriceWithTax float64 `json:"price_with_tax"`
	Discount     float64 `json:"discount"`
	SKU          string  `json:"sku"`
}

type WireCustomer struct {
	CustomerName        string  `json:"customer_name"`
	PhoneNumber         string  `json:"phone_number"`
	TotalPurchaseAmount float64 `json:"total_purchase_amount"`
	Email               string  `json:"email"`
	Address             string  `json:"address"`
}

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

func AllowedExtension(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

func SpreadsheetExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".xlsx" || ext == ".xls"
}

// Ingest builds a fresh state from an envelope: sentinel text becomes the
// empty string, every entity receives a stable id, and invoice foreign keys
// are linked to products/customers by name match. Aggregate recomputation is
// the caller's follow-up.
func Ingest(envelope Envelope) store.State {
	state := store.State{
		Invoices:  make([]domain.Invoice, 0, len(envelope.Invoices)),
		Products:  make([]domain.Product, 0, len(envelope.Products)),
		Customers: make([]domain.Customer, 0, len(envelope.Customers)),
	}

	productIDs := map[string]string{}
	for _, wire := range envelope.Products {
		product := domain.Product{
			ID:           uuid.NewString(),
			Name:         fromWire(wire.Name),
			Quantity:     wire.Quantity,
			UnitPrice:    wire.UnitPrice,
			Tax:          wire.Tax,
			PriceWithTax: wire.PriceWithTax,
			Discount:     wire.Discount,
			SKU:          fromWire(wire.SKU),
		}
		if !domain.MissingText(product.Name) {
			if _, taken := productIDs[product.Name]; !taken {
				productIDs[product.Name] = product.ID
			}
		}
		state.Products = append(state.Products, product)
	}

	customerIDs := map[string]string{}
	for _, wire := range envelope.Customers {
		customer := domain.Customer{
			ID:                  uuid.NewString(),
			CustomerName:        fromWire(wire.CustomerName),
			PhoneNumber:         fromWire(wire.PhoneNumber),
			Email:               fromWire(wire.Email),
			Address:             fromWire(wire.Address),
			TotalPurchaseAmount: wire.TotalPurchaseAmount,
		}
		if !domain.MissingText(customer.CustomerName) {
			if _, taken := customerIDs[customer.CustomerName]; !taken {
				customerIDs[customer.CustomerName] = customer.ID
			}
		}
		state.Customers = append(state.Customers, customer)
	}

	for _, wire := range envelope.Invoices {
		invoice := domain.Invoice{
			ID:           uuid.NewString(),
			SerialNumber: fromWire(wire.SerialNumber),
			CustomerName: fromWire(wire.CustomerName),
			ProductName:  fromWire(wire.ProductName),
			Quantity:     wire.Quantity,
			Tax:          wire.Tax,
			TotalAmount:  wire.TotalAmount,
			Discount:     wire.Discount,
			Date:         fromWire(wire.Date),
			PaymentMode:  fromWire(wire.PaymentMode),
			Notes:        fromWire(wire.Notes),
		}
		invoice.ProductID = productIDs[invoice.ProductName]
		invoice.CustomerID = customerIDs[invoice.CustomerName]
		state.Invoices = append(state.Invoices, invoice)
	}

	return state
}

// SnapshotForExport converts a state into the downloadable snapshot, restoring
// the sentinel for empty optional text so the artifact round-trips through the
// same UI conventions the extraction payload uses.
func SnapshotForExport(state store.State, exportedAt time.Time) domain.Snapshot {
	snapshot := domain.Snapshot{
		Invoices:   make([]domain.Invoice, len(state.Invoices)),
		Products:   make([]domain.Product, len(state.Products)),
		Customers:  make([]domain.Customer, len(state.Customers)),
		ExportDate: exportedAt.UTC().Format(time.RFC3339),
	}
	for i, invoice := range state.Invoices {
		invoice.SerialNumber = toWire(invoice.SerialNumber)
		invoice.CustomerName = toWire(invoice.CustomerName)
		invoice.ProductName = toWire(invoice.ProductName)
		invoice.Date = toWire(invoice.Date)
		invoice.PaymentMode = toWire(invoice.PaymentMode)
		invoice.Notes = toWire(invoice.Notes)
		snapshot.Invoices[i] = invoice
	}
	for i, product := range state.Products {
		product.Name = toWire(product.Name)
		product.SKU = toWire(product.SKU)
		snapshot.Products[i] = product
	}
	for i, customer := range state.Customers {
		customer.CustomerName = toWire(customer.CustomerName)
		customer.PhoneNumber = toWire(customer.PhoneNumber)
		customer.Email = toWire(customer.Email)
		customer.Address = toWire(customer.Address)
		snapshot.Customers[i] = customer
	}
	return snapshot
}

func fromWire(value string) string {
	value = strings.TrimSpace(value)
	if value == sentinel {
		return ""
	}
	return value
}

func toWire(value string) string {
	if domain.MissingText(value) {
		return sentinel
	}
	return value
}
