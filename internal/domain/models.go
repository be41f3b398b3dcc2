package domain

type Invoice struct {
	ID           string  `json:"id"`
	SerialNumber string  `json:"serial_number"`
	CustomerID   string  `json:"customer_id,omitempty"`
	CustomerName string  `json:"customer_name"`
	ProductID    string  `json:"product_id,omitempty"`
	ProductName  string  `json:"product_name"`
	Quantity     int     `json:"quantity"`
	Tax          float64 `json:"tax"`
	TotalAmount  float64 `json:"total_amount"`
	Discount     float64 `json:"discount"`
	Date         string  `json:"date"`
	PaymentMode  string  `json:"payment_mode"`
	Notes        string  `json:"notes"`
}

type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Tax          float64 `json:"tax"`
	PriceWithTax float64 `json:"price_with_tax"`
	Discount     float64 `json:"discount"`
	SKU          string  `json:"sku"`
}

type Customer struct {
	ID                  string  `json:"id"`
	CustomerName        string  `json:"customer_name"`
	PhoneNumber         string  `json:"phone_number"`
	Email               string  `json:"email"`
	Address             string  `json:"address"`
	TotalPurchaseAmount float64 `json:"total_purchase_amount"`
}

// Snapshot is the export artifact offered for download: the three collections
// plus the moment they were captured.
type Snapshot struct {
	Invoices   []Invoice  `json:"invoices"`
	Products   []Product  `json:"products"`
	Customers  []Customer `json:"customers"`
	ExportDate string     `json:"exportDate"`
}

type Totals struct {
	TotalInvoices int     `json:"total_invoices"`
	TotalAmount   float64 `json:"total_amount"`
	TotalTax      float64 `json:"total_tax"`
}

// MissingText reports whether an optional text field carries no known value.
// The empty string is the one internal representation of "missing"; the
// upstream sentinel never leaves the extract boundary.
func MissingText(value string) bool {
	return value == ""
}
