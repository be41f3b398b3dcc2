package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"backend/internal/extract"
)

var headerAliases = map[string]string{
	"serial number":      "serial_number",
	"serial no":          "serial_number",
	"invoice number":     "serial_number",
	"invoice no":         "serial_number",
	"customer name":      "customer_name",
	"customer":           "customer_name",
	"party name":         "customer_name",
	"party company name": "customer_name",
	"product name":       "product_name",
	"product":            "product_name",
	"item":               "product_name",
	"quantity":           "quantity",
	"qty":                "quantity",
	"tax":                "tax",
	"tax (%)":            "tax_percent",
	"tax %":              "tax_percent",
	"total":              "total_amount",
	"total amount":       "total_amount",
	"item total amount":  "total_amount",
	"price with tax":     "total_amount",
	"date":               "date",
	"invoice date":       "date",
	"price":              "unit_price",
	"unit price":         "unit_price",
	"discount":           "discount",
	"item discount":      "discount",
	"payment mode":       "payment_mode",
	"status":             "notes",
}

// summary rows at the bottom of exported sheets are not line items
var summaryMarkers = map[string]bool{
	"totals":  true,
	"total":   true,
	"none":    true,
	"summary": true,
}

// ParseInvoiceRows reads an invoice spreadsheet into the extraction envelope,
// aggregating products and customers from the line items the same way the
// extraction service does. Absent text fields come back empty.
func ParseInvoiceRows(reader io.Reader) (extract.Envelope, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return extract.Envelope{}, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return extract.Envelope{}, fmt.Errorf("excel file has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return extract.Envelope{}, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return extract.Envelope{}, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])

	envelope := extract.Envelope{Success: true}
	productIndex := map[string]int{}
	customerIndex := map[string]int{}

	for rowNo := 1; rowNo < len(rows); rowNo++ {
		cells := rows[rowNo]
		if blankRow(cells) {
			continue
		}

		serial := strings.TrimSpace(readCell(cells, colMap, "serial_number"))
		product := strings.TrimSpace(readCell(cells, colMap, "product_name"))
		customer := strings.TrimSpace(readCell(cells, colMap, "customer_name"))

		if summaryMarkers[strings.ToLower(serial)] {
			continue
		}
		if serial == "" && product == "" {
			continue
		}
		if serial == "" {
			serial = fmt.Sprintf("INV-%d", rowNo+1)
		}

		qty := readInt(cells, colMap, "quantity")
		if qty <= 0 {
			qty = 1
		}
		total := readFloat(cells, colMap, "total_amount")
		tax := readFloat(cells, colMap, "tax")
		taxPercent := readFloat(cells, colMap, "tax_percent")
		if tax == 0 && taxPercent > 0 && total > 0 {
			beforeTax := total / (1 + taxPercent/100)
			tax = total - beforeTax
		}
		discount := readFloat(cells, colMap, "discount")
		unitPrice := readFloat(cells, colMap, "unit_price")
		if unitPrice == 0 && total > 0 && qty > 0 {
			unitPrice = (total - tax) / float64(qty)
		}

		envelope.Invoices = append(envelope.Invoices, extract.WireInvoice{
			SerialNumber: serial,
			CustomerName: customer,
			ProductName:  product,
			Quantity:     qty,
			Tax:          tax,
			TotalAmount:  total,
			Discount:     discount,
			Date:         strings.TrimSpace(readCell(cells, colMap, "date")),
			PaymentMode:  strings.TrimSpace(readCell(cells, colMap, "payment_mode")),
			Notes:        strings.TrimSpace(readCell(cells, colMap, "notes")),
		})

		if product != "" {
			if idx, seen := productIndex[product]; seen {
				envelope.Products[idx].Quantity += qty
				envelope.Products[idx].Tax += tax
				envelope.Products[idx].PriceWithTax += total
			} else {
				productIndex[product] = len(envelope.Products)
				envelope.Products = append(envelope.Products, extract.WireProduct{
					Name:         product,
					Quantity:     qty,
					UnitPrice:    unitPrice,
					Tax:          tax,
					PriceWithTax: total,
					Discount:     discount,
				})
			}
		}

		if customer != "" {
			if idx, seen := customerIndex[customer]; seen {
				envelope.Customers[idx].TotalPurchaseAmount += total
			} else {
				customerIndex[customer] = len(envelope.Customers)
				envelope.Customers = append(envelope.Customers, extract.WireCustomer{
					CustomerName:        customer,
					TotalPurchaseAmount: total,
				})
			}
		}
	}

	if len(envelope.Invoices) == 0 {
		return extract.Envelope{}, fmt.Errorf("excel file has no invoice rows")
	}
	envelope.Message = fmt.Sprintf("Successfully extracted %d invoices", len(envelope.Invoices))
	return envelope, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func blankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readCell(row []string, colMap map[string]int, column string) string {
	idx, ok := colMap[column]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func readInt(row []string, colMap map[string]int, column string) int {
	value, err := parseFloat(readCell(row, colMap, column))
	if err != nil {
		return 0
	}
	return int(value)
}

func readFloat(row []string, colMap map[string]int, column string) float64 {
	value, err := parseFloat(readCell(row, colMap, column))
	if err != nil {
		return 0
	}
	return value
}

func parseFloat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return parsed, nil
}
