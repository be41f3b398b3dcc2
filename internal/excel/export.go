package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"backend/internal/domain"
)

var invoiceHeaders = []string{
	"Serial Number", "Customer Name", "Product Name", "Quantity",
	"Tax", "Total Amount", "Discount", "Date", "Payment Mode", "Notes",
}

var productHeaders = []string{
	"Name", "Quantity", "Unit Price", "Tax", "Price With Tax", "Discount", "SKU",
}

var customerHeaders = []string{
	"Customer Name", "Phone Number", "Email", "Address", "Total Purchase Amount",
}

// WriteWorkbook renders the snapshot as a three-sheet workbook.
func WriteWorkbook(w io.Writer, snapshot domain.Snapshot) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), "Invoices"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, sheet := range []string{"Products", "Customers"} {
		if _, err := file.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}

	if err := writeRow(file, "Invoices", 1, toCells(invoiceHeaders)); err != nil {
		return err
	}
	for i, invoice := range snapshot.Invoices {
		cells := []any{
			invoice.SerialNumber, invoice.CustomerName, invoice.ProductName,
			invoice.Quantity, invoice.Tax, invoice.TotalAmount, invoice.Discount,
			invoice.Date, invoice.PaymentMode, invoice.Notes,
		}
		if err := writeRow(file, "Invoices", i+2, cells); err != nil {
			return err
		}
	}

	if err := writeRow(file, "Products", 1, toCells(productHeaders)); err != nil {
		return err
	}
	for i, product := range snapshot.Products {
		cells := []any{
			product.Name, product.Quantity, product.UnitPrice, product.Tax,
			product.PriceWithTax, product.Discount, product.SKU,
		}
		if err := writeRow(file, "Products", i+2, cells); err != nil {
			return err
		}
	}

	if err := writeRow(file, "Customers", 1, toCells(customerHeaders)); err != nil {
		return err
	}
	for i, customer := range snapshot.Customers {
		cells := []any{
			customer.CustomerName, customer.PhoneNumber, customer.Email,
			customer.Address, customer.TotalPurchaseAmount,
		}
		if err := writeRow(file, "Customers", i+2, cells); err != nil {
			return err
		}
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(file *excelize.File, sheet string, row int, cells []any) error {
	for col, value := range cells {
		name, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell coordinates: %w", err)
		}
		if err := file.SetCellValue(sheet, name, value); err != nil {
			return fmt.Errorf("write cell %s!%s: %w", sheet, name, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, value := range values {
		cells[i] = value
	}
	return cells
}
