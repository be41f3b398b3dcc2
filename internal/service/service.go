package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"backend/internal/domain"
	"backend/internal/engine"
	"backend/internal/excel"
	"backend/internal/extract"
	"backend/internal/logger"
	"backend/internal/store"
)

var ErrUnsupportedFile = errors.New("unsupported file type")

type Service struct {
	store  *store.Store
	client *extract.Client
	log    zerolog.Logger
}

func New(entityStore *store.Store, client *extract.Client) *Service {
	return &Service{
		store:  entityStore,
		client: client,
		log:    logger.WithComponent("service"),
	}
}

type UploadResult struct {
	Message   string `json:"message"`
	Invoices  int    `json:"invoices"`
	Products  int    `json:"products"`
	Customers int    `json:"customers"`
}

// Upload runs the extraction pipeline for one file and, on success, replaces
// all three collections wholesale. A failed upload leaves the store untouched.
func (s *Service) Upload(ctx context.Context, filename string, file io.Reader) (UploadResult, error) {
	if !extract.AllowedExtension(filename) {
		return UploadResult{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload: %w", err)
	}

	envelope, err := s.extractEnvelope(ctx, filename, content)
	if err != nil {
		return UploadResult{}, err
	}

	state := extract.Ingest(envelope)
	state = engine.RecalcProductAggregates(state)
	state = engine.RecalcCustomerAggregates(state)
	s.store.Replace(state)

	s.log.Info().
		Str("file", filename).
		Int("invoices", len(state.Invoices)).
		Int("products", len(state.Products)).
		Int("customers", len(state.Customers)).
		Msg("collections replaced from upload")

	message := envelope.Message
	if message == "" {
		message = fmt.Sprintf("Successfully extracted %d invoices", len(state.Invoices))
	}
	return UploadResult{
		Message:   message,
		Invoices:  len(state.Invoices),
		Products:  len(state.Products),
		Customers: len(state.Customers),
	}, nil
}

// extractEnvelope prefers the extraction service when one is configured.
// Spreadsheets can also be parsed locally, which doubles as the fallback when
// the service is unreachable.
func (s *Service) extractEnvelope(ctx context.Context, filename string, content []byte) (extract.Envelope, error) {
	if s.client.Configured() {
		envelope, err := s.client.Extract(ctx, filename, bytes.NewReader(content))
		if err == nil {
			return envelope, nil
		}
		if !extract.SpreadsheetExtension(filename) {
			return extract.Envelope{}, err
		}
		s.log.Warn().Err(err).Str("file", filename).Msg("extraction service failed, parsing spreadsheet locally")
	} else if !extract.SpreadsheetExtension(filename) {
		return extract.Envelope{}, fmt.Errorf("%w: only spreadsheets can be processed locally", extract.ErrNotConfigured)
	}
	return excel.ParseInvoiceRows(bytes.NewReader(content))
}

func (s *Service) Invoices() []domain.Invoice {
	return s.store.State().Invoices
}

func (s *Service) Products() []domain.Product {
	return s.store.State().Products
}

func (s *Service) Customers() []domain.Customer {
	return s.store.State().Customers
}

func (s *Service) Summary() domain.Totals {
	return engine.ComputeTotals(s.store.State())
}

// EditInvoice applies one cell edit and the recalculation passes it requires,
// in a single atomic store update.
func (s *Service) EditInvoice(index int, field string, value any) {
	s.store.Update(func(state store.State) store.State {
		state = engine.ApplyInvoiceEdit(state, index, field, value)
		recalcProducts, recalcCustomers := engine.RecalcScopeForInvoiceField(field)
		if recalcProducts {
			state = engine.RecalcProductAggregates(state)
		}
		if recalcCustomers {
			state = engine.RecalcCustomerAggregates(state)
		}
		return state
	})
	s.log.Debug().Int("index", index).Str("field", field).Msg("invoice edit applied")
}

func (s *Service) EditProduct(name, field string, value any) {
	s.store.Update(func(state store.State) store.State {
		state = engine.ApplyProductEdit(state, name, field, value)
		recalcProducts, recalcCustomers := engine.RecalcScopeForProductField(field)
		if recalcProducts {
			state = engine.RecalcProductAggregates(state)
		}
		if recalcCustomers {
			state = engine.RecalcCustomerAggregates(state)
		}
		return state
	})
	s.log.Debug().Str("product", name).Str("field", field).Msg("product edit applied")
}

func (s *Service) EditCustomer(name, field string, value any) {
	s.store.Update(func(state store.State) store.State {
		return engine.ApplyCustomerEdit(state, name, field, value)
	})
	s.log.Debug().Str("customer", name).Str("field", field).Msg("customer edit applied")
}

// RenameProduct cascades a display-name change into every referencing invoice.
// Invalid renames are discarded and reported as renamed=false.
func (s *Service) RenameProduct(oldName, newName string) bool {
	renamed := false
	s.store.Update(func(state store.State) store.State {
		next, ok := engine.RenameProduct(state, oldName, newName)
		renamed = ok
		return next
	})
	if renamed {
		s.log.Info().Str("from", oldName).Str("to", newName).Msg("product renamed")
	}
	return renamed
}

func (s *Service) RenameCustomer(oldName, newName string) bool {
	renamed := false
	s.store.Update(func(state store.State) store.State {
		next, ok := engine.RenameCustomer(state, oldName, newName)
		renamed = ok
		return next
	})
	if renamed {
		s.log.Info().Str("from", oldName).Str("to", newName).Msg("customer renamed")
	}
	return renamed
}

func (s *Service) ExportSnapshot() domain.Snapshot {
	return extract.SnapshotForExport(s.store.State(), time.Now())
}

func (s *Service) ExportWorkbook(w io.Writer) error {
	return excel.WriteWorkbook(w, s.ExportSnapshot())
}
