package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS)

	r.Get("/healthz", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", handler.Upload)

		r.Get("/invoices", handler.ListInvoices)
		r.Get("/products", handler.ListProducts)
		r.Get("/customers", handler.ListCustomers)
		r.Get("/summary", handler.Summary)

		r.Patch("/invoices/{index}", handler.PatchInvoice)
		r.Patch("/products/{name}", handler.PatchProduct)
		r.Patch("/customers/{name}", handler.PatchCustomer)

		r.Post("/products/rename", handler.RenameProduct)
		r.Post("/customers/rename", handler.RenameCustomer)

		r.Get("/export", handler.ExportJSON)
		r.Get("/export/excel", handler.ExportExcel)
	})

	return r
}
