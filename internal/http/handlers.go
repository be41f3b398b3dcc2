package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"backend/internal/extract"
	"backend/internal/service"
)

type Handler struct {
	svc            *service.Service
	maxUploadBytes int64
	validate       *validator.Validate
}

func NewHandler(svc *service.Service, maxUploadMB int) *Handler {
	return &Handler{
		svc:            svc,
		maxUploadBytes: int64(maxUploadMB) << 20,
		validate:       validator.New(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.svc.Upload(r.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFile):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, extract.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, extract.ErrUpstream):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   result.Message,
		"invoices":  result.Invoices,
		"products":  result.Products,
		"customers": result.Customers,
	})
}

func (h *Handler) ListInvoices(w http.ResponseWriter, _ *http.Request) {
	items := h.svc.Invoices()
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	items := h.svc.Products()
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) ListCustomers(w http.ResponseWriter, _ *http.Request) {
	items := h.svc.Customers()
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) Summary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Summary())
}

type fieldEditRequest struct {
	Field string `json:"field" validate:"required"`
	Value any    `json:"value"`
}

func (h *Handler) PatchInvoice(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req fieldEditRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.svc.EditInvoice(index, req.Field, req.Value)
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	name, err := parseName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req fieldEditRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.svc.EditProduct(name, req.Field, req.Value)
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) PatchCustomer(w http.ResponseWriter, r *http.Request) {
	name, err := parseName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req fieldEditRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.svc.EditCustomer(name, req.Field, req.Value)
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

type renameRequest struct {
	OldName string `json:"old_name" validate:"required"`
	NewName string `json:"new_name"`
}

func (h *Handler) RenameProduct(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"renamed": h.svc.RenameProduct(req.OldName, req.NewName)})
}

func (h *Handler) RenameCustomer(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"renamed": h.svc.RenameCustomer(req.OldName, req.NewName)})
}

func (h *Handler) ExportJSON(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.svc.ExportSnapshot()
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", exportBaseName()))
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) ExportExcel(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", exportBaseName()))
	if err := h.svc.ExportWorkbook(w); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) decodeAndValidate(r *http.Request, out any) error {
	if err := decodeJSON(r, out); err != nil {
		return err
	}
	if err := h.validate.Struct(out); err != nil {
		return fmt.Errorf("invalid request body")
	}
	return nil
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid index")
	}
	return index, nil
}

func parseName(raw string) (string, error) {
	name, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("invalid name")
	}
	return name, nil
}

func exportBaseName() string {
	return fmt.Sprintf("invoice-data-%d", time.Now().UnixMilli())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
