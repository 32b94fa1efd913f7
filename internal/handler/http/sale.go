package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/veymira/poslite/internal/service"
	"github.com/veymira/poslite/pkg/pagination"
	"github.com/veymira/poslite/pkg/validator"
)

// SaleHandler handles HTTP requests for checkout and sale history endpoints.
type SaleHandler struct {
	service *service.SaleService
	logger  *slog.Logger
}

// NewSaleHandler creates a new sale HTTP handler.
func NewSaleHandler(svc *service.SaleService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{
		service: svc,
		logger:  logger,
	}
}

// CheckoutRequest is the JSON request body for completing a sale.
type CheckoutRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// Checkout handles POST /api/v1/checkout
func (h *SaleHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req CheckoutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid request body: "+err.Error())
			return
		}
		if err := validator.Validate(req); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	sale, err := h.service.Checkout(r.Context(), userID, service.CheckoutInput{Note: req.Note})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: sale})
}

// GetSale handles GET /api/v1/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "id is required")
		return
	}

	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: sale})
}

// ListSales handles GET /api/v1/sales
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	q := r.URL.Query()

	input := service.ListSalesInput{
		UserID:  q.Get("user_id"),
		Page:    params.Page,
		PerPage: params.PerPage,
	}

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "from must be an RFC 3339 timestamp")
			return
		}
		input.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "to must be an RFC 3339 timestamp")
			return
		}
		input.To = &t
	}

	result, err := h.service.ListSales(r.Context(), input)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: result})
}
