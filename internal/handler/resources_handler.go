package handler

import (
	"net/http"

	"github.com/boddenberg/buyer-portal-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ResourcesHandler handles the proxied read-only resource endpoints:
// orders, quotes and invoices. All routes require auth plus the
// matching view capability.
type ResourcesHandler struct {
	orders   *service.OrdersService
	quotes   *service.QuotesService
	invoices *service.InvoicesService
	logger   *zap.Logger
}

// NewResourcesHandler creates a new resources handler.
func NewResourcesHandler(orders *service.OrdersService, quotes *service.QuotesService, invoices *service.InvoicesService, logger *zap.Logger) *ResourcesHandler {
	return &ResourcesHandler{orders: orders, quotes: quotes, invoices: invoices, logger: logger}
}

// ListOrders handles GET /v1/orders.
func (h *ResourcesHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	rows, err := h.orders.List(r.Context(), identity, parseListQuery(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetOrder handles GET /v1/orders/{orderId}.
func (h *ResourcesHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	order, err := h.orders.Get(r.Context(), identity, chi.URLParam(r, "orderId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// ListQuotes handles GET /v1/quotes.
func (h *ResourcesHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	rows, err := h.quotes.List(r.Context(), identity, parseListQuery(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetQuote handles GET /v1/quotes/{quoteId}.
func (h *ResourcesHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	quote, err := h.quotes.Get(r.Context(), identity, chi.URLParam(r, "quoteId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// ListInvoices handles GET /v1/invoices.
func (h *ResourcesHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	rows, err := h.invoices.List(r.Context(), identity, parseListQuery(r))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetInvoice handles GET /v1/invoices/{invoiceId}.
func (h *ResourcesHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFrom(r.Context())

	invoice, err := h.invoices.Get(r.Context(), identity, chi.URLParam(r, "invoiceId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}
