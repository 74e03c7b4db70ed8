// internal/service/inventory/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"atlas/internal/pkg/logger"
	"atlas/internal/service/inventory/application"
	"atlas/internal/service/inventory/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "inventory-service"

// ItemHandler exposes the inventory participant's HTTP surface.
type ItemHandler struct {
	service *application.Service
	tracer  trace.Tracer
}

func NewItemHandler(service *application.Service) *ItemHandler {
	return &ItemHandler{
		service: service,
		tracer:  otel.Tracer(serviceName),
	}
}

func (h *ItemHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", h.traced("http.ListItems", h.listItems))
	mux.HandleFunc("POST /{$}", h.traced("http.CreateItem", h.createItem))
	mux.HandleFunc("GET /{sku}", h.traced("http.GetItem", h.getItem))
	mux.HandleFunc("PUT /{sku}", h.traced("http.UpdateItem", h.updateItem))
	mux.HandleFunc("DELETE /{sku}", h.traced("http.DeleteItem", h.deleteItem))
	mux.HandleFunc("POST /{sku}/adjust", h.traced("http.AdjustItem", h.adjustItem))
}

// traced extracts the upstream trace context, requires a bearer token, and
// opens a server span. The participant does not inspect the token beyond
// presence; the coordinator forwards the caller's credentials verbatim.
func (h *ItemHandler) traced(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		if !bearerPresent(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "missing or invalid credentials"})
			return
		}
		ctx, span := h.tracer.Start(ctx, name)
		defer span.End()
		next(w, r.WithContext(ctx))
	}
}

func bearerPresent(r *http.Request) bool {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return found && token != ""
}

func (h *ItemHandler) listItems(w http.ResponseWriter, r *http.Request) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ItemHandler) createItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU      string `json:"sku"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	item, err := h.service.Create(r.Context(), req.SKU, req.Name, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *ItemHandler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), r.PathValue("sku"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *ItemHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string `json:"name"`
		Quantity *int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	item, err := h.service.Update(r.Context(), r.PathValue("sku"), req.Name, req.Quantity)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func (h *ItemHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("sku")); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) adjustItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity  int    `json:"quantity"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}
	direction, err := domain.ParseDirection(req.Direction)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	sku := r.PathValue("sku")
	if err := h.service.Adjust(r.Context(), sku, req.Quantity, direction); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	item, err := h.service.Get(r.Context(), sku)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

type itemResponse struct {
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toItemResponse(it *domain.Item) itemResponse {
	return itemResponse{
		SKU:       it.SKU,
		Name:      it.Name,
		Quantity:  it.Quantity,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Duplicate SKUs and underflows both answer 400, matching the established
// API contract.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInsufficientStock):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		logger.Ctx(ctx).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
