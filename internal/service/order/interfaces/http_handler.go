// internal/service/order/interfaces/http_handler.go
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
	"atlas/internal/service/order/application"
	"atlas/internal/service/order/domain"
	"atlas/internal/service/order/domain/port"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "order-service"

// OrderHandler exposes the order service HTTP surface.
type OrderHandler struct {
	service *application.OrderApplicationService
	tracer  trace.Tracer
}

func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{
		service: service,
		tracer:  otel.Tracer(serviceName),
	}
}

// RegisterRoutes wires all routes onto the ServeMux. Literal routes take
// precedence over the {id} wildcards.
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /{$}", h.withAuth(h.createOrder))
	mux.HandleFunc("GET /{$}", h.withAuth(h.listOrders))
	mux.HandleFunc("GET /{id}", h.withAuth(h.getOrder))
	mux.HandleFunc("PUT /{id}", h.withAuth(h.updateOrder))
	mux.HandleFunc("DELETE /{id}", h.withAuth(h.deleteOrder))
	mux.HandleFunc("GET /{id}/timeline", h.withAuth(h.timeline))
	mux.HandleFunc("GET /{id}/stream", h.withAuth(h.streamTimeline))
	mux.HandleFunc("POST /provision", h.withAuth(h.provision))
}

type authedHandler func(w http.ResponseWriter, r *http.Request, p application.Principal)

// withAuth extracts the trace context and the principal. Token issuance and
// verification live in the auth collaborator; this service trusts the
// identity headers the gateway sets and forwards the raw bearer token to
// the participants.
func (h *OrderHandler) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		p, ok := principalFrom(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "missing or invalid credentials"})
			return
		}
		next(w, r.WithContext(ctx), p)
	}
}

func principalFrom(r *http.Request) (application.Principal, bool) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return application.Principal{}, false
	}
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || userID <= 0 {
		return application.Principal{}, false
	}
	role := r.Header.Get("X-User-Role")
	if role == "" {
		role = "user"
	}
	return application.Principal{UserID: userID, Role: role, Token: token}, true
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request, p application.Principal) {
	ctx, span := h.tracer.Start(r.Context(), "http.CreateOrder")
	defer span.End()

	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	order, err := h.service.CreateOrder(ctx, p, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request, p application.Principal) {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	orders, err := h.service.ListOrders(r.Context(), skip, limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request, p application.Principal) {
	order, err := h.service.GetOrder(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) updateOrder(w http.ResponseWriter, r *http.Request, p application.Principal) {
	ctx, span := h.tracer.Start(r.Context(), "http.UpdateOrder")
	defer span.End()

	var req application.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}

	order, err := h.service.UpdateOrder(ctx, p, r.PathValue("id"), req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) deleteOrder(w http.ResponseWriter, r *http.Request, p application.Principal) {
	ctx, span := h.tracer.Start(r.Context(), "http.DeleteOrder")
	defer span.End()

	if err := h.service.DeleteOrder(ctx, p, r.PathValue("id")); err != nil {
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) timeline(w http.ResponseWriter, r *http.Request, p application.Principal) {
	events, err := h.service.Timeline(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) provision(w http.ResponseWriter, r *http.Request, p application.Principal) {
	var req struct {
		Items []port.Item `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return
	}
	if err := h.service.ProvisionItems(r.Context(), p, req.Items); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// ---- responses ----

type orderResponse struct {
	ID        string            `json:"id"`
	UserID    int64             `json:"user_id"`
	Total     domain.Cents      `json:"total"`
	Status    domain.Status     `json:"status"`
	Items     []domain.LineItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	items := o.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return orderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Total:     o.Total,
		Status:    o.Status,
		Items:     items,
		CreatedAt: o.CreatedAt,
	}
}

type eventResponse struct {
	Seq         int64     `json:"seq"`
	EventID     string    `json:"event_id"`
	OrderID     string    `json:"order_id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	ActorID     int64     `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func toEventResponse(e domain.OrderEvent) eventResponse {
	return eventResponse{
		Seq:         e.Seq,
		EventID:     e.EventID,
		OrderID:     e.OrderID,
		EventType:   string(e.Type),
		Description: e.Description,
		OldValue:    e.OldValue,
		NewValue:    e.NewValue,
		ActorID:     e.ActorID,
		CreatedAt:   e.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the taxonomy onto HTTP statuses. Duplicate IDs answer 400
// to match the established API contract, even though they are conflicts.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDependencyUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logger.Ctx(ctx).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
