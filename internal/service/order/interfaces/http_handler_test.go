package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"atlas/internal/service/order/application"
	"atlas/internal/service/order/application/saga"
	"atlas/internal/service/order/domain"
	"atlas/internal/service/order/domain/port"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

// ---- in-memory collaborators ----

type memStore struct {
	orders map[string]*domain.Order
	events []domain.OrderEvent
	seq    int64
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]*domain.Order{}}
}

func (m *memStore) append(event domain.OrderEvent) {
	m.seq++
	event.Seq = m.seq
	m.events = append(m.events, event)
}

func (m *memStore) Create(_ context.Context, order *domain.Order, event domain.OrderEvent) error {
	if _, ok := m.orders[order.ID]; ok {
		return errors.Wrapf(domain.ErrConflict, "order %s", order.ID)
	}
	cp := *order
	m.orders[order.ID] = &cp
	m.append(event)
	return nil
}

func (m *memStore) Update(_ context.Context, order *domain.Order, event domain.OrderEvent) error {
	if _, ok := m.orders[order.ID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "order %s", order.ID)
	}
	cp := *order
	m.orders[order.ID] = &cp
	m.append(event)
	return nil
}

func (m *memStore) Delete(_ context.Context, orderID string, event domain.OrderEvent) error {
	if _, ok := m.orders[orderID]; !ok {
		return errors.Wrapf(domain.ErrNotFound, "order %s", orderID)
	}
	delete(m.orders, orderID)
	m.append(event)
	return nil
}

func (m *memStore) FindByID(_ context.Context, orderID string) (*domain.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "order %s", orderID)
	}
	cp := *order
	return &cp, nil
}

func (m *memStore) List(_ context.Context, offset, limit int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.orders {
		cp := *order
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) Timeline(_ context.Context, orderID string) ([]domain.OrderEvent, error) {
	var out []domain.OrderEvent
	for _, e := range m.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubInventory struct {
	stock map[string]int
}

func (f *stubInventory) Lookup(_ context.Context, sku, token string) (*port.Item, error) {
	qty, ok := f.stock[sku]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &port.Item{SKU: sku, Quantity: qty}, nil
}

func (f *stubInventory) Adjust(_ context.Context, sku string, quantity int, direction port.Direction, token string) error {
	current, ok := f.stock[sku]
	if !ok {
		return port.ErrNotFound
	}
	if direction == port.DirectionDeduct {
		if current < quantity {
			return port.ErrInsufficientStock
		}
		f.stock[sku] = current - quantity
		return nil
	}
	f.stock[sku] = current + quantity
	return nil
}

func (f *stubInventory) AdjustBatch(ctx context.Context, items []port.Item, direction port.Direction, token string) error {
	for _, item := range items {
		if err := f.Adjust(ctx, item.SKU, item.Quantity, direction, token); err != nil {
			return err
		}
	}
	return nil
}

func (f *stubInventory) Provision(_ context.Context, sku string, quantity int, token string) error {
	if _, ok := f.stock[sku]; !ok {
		f.stock[sku] = quantity
	}
	return nil
}

type stubUsers struct{}

func (stubUsers) Exists(_ context.Context, userID int64, token string) (bool, error) {
	return userID < 100, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *stubInventory) {
	t.Helper()
	tracer := otel.Tracer("test")
	inventory := &stubInventory{stock: map[string]int{"widget-1": 10}}
	store := newMemStore()

	svc := application.NewOrderApplicationService(application.Config{
		Repo:        store,
		Ledger:      store,
		Users:       stubUsers{},
		Inventory:   inventory,
		Coordinator: saga.NewCoordinator(inventory, nil, tracer),
		Publisher:   nil,
		Tracer:      tracer,
	})

	mux := http.NewServeMux()
	NewOrderHandler(svc).RegisterRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, inventory
}

func doRequest(t *testing.T, method, url string, userID int64, role string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if userID > 0 {
		req.Header.Set("Authorization", "Bearer test-token")
		req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
		req.Header.Set("X-User-Role", role)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func createBody(id string, userID int64, qty int) map[string]interface{} {
	return map[string]interface{}{
		"id":      id,
		"user_id": userID,
		"total":   19.99,
		"items":   []map[string]interface{}{{"sku": "widget-1", "quantity": qty, "unit_price": 19.99}},
	}
}

func TestHandler_MissingCredentials(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/ord-1", 0, "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHandler_CreateAndFetch(t *testing.T) {
	server, inventory := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/", 7, "user", createBody("ord-1", 7, 3))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created struct {
		ID     string  `json:"id"`
		Status string  `json:"status"`
		Total  float64 `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if created.ID != "ord-1" || created.Status != "pending" || created.Total != 19.99 {
		t.Errorf("unexpected body: %+v", created)
	}
	if inventory.stock["widget-1"] != 7 {
		t.Errorf("stock = %d, want 7", inventory.stock["widget-1"])
	}

	resp = doRequest(t, http.MethodGet, server.URL+"/ord-1", 7, "user", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d, want 200", resp.StatusCode)
	}
}

func TestHandler_DuplicateID(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/", 7, "user", createBody("ord-1", 7, 1))
	resp.Body.Close()
	resp = doRequest(t, http.MethodPost, server.URL+"/", 7, "user", createBody("ord-1", 7, 1))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_InsufficientStock(t *testing.T) {
	server, inventory := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/", 7, "user", createBody("ord-1", 7, 99))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if inventory.stock["widget-1"] != 10 {
		t.Errorf("failed create changed stock to %d", inventory.stock["widget-1"])
	}
}

func TestHandler_ForeignOrderForbidden(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/", 7, "user", createBody("ord-1", 7, 1))
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, server.URL+"/ord-1", 8, "user", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign get status = %d, want 403", resp.StatusCode)
	}

	// Admins see everything.
	resp = doRequest(t, http.MethodGet, server.URL+"/ord-1", 8, "admin", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin get status = %d, want 200", resp.StatusCode)
	}
}

func TestHandler_UnknownOrder(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, server.URL+"/ghost", 7, "user", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHandler_CancelRestoresStock(t *testing.T) {
	server, inventory := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/", 7, "user", createBody("ord-1", 7, 4))
	resp.Body.Close()
	if inventory.stock["widget-1"] != 6 {
		t.Fatalf("stock after create = %d, want 6", inventory.stock["widget-1"])
	}

	resp = doRequest(t, http.MethodPut, server.URL+"/ord-1", 7, "user", map[string]interface{}{"status": "cancelled"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d, want 200", resp.StatusCode)
	}
	if inventory.stock["widget-1"] != 10 {
		t.Errorf("stock after cancel = %d, want 10", inventory.stock["widget-1"])
	}
}

func TestHandler_DeleteAndTimeline(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, server.URL+"/", 7, "user", createBody("ord-1", 7, 1))
	resp.Body.Close()
	resp = doRequest(t, http.MethodPut, server.URL+"/ord-1", 7, "user", map[string]interface{}{"status": "completed"})
	resp.Body.Close()

	resp = doRequest(t, http.MethodGet, server.URL+"/ord-1/timeline", 7, "user", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("timeline status = %d, want 200", resp.StatusCode)
	}
	var events []eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(events) != 2 {
		t.Fatalf("timeline length = %d, want 2", len(events))
	}
	if events[0].EventType != "created" || events[1].EventType != "status_changed" {
		t.Errorf("unexpected event types: %s, %s", events[0].EventType, events[1].EventType)
	}

	resp = doRequest(t, http.MethodDelete, server.URL+"/ord-1", 7, "user", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
}

func TestHandler_ProvisionRequiresAdmin(t *testing.T) {
	server, inventory := newTestServer(t)

	body := map[string]interface{}{"items": []map[string]interface{}{{"sku": "gadget-1", "quantity": 5}}}
	resp := doRequest(t, http.MethodPost, server.URL+"/provision", 7, "user", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin provision status = %d, want 403", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodPost, server.URL+"/provision", 7, "admin", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("admin provision status = %d, want 201", resp.StatusCode)
	}
	if inventory.stock["gadget-1"] != 5 {
		t.Errorf("provisioned stock = %d, want 5", inventory.stock["gadget-1"])
	}
}
