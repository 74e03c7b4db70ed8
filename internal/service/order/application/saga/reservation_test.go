package saga

import (
	"context"
	"testing"

	"atlas/internal/service/order/domain"
	"atlas/internal/service/order/domain/port"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

// fakeInventory tracks quantities in memory and can fail specific SKUs.
type fakeInventory struct {
	stock       map[string]int
	unavailable map[string]bool
	calls       []string
}

func newFakeInventory(stock map[string]int) *fakeInventory {
	return &fakeInventory{stock: stock, unavailable: map[string]bool{}}
}

func (f *fakeInventory) Lookup(ctx context.Context, sku, token string) (*port.Item, error) {
	qty, ok := f.stock[sku]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &port.Item{SKU: sku, Quantity: qty}, nil
}

func (f *fakeInventory) Adjust(ctx context.Context, sku string, quantity int, direction port.Direction, token string) error {
	f.calls = append(f.calls, string(direction)+":"+sku)
	if f.unavailable[sku] {
		return errors.Wrap(port.ErrUnavailable, "dial tcp: connection refused")
	}
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

func (f *fakeInventory) AdjustBatch(ctx context.Context, items []port.Item, direction port.Direction, token string) error {
	for _, item := range items {
		if err := f.Adjust(ctx, item.SKU, item.Quantity, direction, token); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeInventory) Provision(ctx context.Context, sku string, quantity int, token string) error {
	f.stock[sku] = quantity
	return nil
}

func newTestCoordinator(inv *fakeInventory) *Coordinator {
	return NewCoordinator(inv, nil, otel.Tracer("test"))
}

func TestApply_AllItemsDeducted(t *testing.T) {
	inv := newFakeInventory(map[string]int{"X-1": 10, "X-2": 4})
	c := newTestCoordinator(inv)

	items := []domain.LineItem{
		{SKU: "X-1", Quantity: 5},
		{SKU: "X-2", Quantity: 4},
	}
	outcome := c.Apply(context.Background(), items, port.DirectionDeduct, "tok")

	if !outcome.OK {
		t.Fatalf("expected success, got failure: %s", outcome.Message)
	}
	if inv.stock["X-1"] != 5 || inv.stock["X-2"] != 0 {
		t.Errorf("unexpected stock after deduct: %v", inv.stock)
	}
	for _, a := range outcome.Attempts {
		if a.State != StateSucceeded {
			t.Errorf("attempt %s should be succeeded, got %s", a.SKU, a.State)
		}
	}
}

func TestApply_SecondItemFails_FirstCompensated(t *testing.T) {
	inv := newFakeInventory(map[string]int{"X-1": 10, "X-2": 1})
	c := newTestCoordinator(inv)

	items := []domain.LineItem{
		{SKU: "X-1", Quantity: 5},
		{SKU: "X-2", Quantity: 3},
	}
	outcome := c.Apply(context.Background(), items, port.DirectionDeduct, "tok")

	if outcome.OK {
		t.Fatal("expected failure")
	}
	if outcome.FailedSKU != "X-2" {
		t.Errorf("expected failed sku X-2, got %q", outcome.FailedSKU)
	}
	if outcome.Unavailable {
		t.Error("insufficient stock must not be reported as unavailable")
	}
	// Net effect on inventory must be zero.
	if inv.stock["X-1"] != 10 || inv.stock["X-2"] != 1 {
		t.Errorf("stock not restored after compensation: %v", inv.stock)
	}
	if outcome.Attempts[0].State != StateCompensated {
		t.Errorf("first attempt should be compensated, got %s", outcome.Attempts[0].State)
	}
	if outcome.Attempts[1].State != StateFailed {
		t.Errorf("second attempt should be failed, got %s", outcome.Attempts[1].State)
	}
}

func TestApply_CompensationRunsInReverseOrder(t *testing.T) {
	inv := newFakeInventory(map[string]int{"A": 5, "B": 5, "C": 0})
	c := newTestCoordinator(inv)

	items := []domain.LineItem{
		{SKU: "A", Quantity: 1},
		{SKU: "B", Quantity: 1},
		{SKU: "C", Quantity: 1},
	}
	c.Apply(context.Background(), items, port.DirectionDeduct, "tok")

	want := []string{"deduct:A", "deduct:B", "deduct:C", "restore:B", "restore:A"}
	if len(inv.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, inv.calls)
	}
	for i := range want {
		if inv.calls[i] != want[i] {
			t.Fatalf("expected calls %v, got %v", want, inv.calls)
		}
	}
}

func TestApply_UnavailableParticipantFlagged(t *testing.T) {
	inv := newFakeInventory(map[string]int{"X-1": 10, "X-2": 10})
	inv.unavailable["X-2"] = true
	c := newTestCoordinator(inv)

	items := []domain.LineItem{
		{SKU: "X-1", Quantity: 2},
		{SKU: "X-2", Quantity: 2},
	}
	outcome := c.Apply(context.Background(), items, port.DirectionDeduct, "tok")

	if outcome.OK {
		t.Fatal("expected failure")
	}
	if !outcome.Unavailable {
		t.Error("transport failure should be reported as unavailable")
	}
	if inv.stock["X-1"] != 10 {
		t.Errorf("X-1 should be compensated back to 10, got %d", inv.stock["X-1"])
	}
}

func TestApply_RestoreFailureCompensatesWithDeduct(t *testing.T) {
	inv := newFakeInventory(map[string]int{"A": 5, "B": 5})
	inv.unavailable["B"] = true
	c := newTestCoordinator(inv)

	items := []domain.LineItem{
		{SKU: "A", Quantity: 3},
		{SKU: "B", Quantity: 2},
	}
	outcome := c.Apply(context.Background(), items, port.DirectionRestore, "tok")

	if outcome.OK {
		t.Fatal("expected failure")
	}
	// The successful restore of A is undone with a deduct.
	if inv.stock["A"] != 5 {
		t.Errorf("A should be back to 5, got %d", inv.stock["A"])
	}
	if outcome.Attempts[0].State != StateCompensated {
		t.Errorf("A should be compensated, got %s", outcome.Attempts[0].State)
	}
}

func TestApply_RoundTripRestoresQuantities(t *testing.T) {
	inv := newFakeInventory(map[string]int{"X-1": 10, "X-2": 7})
	c := newTestCoordinator(inv)

	items := []domain.LineItem{
		{SKU: "X-1", Quantity: 4},
		{SKU: "X-2", Quantity: 7},
	}
	if out := c.Apply(context.Background(), items, port.DirectionDeduct, "tok"); !out.OK {
		t.Fatalf("deduct failed: %s", out.Message)
	}
	if out := c.Apply(context.Background(), items, port.DirectionRestore, "tok"); !out.OK {
		t.Fatalf("restore failed: %s", out.Message)
	}
	if inv.stock["X-1"] != 10 || inv.stock["X-2"] != 7 {
		t.Errorf("round trip did not restore quantities: %v", inv.stock)
	}
}

func TestApply_NoItems(t *testing.T) {
	inv := newFakeInventory(map[string]int{})
	c := newTestCoordinator(inv)

	outcome := c.Apply(context.Background(), nil, port.DirectionDeduct, "tok")
	if !outcome.OK {
		t.Fatalf("empty apply should succeed, got %s", outcome.Message)
	}
	if len(inv.calls) != 0 {
		t.Errorf("no gateway calls expected, got %v", inv.calls)
	}
}
