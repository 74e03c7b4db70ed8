package domain

import "testing"

func TestStockAction(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
		want Action
	}{
		{"pending to completed", StatusPending, StatusCompleted, ActionNone},
		{"pending to arbitrary label", StatusPending, Status("shipped"), ActionNone},
		{"active to cancelled", StatusPending, StatusCancelled, ActionRestore},
		{"completed to cancelled", StatusCompleted, StatusCancelled, ActionRestore},
		{"cancelled to active", StatusCancelled, StatusPending, ActionDeduct},
		{"cancelled to cancelled", StatusCancelled, StatusCancelled, ActionNone},
		{"unchanged", StatusPending, StatusPending, ActionNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StockAction(tc.from, tc.to); got != tc.want {
				t.Errorf("StockAction(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestCreationStockAction(t *testing.T) {
	if got := CreationStockAction(StatusPending, true); got != ActionDeduct {
		t.Errorf("active order with items: got %v, want deduct", got)
	}
	if got := CreationStockAction(StatusCancelled, true); got != ActionNone {
		t.Errorf("cancelled at birth: got %v, want none", got)
	}
	if got := CreationStockAction(StatusPending, false); got != ActionNone {
		t.Errorf("no items: got %v, want none", got)
	}
}

func TestStatusActive(t *testing.T) {
	if StatusCancelled.Active() {
		t.Error("cancelled must not be active")
	}
	for _, s := range []Status{StatusPending, StatusCompleted, Status("anything-else")} {
		if !s.Active() {
			t.Errorf("%q should be active", s)
		}
	}
}
