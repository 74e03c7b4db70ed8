package rules

import "testing"

func TestEngine_EmptyExpressionAllowsAll(t *testing.T) {
	e, err := NewEngine("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := e.Allow(Fact{Total: 1e9})
	if err != nil || !ok {
		t.Fatalf("expected allow, got ok=%v err=%v", ok, err)
	}
}

func TestEngine_RejectsOverLimit(t *testing.T) {
	e, err := NewEngine("total <= 100.0 && total_quantity <= 10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := e.Allow(Fact{Total: 50, TotalQuantity: 3})
	if err != nil || !ok {
		t.Fatalf("expected allow, got ok=%v err=%v", ok, err)
	}

	ok, err = e.Allow(Fact{Total: 250, TotalQuantity: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected rule to reject total over limit")
	}
}

func TestEngine_InvalidExpression(t *testing.T) {
	if _, err := NewEngine("total >>> nonsense"); err == nil {
		t.Error("expected compile error")
	}
}
