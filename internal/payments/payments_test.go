package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseMethod(t *testing.T) {
	if m, ok := ParseMethod(" EVC "); !ok || m != MethodEVC {
		t.Fatalf("ParseMethod(EVC) = %q, %v", m, ok)
	}
	if _, ok := ParseMethod("mpesa"); ok {
		t.Fatal("unknown provider should not parse")
	}
}

func TestSimulatedCapture(t *testing.T) {
	p := NewSimulatedProcessor(10, nil)
	ref, err := p.Capture(context.Background(), "abc123", Details{
		Method: MethodJeeb,
		Number: "0612103585",
		Amount: 10,
	})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if ref != "abc123" {
		t.Fatalf("ref = %q, want abc123", ref)
	}
}

func TestCaptureRejectsTamperedAmount(t *testing.T) {
	p := NewSimulatedProcessor(10, nil)
	_, err := p.Capture(context.Background(), "abc123", Details{
		Method: MethodEVC,
		Number: "0612103585",
		Amount: 1,
	})
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CaptureError, got %v", err)
	}
}

func TestCaptureRejectsShortNumber(t *testing.T) {
	p := NewSimulatedProcessor(10, nil)
	if _, err := p.Capture(context.Background(), "r", Details{Method: MethodEdahab, Number: "061", Amount: 10}); err == nil {
		t.Fatal("short payment number should fail capture")
	}
}

func TestStateUnionIsExhaustive(t *testing.T) {
	states := []State{Idle{}, Pending{}, Processing{}, Success{Ref: "r"}, Failed{Reason: "x"}}
	phases := make([]string, 0, len(states))
	for _, s := range states {
		phases = append(phases, s.Phase())
	}
	if got := strings.Join(phases, ","); got != "idle,pending,processing,success,failed" {
		t.Fatalf("phases = %s", got)
	}
}

func TestReceipt(t *testing.T) {
	r := Receipt{Ref: "abc123", Amount: 10, Method: MethodJeeb, Number: "0612103585"}
	body := r.Render()
	for _, want := range []string{"Reference: abc123", "Amount: $10", "Method: jeeb", "Number: 0612103585"} {
		if !strings.Contains(body, want) {
			t.Errorf("receipt missing %q:\n%s", want, body)
		}
	}
	if r.Filename() != "receipt-abc123.txt" {
		t.Errorf("Filename = %q", r.Filename())
	}
	if (Receipt{}).Filename() != "receipt-booking.txt" {
		t.Errorf("empty-ref Filename = %q", (Receipt{}).Filename())
	}
}
