package bookings

import (
	"encoding/json"
	"testing"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() || StatusConfirmed.Terminal() {
		t.Error("pending and confirmed must not be terminal")
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
}

func TestDoctorRefDecodesBareID(t *testing.T) {
	var ref DoctorRef
	if err := json.Unmarshal([]byte(`"doc-1"`), &ref); err != nil {
		t.Fatalf("unmarshal bare id: %v", err)
	}
	if ref.ID() != "doc-1" {
		t.Errorf("ID() = %q, want doc-1", ref.ID())
	}
	if ref.Populated() != nil {
		t.Error("bare reference must not report a summary")
	}
	if ref.Label() != "doc-1" {
		t.Errorf("Label() = %q, want id fallback", ref.Label())
	}
}

func TestDoctorRefDecodesPopulatedObject(t *testing.T) {
	var ref DoctorRef
	payload := `{"_id":"doc-2","fullName":"Dr. Hodan Warsame","specialty":"Cardiology"}`
	if err := json.Unmarshal([]byte(payload), &ref); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if ref.ID() != "doc-2" {
		t.Errorf("ID() = %q, want doc-2", ref.ID())
	}
	if ref.Label() != "Dr. Hodan Warsame" {
		t.Errorf("Label() = %q, want full name", ref.Label())
	}
	if s := ref.Populated(); s == nil || s.Specialty != "Cardiology" {
		t.Errorf("Populated() = %+v, want summary with specialty", s)
	}
}

func TestDoctorRefRoundTripsBothShapes(t *testing.T) {
	bare, err := json.Marshal(RefByID("doc-3"))
	if err != nil {
		t.Fatalf("marshal bare: %v", err)
	}
	if string(bare) != `"doc-3"` {
		t.Errorf("bare marshal = %s, want quoted id", bare)
	}

	populated, err := json.Marshal(RefPopulated(&DoctorSummary{ID: "doc-4", FullName: "Dr. Ayan"}))
	if err != nil {
		t.Fatalf("marshal populated: %v", err)
	}
	var decoded DoctorRef
	if err := json.Unmarshal(populated, &decoded); err != nil {
		t.Fatalf("unmarshal populated: %v", err)
	}
	if decoded.Label() != "Dr. Ayan" {
		t.Errorf("round-trip Label() = %q, want Dr. Ayan", decoded.Label())
	}
}

func TestReceiptRefFallsBackToBookingID(t *testing.T) {
	b := &Booking{ID: "bk-1"}
	if got := b.ReceiptRef(); got != "bk-1" {
		t.Errorf("expected booking id fallback, got %q", got)
	}
	b.PaymentRef = "PAY-9"
	if got := b.ReceiptRef(); got != "PAY-9" {
		t.Errorf("expected payment ref, got %q", got)
	}
}
