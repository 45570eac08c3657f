// Package payments implements the simulated mobile-money capture attached
// to a booking at creation time, and the receipt derived from it.
package payments

import (
	"strings"
)

// Method is an accepted mobile-money provider.
type Method string

const (
	MethodJeeb   Method = "jeeb"
	MethodEVC    Method = "evc"
	MethodEdahab Method = "edahab"
)

// Valid reports whether m is a known provider.
func (m Method) Valid() bool {
	switch m {
	case MethodJeeb, MethodEVC, MethodEdahab:
		return true
	}
	return false
}

// ParseMethod normalizes a provider label.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}

// Details are the payment fields carried on a booking. They are set once
// at creation; only the correction path may change them afterwards.
type Details struct {
	Method Method `json:"paymentMethod"`
	Number string `json:"paymentNumber"`
	Amount int    `json:"paymentAmount"`
}

// minNumberLen matches the shortest subscriber number the providers issue.
const minNumberLen = 7

// ValidateDetails checks provider fields ahead of a capture attempt.
func ValidateDetails(d Details, fixedAmount int) error {
	if !d.Method.Valid() {
		return &CaptureError{Reason: "unsupported payment method"}
	}
	if len(strings.TrimSpace(d.Number)) < minNumberLen {
		return &CaptureError{Reason: "payment number is too short"}
	}
	if d.Amount != fixedAmount {
		return &CaptureError{Reason: "payment amount is fixed and cannot be changed"}
	}
	return nil
}

// CaptureError reports a failed capture attempt.
type CaptureError struct {
	Reason string
}

func (e *CaptureError) Error() string { return "payments: capture failed: " + e.Reason }
