package payments

import (
	"context"

	"github.com/daryeelcare/caafimaad-platform/pkg/logging"
)

// Processor captures a payment for a booking. The production deployment
// has no real provider integration yet, so SimulatedProcessor stands in
// behind the same interface a real gateway client would implement.
type Processor interface {
	Capture(ctx context.Context, ref string, details Details) (string, error)
}

// SimulatedProcessor approves any well-formed capture and echoes the
// caller-supplied reference.
//
// This MUST stay behind the Processor interface so a real provider can be
// swapped in without touching the booking service.
type SimulatedProcessor struct {
	fixedAmount int
	logger      *logging.Logger
}

// NewSimulatedProcessor creates a processor charging the fixed fee.
func NewSimulatedProcessor(fixedAmount int, logger *logging.Logger) *SimulatedProcessor {
	if logger == nil {
		logger = logging.Default()
	}
	return &SimulatedProcessor{fixedAmount: fixedAmount, logger: logger}
}

// Capture validates the details and returns the payment reference. A
// validation failure is returned as *CaptureError; the caller must treat
// it as "no booking exists".
func (p *SimulatedProcessor) Capture(ctx context.Context, ref string, details Details) (string, error) {
	_ = ctx
	if err := ValidateDetails(details, p.fixedAmount); err != nil {
		p.logger.Warn("payment capture rejected", "ref", ref, "method", details.Method, "error", err)
		return "", err
	}
	p.logger.Info("payment captured", "ref", ref, "method", details.Method, "amount", details.Amount)
	return ref, nil
}
