package payments

import "fmt"

// Receipt is the locally producible record of a successful capture. It is
// built entirely from data the client already holds; no network call is
// needed to render it.
type Receipt struct {
	Ref    string
	Amount int
	Method Method
	Number string
}

// Render returns the plain-text receipt body.
func (r Receipt) Render() string {
	return fmt.Sprintf("Payment Receipt\nReference: %s\nAmount: $%d\nMethod: %s\nNumber: %s",
		r.Ref, r.Amount, r.Method, r.Number)
}

// Filename returns the download name for the receipt file.
func (r Receipt) Filename() string {
	ref := r.Ref
	if ref == "" {
		ref = "booking"
	}
	return "receipt-" + ref + ".txt"
}
