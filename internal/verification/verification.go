// Package verification checks donation receipts before a member is let into
// the market.
package verification

import (
	"context"
	"errors"
	"fmt"
)

// ErrTechnicalFailure indicates the receipt could not be checked at all.
var ErrTechnicalFailure = errors.New("verification technical failure")

// Outcome is the result category of a receipt check.
type Outcome string

const (
	// OutcomeAccepted means every receipt rule matched.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeRejected means at least one receipt rule did not match.
	OutcomeRejected Outcome = "rejected"
	// OutcomeTechnicalFailure means the checker failed and nothing was decided.
	OutcomeTechnicalFailure Outcome = "technical_failure"
)

// String returns the outcome name.
func (o Outcome) String() string {
	return string(o)
}

// Decision is the verdict on a single receipt.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason"`
}

// Accepted reports whether the receipt passed.
func (d *Decision) Accepted() bool {
	return d.Outcome == OutcomeAccepted
}

// Verifier checks a receipt image.
type Verifier interface {
	// Verify returns a decision for the image. An error is only returned when
	// the image itself is unusable or the context ends.
	Verify(ctx context.Context, image []byte, mimeType string) (*Decision, error)
}

// ReceiptRules are the values a valid donation receipt must show.
type ReceiptRules struct {
	Status   string `json:"status"`
	Amount   string `json:"amount"`
	Merchant string `json:"merchant"`
}

// Prompt renders the instructions sent along with the receipt image.
func (r ReceiptRules) Prompt() string {
	return fmt.Sprintf(`You are an automated verification system for a QRIS payment receipt.
Analyze this image and determine if the payment is valid based on three strict criteria:
1. The transaction status must be explicitly stated as %q.
2. The transaction amount must be exactly %q, written in that exact format.
3. The merchant name must be %q.

Respond with:
- isValid: true only if all three criteria are met
- reason: a brief reason in Indonesian. If valid, say 'Pembayaran tervalidasi'.
  If invalid, state exactly which criterion failed and what was detected instead.`,
		r.Status, r.Amount, r.Merchant)
}
