package student

import "errors"

// Status classifies a student's payment completeness.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
	StatusUnpaid  Status = "unpaid"
)

// Statuses lists all settlement statuses in display order.
var Statuses = []Status{StatusPaid, StatusPartial, StatusUnpaid}

// ErrInvalidAmount reports a negative amount or a non-positive fee total.
var ErrInvalidAmount = errors.New("invalid amount")

// Settlement is the derived payment state of a student.
type Settlement struct {
	Status     Status  `json:"status"`
	Remaining  int     `json:"remaining"`
	Percentage float64 `json:"percentage"`
}

// Overpaid reports whether more than the fee total has been recorded.
// Not an error; callers log it as an anomaly.
func (s Settlement) Overpaid() bool { return s.Percentage > 100 }

// Classify derives the settlement state from a fee total and the sum of
// recorded payments. It is the single source of truth for the status enum;
// every view must call it rather than re-deriving inline.
//
// Rule: paid iff paidAmount >= totalFees; unpaid iff paidAmount == 0;
// partial otherwise. A fee total of zero is an input-validation failure,
// never a silent division by zero.
func Classify(totalFees, paidAmount int) (Settlement, error) {
	if totalFees <= 0 || paidAmount < 0 {
		return Settlement{}, ErrInvalidAmount
	}

	s := Settlement{Percentage: float64(paidAmount) / float64(totalFees) * 100}
	if remaining := totalFees - paidAmount; remaining > 0 {
		s.Remaining = remaining
	}

	switch {
	case paidAmount >= totalFees:
		s.Status = StatusPaid
	case paidAmount == 0:
		s.Status = StatusUnpaid
	default:
		s.Status = StatusPartial
	}
	return s, nil
}
