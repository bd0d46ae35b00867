package payment

import (
	"strings"
	"time"

	"github.com/alrowad/institute/core"
)

// Status tags recorded on individual payment rows. Informational only:
// a student's settlement state is always derived from amounts, never from
// these tags.
const (
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusPending   = "pending"
)

type Payment struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	Amount        int       `json:"amount"` // whole currency units
	Date          time.Time `json:"date"`
	ReceiptNumber string    `json:"receipt_number,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// NewPayment contains information needed to record a payment.
// ReceiptNumber, when provided, doubles as the deduplication key for the
// student: inserting the same receipt twice is rejected, never retried.
type NewPayment struct {
	StudentID     string    `json:"student_id" validate:"required"`
	Amount        int       `json:"amount" validate:"required,gt=0"`
	Date          time.Time `json:"date" validate:"required"`
	ReceiptNumber string    `json:"receipt_number"`
	Notes         string    `json:"notes"`
	Status        string    `json:"status" validate:"omitempty,oneof=completed partial pending"`
}

func (np *NewPayment) Validate() error {
	np.ReceiptNumber = core.CleanString(np.ReceiptNumber)
	np.Notes = core.CleanString(np.Notes)
	return core.Validate.Struct(np)
}

// UpdatePayment defines what may be modified on an existing payment row.
type UpdatePayment struct {
	Amount        int       `json:"amount" validate:"omitempty,gt=0"`
	Date          time.Time `json:"date"`
	ReceiptNumber string    `json:"receipt_number"`
	Notes         string    `json:"notes"`
	Status        string    `json:"status" validate:"omitempty,oneof=completed partial pending"`
}

func (up *UpdatePayment) Validate(orig Payment) error {
	if up.Amount == 0 {
		up.Amount = orig.Amount
	}
	if up.Date.IsZero() {
		up.Date = orig.Date
	}
	if rcpt := core.CleanString(up.ReceiptNumber); rcpt != "" {
		up.ReceiptNumber = rcpt
	} else {
		up.ReceiptNumber = orig.ReceiptNumber
	}
	if notes := core.CleanString(up.Notes); notes != "" {
		up.Notes = notes
	} else {
		up.Notes = orig.Notes
	}
	if up.Status == "" {
		up.Status = orig.Status
	}
	return core.Validate.Struct(up)
}

// QueryFilter applies AND over its set fields; Search does a
// case-insensitive substring match on the receipt number or notes.
type QueryFilter struct {
	Search    string    `query:"search"`
	StudentID string    `query:"student_id"`
	DateFrom  time.Time `query:"date_from"`
	DateTo    time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.StudentID == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

func (qf *QueryFilter) Match(p Payment) bool {
	if qf.StudentID != "" && p.StudentID != qf.StudentID {
		return false
	}
	if !qf.DateFrom.IsZero() && p.Date.Before(qf.DateFrom) {
		return false
	}
	if !qf.DateTo.IsZero() && p.Date.After(qf.DateTo) {
		return false
	}
	if qf.Search != "" {
		needle := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(p.ReceiptNumber), needle) &&
			!strings.Contains(strings.ToLower(p.Notes), needle) {
			return false
		}
	}
	return true
}
