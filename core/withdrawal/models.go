package withdrawal

import (
	"strings"
	"time"

	"github.com/alrowad/institute/core"
)

// Withdrawal is a recorded expense/outflow of institute funds, independent
// of student billing.
type Withdrawal struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    int       `json:"amount"` // whole currency units
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewWithdrawal struct {
	Name   string    `json:"name" validate:"required"`
	Amount int       `json:"amount" validate:"required,gt=0"`
	Date   time.Time `json:"date" validate:"required"`
	Notes  string    `json:"notes"`
}

func (nw *NewWithdrawal) Validate() error {
	nw.Name = core.CleanString(nw.Name)
	nw.Notes = core.CleanString(nw.Notes)
	return core.Validate.Struct(nw)
}

type UpdateWithdrawal struct {
	Name   string    `json:"name"`
	Amount int       `json:"amount" validate:"omitempty,gt=0"`
	Date   time.Time `json:"date"`
	Notes  string    `json:"notes"`
}

func (uw *UpdateWithdrawal) Validate(orig Withdrawal) error {
	if name := core.CleanString(uw.Name); name != "" {
		uw.Name = name
	} else {
		uw.Name = orig.Name
	}
	if uw.Amount == 0 {
		uw.Amount = orig.Amount
	}
	if uw.Date.IsZero() {
		uw.Date = orig.Date
	}
	return core.Validate.Struct(uw)
}

// QueryFilter does a case-insensitive substring match on name or notes.
type QueryFilter struct {
	Search   string    `query:"search"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

func (qf *QueryFilter) Match(w Withdrawal) bool {
	if !qf.DateFrom.IsZero() && w.Date.Before(qf.DateFrom) {
		return false
	}
	if !qf.DateTo.IsZero() && w.Date.After(qf.DateTo) {
		return false
	}
	if qf.Search != "" {
		needle := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(w.Name), needle) &&
			!strings.Contains(strings.ToLower(w.Notes), needle) {
			return false
		}
	}
	return true
}
