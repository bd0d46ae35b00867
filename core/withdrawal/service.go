package withdrawal

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alrowad/institute/core"
)

var (
	// errors
	ErrNotFound = errors.New("withdrawal not found")
)

type (
	Repository interface {
		CreateWithdrawal(w Withdrawal) (Withdrawal, error)
		QueryAllWithdrawals() ([]Withdrawal, error)
		GetWithdrawalByID(id string) (Withdrawal, error)
		FilterWithdrawals(filter QueryFilter) ([]Withdrawal, error)
		UpdateWithdrawal(w Withdrawal) (Withdrawal, error)
		DeleteWithdrawalsByID(ids ...string) error
		// TotalExpenses is the institute-wide sum of all withdrawal amounts.
		TotalExpenses() (int, error)
		PurgeWithdrawals() error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(nw NewWithdrawal) (Withdrawal, error) {
	w := Withdrawal{
		ID:        uuid.New().String(),
		Name:      nw.Name,
		Amount:    nw.Amount,
		Date:      nw.Date,
		Notes:     nw.Notes,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateWithdrawal(w)
}

func (svc *Service) QueryAll() ([]Withdrawal, error) {
	var withdrawals []Withdrawal
	err := core.RetryRead(func() (qerr error) {
		withdrawals, qerr = svc.repo.QueryAllWithdrawals()
		return
	})
	return withdrawals, err
}

func (svc *Service) GetByID(id string) (Withdrawal, error) {
	var w Withdrawal
	err := core.RetryRead(func() (qerr error) {
		w, qerr = svc.repo.GetWithdrawalByID(id)
		return
	}, func(err error) bool { return errors.Is(err, ErrNotFound) })
	return w, err
}

func (svc *Service) Filter(filter QueryFilter) ([]Withdrawal, error) {
	filter.Clean()
	var withdrawals []Withdrawal
	err := core.RetryRead(func() (qerr error) {
		withdrawals, qerr = svc.repo.FilterWithdrawals(filter)
		return
	})
	return withdrawals, err
}

func (svc *Service) Update(id string, uw UpdateWithdrawal) (Withdrawal, error) {
	orig, err := svc.repo.GetWithdrawalByID(id)
	if err != nil {
		return Withdrawal{}, err
	}
	if err = uw.Validate(orig); err != nil {
		return Withdrawal{}, err
	}

	w := Withdrawal{
		ID:        id,
		Name:      uw.Name,
		Amount:    uw.Amount,
		Date:      uw.Date,
		Notes:     uw.Notes,
		CreatedAt: orig.CreatedAt,
	}
	return svc.repo.UpdateWithdrawal(w)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteWithdrawalsByID(ids...)
}

func (svc *Service) TotalExpenses() (int, error) {
	var total int
	err := core.RetryRead(func() (qerr error) {
		total, qerr = svc.repo.TotalExpenses()
		return
	})
	return total, err
}
