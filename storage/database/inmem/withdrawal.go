package inmemdb

import (
	"sort"

	"github.com/alrowad/institute/core/withdrawal"
)

type withdrawalRepository struct {
	db *withdrawalTable
}

func NewWithdrawalRepository(db *DB) withdrawal.Repository {
	return &withdrawalRepository{db: db.withdrawal}
}

func (repo *withdrawalRepository) query() []withdrawal.Withdrawal {
	withdrawals := make([]withdrawal.Withdrawal, 0, len(repo.db.table))
	for _, w := range repo.db.table {
		withdrawals = append(withdrawals, *w)
	}
	sort.Slice(withdrawals, func(i, j int) bool { return withdrawals[i].Date.Before(withdrawals[j].Date) })
	return withdrawals
}

func (repo *withdrawalRepository) CreateWithdrawal(w withdrawal.Withdrawal) (withdrawal.Withdrawal, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[w.ID] = &w
	return w, nil
}

func (repo *withdrawalRepository) QueryAllWithdrawals() ([]withdrawal.Withdrawal, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *withdrawalRepository) GetWithdrawalByID(id string) (withdrawal.Withdrawal, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if w, ok := repo.db.table[id]; ok {
		return *w, nil
	}
	return withdrawal.Withdrawal{}, withdrawal.ErrNotFound
}

func (repo *withdrawalRepository) FilterWithdrawals(filter withdrawal.QueryFilter) ([]withdrawal.Withdrawal, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var withdrawals []withdrawal.Withdrawal
	for _, w := range repo.query() {
		if filter.Match(w) {
			withdrawals = append(withdrawals, w)
		}
	}
	return withdrawals, nil
}

func (repo *withdrawalRepository) UpdateWithdrawal(w withdrawal.Withdrawal) (withdrawal.Withdrawal, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[w.ID]
	if !ok {
		return withdrawal.Withdrawal{}, withdrawal.ErrNotFound
	}
	w.CreatedAt = orig.CreatedAt
	repo.db.table[w.ID] = &w
	return w, nil
}

func (repo *withdrawalRepository) DeleteWithdrawalsByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *withdrawalRepository) TotalExpenses() (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var total int
	for _, w := range repo.db.table {
		total += w.Amount
	}
	return total, nil
}

func (repo *withdrawalRepository) PurgeWithdrawals() error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table = make(map[string]*withdrawal.Withdrawal)
	return nil
}
