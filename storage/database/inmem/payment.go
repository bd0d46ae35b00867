package inmemdb

import (
	"sort"

	"github.com/alrowad/institute/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) query() []payment.Payment {
	payments := make([]payment.Payment, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		payments = append(payments, *p)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].Date.Before(payments[j].Date) })
	return payments
}

func (repo *paymentRepository) CheckReceiptUniqueness(studentID, receiptNumber string, excluded ...payment.Payment) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excl := make(map[string]bool, len(excluded))
	for _, p := range excluded {
		excl[p.ID] = true
	}

	for _, p := range repo.query() {
		if excl[p.ID] {
			continue
		}
		if p.StudentID == studentID && p.ReceiptNumber == receiptNumber {
			return payment.ErrReceiptExists
		}
	}
	return nil
}

func (repo *paymentRepository) CreatePayment(p payment.Payment) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) QueryAllPayments() ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *paymentRepository) GetPaymentByID(id string) (payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) QueryPaymentsByStudentID(studentID string) ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var payments []payment.Payment
	for _, p := range repo.query() {
		if p.StudentID == studentID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (repo *paymentRepository) FilterPayments(filter payment.QueryFilter) ([]payment.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var payments []payment.Payment
	for _, p := range repo.query() {
		if filter.Match(p) {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (repo *paymentRepository) UpdatePayment(p payment.Payment) (payment.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[p.ID]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	p.StudentID = orig.StudentID
	p.CreatedAt = orig.CreatedAt
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *paymentRepository) DeletePaymentsByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *paymentRepository) TotalRevenue() (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var total int
	for _, p := range repo.db.table {
		total += p.Amount
	}
	return total, nil
}

func (repo *paymentRepository) PurgePayments() error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table = make(map[string]*payment.Payment)
	return nil
}
