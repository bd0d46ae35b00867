package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/payment"
)

type paymentRow struct {
	ID            string    `db:"id"`
	StudentID     string    `db:"student_id"`
	Amount        int       `db:"amount"`
	Date          null.Time `db:"date"`
	ReceiptNumber string    `db:"receipt_number"`
	Notes         string    `db:"notes"`
	Status        string    `db:"status"`
	CreatedAt     null.Time `db:"created_at"`
}

func (r paymentRow) toPayment() payment.Payment {
	return payment.Payment{
		ID:            r.ID,
		StudentID:     r.StudentID,
		Amount:        r.Amount,
		Date:          r.Date.Time,
		ReceiptNumber: r.ReceiptNumber,
		Notes:         r.Notes,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt.Time,
	}
}

func newPaymentRow(p payment.Payment) paymentRow {
	return paymentRow{
		ID:            p.ID,
		StudentID:     p.StudentID,
		Amount:        p.Amount,
		Date:          null.TimeFrom(p.Date),
		ReceiptNumber: p.ReceiptNumber,
		Notes:         p.Notes,
		Status:        p.Status,
		CreatedAt:     null.TimeFrom(p.CreatedAt),
	}
}

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) payment.Repository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) selectPayments(q string, args ...interface{}) ([]payment.Payment, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, r.toPayment())
	}
	return payments, nil
}

func (repo *paymentRepository) CheckReceiptUniqueness(studentID, receiptNumber string, excluded ...payment.Payment) error {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `SELECT COUNT(*) FROM payment WHERE student_id = ? AND receipt_number = ?`
	args := []interface{}{studentID, receiptNumber}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, p := range excluded {
			ids = append(ids, p.ID)
		}
		var err error
		q, args, err = sqlx.In(q+` AND id NOT IN (?)`, studentID, receiptNumber, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking receipt uniqueness")
	}
	if count > 0 {
		return payment.ErrReceiptExists
	}
	return nil
}

func (repo *paymentRepository) CreatePayment(p payment.Payment) (payment.Payment, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `INSERT INTO payment (id, student_id, amount, date, receipt_number, notes, status, created_at)
	VALUES (:id, :student_id, :amount, :date, :receipt_number, :notes, :status, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newPaymentRow(p)); err != nil {
		return payment.Payment{}, errors.Wrap(err, "creating payment")
	}
	return p, nil
}

func (repo *paymentRepository) QueryAllPayments() ([]payment.Payment, error) {
	return repo.selectPayments(`SELECT * FROM payment ORDER BY date`)
}

func (repo *paymentRepository) GetPaymentByID(id string) (payment.Payment, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var r paymentRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM payment WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, errors.Wrap(err, "getting payment")
	}
	return r.toPayment(), nil
}

func (repo *paymentRepository) QueryPaymentsByStudentID(studentID string) ([]payment.Payment, error) {
	return repo.selectPayments(`SELECT * FROM payment WHERE student_id = $1 ORDER BY date`, studentID)
}

func (repo *paymentRepository) FilterPayments(filter payment.QueryFilter) ([]payment.Payment, error) {
	q := `SELECT * FROM payment WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "?"
	}

	if filter.StudentID != "" {
		q += ` AND student_id = ` + arg(filter.StudentID)
	}
	if !filter.DateFrom.IsZero() {
		q += ` AND date >= ` + arg(filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		q += ` AND date <= ` + arg(filter.DateTo)
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		q += ` AND (receipt_number ILIKE ` + p + ` OR notes ILIKE ` + p + `)`
	}
	q += ` ORDER BY date`

	return repo.selectPayments(repo.db.Rebind(q), args...)
}

func (repo *paymentRepository) UpdatePayment(p payment.Payment) (payment.Payment, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `UPDATE payment SET amount = :amount, date = :date, receipt_number = :receipt_number,
	notes = :notes, status = :status WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newPaymentRow(p))
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return payment.Payment{}, payment.ErrNotFound
	}
	return repo.GetPaymentByID(p.ID)
}

func (repo *paymentRepository) DeletePaymentsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q, args, err := sqlx.In(`DELETE FROM payment WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting payments")
	}
	return nil
}

func (repo *paymentRepository) TotalRevenue() (int, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM payment`); err != nil {
		return 0, errors.Wrap(err, "computing total revenue")
	}
	return total, nil
}

func (repo *paymentRepository) PurgePayments() error {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	if _, err := repo.db.ExecContext(ctx, `DELETE FROM payment`); err != nil {
		return errors.Wrap(err, "purging payments")
	}
	return nil
}
