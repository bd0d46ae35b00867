package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/withdrawal"
)

type withdrawalRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Amount    int       `db:"amount"`
	Date      null.Time `db:"date"`
	Notes     string    `db:"notes"`
	CreatedAt null.Time `db:"created_at"`
}

func (r withdrawalRow) toWithdrawal() withdrawal.Withdrawal {
	return withdrawal.Withdrawal{
		ID:        r.ID,
		Name:      r.Name,
		Amount:    r.Amount,
		Date:      r.Date.Time,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt.Time,
	}
}

func newWithdrawalRow(w withdrawal.Withdrawal) withdrawalRow {
	return withdrawalRow{
		ID:        w.ID,
		Name:      w.Name,
		Amount:    w.Amount,
		Date:      null.TimeFrom(w.Date),
		Notes:     w.Notes,
		CreatedAt: null.TimeFrom(w.CreatedAt),
	}
}

type withdrawalRepository struct {
	db *sqlx.DB
}

func NewWithdrawalRepository(db *sqlx.DB) withdrawal.Repository {
	return &withdrawalRepository{db: db}
}

func (repo *withdrawalRepository) selectWithdrawals(q string, args ...interface{}) ([]withdrawal.Withdrawal, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var rows []withdrawalRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying withdrawals")
	}
	withdrawals := make([]withdrawal.Withdrawal, 0, len(rows))
	for _, r := range rows {
		withdrawals = append(withdrawals, r.toWithdrawal())
	}
	return withdrawals, nil
}

func (repo *withdrawalRepository) CreateWithdrawal(w withdrawal.Withdrawal) (withdrawal.Withdrawal, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `INSERT INTO withdrawal (id, name, amount, date, notes, created_at)
	VALUES (:id, :name, :amount, :date, :notes, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newWithdrawalRow(w)); err != nil {
		return withdrawal.Withdrawal{}, errors.Wrap(err, "creating withdrawal")
	}
	return w, nil
}

func (repo *withdrawalRepository) QueryAllWithdrawals() ([]withdrawal.Withdrawal, error) {
	return repo.selectWithdrawals(`SELECT * FROM withdrawal ORDER BY date`)
}

func (repo *withdrawalRepository) GetWithdrawalByID(id string) (withdrawal.Withdrawal, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var r withdrawalRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM withdrawal WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return withdrawal.Withdrawal{}, withdrawal.ErrNotFound
		}
		return withdrawal.Withdrawal{}, errors.Wrap(err, "getting withdrawal")
	}
	return r.toWithdrawal(), nil
}

func (repo *withdrawalRepository) FilterWithdrawals(filter withdrawal.QueryFilter) ([]withdrawal.Withdrawal, error) {
	q := `SELECT * FROM withdrawal WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "?"
	}

	if !filter.DateFrom.IsZero() {
		q += ` AND date >= ` + arg(filter.DateFrom)
	}
	if !filter.DateTo.IsZero() {
		q += ` AND date <= ` + arg(filter.DateTo)
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		q += ` AND (name ILIKE ` + p + ` OR notes ILIKE ` + p + `)`
	}
	q += ` ORDER BY date`

	return repo.selectWithdrawals(repo.db.Rebind(q), args...)
}

func (repo *withdrawalRepository) UpdateWithdrawal(w withdrawal.Withdrawal) (withdrawal.Withdrawal, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `UPDATE withdrawal SET name = :name, amount = :amount, date = :date, notes = :notes WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newWithdrawalRow(w))
	if err != nil {
		return withdrawal.Withdrawal{}, errors.Wrap(err, "updating withdrawal")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return withdrawal.Withdrawal{}, withdrawal.ErrNotFound
	}
	return repo.GetWithdrawalByID(w.ID)
}

func (repo *withdrawalRepository) DeleteWithdrawalsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q, args, err := sqlx.In(`DELETE FROM withdrawal WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting withdrawals")
	}
	return nil
}

func (repo *withdrawalRepository) TotalExpenses() (int, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COALESCE(SUM(amount), 0) FROM withdrawal`); err != nil {
		return 0, errors.Wrap(err, "computing total expenses")
	}
	return total, nil
}

func (repo *withdrawalRepository) PurgeWithdrawals() error {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	if _, err := repo.db.ExecContext(ctx, `DELETE FROM withdrawal`); err != nil {
		return errors.Wrap(err, "purging withdrawals")
	}
	return nil
}
