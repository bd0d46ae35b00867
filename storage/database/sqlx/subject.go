package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/subject"
)

type subjectRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Teacher      string    `db:"teacher"`
	Cost         int       `db:"cost"`
	CreatedAt    null.Time `db:"created_at"`
	UpdatedAt    null.Time `db:"updated_at"`
	StudentCount int       `db:"student_count"`
}

func (r subjectRow) toSubject() subject.Subject {
	return subject.Subject{
		ID:           r.ID,
		Name:         r.Name,
		Teacher:      r.Teacher,
		Cost:         r.Cost,
		StudentCount: r.StudentCount,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

// student_count is always derived from enrollments, never stored.
const subjectSelect = `SELECT s.*,
COALESCE((SELECT COUNT(DISTINCT e.student_id) FROM enrollment e WHERE LOWER(e.subject) = LOWER(s.name)), 0) AS student_count
FROM subject s`

type subjectRepository struct {
	db *sqlx.DB
}

func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CheckNameUniqueness(name string, excluded ...subject.Subject) error {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `SELECT COUNT(*) FROM subject WHERE LOWER(name) = LOWER(?)`
	args := []interface{}{name}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, s := range excluded {
			ids = append(ids, s.ID)
		}
		var err error
		q, args, err = sqlx.In(q+` AND id NOT IN (?)`, name, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking subject name uniqueness")
	}
	if count > 0 {
		return subject.ErrNameExists
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(s subject.Subject) (subject.Subject, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `INSERT INTO subject (id, name, teacher, cost, created_at, updated_at)
	VALUES (:id, :name, :teacher, :cost, :created_at, :updated_at)`
	row := subjectRow{
		ID:        s.ID,
		Name:      s.Name,
		Teacher:   s.Teacher,
		Cost:      s.Cost,
		CreatedAt: null.TimeFrom(s.CreatedAt),
		UpdatedAt: null.TimeFrom(s.UpdatedAt),
	}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return subject.Subject{}, errors.Wrap(err, "creating subject")
	}
	return s, nil
}

func (repo *subjectRepository) QueryAllSubjects() ([]subject.Subject, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, subjectSelect+` ORDER BY s.name`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.toSubject())
	}
	return subjects, nil
}

func (repo *subjectRepository) getBy(q string, args ...interface{}) (subject.Subject, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var r subjectRow
	if err := repo.db.GetContext(ctx, &r, q, args...); err != nil {
		if isNoRows(err) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "getting subject")
	}
	return r.toSubject(), nil
}

func (repo *subjectRepository) GetSubjectByID(id string) (subject.Subject, error) {
	return repo.getBy(subjectSelect+` WHERE s.id = $1`, id)
}

func (repo *subjectRepository) GetSubjectByName(name string) (subject.Subject, error) {
	return repo.getBy(subjectSelect+` WHERE LOWER(s.name) = LOWER($1)`, name)
}

func (repo *subjectRepository) UpdateSubject(s subject.Subject) (subject.Subject, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `UPDATE subject SET name = :name, teacher = :teacher, cost = :cost, updated_at = :updated_at WHERE id = :id`
	row := subjectRow{
		ID:        s.ID,
		Name:      s.Name,
		Teacher:   s.Teacher,
		Cost:      s.Cost,
		UpdatedAt: null.TimeFrom(s.UpdatedAt),
	}
	res, err := repo.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subject.Subject{}, subject.ErrNotFound
	}
	return repo.GetSubjectByID(s.ID)
}

func (repo *subjectRepository) DeleteSubjectsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q, args, err := sqlx.In(`DELETE FROM subject WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting subjects")
	}
	return nil
}

func (repo *subjectRepository) PurgeSubjects() error {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	if _, err := repo.db.ExecContext(ctx, `DELETE FROM subject`); err != nil {
		return errors.Wrap(err, "purging subjects")
	}
	return nil
}
