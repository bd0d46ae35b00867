package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/teacher"
)

type teacherRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Subject   string    `db:"subject"`
	Grade     string    `db:"grade"`
	Price     int       `db:"price"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (r teacherRow) toTeacher() teacher.Teacher {
	return teacher.Teacher{
		ID:        r.ID,
		Name:      r.Name,
		Subject:   r.Subject,
		Grade:     r.Grade,
		Price:     r.Price,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func newTeacherRow(t teacher.Teacher) teacherRow {
	return teacherRow{
		ID:        t.ID,
		Name:      t.Name,
		Subject:   t.Subject,
		Grade:     t.Grade,
		Price:     t.Price,
		CreatedAt: null.TimeFrom(t.CreatedAt),
		UpdatedAt: null.TimeFrom(t.UpdatedAt),
	}
}

type teacherRepository struct {
	db *sqlx.DB
}

func NewTeacherRepository(db *sqlx.DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(t teacher.Teacher) (teacher.Teacher, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `INSERT INTO teacher (id, name, subject, grade, price, created_at, updated_at)
	VALUES (:id, :name, :subject, :grade, :price, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newTeacherRow(t)); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return t, nil
}

func (repo *teacherRepository) QueryAllTeachers() ([]teacher.Teacher, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var rows []teacherRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM teacher ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, r.toTeacher())
	}
	return teachers, nil
}

func (repo *teacherRepository) GetTeacherByID(id string) (teacher.Teacher, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var r teacherRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM teacher WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return r.toTeacher(), nil
}

func (repo *teacherRepository) UpdateTeacher(t teacher.Teacher) (teacher.Teacher, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `UPDATE teacher SET name = :name, subject = :subject, grade = :grade, price = :price,
	updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newTeacherRow(t))
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.GetTeacherByID(t.ID)
}

func (repo *teacherRepository) DeleteTeachersByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q, args, err := sqlx.In(`DELETE FROM teacher WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting teachers")
	}
	return nil
}

func (repo *teacherRepository) PurgeTeachers() error {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	if _, err := repo.db.ExecContext(ctx, `DELETE FROM teacher`); err != nil {
		return errors.Wrap(err, "purging teachers")
	}
	return nil
}
