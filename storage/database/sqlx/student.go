package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/student"
)

type studentRow struct {
	ID             string    `db:"id"`
	FullName       string    `db:"full_name"`
	Phone          string    `db:"phone"`
	ParentPhone    string    `db:"parent_phone"`
	Region         string    `db:"region"`
	LineName       string    `db:"line_name"`
	LineOwnerPhone string    `db:"line_owner_phone"`
	Grade          string    `db:"grade"`
	CreatedAt      null.Time `db:"created_at"`
	UpdatedAt      null.Time `db:"updated_at"`
	PaidAmount     int       `db:"paid_amount"`
}

type enrollmentRow struct {
	StudentID string `db:"student_id"`
	Subject   string `db:"subject"`
	Teacher   string `db:"teacher"`
	Cost      int    `db:"cost"`
}

func (r studentRow) toStudent(enrollments []student.Enrollment) student.Student {
	return student.Student{
		ID:             r.ID,
		FullName:       r.FullName,
		Phone:          r.Phone,
		ParentPhone:    r.ParentPhone,
		Region:         r.Region,
		LineName:       r.LineName,
		LineOwnerPhone: r.LineOwnerPhone,
		Grade:          r.Grade,
		Enrollments:    enrollments,
		PaidAmount:     r.PaidAmount,
		CreatedAt:      r.CreatedAt.Time,
		UpdatedAt:      r.UpdatedAt.Time,
	}
}

// paid_amount is always derived from payment rows, never stored.
const studentSelect = `SELECT s.*,
COALESCE((SELECT SUM(p.amount) FROM payment p WHERE p.student_id = s.id), 0) AS paid_amount
FROM student s`

type studentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) enrollments(ctx context.Context, studentIDs []string) (map[string][]student.Enrollment, error) {
	out := make(map[string][]student.Enrollment, len(studentIDs))
	if len(studentIDs) == 0 {
		return out, nil
	}

	q, args, err := sqlx.In(`SELECT student_id, subject, teacher, cost FROM enrollment WHERE student_id IN (?) ORDER BY id`, studentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building enrollments query")
	}
	var rows []enrollmentRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	for _, r := range rows {
		out[r.StudentID] = append(out[r.StudentID], student.Enrollment{
			Subject: r.Subject,
			Teacher: r.Teacher,
			Cost:    r.Cost,
		})
	}
	return out, nil
}

func (repo *studentRepository) selectStudents(ctx context.Context, q string, args ...interface{}) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	enrollments, err := repo.enrollments(ctx, ids)
	if err != nil {
		return nil, err
	}

	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent(enrollments[r.ID]))
	}
	return students, nil
}

func (repo *studentRepository) insertEnrollments(ctx context.Context, tx *sqlx.Tx, s student.Student) error {
	q := `INSERT INTO enrollment (student_id, subject, teacher, cost) VALUES (:student_id, :subject, :teacher, :cost)`
	for _, e := range s.Enrollments {
		row := enrollmentRow{StudentID: s.ID, Subject: e.Subject, Teacher: e.Teacher, Cost: e.Cost}
		if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
			return errors.Wrap(err, "creating enrollment")
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(s student.Student) (student.Student, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `INSERT INTO student (id, full_name, phone, parent_phone, region, line_name, line_owner_phone, grade, created_at, updated_at)
	VALUES (:id, :full_name, :phone, :parent_phone, :region, :line_name, :line_owner_phone, :grade, :created_at, :updated_at)`
	row := studentRow{
		ID:             s.ID,
		FullName:       s.FullName,
		Phone:          s.Phone,
		ParentPhone:    s.ParentPhone,
		Region:         s.Region,
		LineName:       s.LineName,
		LineOwnerPhone: s.LineOwnerPhone,
		Grade:          s.Grade,
		CreatedAt:      null.TimeFrom(s.CreatedAt),
		UpdatedAt:      null.TimeFrom(s.UpdatedAt),
	}
	if _, err = tx.NamedExecContext(ctx, q, row); err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	if err = repo.insertEnrollments(ctx, tx, s); err != nil {
		return student.Student{}, err
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing student")
	}
	return s, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()
	return repo.selectStudents(ctx, studentSelect+` ORDER BY s.created_at`)
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	students, err := repo.selectStudents(ctx, studentSelect+` WHERE s.id = $1`, id)
	if err != nil {
		return student.Student{}, err
	}
	if len(students) == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return students[0], nil
}

func (repo *studentRepository) FilterStudents(filter student.QueryFilter) ([]student.Student, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := studentSelect + ` WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "?"
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		q += ` AND (s.full_name ILIKE ` + p + ` OR s.phone ILIKE ` + p + ` OR s.parent_phone ILIKE ` + p + `)`
	}
	if filter.Grade != "" {
		q += ` AND s.grade = ` + arg(filter.Grade)
	}
	if filter.Subject != "" {
		q += ` AND EXISTS (SELECT 1 FROM enrollment e WHERE e.student_id = s.id AND e.subject ILIKE ` + arg("%"+filter.Subject+"%") + `)`
	}
	if filter.Teacher != "" {
		q += ` AND EXISTS (SELECT 1 FROM enrollment e WHERE e.student_id = s.id AND e.teacher ILIKE ` + arg("%"+filter.Teacher+"%") + `)`
	}
	q += ` ORDER BY s.created_at`

	return repo.selectStudents(ctx, repo.db.Rebind(q), args...)
}

func (repo *studentRepository) UpdateStudent(s student.Student) (student.Student, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := `UPDATE student SET full_name = :full_name, phone = :phone, parent_phone = :parent_phone,
	region = :region, line_name = :line_name, line_owner_phone = :line_owner_phone, grade = :grade,
	updated_at = :updated_at WHERE id = :id`
	row := studentRow{
		ID:             s.ID,
		FullName:       s.FullName,
		Phone:          s.Phone,
		ParentPhone:    s.ParentPhone,
		Region:         s.Region,
		LineName:       s.LineName,
		LineOwnerPhone: s.LineOwnerPhone,
		Grade:          s.Grade,
		UpdatedAt:      null.TimeFrom(s.UpdatedAt),
	}
	res, err := tx.NamedExecContext(ctx, q, row)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}

	// enrollments are replaced wholesale; cost snapshots come from the
	// service layer, so unchanged enrollments keep their original cost
	if _, err = tx.ExecContext(ctx, `DELETE FROM enrollment WHERE student_id = $1`, s.ID); err != nil {
		return student.Student{}, errors.Wrap(err, "clearing enrollments")
	}
	if err = repo.insertEnrollments(ctx, tx, s); err != nil {
		return student.Student{}, err
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing student")
	}
	return repo.GetStudentByID(s.ID)
}

func (repo *studentRepository) DeleteStudentsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q, args, err := sqlx.In(`DELETE FROM student WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}

func (repo *studentRepository) PurgeStudents() error {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	if _, err := repo.db.ExecContext(ctx, `DELETE FROM student`); err != nil {
		return errors.Wrap(err, "purging students")
	}
	return nil
}
