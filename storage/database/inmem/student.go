package inmemdb

import (
	"sort"

	"github.com/alrowad/institute/core/student"
)

type studentRepository struct {
	db *DB
}

// NewStudentRepository returns a student repository. PaidAmount on
// returned students is always the sum of the student's recorded payments,
// never a stored counter.
func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) paidAmount(studentID string) int {
	repo.db.payment.mutex.RLock()
	defer repo.db.payment.mutex.RUnlock()

	var total int
	for _, p := range repo.db.payment.table {
		if p.StudentID == studentID {
			total += p.Amount
		}
	}
	return total
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.student.table))
	for _, s := range repo.db.student.table {
		cp := *s
		cp.Enrollments = append([]student.Enrollment(nil), s.Enrollments...)
		cp.PaidAmount = repo.paidAmount(s.ID)
		students = append(students, cp)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) })
	return students
}

func (repo *studentRepository) CreateStudent(s student.Student) (student.Student, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()

	repo.db.student.table[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	if s, ok := repo.db.student.table[id]; ok {
		cp := *s
		cp.Enrollments = append([]student.Enrollment(nil), s.Enrollments...)
		cp.PaidAmount = repo.paidAmount(s.ID)
		return cp, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(filter student.QueryFilter) ([]student.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	var students []student.Student
	for _, s := range repo.query() {
		if filter.Match(s) {
			students = append(students, s)
		}
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(s student.Student) (student.Student, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()

	orig, ok := repo.db.student.table[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.CreatedAt = orig.CreatedAt
	repo.db.student.table[s.ID] = &s
	cp := s
	cp.PaidAmount = repo.paidAmount(s.ID)
	return cp, nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...string) error {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.student.table, id)
	}
	return nil
}

func (repo *studentRepository) PurgeStudents() error {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()
	repo.db.student.table = make(map[string]*student.Student)
	return nil
}
