package inmemdb

import (
	"sort"
	"strings"

	"github.com/alrowad/institute/core/subject"
)

type subjectRepository struct {
	db *DB
}

// NewSubjectRepository returns a subject repository. StudentCount on
// returned subjects is derived from current enrollments.
func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) studentCount(name string) int {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	var count int
	for _, s := range repo.db.student.table {
		for _, e := range s.Enrollments {
			if strings.EqualFold(e.Subject, name) {
				count++
				break
			}
		}
	}
	return count
}

func (repo *subjectRepository) query() []subject.Subject {
	subjects := make([]subject.Subject, 0, len(repo.db.subject.table))
	for _, s := range repo.db.subject.table {
		cp := *s
		cp.StudentCount = repo.studentCount(s.Name)
		subjects = append(subjects, cp)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects
}

func (repo *subjectRepository) CheckNameUniqueness(name string, excluded ...subject.Subject) error {
	repo.db.subject.mutex.RLock()
	defer repo.db.subject.mutex.RUnlock()

	excl := make(map[string]bool, len(excluded))
	for _, s := range excluded {
		excl[s.ID] = true
	}

	for _, s := range repo.db.subject.table {
		if excl[s.ID] {
			continue
		}
		if strings.EqualFold(s.Name, name) {
			return subject.ErrNameExists
		}
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(s subject.Subject) (subject.Subject, error) {
	repo.db.subject.mutex.Lock()
	defer repo.db.subject.mutex.Unlock()

	repo.db.subject.table[s.ID] = &s
	return s, nil
}

func (repo *subjectRepository) QueryAllSubjects() ([]subject.Subject, error) {
	repo.db.subject.mutex.RLock()
	defer repo.db.subject.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *subjectRepository) GetSubjectByID(id string) (subject.Subject, error) {
	repo.db.subject.mutex.RLock()
	defer repo.db.subject.mutex.RUnlock()

	if s, ok := repo.db.subject.table[id]; ok {
		cp := *s
		cp.StudentCount = repo.studentCount(s.Name)
		return cp, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) GetSubjectByName(name string) (subject.Subject, error) {
	repo.db.subject.mutex.RLock()
	defer repo.db.subject.mutex.RUnlock()

	for _, s := range repo.db.subject.table {
		if strings.EqualFold(s.Name, name) {
			cp := *s
			cp.StudentCount = repo.studentCount(s.Name)
			return cp, nil
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateSubject(s subject.Subject) (subject.Subject, error) {
	repo.db.subject.mutex.Lock()
	defer repo.db.subject.mutex.Unlock()

	orig, ok := repo.db.subject.table[s.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	s.CreatedAt = orig.CreatedAt
	repo.db.subject.table[s.ID] = &s
	return s, nil
}

func (repo *subjectRepository) DeleteSubjectsByID(ids ...string) error {
	repo.db.subject.mutex.Lock()
	defer repo.db.subject.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.subject.table, id)
	}
	return nil
}

func (repo *subjectRepository) PurgeSubjects() error {
	repo.db.subject.mutex.Lock()
	defer repo.db.subject.mutex.Unlock()
	repo.db.subject.table = make(map[string]*subject.Subject)
	return nil
}
