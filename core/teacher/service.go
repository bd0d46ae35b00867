package teacher

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alrowad/institute/core"
	// register the gradetrack validation tag
	_ "github.com/alrowad/institute/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("teacher not found")
)

type (
	Repository interface {
		CreateTeacher(t Teacher) (Teacher, error)
		QueryAllTeachers() ([]Teacher, error)
		GetTeacherByID(id string) (Teacher, error)
		UpdateTeacher(t Teacher) (Teacher, error)
		DeleteTeachersByID(ids ...string) error
		PurgeTeachers() error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(nt NewTeacher) (Teacher, error) {
	now := time.Now().UTC()
	t := Teacher{
		ID:        uuid.New().String(),
		Name:      nt.Name,
		Subject:   nt.Subject,
		Grade:     nt.Grade,
		Price:     nt.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateTeacher(t)
}

func (svc *Service) QueryAll() ([]Teacher, error) {
	var teachers []Teacher
	err := core.RetryRead(func() (qerr error) {
		teachers, qerr = svc.repo.QueryAllTeachers()
		return
	})
	return teachers, err
}

func (svc *Service) GetByID(id string) (Teacher, error) {
	var t Teacher
	err := core.RetryRead(func() (qerr error) {
		t, qerr = svc.repo.GetTeacherByID(id)
		return
	}, func(err error) bool { return errors.Is(err, ErrNotFound) })
	return t, err
}

func (svc *Service) Update(id string, ut UpdateTeacher) (Teacher, error) {
	orig, err := svc.repo.GetTeacherByID(id)
	if err != nil {
		return Teacher{}, err
	}
	if err = ut.Validate(orig); err != nil {
		return Teacher{}, err
	}

	t := Teacher{
		ID:        id,
		Name:      ut.Name,
		Subject:   ut.Subject,
		Grade:     ut.Grade,
		Price:     ut.Price,
		CreatedAt: orig.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateTeacher(t)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteTeachersByID(ids...)
}
