package subject

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alrowad/institute/core"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrNameExists = errors.New("a subject with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(name string, excluded ...Subject) error
		CreateSubject(s Subject) (Subject, error)
		QueryAllSubjects() ([]Subject, error)
		GetSubjectByID(id string) (Subject, error)
		GetSubjectByName(name string) (Subject, error)
		UpdateSubject(s Subject) (Subject, error)
		DeleteSubjectsByID(ids ...string) error
		PurgeSubjects() error
	}

	// DefaultCoster resolves the institute-wide default subject cost from
	// the persisted settings.
	DefaultCoster interface {
		DefaultSubjectCost() int
	}

	Service struct {
		repo     Repository
		defaults DefaultCoster
	}
)

func NewService(repo Repository, defaults DefaultCoster) *Service {
	return &Service{repo: repo, defaults: defaults}
}

func (svc *Service) checkUniqueness(name string) error {
	if err := svc.repo.CheckNameUniqueness(name); err != nil {
		if errors.Is(err, ErrNameExists) {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ns NewSubject) (Subject, error) {
	cost := ns.Cost
	if cost == 0 && svc.defaults != nil {
		cost = svc.defaults.DefaultSubjectCost()
	}

	now := time.Now().UTC()
	s := Subject{
		ID:        uuid.New().String(),
		Name:      ns.Name,
		Teacher:   ns.Teacher,
		Cost:      cost,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSubject(s)
}

func (svc *Service) QueryAll() ([]Subject, error) {
	var subjects []Subject
	err := core.RetryRead(func() (qerr error) {
		subjects, qerr = svc.repo.QueryAllSubjects()
		return
	})
	return subjects, err
}

func (svc *Service) GetByID(id string) (Subject, error) {
	var s Subject
	err := core.RetryRead(func() (qerr error) {
		s, qerr = svc.repo.GetSubjectByID(id)
		return
	}, func(err error) bool { return errors.Is(err, ErrNotFound) })
	return s, err
}

func (svc *Service) GetByName(name string) (Subject, error) {
	var s Subject
	err := core.RetryRead(func() (qerr error) {
		s, qerr = svc.repo.GetSubjectByName(core.CleanString(name))
		return
	}, func(err error) bool { return errors.Is(err, ErrNotFound) })
	return s, err
}

// SubjectCost implements the student package's CostResolver: Subject.Cost
// is the billing authority for enrollment snapshots.
func (svc *Service) SubjectCost(name string) (int, error) {
	s, err := svc.GetByName(name)
	if err != nil {
		return 0, err
	}
	return s.Cost, nil
}

func (svc *Service) Update(id string, us UpdateSubject) (Subject, error) {
	orig, err := svc.repo.GetSubjectByID(id)
	if err != nil {
		return Subject{}, err
	}
	if err = us.Validate(orig, svc); err != nil {
		return Subject{}, err
	}

	s := Subject{
		ID:        id,
		Name:      us.Name,
		Teacher:   us.Teacher,
		Cost:      us.Cost,
		CreatedAt: orig.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateSubject(s)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteSubjectsByID(ids...)
}
