package student

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alrowad/institute/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	// CostResolver resolves the billing cost of a subject by name.
	// Subject cost is the billing authority; teacher price is informational.
	CostResolver interface {
		SubjectCost(name string) (int, error)
	}

	Repository interface {
		CreateStudent(s Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(filter QueryFilter) ([]Student, error)
		UpdateStudent(s Student) (Student, error)
		DeleteStudentsByID(ids ...string) error
		PurgeStudents() error
	}

	Service struct {
		repo  Repository
		costs CostResolver
		log   core.Logger
	}
)

func NewService(repo Repository, costs CostResolver, log core.Logger) *Service {
	return &Service{repo: repo, costs: costs, log: log}
}

// Create registers a student, snapshotting each subject's current cost
// into the enrollment.
func (svc *Service) Create(ns NewStudent) (Student, error) {
	enrollments, err := svc.resolveEnrollments(ns.Enrollments, nil)
	if err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	s := Student{
		ID:             uuid.New().String(),
		FullName:       ns.FullName,
		Phone:          ns.Phone,
		ParentPhone:    ns.ParentPhone,
		Region:         ns.Region,
		LineName:       ns.LineName,
		LineOwnerPhone: ns.LineOwnerPhone,
		Grade:          ns.Grade,
		Enrollments:    enrollments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateStudent(s)
}

func (svc *Service) QueryAll() ([]Student, error) {
	var students []Student
	err := core.RetryRead(func() (qerr error) {
		students, qerr = svc.repo.QueryAllStudents()
		return
	})
	return students, err
}

func (svc *Service) GetByID(id string) (Student, error) {
	var s Student
	err := core.RetryRead(func() (qerr error) {
		s, qerr = svc.repo.GetStudentByID(id)
		return
	}, func(err error) bool { return errors.Is(err, ErrNotFound) })
	return s, err
}

func (svc *Service) Filter(filter QueryFilter) ([]Student, error) {
	filter.Clean()
	var students []Student
	err := core.RetryRead(func() (qerr error) {
		students, qerr = svc.repo.FilterStudents(filter)
		return
	})
	return students, err
}

func (svc *Service) Update(id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(id)
	if err != nil {
		return Student{}, err
	}
	if err = us.Validate(orig); err != nil {
		return Student{}, err
	}

	enrollments := orig.Enrollments
	if us.Enrollments != nil {
		// keep cost snapshots of subjects the student stays enrolled in
		if enrollments, err = svc.resolveEnrollments(us.Enrollments, orig.Enrollments); err != nil {
			return Student{}, err
		}
	}

	s := Student{
		ID:             id,
		FullName:       us.FullName,
		Phone:          us.Phone,
		ParentPhone:    us.ParentPhone,
		Region:         us.Region,
		LineName:       us.LineName,
		LineOwnerPhone: us.LineOwnerPhone,
		Grade:          us.Grade,
		Enrollments:    enrollments,
		UpdatedAt:      time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(s)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteStudentsByID(ids...)
}

// Settlement classifies a student and logs overpayments as anomalies.
func (svc *Service) Settlement(s Student) (Settlement, error) {
	stl, err := s.Settle()
	if err != nil {
		return Settlement{}, core.NewValidationError(
			err, core.FieldError{Field: "total_fees", Error: err.Error()})
	}
	if stl.Overpaid() && svc.log != nil {
		svc.log.Warn(fmt.Sprintf(
			"student %s overpaid: %d recorded against %d total fees", s.ID, s.PaidAmount, s.TotalFees()))
	}
	return stl, nil
}

func (svc *Service) resolveEnrollments(nes []NewEnrollment, keep []Enrollment) ([]Enrollment, error) {
	kept := make(map[string]int, len(keep))
	for _, e := range keep {
		kept[e.Subject] = e.Cost
	}

	enrollments := make([]Enrollment, 0, len(nes))
	for _, ne := range nes {
		cost, ok := kept[ne.Subject]
		if !ok {
			var err error
			if cost, err = svc.costs.SubjectCost(ne.Subject); err != nil {
				return nil, core.NewValidationError(
					err, core.FieldError{Field: "enrollments", Error: fmt.Sprintf("unknown subject %q", ne.Subject)})
			}
		}
		enrollments = append(enrollments, Enrollment{Subject: ne.Subject, Teacher: ne.Teacher, Cost: cost})
	}
	return enrollments, nil
}
