package subject

import (
	"time"

	"github.com/alrowad/institute/core"
)

// Subject is an institute-wide course offering. Cost is the billing
// authority for enrollment snapshots; the teacher catalog's price field is
// informational only.
type Subject struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Teacher      string    `json:"teacher"`
	Cost         int       `json:"cost"`
	StudentCount int       `json:"student_count"` // derived: current enrollment count
	CreatedAt    time.Time `json:"created_at"`    // UTC
	UpdatedAt    time.Time `json:"updated_at"`    // UTC
}

// NewSubject contains information needed to create a Subject.
// A zero Cost falls back to the configured institute-wide default.
type NewSubject struct {
	Name    string `json:"name" validate:"required"`
	Teacher string `json:"teacher"`
	Cost    int    `json:"cost" validate:"omitempty,gt=0"`
}

func (ns *NewSubject) Validate(svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Teacher = core.CleanString(ns.Teacher)
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ns.Name)
}

type UpdateSubject struct {
	Name    string `json:"name"`
	Teacher string `json:"teacher"`
	Cost    int    `json:"cost" validate:"omitempty,gt=0"`
}

func (us *UpdateSubject) Validate(orig Subject, svc *Service) error {
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if tchr := core.CleanString(us.Teacher); tchr != "" {
		us.Teacher = tchr
	} else {
		us.Teacher = orig.Teacher
	}
	if us.Cost == 0 {
		us.Cost = orig.Cost
	}
	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	if us.Name != orig.Name {
		return svc.checkUniqueness(us.Name)
	}
	return nil
}
