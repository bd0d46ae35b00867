package teacher

import (
	"time"

	"github.com/alrowad/institute/core"
)

// Teacher is a catalog entry. Price is the fee this teacher's
// subject/grade pairing usually bills at; it is informational and the
// subject catalog's cost remains the billing authority.
type Teacher struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Grade     string    `json:"grade"`
	Price     int       `json:"price"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type NewTeacher struct {
	Name    string `json:"name" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Grade   string `json:"grade" validate:"required,gradetrack"`
	Price   int    `json:"price" validate:"required,gt=0"`
}

func (nt *NewTeacher) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Subject = core.CleanString(nt.Subject)
	return core.Validate.Struct(nt)
}

type UpdateTeacher struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Grade   string `json:"grade" validate:"omitempty,gradetrack"`
	Price   int    `json:"price" validate:"omitempty,gt=0"`
}

func (ut *UpdateTeacher) Validate(orig Teacher) error {
	if name := core.CleanString(ut.Name); name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}
	if subj := core.CleanString(ut.Subject); subj != "" {
		ut.Subject = subj
	} else {
		ut.Subject = orig.Subject
	}
	if ut.Grade == "" {
		ut.Grade = orig.Grade
	}
	if ut.Price == 0 {
		ut.Price = orig.Price
	}
	return core.Validate.Struct(ut)
}
