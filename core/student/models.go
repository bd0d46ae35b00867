package student

import (
	"strings"
	"time"

	"github.com/alrowad/institute/core"
)

// Grade tracks
const (
	GradeSixthScience    = "sixth-science"
	GradeSixthLiterary   = "sixth-literary"
	GradeSixthVocational = "sixth-vocational"
)

var Grades = []string{GradeSixthScience, GradeSixthLiterary, GradeSixthVocational}

// Enrollment attaches a student to a subject. Cost is a snapshot of the
// subject's cost at enrollment time; later subject-cost edits are not
// retroactive.
type Enrollment struct {
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
	Cost    int    `json:"cost"`
}

type Student struct {
	ID             string       `json:"id"`
	FullName       string       `json:"full_name"`
	Phone          string       `json:"phone"`
	ParentPhone    string       `json:"parent_phone"`
	Region         string       `json:"region"`
	LineName       string       `json:"line_name"`
	LineOwnerPhone string       `json:"line_owner_phone"`
	Grade          string       `json:"grade"`
	Enrollments    []Enrollment `json:"enrollments"`
	PaidAmount     int          `json:"paid_amount"` // derived: sum of recorded payments
	CreatedAt      time.Time    `json:"created_at"`  // UTC
	UpdatedAt      time.Time    `json:"updated_at"`  // UTC
}

// TotalFees is the sum of the enrollment cost snapshots.
func (s *Student) TotalFees() int {
	var total int
	for _, e := range s.Enrollments {
		total += e.Cost
	}
	return total
}

// Settle classifies this student's settlement state.
func (s *Student) Settle() (Settlement, error) {
	return Classify(s.TotalFees(), s.PaidAmount)
}

// SubjectNames returns the enrolled subject names in enrollment order.
func (s *Student) SubjectNames() []string {
	names := make([]string, 0, len(s.Enrollments))
	for _, e := range s.Enrollments {
		names = append(names, e.Subject)
	}
	return names
}

// TeacherNames returns the distinct teacher names in enrollment order.
func (s *Student) TeacherNames() []string {
	seen := make(map[string]bool, len(s.Enrollments))
	names := make([]string, 0, len(s.Enrollments))
	for _, e := range s.Enrollments {
		if e.Teacher == "" || seen[e.Teacher] {
			continue
		}
		seen[e.Teacher] = true
		names = append(names, e.Teacher)
	}
	return names
}

// NewEnrollment contains information needed to enroll a student in a subject.
// The cost snapshot is resolved by the service, not supplied by the caller.
type NewEnrollment struct {
	Subject string `json:"subject" validate:"required"`
	Teacher string `json:"teacher"`
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	FullName       string          `json:"full_name" validate:"required"`
	Phone          string          `json:"phone" validate:"required"`
	ParentPhone    string          `json:"parent_phone"`
	Region         string          `json:"region"`
	LineName       string          `json:"line_name"`
	LineOwnerPhone string          `json:"line_owner_phone"`
	Grade          string          `json:"grade" validate:"required,gradetrack"`
	Enrollments    []NewEnrollment `json:"enrollments" validate:"required,min=1,dive"`
}

func (ns *NewStudent) Validate() error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Region = core.CleanString(ns.Region)
	for i := range ns.Enrollments {
		ns.Enrollments[i].Subject = core.CleanString(ns.Enrollments[i].Subject)
		ns.Enrollments[i].Teacher = core.CleanString(ns.Enrollments[i].Teacher)
	}
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Enrollments, when provided, replace the existing set; cost snapshots of
// kept subjects are preserved.
type UpdateStudent struct {
	FullName       string          `json:"full_name"`
	Phone          string          `json:"phone"`
	ParentPhone    string          `json:"parent_phone"`
	Region         string          `json:"region"`
	LineName       string          `json:"line_name"`
	LineOwnerPhone string          `json:"line_owner_phone"`
	Grade          string          `json:"grade" validate:"omitempty,gradetrack"`
	Enrollments    []NewEnrollment `json:"enrollments" validate:"omitempty,min=1,dive"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	if name := core.CleanString(us.FullName); name != "" {
		us.FullName = name
	} else {
		us.FullName = orig.FullName
	}
	if phone := core.CleanString(us.Phone); phone != "" {
		us.Phone = phone
	} else {
		us.Phone = orig.Phone
	}
	if us.ParentPhone == "" {
		us.ParentPhone = orig.ParentPhone
	}
	if region := core.CleanString(us.Region); region != "" {
		us.Region = region
	} else {
		us.Region = orig.Region
	}
	if us.LineName == "" {
		us.LineName = orig.LineName
	}
	if us.LineOwnerPhone == "" {
		us.LineOwnerPhone = orig.LineOwnerPhone
	}
	if us.Grade == "" {
		us.Grade = orig.Grade
	}
	return core.Validate.Struct(us)
}

// QueryFilter applies AND over its set fields; Search does a
// case-insensitive substring match on a student's name or phone.
type QueryFilter struct {
	Search  string `query:"search"`
	Grade   string `query:"grade"`
	Subject string `query:"subject"`
	Teacher string `query:"teacher"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Grade == "" && qf.Subject == "" && qf.Teacher == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Subject = core.CleanString(qf.Subject)
	qf.Teacher = core.CleanString(qf.Teacher)
}

// Match reports whether a student satisfies the filter.
// Shared by the in-memory repository and the report pipeline so displayed
// totals always agree with displayed rows.
func (qf *QueryFilter) Match(s Student) bool {
	if qf.Grade != "" && s.Grade != qf.Grade {
		return false
	}
	if qf.Search != "" {
		search := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(s.FullName), search) && !strings.Contains(s.Phone, qf.Search) {
			return false
		}
	}
	if qf.Subject != "" && !containsFold(s.SubjectNames(), qf.Subject) {
		return false
	}
	if qf.Teacher != "" && !containsFold(s.TeacherNames(), qf.Teacher) {
		return false
	}
	return true
}

func containsFold(vals []string, substr string) bool {
	substr = strings.ToLower(substr)
	for _, v := range vals {
		if strings.Contains(strings.ToLower(v), substr) {
			return true
		}
	}
	return false
}
