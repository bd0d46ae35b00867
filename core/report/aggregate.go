package report

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/student"
	"github.com/alrowad/institute/core/withdrawal"
)

type (
	// Row is one student line of an aggregation result.
	Row struct {
		StudentID  string             `json:"student_id"`
		Name       string             `json:"name"`
		Grade      string             `json:"grade"`
		Subject    string             `json:"subject"` // enrolled subjects, comma-joined
		Teacher    string             `json:"teacher"` // distinct teachers, comma-joined
		TotalFees  int                `json:"total_fees"`
		Paid       int                `json:"paid"`
		Settlement student.Settlement `json:"settlement"`
	}

	// Group is a named partition (per teacher or per subject) with its rows
	// in aggregation order.
	Group struct {
		Key          string `json:"key"`
		StudentCount int    `json:"student_count"`
		Rows         []Row  `json:"rows"`
	}

	Totals struct {
		Fees         int `json:"fees"`
		Paid         int `json:"paid"`
		Remaining    int `json:"remaining"`
		StudentCount int `json:"student_count"`
	}

	// Aggregation partitions students into settlement buckets and carries
	// group and global sums. A pure value: aggregating the same input twice
	// yields identical results.
	Aggregation struct {
		Rows      []Row                    `json:"rows"`
		ByStatus  map[student.Status][]Row `json:"by_status"`
		ByTeacher []Group                  `json:"by_teacher"`
		BySubject []Group                  `json:"by_subject"`
		Totals    Totals                   `json:"totals"`
	}
)

// Aggregate partitions students by settlement status and computes group
// and institute-wide sums. The partition is total and disjoint under the
// canonical classification; totals always reconcile with the row set.
// Callers must apply any filter BEFORE aggregating so displayed totals
// match displayed rows exactly.
func Aggregate(students []student.Student) (Aggregation, error) {
	agg := Aggregation{
		Rows:     make([]Row, 0, len(students)),
		ByStatus: make(map[student.Status][]Row, len(student.Statuses)),
	}
	for _, status := range student.Statuses {
		agg.ByStatus[status] = []Row{}
	}

	teacherIdx := make(map[string]int)
	subjectIdx := make(map[string]int)

	for i := range students {
		s := &students[i]
		stl, err := s.Settle()
		if err != nil {
			return Aggregation{}, errors.Wrapf(err, "classifying student %s", s.ID)
		}

		row := Row{
			StudentID:  s.ID,
			Name:       s.FullName,
			Grade:      s.Grade,
			Subject:    strings.Join(s.SubjectNames(), ", "),
			Teacher:    strings.Join(s.TeacherNames(), ", "),
			TotalFees:  s.TotalFees(),
			Paid:       s.PaidAmount,
			Settlement: stl,
		}

		agg.Rows = append(agg.Rows, row)
		agg.ByStatus[stl.Status] = append(agg.ByStatus[stl.Status], row)
		agg.Totals.Fees += row.TotalFees
		agg.Totals.Paid += row.Paid
		agg.Totals.Remaining += stl.Remaining
		agg.Totals.StudentCount++

		for _, name := range s.TeacherNames() {
			appendGroup(&agg.ByTeacher, teacherIdx, name, row)
		}
		for _, name := range s.SubjectNames() {
			appendGroup(&agg.BySubject, subjectIdx, name, row)
		}
	}
	return agg, nil
}

// appendGroup adds a row to the named group, keeping first-seen order.
func appendGroup(groups *[]Group, idx map[string]int, key string, row Row) {
	i, ok := idx[key]
	if !ok {
		i = len(*groups)
		idx[key] = i
		*groups = append(*groups, Group{Key: key})
	}
	(*groups)[i].Rows = append((*groups)[i].Rows, row)
	(*groups)[i].StudentCount++
}

// Finance is the institute-wide financial picture, always recomputed from
// source records, never hand-maintained as a stored counter.
type Finance struct {
	Revenue  int `json:"revenue"`
	Expenses int `json:"expenses"`
	Net      int `json:"net"`
}

// ComputeFinance derives revenue, expenses and net from the full payment
// and withdrawal records.
func ComputeFinance(payments []payment.Payment, withdrawals []withdrawal.Withdrawal) Finance {
	var f Finance
	for _, p := range payments {
		f.Revenue += p.Amount
	}
	for _, w := range withdrawals {
		f.Expenses += w.Amount
	}
	f.Net = f.Revenue - f.Expenses
	return f
}
