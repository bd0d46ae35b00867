package student

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		totalFees int
		paid      int
		want      Settlement
		wantErr   error
	}{
		{name: "fully paid", totalFees: 1000, paid: 1000, want: Settlement{Status: StatusPaid, Remaining: 0, Percentage: 100}},
		{name: "unpaid", totalFees: 1000, paid: 0, want: Settlement{Status: StatusUnpaid, Remaining: 1000, Percentage: 0}},
		{name: "partial", totalFees: 1000, paid: 500, want: Settlement{Status: StatusPartial, Remaining: 500, Percentage: 50}},
		{name: "overpaid clamps remaining", totalFees: 1000, paid: 1500, want: Settlement{Status: StatusPaid, Remaining: 0, Percentage: 150}},
		{name: "one short is partial", totalFees: 1000, paid: 999, want: Settlement{Status: StatusPartial, Remaining: 1, Percentage: 99.9}},
		{name: "zero fees rejected", totalFees: 0, paid: 0, wantErr: ErrInvalidAmount},
		{name: "negative fees rejected", totalFees: -100, paid: 0, wantErr: ErrInvalidAmount},
		{name: "negative paid rejected", totalFees: 1000, paid: -1, wantErr: ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.totalFees, tt.paid)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Classify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSettlementOverpaid(t *testing.T) {
	stl, err := Classify(1000, 1200)
	if err != nil {
		t.Fatal(err)
	}
	if !stl.Overpaid() {
		t.Error("expected overpayment to be flagged")
	}
	if stl.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", stl.Remaining)
	}

	stl, err = Classify(1000, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if stl.Overpaid() {
		t.Error("exact payment must not be flagged as overpayment")
	}
}

func TestStudentTotalFees(t *testing.T) {
	s := Student{
		Enrollments: []Enrollment{
			{Subject: "Math", Teacher: "A", Cost: 300000},
			{Subject: "Physics", Teacher: "B", Cost: 300000},
			{Subject: "Chemistry", Teacher: "A", Cost: 300000},
		},
	}
	if got := s.TotalFees(); got != 900000 {
		t.Errorf("TotalFees() = %d, want 900000", got)
	}
}

func TestQueryFilterMatch(t *testing.T) {
	s := Student{
		FullName: "Ali Hasan",
		Phone:    "07701234567",
		Grade:    GradeSixthScience,
		Enrollments: []Enrollment{
			{Subject: "Math", Teacher: "Mr. Karim", Cost: 300000},
		},
	}
	tests := []struct {
		name string
		flt  QueryFilter
		want bool
	}{
		{name: "empty matches", flt: QueryFilter{}, want: true},
		{name: "name substring", flt: QueryFilter{Search: "hasan"}, want: true},
		{name: "phone substring", flt: QueryFilter{Search: "0770"}, want: true},
		{name: "search miss", flt: QueryFilter{Search: "omar"}, want: false},
		{name: "grade match", flt: QueryFilter{Grade: GradeSixthScience}, want: true},
		{name: "grade miss", flt: QueryFilter{Grade: GradeSixthLiterary}, want: false},
		{name: "subject match", flt: QueryFilter{Subject: "math"}, want: true},
		{name: "teacher match", flt: QueryFilter{Teacher: "karim"}, want: true},
		{name: "combined", flt: QueryFilter{Search: "ali", Subject: "Math", Grade: GradeSixthScience}, want: true},
		{name: "combined miss", flt: QueryFilter{Search: "ali", Subject: "Physics"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flt.Match(s); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}
