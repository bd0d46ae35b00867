package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	echoapi "github.com/alrowad/institute/apps/api/echo"
	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/student"
	"github.com/alrowad/institute/core/subject"
)

func createSubject(t *testing.T, name, teacherName string, cost int) subject.Subject {
	t.Helper()
	s, err := subjectSvc.Create(subject.NewSubject{Name: name, Teacher: teacherName, Cost: cost})
	if err != nil {
		t.Fatalf("subject Create() failed, %v", err)
	}
	return s
}

func createStudent(t *testing.T, name, grade string, enrollments ...student.NewEnrollment) student.Student {
	t.Helper()
	s, err := studentSvc.Create(student.NewStudent{
		FullName:    name,
		Phone:       "0770000000",
		Grade:       grade,
		Enrollments: enrollments,
	})
	if err != nil {
		t.Fatalf("student Create() failed, %v", err)
	}
	return s
}

func Test_studentApi_create(t *testing.T) {
	usr := createUser(t, "St Creator", "stcreator", "stcreator@test.iq", "passpass", true)
	token := getToken(t, usr)
	createSubject(t, "Chemistry", "Mr. Nather", 350000)

	tests := []httpTest{
		{
			name:     "missing fields",
			body:     jsonMarshal(t, student.NewStudent{FullName: "No Grade"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "bad grade track",
			body: jsonMarshal(t, student.NewStudent{
				FullName:    "Bad Grade",
				Phone:       "0770000001",
				Grade:       "fifth",
				Enrollments: []student.NewEnrollment{{Subject: "Chemistry"}},
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "valid",
			body: jsonMarshal(t, student.NewStudent{
				FullName:    "Zaid Tariq",
				Phone:       "0770000002",
				Grade:       student.GradeSixthScience,
				Enrollments: []student.NewEnrollment{{Subject: "Chemistry", Teacher: "Mr. Nather"}},
			}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/students", token, tt.body)
			app.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)

			if rec.Code == http.StatusCreated {
				var s student.Student
				if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
					t.Fatalf("json.Unmarshal() failed, %v", err)
				}
				// cost snapshot comes from the subject, not the request
				if s.TotalFees() != 350000 {
					t.Errorf("TotalFees() = %d, want 350000", s.TotalFees())
				}
			}
		})
	}
}

func Test_studentApi_queryFilter(t *testing.T) {
	usr := createUser(t, "St Query", "stquery", "stquery@test.iq", "passpass", true)
	token := getToken(t, usr)

	createSubject(t, "Biology", "Mrs. Zahra", 300000)
	createStudent(t, "Query Ali", student.GradeSixthScience, student.NewEnrollment{Subject: "Biology", Teacher: "Mrs. Zahra"})
	createStudent(t, "Query Noor", student.GradeSixthLiterary, student.NewEnrollment{Subject: "Biology", Teacher: "Mrs. Zahra"})

	find := func(students []student.Student, name string) bool {
		for _, s := range students {
			if s.FullName == name {
				return true
			}
		}
		return false
	}

	t.Run("search", func(t *testing.T) {
		v := url.Values{"search": {"query noor"}}
		req, rec := newAuthRequest(http.MethodGet, "/v1/students?"+v.Encode(), token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var students []student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
			t.Fatalf("json.Unmarshal() failed, %v", err)
		}
		if !find(students, "Query Noor") || find(students, "Query Ali") {
			t.Errorf("search returned the wrong set: %d students", len(students))
		}
	})

	t.Run("grade", func(t *testing.T) {
		v := url.Values{"grade": {student.GradeSixthLiterary}, "search": {"query"}}
		req, rec := newAuthRequest(http.MethodGet, "/v1/students?"+v.Encode(), token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var students []student.Student
		if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
			t.Fatalf("json.Unmarshal() failed, %v", err)
		}
		if len(students) != 1 || students[0].FullName != "Query Noor" {
			t.Errorf("grade filter returned the wrong set: %+v", students)
		}
	})
}

func Test_studentApi_detailSettlement(t *testing.T) {
	usr := createUser(t, "St Detail", "stdetail", "stdetail@test.iq", "passpass", true)
	token := getToken(t, usr)

	createSubject(t, "Arabic", "Mr. Qasim", 400000)
	s := createStudent(t, "Detail Omar", student.GradeSixthScience, student.NewEnrollment{Subject: "Arabic", Teacher: "Mr. Qasim"})

	if _, err := paymentSvc.Create(payment.NewPayment{
		StudentID: s.ID,
		Amount:    150000,
		Date:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("payment Create() failed, %v", err)
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+s.ID, token)
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)

	var resp echoapi.StudentDetailResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed, %v", err)
	}
	if len(resp.Payments) != 1 {
		t.Fatalf("detail payments = %d, want 1", len(resp.Payments))
	}
	if resp.PaidAmount != 150000 {
		t.Errorf("PaidAmount = %d, want 150000", resp.PaidAmount)
	}
	if resp.Settlement.Status != student.StatusPartial {
		t.Errorf("settlement status = %s, want %s", resp.Settlement.Status, student.StatusPartial)
	}
	if resp.Settlement.Remaining != 250000 {
		t.Errorf("settlement remaining = %d, want 250000", resp.Settlement.Remaining)
	}

	// unknown student
	req, rec = newAuthRequest(http.MethodGet, "/v1/students/nope", token)
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusNotFound)
}

func Test_studentApi_update(t *testing.T) {
	usr := createUser(t, "St Update", "stupdate", "stupdate@test.iq", "passpass", true)
	token := getToken(t, usr)

	createSubject(t, "Physics", "Mr. Haider", 300000)
	createSubject(t, "Math", "Mr. Salam", 450000)
	s, err := studentSvc.Create(student.NewStudent{
		FullName:       "Update Sara",
		Phone:          "0770000000",
		ParentPhone:    "0781111111",
		Region:         "Karada",
		LineName:       "Line 4",
		LineOwnerPhone: "0772222222",
		Grade:          student.GradeSixthScience,
		Enrollments:    []student.NewEnrollment{{Subject: "Physics", Teacher: "Mr. Haider"}},
	})
	if err != nil {
		t.Fatalf("student Create() failed, %v", err)
	}

	// re-enroll: keep Physics, add Math
	body := jsonMarshal(t, student.UpdateStudent{
		Enrollments: []student.NewEnrollment{
			{Subject: "Physics", Teacher: "Mr. Haider"},
			{Subject: "Math", Teacher: "Mr. Salam"},
		},
	})
	req, rec := newAuthRequest(http.MethodPut, "/v1/students/"+s.ID, token, body)
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)

	var updated student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("json.Unmarshal() failed, %v", err)
	}
	if updated.TotalFees() != 750000 {
		t.Errorf("TotalFees() = %d, want 750000", updated.TotalFees())
	}
	if updated.FullName != s.FullName {
		t.Error("update must keep unchanged fields")
	}
	// fields omitted from the payload keep their stored values
	if updated.ParentPhone != s.ParentPhone || updated.Region != s.Region ||
		updated.LineName != s.LineName || updated.LineOwnerPhone != s.LineOwnerPhone {
		t.Errorf("update cleared omitted fields: %+v", updated)
	}
}
