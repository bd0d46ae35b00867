package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	echoapi "github.com/alrowad/institute/apps/api/echo"
	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/report"
	"github.com/alrowad/institute/core/student"
)

func Test_reportApi_stats(t *testing.T) {
	usr := createUser(t, "Statser", "statser", "statser@test.iq", "passpass", true)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodGet, "/v1/stats", token)
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusOK)

	var resp echoapi.StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() failed, %v", err)
	}
	var bucketSum int
	for _, status := range student.Statuses {
		count, ok := resp.StatusCounts[status]
		if !ok {
			t.Errorf("StatusCounts missing %q", status)
		}
		bucketSum += count
	}
	if bucketSum != resp.StudentCount {
		t.Errorf("status buckets sum to %d, want %d", bucketSum, resp.StudentCount)
	}

	// unauthenticated
	req, rec = newAuthRequest(http.MethodGet, "/v1/stats", "")
	app.ServeHTTP(rec, req)
	checkCode(t, rec, http.StatusUnauthorized)
}

func Test_reportApi_render(t *testing.T) {
	usr := createUser(t, "Reporter", "reporter", "reporter@test.iq", "passpass", true)
	token := getToken(t, usr)

	createSubject(t, "English", "Mr. Waleed", 300000)
	paidStudent := createStudent(t, "Reportpaid Hala", student.GradeSixthScience, student.NewEnrollment{Subject: "English", Teacher: "Mr. Waleed"})
	createStudent(t, "Reportunpaid Riam", student.GradeSixthScience, student.NewEnrollment{Subject: "English", Teacher: "Mr. Waleed"})

	if _, err := paymentSvc.Create(payment.NewPayment{
		StudentID: paidStudent.ID,
		Amount:    300000,
		Date:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("payment Create() failed, %v", err)
	}

	filter := url.Values{"search": {"report"}}

	t.Run("json", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/all?"+filter.Encode(), token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		var doc report.Document
		if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
			t.Fatalf("json.Unmarshal() failed, %v", err)
		}
		if doc.Metadata.PrintedBy != usr.Username {
			t.Errorf("PrintedBy = %s, want %s", doc.Metadata.PrintedBy, usr.Username)
		}
		if got := doc.Aggregation.Totals; got.StudentCount != 2 || got.Fees != 600000 || got.Paid != 300000 {
			t.Errorf("totals = %+v, want 2 students, 600000 fees, 300000 paid", got)
		}
	})

	t.Run("html", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/paid?"+filter.Encode()+"&format=html", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		body := rec.Body.String()
		if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
			t.Errorf("Content-Type = %s, want text/html", rec.Header().Get("Content-Type"))
		}
		if !strings.Contains(body, "Reportpaid Hala") {
			t.Error("paid report must list the settled student")
		}
		if strings.Contains(body, "Reportunpaid Riam") {
			t.Error("paid report must not list unpaid students")
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/subject?"+filter.Encode()+"&format=xlsx", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusOK)

		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
			t.Error("xlsx response must be a zip archive")
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".xlsx") {
			t.Errorf("Content-Disposition = %s, want an .xlsx attachment", cd)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/bogus", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusNotFound)
	})

	t.Run("unknown format", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/all?format=pdf", token)
		app.ServeHTTP(rec, req)
		checkCode(t, rec, http.StatusBadRequest)
	})
}

func Test_settingsApi_purge(t *testing.T) {
	usr := createUser(t, "Purger", "purger", "purger@test.iq", "passpass", true)
	token := getToken(t, usr)

	tests := []httpTest{
		{name: "missing fields", body: jsonMarshal(t, echoapi.PurgeRequest{}), wantCode: http.StatusBadRequest},
		{name: "bad code", body: jsonMarshal(t, echoapi.PurgeRequest{Table: "withdrawals", Code: "wrong"}), wantCode: http.StatusBadRequest},
		{name: "unknown table", body: jsonMarshal(t, echoapi.PurgeRequest{Table: "nope", Code: verificationCode}), wantCode: http.StatusBadRequest},
		{name: "purge", body: jsonMarshal(t, echoapi.PurgeRequest{Table: "withdrawals", Code: verificationCode}), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/settings/purge", token, tt.body)
			app.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)
		})
	}
}
