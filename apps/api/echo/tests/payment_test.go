package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/student"
)

func Test_paymentApi_create(t *testing.T) {
	usr := createUser(t, "Pay Creator", "paycreator", "paycreator@test.iq", "passpass", true)
	token := getToken(t, usr)

	createSubject(t, "Geology", "Mr. Kadhim", 200000)
	s := createStudent(t, "Pay Target", student.GradeSixthScience, student.NewEnrollment{Subject: "Geology", Teacher: "Mr. Kadhim"})

	tests := []httpTest{
		{
			name:     "missing fields",
			body:     jsonMarshal(t, payment.NewPayment{StudentID: s.ID}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown student",
			body: jsonMarshal(t, payment.NewPayment{
				StudentID: "2f0c5a3e-97b2-4f1d-8f19-000000000000",
				Amount:    50000,
				Date:      time.Now().UTC(),
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "valid",
			body: jsonMarshal(t, payment.NewPayment{
				StudentID:     s.ID,
				Amount:        50000,
				Date:          time.Now().UTC(),
				ReceiptNumber: "PAY-100",
			}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/payments", token, tt.body)
			app.ServeHTTP(rec, req)
			checkCode(t, rec, tt.wantCode)
		})
	}
}
