package payment_test

import (
	"errors"
	"testing"
	"time"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/payment"
	"github.com/alrowad/institute/core/student"
	emailsvc "github.com/alrowad/institute/services/email"
	inmemdb "github.com/alrowad/institute/storage/database/inmem"
)

type stubPrefs struct{ enabled bool }

func (p stubPrefs) PaymentNotificationsEnabled() bool { return p.enabled }

type stubStudents map[string]bool

func (s stubStudents) GetByID(id string) (student.Student, error) {
	if s[id] {
		return student.Student{ID: id}, nil
	}
	return student.Student{}, student.ErrNotFound
}

func newService(t *testing.T, prefs payment.NotificationPrefs, studentIDs ...string) *payment.Service {
	t.Helper()
	emailsvc.SentMessages = emailsvc.SentMessages[:0]
	students := make(stubStudents, len(studentIDs))
	for _, id := range studentIDs {
		students[id] = true
	}
	repo := inmemdb.NewPaymentRepository(inmemdb.NewDB())
	return payment.NewService(repo, students, emailsvc.NewConsoleServiceMock(), prefs, "admin@test.iq")
}

func TestServiceCreate(t *testing.T) {
	svc := newService(t, stubPrefs{enabled: true}, "s1", "s2")

	np := payment.NewPayment{
		StudentID:     "s1",
		Amount:        300000,
		Date:          time.Now().UTC(),
		ReceiptNumber: "R-001",
	}
	p, err := svc.Create(np)
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}
	if p.ID == "" {
		t.Error("Create() must assign an ID")
	}
	if p.Status != payment.StatusCompleted {
		t.Errorf("Create() status = %s, want %s", p.Status, payment.StatusCompleted)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Errorf("Create() sent %d notifications, want 1", len(emailsvc.SentMessages))
	}
}

func TestServiceCreateDuplicateReceipt(t *testing.T) {
	svc := newService(t, stubPrefs{enabled: true}, "s1", "s2")

	np := payment.NewPayment{StudentID: "s1", Amount: 100000, Date: time.Now().UTC(), ReceiptNumber: "R-001"}
	if _, err := svc.Create(np); err != nil {
		t.Fatalf("Create() failed, %v", err)
	}

	_, err := svc.Create(np)
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "receipt_number" {
		t.Errorf("Create() fields = %+v, want receipt_number", vErr.Fields)
	}

	// same receipt number on another student is fine
	np.StudentID = "s2"
	if _, err = svc.Create(np); err != nil {
		t.Errorf("Create() failed for another student, %v", err)
	}
}

func TestServiceCreateUnknownStudent(t *testing.T) {
	svc := newService(t, stubPrefs{enabled: true}, "s1")

	np := payment.NewPayment{StudentID: "ghost", Amount: 100000, Date: time.Now().UTC(), ReceiptNumber: "R-001"}
	_, err := svc.Create(np)
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "student_id" {
		t.Errorf("Create() fields = %+v, want student_id", vErr.Fields)
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Errorf("Create() sent %d notifications, want 0", len(emailsvc.SentMessages))
	}
}

func TestServiceCreateEmptyReceipts(t *testing.T) {
	svc := newService(t, stubPrefs{enabled: true}, "s1", "s2")

	np := payment.NewPayment{StudentID: "s1", Amount: 100000, Date: time.Now().UTC()}
	if _, err := svc.Create(np); err != nil {
		t.Fatalf("Create() failed, %v", err)
	}
	// blank receipts never collide
	if _, err := svc.Create(np); err != nil {
		t.Errorf("Create() failed on second blank receipt, %v", err)
	}
}

func TestServiceCreateNotificationsDisabled(t *testing.T) {
	svc := newService(t, stubPrefs{enabled: false}, "s1")

	np := payment.NewPayment{StudentID: "s1", Amount: 100000, Date: time.Now().UTC()}
	if _, err := svc.Create(np); err != nil {
		t.Fatalf("Create() failed, %v", err)
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Errorf("Create() sent %d notifications, want 0", len(emailsvc.SentMessages))
	}
}

func TestServiceUpdate(t *testing.T) {
	svc := newService(t, stubPrefs{enabled: true}, "s1", "s2")

	date := time.Now().UTC()
	p1, err := svc.Create(payment.NewPayment{StudentID: "s1", Amount: 100000, Date: date, ReceiptNumber: "R-001"})
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}
	p2, err := svc.Create(payment.NewPayment{StudentID: "s1", Amount: 200000, Date: date, ReceiptNumber: "R-002", Notes: "first installment"})
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}

	// changing the receipt to a taken one is rejected
	up := payment.UpdatePayment{Amount: 200000, Date: date, ReceiptNumber: p1.ReceiptNumber, Status: p2.Status}
	if _, err = svc.Update(p2.ID, up); err == nil {
		t.Error("Update() must reject a taken receipt number")
	}

	// keeping its own receipt is fine
	up.ReceiptNumber = p2.ReceiptNumber
	up.Amount = 250000
	updated, err := svc.Update(p2.ID, up)
	if err != nil {
		t.Fatalf("Update() failed, %v", err)
	}
	if updated.Amount != 250000 {
		t.Errorf("Update() amount = %d, want 250000", updated.Amount)
	}
	if updated.StudentID != p2.StudentID {
		t.Error("Update() must not change the student")
	}
	if updated.Notes != p2.Notes {
		t.Errorf("Update() notes = %q, want %q kept from the original", updated.Notes, p2.Notes)
	}
	if !updated.CreatedAt.Equal(p2.CreatedAt) {
		t.Error("Update() must preserve CreatedAt")
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	svc := newService(t, stubPrefs{enabled: true}, "s1", "s2")

	if _, err := svc.GetByID("nope"); !errors.Is(err, payment.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want %v", err, payment.ErrNotFound)
	}
}
