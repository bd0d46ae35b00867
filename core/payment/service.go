package payment

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/student"
)

var (
	// errors
	ErrNotFound      = errors.New("payment not found")
	ErrReceiptExists = errors.New("a payment with this receipt number is already recorded for this student")
)

type (
	// NotificationPrefs decides whether receipt notifications go out.
	// Backed by the persisted institute settings.
	NotificationPrefs interface {
		PaymentNotificationsEnabled() bool
	}

	// StudentDirectory resolves the student a payment is recorded
	// against. Payments for unknown students are rejected up front so
	// every storage backend fails the same way.
	StudentDirectory interface {
		GetByID(id string) (student.Student, error)
	}

	Repository interface {
		CheckReceiptUniqueness(studentID, receiptNumber string, excluded ...Payment) error
		CreatePayment(p Payment) (Payment, error)
		QueryAllPayments() ([]Payment, error)
		GetPaymentByID(id string) (Payment, error)
		QueryPaymentsByStudentID(studentID string) ([]Payment, error)
		// FilterPayments applies AND operation on available QueryFilter fields.
		FilterPayments(filter QueryFilter) ([]Payment, error)
		UpdatePayment(p Payment) (Payment, error)
		DeletePaymentsByID(ids ...string) error
		// TotalRevenue is the institute-wide sum of all recorded payment amounts.
		TotalRevenue() (int, error)
		PurgePayments() error
	}

	Service struct {
		repo     Repository
		students StudentDirectory
		mailSvc  core.EmailService
		prefs    NotificationPrefs
		notifyTo string
	}
)

func NewService(repo Repository, students StudentDirectory, mailSvc core.EmailService, prefs NotificationPrefs, notifyTo string) *Service {
	return &Service{repo: repo, students: students, mailSvc: mailSvc, prefs: prefs, notifyTo: notifyTo}
}

func (svc *Service) checkStudent(id string) error {
	if _, err := svc.students.GetByID(id); err != nil {
		if errors.Is(err, student.ErrNotFound) {
			return core.NewValidationError(err, core.FieldError{Field: "student_id", Error: "student not found"})
		}
		return err
	}
	return nil
}

func (svc *Service) checkReceipt(studentID, receiptNumber string, excl ...Payment) error {
	if receiptNumber == "" {
		return nil
	}
	if err := svc.repo.CheckReceiptUniqueness(studentID, receiptNumber, excl...); err != nil {
		if errors.Is(err, ErrReceiptExists) {
			return core.NewValidationError(err, core.FieldError{Field: "receipt_number", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create records a payment against a student and, when enabled in
// settings, sends a receipt notification.
func (svc *Service) Create(np NewPayment) (Payment, error) {
	if err := svc.checkStudent(np.StudentID); err != nil {
		return Payment{}, err
	}
	if err := svc.checkReceipt(np.StudentID, np.ReceiptNumber); err != nil {
		return Payment{}, err
	}

	status := np.Status
	if status == "" {
		status = StatusCompleted
	}
	p := Payment{
		ID:            uuid.New().String(),
		StudentID:     np.StudentID,
		Amount:        np.Amount,
		Date:          np.Date,
		ReceiptNumber: np.ReceiptNumber,
		Notes:         np.Notes,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	p, err := svc.repo.CreatePayment(p)
	if err != nil {
		return Payment{}, err
	}
	svc.notify(p)
	return p, nil
}

func (svc *Service) QueryAll() ([]Payment, error) {
	var payments []Payment
	err := core.RetryRead(func() (qerr error) {
		payments, qerr = svc.repo.QueryAllPayments()
		return
	})
	return payments, err
}

func (svc *Service) GetByID(id string) (Payment, error) {
	var p Payment
	err := core.RetryRead(func() (qerr error) {
		p, qerr = svc.repo.GetPaymentByID(id)
		return
	}, func(err error) bool { return errors.Is(err, ErrNotFound) })
	return p, err
}

func (svc *Service) QueryByStudent(studentID string) ([]Payment, error) {
	var payments []Payment
	err := core.RetryRead(func() (qerr error) {
		payments, qerr = svc.repo.QueryPaymentsByStudentID(studentID)
		return
	})
	return payments, err
}

func (svc *Service) Filter(filter QueryFilter) ([]Payment, error) {
	filter.Clean()
	var payments []Payment
	err := core.RetryRead(func() (qerr error) {
		payments, qerr = svc.repo.FilterPayments(filter)
		return
	})
	return payments, err
}

func (svc *Service) Update(id string, up UpdatePayment) (Payment, error) {
	orig, err := svc.repo.GetPaymentByID(id)
	if err != nil {
		return Payment{}, err
	}
	if err = up.Validate(orig); err != nil {
		return Payment{}, err
	}
	if up.ReceiptNumber != orig.ReceiptNumber {
		if err = svc.checkReceipt(orig.StudentID, up.ReceiptNumber, orig); err != nil {
			return Payment{}, err
		}
	}

	p := Payment{
		ID:            id,
		StudentID:     orig.StudentID,
		Amount:        up.Amount,
		Date:          up.Date,
		ReceiptNumber: up.ReceiptNumber,
		Notes:         up.Notes,
		Status:        up.Status,
		CreatedAt:     orig.CreatedAt,
	}
	return svc.repo.UpdatePayment(p)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeletePaymentsByID(ids...)
}

func (svc *Service) TotalRevenue() (int, error) {
	var total int
	err := core.RetryRead(func() (qerr error) {
		total, qerr = svc.repo.TotalRevenue()
		return
	})
	return total, err
}

func (svc *Service) notify(p Payment) {
	if svc.mailSvc == nil || svc.notifyTo == "" {
		return
	}
	if svc.prefs != nil && !svc.prefs.PaymentNotificationsEnabled() {
		return
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Address: svc.notifyTo}},
		Subject: fmt.Sprintf("Payment recorded: %d", p.Amount),
		TextContent: fmt.Sprintf(
			"A payment of %d was recorded for student %s on %s.\nReceipt: %s\nNotes: %s\n",
			p.Amount, p.StudentID, p.Date.Format("2006-01-02"), p.ReceiptNumber, p.Notes),
	}
	svc.mailSvc.SendMessages(msg)
}
