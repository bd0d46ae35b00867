package settings

import (
	"errors"
	"sort"
	"time"

	"github.com/alrowad/institute/core"
)

var (
	// errors
	ErrNotFound     = errors.New("settings not found")
	ErrBadCode      = errors.New("invalid verification code")
	ErrUnknownTable = errors.New("unknown table")
)

type (
	Repository interface {
		GetSettings() (Settings, error)
		SaveSettings(s Settings) (Settings, error)
	}

	// PurgeFunc wipes every row of one table.
	PurgeFunc func() error

	Service struct {
		repo        Repository
		defaultCost int
		purgers     map[string]PurgeFunc
	}
)

func NewService(repo Repository, defaultCost int) *Service {
	return &Service{repo: repo, defaultCost: defaultCost, purgers: make(map[string]PurgeFunc)}
}

// Get loads the settings record, falling back to configured defaults when
// none has been saved yet.
func (svc *Service) Get() (Settings, error) {
	s, err := svc.repo.GetSettings()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Settings{DefaultSubjectCost: svc.defaultCost, PaymentNotifications: true}, nil
		}
		return Settings{}, err
	}
	return s, nil
}

func (svc *Service) Update(us UpdateSettings) (Settings, error) {
	s, err := svc.Get()
	if err != nil {
		return Settings{}, err
	}

	if us.NewCode != "" {
		if s.VerificationCodeHash != nil {
			if err = s.CheckVerificationCode(us.CurrentCode); err != nil {
				return Settings{}, core.NewValidationError(
					ErrBadCode, core.FieldError{Field: "current_code", Error: ErrBadCode.Error()})
			}
		}
		if err = s.SetVerificationCode(us.NewCode); err != nil {
			return Settings{}, err
		}
	}
	if us.DefaultSubjectCost > 0 {
		s.DefaultSubjectCost = us.DefaultSubjectCost
	}
	if us.PaymentNotifications != nil {
		s.PaymentNotifications = *us.PaymentNotifications
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.SaveSettings(s)
}

// Seed stores an initial verification code; used by the admin CLI.
func (svc *Service) Seed(code string) error {
	s, err := svc.Get()
	if err != nil {
		return err
	}
	if err = s.SetVerificationCode(code); err != nil {
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.SaveSettings(s)
	return err
}

// CheckCode verifies the institute verification code.
func (svc *Service) CheckCode(code string) error {
	s, err := svc.Get()
	if err != nil {
		return err
	}
	if s.VerificationCodeHash == nil {
		return ErrBadCode
	}
	if err = s.CheckVerificationCode(code); err != nil {
		return ErrBadCode
	}
	return nil
}

// DefaultSubjectCost implements the subject package's DefaultCoster.
func (svc *Service) DefaultSubjectCost() int {
	s, err := svc.Get()
	if err != nil || s.DefaultSubjectCost <= 0 {
		return svc.defaultCost
	}
	return s.DefaultSubjectCost
}

// PaymentNotificationsEnabled implements the payment package's NotificationPrefs.
func (svc *Service) PaymentNotificationsEnabled() bool {
	s, err := svc.Get()
	if err != nil {
		return false
	}
	return s.PaymentNotifications
}

// RegisterPurge exposes a table to the generic purge capability.
// One dispatcher replaces the original's per-table delete routines.
func (svc *Service) RegisterPurge(table string, fn PurgeFunc) {
	svc.purgers[table] = fn
}

// PurgeTables lists the purgeable table identifiers, sorted.
func (svc *Service) PurgeTables() []string {
	tables := make([]string, 0, len(svc.purgers))
	for table := range svc.purgers {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}

// Purge wipes one table, guarded by the verification code.
func (svc *Service) Purge(table, code string) error {
	if err := svc.CheckCode(code); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
	}
	fn, ok := svc.purgers[table]
	if !ok {
		return core.NewValidationError(
			ErrUnknownTable, core.FieldError{Field: "table", Error: ErrUnknownTable.Error()})
	}
	return fn()
}
