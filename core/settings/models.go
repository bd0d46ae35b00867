package settings

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/alrowad/institute/core"
)

// Settings is the single persisted institute configuration record. It is
// loaded and saved explicitly and injected into the components that need
// it, never held as ambient mutable state.
type Settings struct {
	VerificationCodeHash []byte    `json:"-"`
	DefaultSubjectCost   int       `json:"default_subject_cost"`
	PaymentNotifications bool      `json:"payment_notifications"`
	UpdatedAt            time.Time `json:"updated_at"` // UTC
}

// SetVerificationCode stores a bcrypt hash of the code. The plaintext
// shared secret of the original system is never persisted.
func (s *Settings) SetVerificationCode(code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.VerificationCodeHash = hash
	return nil
}

func (s *Settings) CheckVerificationCode(code string) error {
	return bcrypt.CompareHashAndPassword(s.VerificationCodeHash, []byte(code))
}

// UpdateSettings defines what may be modified. Rotating the verification
// code requires the current one.
type UpdateSettings struct {
	DefaultSubjectCost   int    `json:"default_subject_cost" validate:"omitempty,gt=0"`
	PaymentNotifications *bool  `json:"payment_notifications"`
	CurrentCode          string `json:"current_code" validate:"required_with=NewCode"`
	NewCode              string `json:"new_code" validate:"omitempty,min=6"`
}

func (us *UpdateSettings) Validate() error {
	us.CurrentCode = core.CleanString(us.CurrentCode)
	us.NewCode = core.CleanString(us.NewCode)
	return core.Validate.Struct(us)
}
