package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/alrowad/institute/core"
	"github.com/alrowad/institute/core/settings"
)

type settingsRow struct {
	ID                   bool       `db:"id"`
	VerificationCodeHash null.Bytes `db:"verification_code_hash"`
	DefaultSubjectCost   int        `db:"default_subject_cost"`
	PaymentNotifications bool       `db:"payment_notifications"`
	UpdatedAt            null.Time  `db:"updated_at"`
}

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) settings.Repository {
	return &settingsRepository{db: db}
}

func (repo *settingsRepository) GetSettings() (settings.Settings, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	var r settingsRow
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM settings WHERE id = TRUE`); err != nil {
		if isNoRows(err) {
			return settings.Settings{}, settings.ErrNotFound
		}
		return settings.Settings{}, errors.Wrap(err, "getting settings")
	}
	return settings.Settings{
		VerificationCodeHash: r.VerificationCodeHash.Bytes,
		DefaultSubjectCost:   r.DefaultSubjectCost,
		PaymentNotifications: r.PaymentNotifications,
		UpdatedAt:            r.UpdatedAt.Time,
	}, nil
}

// SaveSettings upserts the single settings row.
func (repo *settingsRepository) SaveSettings(s settings.Settings) (settings.Settings, error) {
	ctx, cancel := core.DBContext(nil)
	defer cancel()

	q := `INSERT INTO settings (id, verification_code_hash, default_subject_cost, payment_notifications, updated_at)
	VALUES (TRUE, :verification_code_hash, :default_subject_cost, :payment_notifications, :updated_at)
	ON CONFLICT (id) DO UPDATE SET verification_code_hash = EXCLUDED.verification_code_hash,
	default_subject_cost = EXCLUDED.default_subject_cost,
	payment_notifications = EXCLUDED.payment_notifications,
	updated_at = EXCLUDED.updated_at`
	row := settingsRow{
		VerificationCodeHash: null.BytesFrom(s.VerificationCodeHash),
		DefaultSubjectCost:   s.DefaultSubjectCost,
		PaymentNotifications: s.PaymentNotifications,
		UpdatedAt:            null.TimeFrom(s.UpdatedAt),
	}
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return settings.Settings{}, errors.Wrap(err, "saving settings")
	}
	return s, nil
}
