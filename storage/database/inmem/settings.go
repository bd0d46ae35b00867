package inmemdb

import (
	"github.com/alrowad/institute/core/settings"
)

type settingsRepository struct {
	db *settingsTable
}

func NewSettingsRepository(db *DB) settings.Repository {
	return &settingsRepository{db: db.settings}
}

func (repo *settingsRepository) GetSettings() (settings.Settings, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.row == nil {
		return settings.Settings{}, settings.ErrNotFound
	}
	return *repo.db.row, nil
}

func (repo *settingsRepository) SaveSettings(s settings.Settings) (settings.Settings, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.row = &s
	return s, nil
}
