package preferences

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const settingsKey = "todolist_user_settings"

// Service holds the user's profile, appearance and notification preferences.
// Every change is written back immediately.
type Service struct {
	store  repository.KeyValueStore
	logger *zap.Logger

	mu       sync.Mutex
	settings domain.UserSettings
}

// New reads the stored settings over the defaults. A missing or unreadable
// record yields the defaults; fields absent from it keep their defaults.
func New(store repository.KeyValueStore, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, logger: logger, settings: domain.DefaultSettings()}

	raw, ok, err := store.Get(settingsKey)
	if err != nil {
		return nil, domain.Unavailable("load settings", err)
	}
	if !ok {
		return s, nil
	}

	loaded := domain.DefaultSettings()
	if err := json.Unmarshal(raw, &loaded); err != nil {
		logger.Warn("ignoring corrupt settings record", zap.Error(err))
		return s, nil
	}
	defaults := domain.DefaultSettings()
	if !loaded.Appearance.ThemeColor.Valid() {
		loaded.Appearance.ThemeColor = defaults.Appearance.ThemeColor
	}
	if !loaded.Appearance.FontSize.Valid() {
		loaded.Appearance.FontSize = defaults.Appearance.FontSize
	}
	s.settings = loaded
	return s, nil
}

func (s *Service) Settings() domain.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Service) UpdateProfile(p domain.ProfilePatch) (domain.UserSettings, error) {
	return s.update(func(v *domain.UserSettings) error {
		v.Profile = p.Apply(v.Profile)
		return nil
	})
}

func (s *Service) UpdateAppearance(p domain.AppearancePatch) (domain.UserSettings, error) {
	return s.update(func(v *domain.UserSettings) error {
		if err := p.Validate(); err != nil {
			return err
		}
		v.Appearance = p.Apply(v.Appearance)
		return nil
	})
}

func (s *Service) UpdateNotifications(p domain.NotificationPatch) (domain.UserSettings, error) {
	return s.update(func(v *domain.UserSettings) error {
		v.Notifications = p.Apply(v.Notifications)
		return nil
	})
}

// Reset drops the stored record so the defaults apply again.
func (s *Service) Reset() (domain.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(settingsKey); err != nil {
		return s.settings, domain.Unavailable("reset settings", err)
	}
	s.settings = domain.DefaultSettings()
	return s.settings, nil
}

// update applies fn to a copy and commits it only once it is persisted.
func (s *Service) update(fn func(*domain.UserSettings) error) (domain.UserSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings
	if err := fn(&next); err != nil {
		return s.settings, err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return s.settings, err
	}
	if err := s.store.Put(settingsKey, raw); err != nil {
		return s.settings, domain.Unavailable("save settings", err)
	}
	s.settings = next
	return next, nil
}
