package preferences

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/kv"
)

func openService(t *testing.T, store *kv.Store) *Service {
	t.Helper()
	svc, err := New(store, nil)
	require.NoError(t, err)
	return svc
}

func tempStore(t *testing.T) (*kv.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.db")
	store, err := kv.Open(path, "")
	require.NoError(t, err)
	return store, path
}

func TestService_DefaultsWhenEmpty(t *testing.T) {
	store, _ := tempStore(t)
	defer store.Close()

	assert.Equal(t, domain.DefaultSettings(), openService(t, store).Settings())
}

func TestService_PartialUpdatesPersist(t *testing.T) {
	store, path := tempStore(t)
	svc := openService(t, store)

	name := "Jane Roe"
	_, err := svc.UpdateProfile(domain.ProfilePatch{Name: &name})
	require.NoError(t, err)

	dark := true
	green := domain.ThemeGreen
	_, err = svc.UpdateAppearance(domain.AppearancePatch{DarkMode: &dark, ThemeColor: &green})
	require.NoError(t, err)

	weekly := true
	got, err := svc.UpdateNotifications(domain.NotificationPatch{WeeklySummary: &weekly})
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", got.Profile.Email)
	require.NoError(t, store.Close())

	store, err = kv.Open(path, "")
	require.NoError(t, err)
	defer store.Close()
	reloaded := openService(t, store).Settings()
	assert.Equal(t, "Jane Roe", reloaded.Profile.Name)
	assert.True(t, reloaded.Appearance.DarkMode)
	assert.Equal(t, domain.ThemeGreen, reloaded.Appearance.ThemeColor)
	assert.Equal(t, domain.FontMedium, reloaded.Appearance.FontSize)
	assert.True(t, reloaded.Notifications.WeeklySummary)
	assert.True(t, reloaded.Notifications.DueDateReminders)
}

func TestService_RejectsUnknownAppearance(t *testing.T) {
	store, _ := tempStore(t)
	defer store.Close()
	svc := openService(t, store)

	huge := domain.FontSize("huge")
	_, err := svc.UpdateAppearance(domain.AppearancePatch{FontSize: &huge})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, domain.FontMedium, svc.Settings().Appearance.FontSize)
}

func TestService_MissingFieldsFallBackToDefaults(t *testing.T) {
	store, _ := tempStore(t)
	defer store.Close()
	require.NoError(t, store.Put(settingsKey, []byte(`{"profile":{"name":"Ann"},"appearance":{"themeColor":"teal"}}`)))

	got := openService(t, store).Settings()
	assert.Equal(t, "Ann", got.Profile.Name)
	assert.Equal(t, "john@example.com", got.Profile.Email)
	assert.Equal(t, domain.ThemeBlue, got.Appearance.ThemeColor)
	assert.True(t, got.Notifications.EmailNotifications)
}

func TestService_CorruptRecordYieldsDefaults(t *testing.T) {
	store, _ := tempStore(t)
	defer store.Close()
	require.NoError(t, store.Put(settingsKey, []byte(`{not json`)))

	assert.Equal(t, domain.DefaultSettings(), openService(t, store).Settings())
}

func TestService_Reset(t *testing.T) {
	store, _ := tempStore(t)
	defer store.Close()
	svc := openService(t, store)

	name := "Someone"
	_, err := svc.UpdateProfile(domain.ProfilePatch{Name: &name})
	require.NoError(t, err)

	got, err := svc.Reset()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), got)

	_, ok, err := store.Get(settingsKey)
	require.NoError(t, err)
	assert.False(t, ok, "reset removes the stored record")
	assert.Equal(t, domain.DefaultSettings(), openService(t, store).Settings())
}

type readOnlyStore struct{ data map[string][]byte }

func (s readOnlyStore) Get(key string) ([]byte, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}
func (readOnlyStore) Put(string, []byte) error { return errors.New("read-only") }
func (readOnlyStore) Delete(string) error       { return errors.New("read-only") }

func TestService_FailedWriteKeepsPreviousState(t *testing.T) {
	svc, err := New(readOnlyStore{data: map[string][]byte{}}, nil)
	require.NoError(t, err)

	name := "Nobody"
	_, err = svc.UpdateProfile(domain.ProfilePatch{Name: &name})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
	assert.Equal(t, "John Doe", svc.Settings().Profile.Name)
}

func TestService_FailedResetKeepsSettings(t *testing.T) {
	raw := []byte(`{"profile":{"name":"Kept"}}`)
	svc, err := New(readOnlyStore{data: map[string][]byte{settingsKey: raw}}, nil)
	require.NoError(t, err)
	require.Equal(t, "Kept", svc.Settings().Profile.Name)

	_, err = svc.Reset()
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
	assert.Equal(t, "Kept", svc.Settings().Profile.Name)
}
