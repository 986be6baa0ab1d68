package service

import (
	"context"
	"log"
	"strings"
	"sync"

	"concerthub-api/internal/events"
	"concerthub-api/internal/model"
	"concerthub-api/internal/storage"
)

// SettingsService owns the user settings singleton.
type SettingsService struct {
	mu       sync.Mutex
	store    *storage.Store
	events   events.Publisher
	settings model.UserSettings
}

// NewSettingsService starts from the defaults.
func NewSettingsService(store *storage.Store, pub events.Publisher) *SettingsService {
	if pub == nil {
		pub = events.Discard{}
	}
	return &SettingsService{
		store:    store,
		events:   pub,
		settings: model.DefaultUserSettings(),
	}
}

// Load merges persisted settings onto the defaults. Missing fields keep
// their default value.
func (s *SettingsService) Load(ctx context.Context) error {
	settings := model.DefaultUserSettings()
	if _, err := s.store.Load(ctx, storage.KeyUserSettings, &settings); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

// Get returns the current settings.
func (s *SettingsService) Get() model.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Update applies a partial update, saves, and announces the new display
// name.
func (s *SettingsService) Update(ctx context.Context, patch model.SettingsPatch) (model.UserSettings, error) {
	if err := validateSettingsPatch(patch); err != nil {
		return model.UserSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = patch.Apply(s.settings)
	err := s.store.Save(ctx, storage.KeyUserSettings, s.settings)
	if err != nil {
		log.Printf("[SettingsService] Save failed: %v", err)
	}
	s.events.Publish(events.Event{Type: events.SettingsChanged, Payload: s.settings.DisplayName()})
	return s.settings, err
}

func validateSettingsPatch(p model.SettingsPatch) error {
	var fields []FieldError
	if p.FirstName != nil && strings.TrimSpace(*p.FirstName) == "" {
		fields = append(fields, FieldError{Field: "firstName", Message: "must not be blank"})
	}
	if p.LastName != nil && strings.TrimSpace(*p.LastName) == "" {
		fields = append(fields, FieldError{Field: "lastName", Message: "must not be blank"})
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "invalid settings", Fields: fields}
	}
	return nil
}
