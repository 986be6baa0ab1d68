package service

import (
	"context"
	"errors"
	"testing"

	"concerthub-api/internal/model"
)

func TestSettingsUpdateAndReload(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	s := NewSettingsService(store, nil)
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Get() != model.DefaultUserSettings() {
		t.Fatalf("expected defaults, got %+v", s.Get())
	}

	name := "Ana"
	sms := true
	got, err := s.Update(ctx, model.SettingsPatch{FirstName: &name, SMSNotifications: &sms})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := model.UserSettings{FirstName: "Ana", LastName: "7", EmailNotifications: true, SMSNotifications: true}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	reloaded := NewSettingsService(store, nil)
	reloaded.Load(ctx)
	if reloaded.Get() != want {
		t.Errorf("reload: expected %+v, got %+v", want, reloaded.Get())
	}
	if reloaded.Get().DisplayName() != "Ana 7" {
		t.Errorf("unexpected display name %q", reloaded.Get().DisplayName())
	}
}

func TestSettingsRejectsBlankName(t *testing.T) {
	s := NewSettingsService(newTestStore(t), nil)
	blank := "  "
	_, err := s.Update(context.Background(), model.SettingsPatch{LastName: &blank})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if s.Get() != model.DefaultUserSettings() {
		t.Error("rejected update changed settings")
	}
}
