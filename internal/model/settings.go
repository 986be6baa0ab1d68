package model

// UserSettings is the singleton profile/preferences record.
type UserSettings struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	EmailNotifications bool   `json:"emailNotifications"`
	SMSNotifications   bool   `json:"smsNotifications"`
}

// DefaultUserSettings are applied before persisted values are merged in.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		FirstName:          "Kelompok",
		LastName:           "7",
		EmailNotifications: true,
		SMSNotifications:   false,
	}
}

// DisplayName is shown in the sidebar.
func (s UserSettings) DisplayName() string {
	return s.FirstName + " " + s.LastName
}

// SettingsPatch is a partial update; nil fields are left unchanged.
type SettingsPatch struct {
	FirstName          *string `json:"firstName,omitempty"`
	LastName           *string `json:"lastName,omitempty"`
	EmailNotifications *bool   `json:"emailNotifications,omitempty"`
	SMSNotifications   *bool   `json:"smsNotifications,omitempty"`
}

// Apply returns s with the patch's non-nil fields applied.
func (p SettingsPatch) Apply(s UserSettings) UserSettings {
	if p.FirstName != nil {
		s.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		s.LastName = *p.LastName
	}
	if p.EmailNotifications != nil {
		s.EmailNotifications = *p.EmailNotifications
	}
	if p.SMSNotifications != nil {
		s.SMSNotifications = *p.SMSNotifications
	}
	return s
}
