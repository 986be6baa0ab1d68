package handler

import (
	"net/http"

	"concerthub-api/internal/model"
	"concerthub-api/internal/service"
	"concerthub-api/pkg/apierror"
	"concerthub-api/pkg/response"
)

// SettingsHandler serves the user settings.
type SettingsHandler struct {
	state *service.State
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(state *service.State) *SettingsHandler {
	return &SettingsHandler{state: state}
}

// Get handles GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.state.Settings.Get())
}

// Update handles PUT /api/v1/settings (JSON, partial) and POST
// /api/v1/settings (HTML form, complete).
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.SettingsPatch
	form := isFormPost(r)

	if form {
		if err := r.ParseForm(); err != nil {
			response.Error(w, apierror.BadRequest("invalid form"))
			return
		}
		first := r.PostFormValue("firstName")
		last := r.PostFormValue("lastName")
		email := r.PostFormValue("emailNotifications") != ""
		sms := r.PostFormValue("smsNotifications") != ""
		patch = model.SettingsPatch{
			FirstName:          &first,
			LastName:           &last,
			EmailNotifications: &email,
			SMSNotifications:   &sms,
		}
	} else if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.state.Settings.Update(r.Context(), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	if form {
		redirectBack(w, r, "/app/settings")
		return
	}
	response.OK(w, settings)
}
