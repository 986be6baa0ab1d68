package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"concerthub-api/internal/catalog"
	"concerthub-api/internal/fragment"
	"concerthub-api/internal/service"
	"concerthub-api/internal/view"
	"concerthub-api/pkg/apierror"
	"concerthub-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// toAPIError maps domain errors onto API errors.
func toAPIError(err error) *apierror.Error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]apierror.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			details[i] = apierror.FieldError{Field: f.Field, Message: f.Message}
		}
		return apierror.ValidationError(verr.Message, details...).WithCause(err)
	case errors.Is(err, service.ErrValidation):
		return apierror.ValidationError(err.Error()).WithCause(err)
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, fragment.ErrNotFound),
		errors.Is(err, view.ErrUnknownSection):
		return apierror.NotFound(err.Error()).WithCause(err)
	case errors.Is(err, service.ErrCheckoutClosed):
		return apierror.Conflict(err.Error()).WithCause(err)
	default:
		log.Printf("[Handler] Unexpected error: %v", err)
		return apierror.InternalError("").WithCause(err)
	}
}

// writeError sends err as an API error envelope.
func writeError(w http.ResponseWriter, err error) {
	response.Error(w, toAPIError(err))
}

// concertID parses the {id} URL parameter.
func concertID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("invalid concert id: " + raw)
	}
	return id, nil
}

// isFormPost reports whether the request came from an HTML form.
func isFormPost(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

// redirectBack answers a form post with a redirect to the referring page.
func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref := r.Referer(); ref != "" {
		target = ref
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

const maxBodySize = 1 << 20

// decodeJSON decodes a request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return apierror.BadRequest("invalid JSON")
	}
	return nil
}
