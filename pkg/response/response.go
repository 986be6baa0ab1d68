package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"concerthub-api/pkg/apierror"
)

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta describes a listed collection. Empty drives the empty-state
// indicator of list views.
type Meta struct {
	Query string `json:"query,omitempty"`
	Total int    `json:"total"`
	Empty bool   `json:"empty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	write(w, statusCode, Response{Success: true, Data: data})
}

// List sends a 200 response for a (possibly filtered) collection.
func List(w http.ResponseWriter, data interface{}, query string, total int) {
	write(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Query: query,
			Total: total,
			Empty: total == 0,
		},
	})
}

func write(w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// Error sends an error response.
func Error(w http.ResponseWriter, err error) {
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierror.InternalError("an unexpected error occurred")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	w.Write(apiErr.ToJSON())
}

// NoContent sends a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Created sends a 201 Created response with the created resource.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// OK sends a 200 OK response.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}
