package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	domainreg "github.com/fkid009/MLflow-study/internal/domain/registry"
	domaintrack "github.com/fkid009/MLflow-study/internal/domain/tracking"
	"github.com/fkid009/MLflow-study/internal/log"
	"github.com/fkid009/MLflow-study/internal/presentation"
)

// Error codes carried in ErrorDTO.Code.
const (
	codeNotFound         = "not_found"
	codeAlreadyExists    = "already_exists"
	codeValidation       = "validation_error"
	codeMetricNotFound   = "metric_not_found"
	codeStoreUnavailable = "store_unavailable"
	codeInternal         = "internal_error"
)

const maxBodyBytes = 1 << 20

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.ErrorErr(log.CatAPI, "Failed to marshal JSON response", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		log.ErrorErr(log.CatAPI, "Failed to write JSON response", err)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, fields map[string]string) {
	respondJSON(w, status, presentation.ErrorDTO{Error: message, Code: code, Fields: fields})
}

// classify maps a domain error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domainreg.ErrNotFound),
		errors.Is(err, domaintrack.ErrRunNotFound),
		errors.Is(err, domaintrack.ErrExperimentNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, domainreg.ErrAlreadyExists):
		return http.StatusConflict, codeAlreadyExists
	case errors.Is(err, domainreg.ErrInvalidInput),
		errors.Is(err, domainreg.ErrInvalidAlias),
		errors.Is(err, domainreg.ErrInvalidStage):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, domainreg.ErrMetricNotFound):
		return http.StatusUnprocessableEntity, codeMetricNotFound
	case errors.Is(err, domainreg.ErrTransientStore):
		return http.StatusServiceUnavailable, codeStoreUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// respondDomainError writes err as an ErrorDTO. Internal errors are logged
// and replaced by a generic message.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	var fields map[string]string
	var verr *domainreg.ValidationError
	if errors.As(err, &verr) {
		fields = verr.Fields
	}

	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		log.ErrorErr(log.CatAPI, "Request failed", err, "method", r.Method, "path", r.URL.Path)
		message = "internal server error"
	case http.StatusServiceUnavailable:
		log.Warn(log.CatAPI, "Store unavailable", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		w.Header().Set("Retry-After", "1")
	}
	respondError(w, status, code, message, fields)
}

// decodeBody reads a JSON request body into v. An empty body leaves v unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &domainreg.ValidationError{Fields: map[string]string{"body": fmt.Sprintf("invalid JSON: %v", err)}}
	}
	return nil
}
