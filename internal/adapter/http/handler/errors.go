package handler

import (
	"errors"
	"net/http"

	"github.com/Temutjin2k/auth-service/internal/service/auth"
)

const internalErrorMessage = "the server encountered a problem and could not process your request"

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"error": message}

	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// failedValidationResponse returns 422 UnprocessableEntity with one message per field.
func failedValidationResponse(w http.ResponseWriter, errors map[string]string) {
	errorResponse(w, http.StatusUnprocessableEntity, errors)
}

// badRequestResponse returns 400 BadRequest status
func badRequestResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusBadRequest, message)
}

// unauthorizedResponse returns 401 with a Bearer challenge.
func unauthorizedResponse(w http.ResponseWriter, message any) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	errorResponse(w, http.StatusUnauthorized, message)
}

// internalErrorResponse returns 500 InternalServerError status. The cause is
// logged by the caller and never sent to the client.
func internalErrorResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusInternalServerError, internalErrorMessage)
}

// serviceErrorResponse maps an auth service error onto its HTTP response.
func serviceErrorResponse(w http.ResponseWriter, err error) {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		failedValidationResponse(w, verr.Errors)
		return
	}

	switch code := GetCode(err); code {
	case http.StatusUnauthorized:
		unauthorizedResponse(w, auth.ErrUnauthenticated.Error())
	case http.StatusConflict:
		errorResponse(w, code, auth.ErrConflict.Error())
	case http.StatusInternalServerError:
		internalErrorResponse(w)
	default:
		errorResponse(w, code, err.Error())
	}
}
