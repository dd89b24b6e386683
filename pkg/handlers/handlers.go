// Package handlers holds the request plumbing shared by the HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/chris/academy-booking-core/pkg/api"
	"github.com/chris/academy-booking-core/pkg/apperrors"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds request bodies; every body in this API is small.
const maxBodyBytes = 64 << 10

// Validator checks request bodies against their validate tags and reports fields by JSON name.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns an apperrors validation error listing the failing fields.
func (v *Validator) Validate(obj any) error {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Internal(err, "Failed to validate request")
	}
	fields := make(map[string]string, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = describe(fe)
		names = append(names, fe.Field())
	}
	return apperrors.Validation("Invalid request: %s", strings.Join(names, ", ")).WithDetail("fields", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Decode reads a JSON body into obj and validates it. An empty body is allowed
// when optional is set.
func (v *Validator) Decode(r *http.Request, obj any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return apperrors.Validation("Invalid request body: %v", err)
		}
	}
	return v.Validate(obj)
}

// WriteJSON writes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// WriteError maps err to its status code. Internal causes are logged, never returned.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(kind)
	body := api.Error{Code: string(kind), Message: "Internal server error"}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) && kind != apperrors.KindInternal {
		body.Message = appErr.Message
		body.Details = appErr.Details
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "kind", kind, "error", err)
	}
	WriteJSON(w, status, body)
}
