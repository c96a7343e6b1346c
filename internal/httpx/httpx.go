package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"projectshelf-backend/internal/transport"

	"github.com/go-playground/validator/v10"
)

func DecodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

func ValidationDetails(errs validator.ValidationErrors) []transport.FieldError {
	if len(errs) == 0 {
		return nil
	}
	details := make([]transport.FieldError, 0, len(errs))
	for _, err := range errs {
		details = append(details, transport.FieldError{
			Field:   fieldName(err),
			Message: fieldMessage(err),
		})
	}
	return details
}

func fieldName(err validator.FieldError) string {
	name := err.Field()
	if name == "" {
		return err.StructField()
	}
	// JSON bodies are camelCase; validator reports the Go field name.
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(err.Param(), " ", ", "))
	case "slug":
		return "must contain only lowercase letters, numbers and hyphens"
	case "username":
		return "may contain only letters, numbers, underscores and hyphens"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
