package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 4 << 10

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// decodeAndValidate writes a 400 or 422 response and returns false when the
// body is not valid JSON for T or fails its validate tags.
func decodeAndValidate[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	var req T
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Result{Message: "invalid request body"})
		return nil, false
	}

	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, Result{
			Message: "validation failed",
			Data:    validationErrors(err),
		})
		return nil, false
	}
	return &req, true
}

func validationErrors(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return out
	}
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "This field is required"
		case "max":
			out[fe.Field()] = fmt.Sprintf("Maximum length is %s", fe.Param())
		default:
			out[fe.Field()] = fmt.Sprintf("Validation failed on '%s'", fe.Tag())
		}
	}
	return out
}
